package server

import (
	"context"
	"net/http"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/attendance"
	"github.com/EdwinEstrella/ironcore-gym/internal/auth"
	"github.com/EdwinEstrella/ironcore-gym/internal/config"
	"github.com/EdwinEstrella/ironcore-gym/internal/gym"
	"github.com/EdwinEstrella/ironcore-gym/internal/member"
	"github.com/EdwinEstrella/ironcore-gym/internal/plan"
	"github.com/EdwinEstrella/ironcore-gym/internal/subscription"
	"github.com/EdwinEstrella/ironcore-gym/internal/tracing"
	"github.com/EdwinEstrella/ironcore-gym/internal/user"

	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	User         *user.Handler
	Gym          *gym.Handler
	Member       *member.Handler
	Plan         *plan.Handler
	Subscription *subscription.Handler
	Attendance   *attendance.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New builds the HTTP server. Background work started for the router stops
// when ctx is cancelled.
func New(ctx context.Context, cfg *config.Config, h Handlers, health ...Check) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := NewRouter(ctx, cfg, h, health...)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           tracing.Handler(router, cfg.ServiceName),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter builds the gin engine with middleware and every route mounted.
func NewRouter(ctx context.Context, cfg *config.Config, h Handlers, health ...Check) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(),
		RateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	router.GET("/health", Health(health...))
	router.GET("/metrics", Metrics())

	apiGroup := router.Group("/api")

	public := apiGroup.Group("/auth")
	{
		public.POST("/register", h.User.Register)
		public.POST("/login", h.User.Login)
		public.POST("/refresh", h.User.Refresh)
	}

	protected := apiGroup.Group("")
	protected.Use(auth.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/me", h.User.Me)

		protected.GET("/gyms", h.Gym.GetGym)
		protected.PUT("/gyms", h.Gym.UpdateGym)

		protected.GET("/members", h.Member.ListMembers)
		protected.GET("/members/stats", h.Member.GetMemberStats)
		protected.POST("/members", h.Member.CreateMember)
		protected.GET("/members/:id", h.Member.GetMember)
		protected.PUT("/members/:id", h.Member.UpdateMember)
		protected.DELETE("/members/:id", h.Member.DeleteMember)

		protected.GET("/plans", h.Plan.ListPlans)
		protected.POST("/plans", h.Plan.CreatePlan)
		protected.GET("/plans/:id", h.Plan.GetPlan)
		protected.PUT("/plans/:id", h.Plan.UpdatePlan)
		protected.DELETE("/plans/:id", h.Plan.DeletePlan)

		protected.GET("/subscriptions", h.Subscription.List)
		protected.POST("/subscriptions", h.Subscription.Create)
		protected.PATCH("/subscriptions", h.Subscription.Patch)

		protected.POST("/attendance/check-in", h.Attendance.CheckIn)
		protected.POST("/attendance/check-out", h.Attendance.CheckOut)
		protected.GET("/attendance/occupancy", h.Attendance.Occupancy)
		protected.GET("/attendance/peak-hours", h.Attendance.PeakHours)
	}

	return router
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
