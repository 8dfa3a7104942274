package user

import (
	"errors"
	"net/http"

	"github.com/EdwinEstrella/ironcore-gym/internal/api"
	"github.com/EdwinEstrella/ironcore-gym/internal/audit"
	"github.com/EdwinEstrella/ironcore-gym/internal/auth"
	"github.com/EdwinEstrella/ironcore-gym/internal/gym"
	"github.com/EdwinEstrella/ironcore-gym/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Register godoc
// @Summary      Register a gym and its owner
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Gym and owner data"
// @Success      201      {object}  api.Result
// @Failure      400      {object}  api.Result
// @Failure      500      {object}  api.Result
// @Router       /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !api.BindJSON(c, &req) {
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, gym.ErrDuplicateEmail), errors.Is(err, ErrEmailExists):
			api.Fail(c, http.StatusBadRequest, err.Error())
		default:
			logger.WithError(err).Error("registration failed")
			api.Unexpected(c, "failed to register", err)
		}
		return
	}

	audit.Log(audit.Entry{
		GymID:      res.Gym.ID,
		UserID:     res.User.ID,
		Action:     audit.ActionCreate,
		Resource:   "gym",
		ResourceID: res.Gym.ID,
	})
	api.OK(c, http.StatusCreated, "registration successful", res)
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Credentials"
// @Success      200      {object}  api.Result
// @Failure      401      {object}  api.Result
// @Router       /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !api.BindJSON(c, &req) {
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			api.Fail(c, http.StatusUnauthorized, err.Error())
			return
		}
		logger.WithError(err).Error("login failed")
		api.Unexpected(c, "failed to login", err)
		return
	}

	api.OK(c, http.StatusOK, "login successful", res)
}

// Refresh godoc
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshRequest  true  "Refresh token"
// @Success      200      {object}  api.Result
// @Failure      401      {object}  api.Result
// @Router       /api/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !api.BindJSON(c, &req) {
		return
	}

	res, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		api.Fail(c, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	api.OK(c, http.StatusOK, "", res)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Result
// @Failure      401  {object}  api.Result
// @Failure      404  {object}  api.Result
// @Router       /api/me [get]
func (h *Handler) Me(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	profile, err := h.service.Me(c.Request.Context(), userID, gymID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			api.Fail(c, http.StatusNotFound, err.Error())
			return
		}
		logger.WithError(err).Error("failed to load profile")
		api.Unexpected(c, "failed to load profile", err)
		return
	}

	api.OK(c, http.StatusOK, "", profile)
}
