package plan

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

// @Summary      List plans
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Param        includeInactive query bool false "Include deactivated plans"
// @Success      200 {object} api.Result
// @Router       /api/plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	plans, err := h.service.ListPlans(c.Request.Context(), gymID, c.Query("includeInactive") == "true")
	if err != nil {
		h.fail(c, err, "failed to list plans")
		return
	}

	api.OK(c, http.StatusOK, "", plans)
}

// @Summary      Get a plan with its active subscribers
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Plan ID"
// @Success      200 {object} api.Result
// @Failure      404 {object} api.Result
// @Router       /api/plans/{id} [get]
func (h *Handler) GetPlan(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	p, err := h.service.GetPlan(c.Request.Context(), c.Param("id"), gymID)
	if err != nil {
		h.fail(c, err, "failed to get plan")
		return
	}

	api.OK(c, http.StatusOK, "", p)
}

// @Summary      Create a plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body plan.CreatePlanRequest true "Plan"
// @Success      201 {object} api.Result
// @Failure      400 {object} api.Result
// @Router       /api/plans [post]
func (h *Handler) CreatePlan(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	var req CreatePlanRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.CreatePlan(c.Request.Context(), gymID, req)
	if err != nil {
		if errors.Is(err, gym.ErrGymNotFound) {
			api.Fail(c, http.StatusBadRequest, gym.ErrGymNotFound.Error())
			return
		}
		h.fail(c, err, "failed to create plan")
		return
	}

	audit.Record(c, audit.ActionCreate, "plan", p.ID)
	api.OK(c, http.StatusCreated, "plan created", p)
}

// @Summary      Update a plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Plan ID"
// @Param        request body plan.UpdatePlanRequest true "Fields to change"
// @Success      200 {object} api.Result
// @Failure      400 {object} api.Result
// @Failure      404 {object} api.Result
// @Router       /api/plans/{id} [put]
func (h *Handler) UpdatePlan(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	var req UpdatePlanRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdatePlan(c.Request.Context(), c.Param("id"), gymID, req)
	if err != nil {
		h.fail(c, err, "failed to update plan")
		return
	}

	audit.Record(c, audit.ActionUpdate, "plan", p.ID)
	api.OK(c, http.StatusOK, "plan updated", p)
}

// @Summary      Deactivate a plan
// @Description  Rejected while the plan has ACTIVE subscriptions.
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Plan ID"
// @Success      200 {object} api.Result
// @Failure      400 {object} api.Result
// @Failure      404 {object} api.Result
// @Router       /api/plans/{id} [delete]
func (h *Handler) DeletePlan(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	p, err := h.service.DeletePlan(c.Request.Context(), c.Param("id"), gymID)
	if err != nil {
		h.fail(c, err, "failed to delete plan")
		return
	}

	audit.Record(c, audit.ActionDelete, "plan", p.ID)
	api.OK(c, http.StatusOK, "plan deleted", p)
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrPlanNotFound):
		api.Fail(c, http.StatusNotFound, ErrPlanNotFound.Error())
	case errors.Is(err, ErrPlanHasActiveSubscriptions), errors.Is(err, ErrInvalidPrice):
		api.Fail(c, http.StatusBadRequest, err.Error())
	default:
		logger.WithError(err).Error(message)
		api.Unexpected(c, message, err)
	}
}
