package gym

import (
	"errors"
	"net/http"

	"github.com/EdwinEstrella/ironcore-gym/internal/api"
	"github.com/EdwinEstrella/ironcore-gym/internal/audit"
	"github.com/EdwinEstrella/ironcore-gym/internal/auth"
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

// @Summary      Get the caller's gym
// @Tags         gyms
// @Produce      json
// @Security     BearerAuth
// @Param        stats query bool false "Return dashboard stats instead"
// @Success      200 {object} api.Result
// @Failure      401 {object} api.Result
// @Failure      404 {object} api.Result
// @Router       /api/gyms [get]
func (h *Handler) GetGym(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	ctx := c.Request.Context()

	if c.Query("stats") == "true" {
		stats, err := h.service.GetStats(ctx, gymID)
		if err != nil {
			h.fail(c, err, "failed to get gym stats")
			return
		}
		api.OK(c, http.StatusOK, "", stats)
		return
	}

	gym, err := h.service.GetGym(ctx, gymID)
	if err != nil {
		h.fail(c, err, "failed to get gym")
		return
	}

	api.OK(c, http.StatusOK, "", gym)
}

// @Summary      Update gym settings
// @Tags         gyms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body gym.UpdateGymRequest true "Fields to change"
// @Success      200 {object} api.Result
// @Failure      400 {object} api.Result
// @Failure      401 {object} api.Result
// @Router       /api/gyms [put]
func (h *Handler) UpdateGym(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	var req UpdateGymRequest
	if !api.BindJSON(c, &req) {
		return
	}

	gym, err := h.service.UpdateGym(c.Request.Context(), gymID, req)
	if err != nil {
		h.fail(c, err, "failed to update gym")
		return
	}

	audit.Record(c, audit.ActionUpdate, "gym", gym.ID)
	api.OK(c, http.StatusOK, "gym updated", gym)
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrGymNotFound):
		api.Fail(c, http.StatusNotFound, ErrGymNotFound.Error())
	case errors.Is(err, ErrDuplicateEmail):
		api.Fail(c, http.StatusBadRequest, ErrDuplicateEmail.Error())
	default:
		logger.WithError(err).Error(message)
		api.Unexpected(c, message, err)
	}
}
