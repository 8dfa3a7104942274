package attendance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/EdwinEstrella/ironcore-gym/internal/api"
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

// @Summary      Check a member in
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body attendance.CheckInRequest true "Member"
// @Success      201 {object} api.Result
// @Failure      400 {object} api.Result
// @Router       /api/attendance/check-in [post]
func (h *Handler) CheckIn(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	var req CheckInRequest
	if !api.BindJSON(c, &req) {
		return
	}

	a, err := h.service.CheckIn(c.Request.Context(), gymID, req.MemberID)
	if err != nil {
		h.fail(c, err, "failed to check in")
		return
	}

	api.OK(c, http.StatusCreated, "checked in", a)
}

// @Summary      Check a member out
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body attendance.CheckInRequest true "Member"
// @Success      200 {object} api.Result
// @Failure      400 {object} api.Result
// @Router       /api/attendance/check-out [post]
func (h *Handler) CheckOut(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	var req CheckInRequest
	if !api.BindJSON(c, &req) {
		return
	}

	a, err := h.service.CheckOut(c.Request.Context(), gymID, req.MemberID)
	if err != nil {
		h.fail(c, err, "failed to check out")
		return
	}

	api.OK(c, http.StatusOK, "checked out", a)
}

// @Summary      Current occupancy
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.Result
// @Router       /api/attendance/occupancy [get]
func (h *Handler) Occupancy(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	o, err := h.service.Occupancy(c.Request.Context(), gymID)
	if err != nil {
		h.fail(c, err, "failed to get occupancy")
		return
	}

	api.OK(c, http.StatusOK, "", o)
}

// @Summary      Check-ins per hour of day
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        days query int false "Look-back window in days (1-90)" default(7)
// @Success      200 {object} api.Result
// @Failure      400 {object} api.Result
// @Router       /api/attendance/peak-hours [get]
func (h *Handler) PeakHours(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	days := DefaultPeakDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(c, http.StatusBadRequest, ErrInvalidDays.Error())
			return
		}
		days = n
	}

	hours, err := h.service.PeakHours(c.Request.Context(), gymID, days)
	if err != nil {
		h.fail(c, err, "failed to get peak hours")
		return
	}

	api.OK(c, http.StatusOK, "", hours)
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, gym.ErrGymNotFound):
		api.Fail(c, http.StatusNotFound, gym.ErrGymNotFound.Error())
	case errors.Is(err, ErrMemberNotFound):
		api.Fail(c, http.StatusNotFound, ErrMemberNotFound.Error())
	case errors.Is(err, ErrMemberNotActive),
		errors.Is(err, ErrNoActiveSubscription),
		errors.Is(err, ErrAlreadyCheckedIn),
		errors.Is(err, ErrNotCheckedIn),
		errors.Is(err, ErrGymFull),
		errors.Is(err, ErrInvalidDays):
		api.Fail(c, http.StatusBadRequest, err.Error())
	default:
		logger.WithError(err).Error(message)
		api.Unexpected(c, message, err)
	}
}
