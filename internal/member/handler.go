package member

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

// @Summary      List members
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "ACTIVE, INACTIVE, SUSPENDED or CANCELLED"
// @Success      200 {object} api.Result
// @Failure      400 {object} api.Result
// @Router       /api/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	members, err := h.service.ListMembers(c.Request.Context(), gymID, c.Query("status"))
	if err != nil {
		h.fail(c, err, "failed to list members")
		return
	}

	api.OK(c, http.StatusOK, "", members)
}

// @Summary      Member counts by status
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.Result
// @Router       /api/members/stats [get]
func (h *Handler) GetMemberStats(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	stats, err := h.service.GetMemberStats(c.Request.Context(), gymID)
	if err != nil {
		h.fail(c, err, "failed to get member stats")
		return
	}

	api.OK(c, http.StatusOK, "", stats)
}

// @Summary      Get a member with subscription history
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Member ID"
// @Success      200 {object} api.Result
// @Failure      404 {object} api.Result
// @Router       /api/members/{id} [get]
func (h *Handler) GetMember(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	m, err := h.service.GetMember(c.Request.Context(), c.Param("id"), gymID)
	if err != nil {
		h.fail(c, err, "failed to get member")
		return
	}

	api.OK(c, http.StatusOK, "", m)
}

// @Summary      Create a member
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body member.CreateMemberRequest true "Member"
// @Success      201 {object} api.Result
// @Failure      400 {object} api.Result
// @Router       /api/members [post]
func (h *Handler) CreateMember(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	var req CreateMemberRequest
	if !api.BindJSON(c, &req) {
		return
	}

	m, err := h.service.CreateMember(c.Request.Context(), gymID, req)
	if err != nil {
		if errors.Is(err, gym.ErrGymNotFound) {
			api.Fail(c, http.StatusBadRequest, gym.ErrGymNotFound.Error())
			return
		}
		h.fail(c, err, "failed to create member")
		return
	}

	audit.Record(c, audit.ActionCreate, "member", m.ID)
	api.OK(c, http.StatusCreated, "member created", m)
}

// @Summary      Update a member
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Member ID"
// @Param        request body member.UpdateMemberRequest true "Fields to change"
// @Success      200 {object} api.Result
// @Failure      400 {object} api.Result
// @Failure      404 {object} api.Result
// @Router       /api/members/{id} [put]
func (h *Handler) UpdateMember(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	var req UpdateMemberRequest
	if !api.BindJSON(c, &req) {
		return
	}

	m, err := h.service.UpdateMember(c.Request.Context(), c.Param("id"), gymID, req)
	if err != nil {
		h.fail(c, err, "failed to update member")
		return
	}

	audit.Record(c, audit.ActionUpdate, "member", m.ID)
	api.OK(c, http.StatusOK, "member updated", m)
}

// @Summary      Cancel a member
// @Description  Soft delete: the member is kept with status CANCELLED.
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Member ID"
// @Success      200 {object} api.Result
// @Failure      404 {object} api.Result
// @Router       /api/members/{id} [delete]
func (h *Handler) DeleteMember(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	m, err := h.service.DeleteMember(c.Request.Context(), c.Param("id"), gymID)
	if err != nil {
		h.fail(c, err, "failed to delete member")
		return
	}

	audit.Record(c, audit.ActionDelete, "member", m.ID)
	api.OK(c, http.StatusOK, "member deleted", m)
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrMemberNotFound):
		api.Fail(c, http.StatusNotFound, ErrMemberNotFound.Error())
	case errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidBirthday):
		api.Fail(c, http.StatusBadRequest, err.Error())
	default:
		logger.WithError(err).Error(message)
		api.Unexpected(c, message, err)
	}
}
