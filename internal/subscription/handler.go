package subscription

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

// @Summary      List subscriptions
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "ACTIVE, EXPIRED or CANCELLED"
// @Param        expiring query bool false "Only ACTIVE subscriptions ending within 7 days"
// @Success      200 {object} api.Result
// @Router       /api/subscriptions [get]
func (h *Handler) List(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	ctx := c.Request.Context()

	if c.Query("expiring") == "true" {
		subs, err := h.service.ListExpiring(ctx, gymID)
		if err != nil {
			h.fail(c, err, "failed to list expiring subscriptions")
			return
		}
		api.OK(c, http.StatusOK, "", subs)
		return
	}

	subs, err := h.service.ListSubscriptions(ctx, gymID, c.Query("status"))
	if err != nil {
		h.fail(c, err, "failed to list subscriptions")
		return
	}

	api.OK(c, http.StatusOK, "", subs)
}

// @Summary      Subscribe a member to a plan
// @Description  Any ACTIVE subscription of the member is expired first.
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body subscription.CreateSubscriptionRequest true "Subscription"
// @Success      201 {object} api.Result
// @Failure      400 {object} api.Result
// @Router       /api/subscriptions [post]
func (h *Handler) Create(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	var req CreateSubscriptionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	sub, err := h.service.CreateSubscription(c.Request.Context(), gymID, req)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			api.Fail(c, http.StatusBadRequest, ErrMemberNotFound.Error())
			return
		}
		h.fail(c, err, "failed to create subscription")
		return
	}

	audit.Record(c, audit.ActionCreate, "subscription", sub.ID)
	api.OK(c, http.StatusCreated, "subscription created", sub)
}

// @Summary      Cancel a subscription or change its payment status
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body subscription.PatchSubscriptionRequest true "Action"
// @Success      200 {object} api.Result
// @Failure      400 {object} api.Result
// @Failure      404 {object} api.Result
// @Router       /api/subscriptions [patch]
func (h *Handler) Patch(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	var req PatchSubscriptionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	switch req.Action {
	case ActionCancel:
		sub, err := h.service.CancelSubscription(ctx, req.ID, gymID)
		if err != nil {
			h.fail(c, err, "failed to cancel subscription")
			return
		}
		audit.Record(c, audit.ActionCancel, "subscription", sub.ID)
		api.OK(c, http.StatusOK, "subscription cancelled", sub)

	case ActionUpdatePayment:
		if req.PaymentStatus == nil {
			api.Fail(c, http.StatusBadRequest, ErrInvalidPaymentStatus.Error())
			return
		}
		sub, err := h.service.UpdatePayment(ctx, req.ID, gymID, *req.PaymentStatus)
		if err != nil {
			h.fail(c, err, "failed to update payment")
			return
		}
		audit.Record(c, audit.ActionUpdate, "subscription", sub.ID)
		api.OK(c, http.StatusOK, "payment status updated", sub)

	default:
		api.Fail(c, http.StatusBadRequest, ErrInvalidAction.Error())
	}
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrSubscriptionNotFound):
		api.Fail(c, http.StatusNotFound, ErrSubscriptionNotFound.Error())
	case errors.Is(err, ErrMemberNotFound):
		api.Fail(c, http.StatusNotFound, ErrMemberNotFound.Error())
	case errors.Is(err, ErrPlanUnavailable),
		errors.Is(err, ErrInvalidStartDate),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidPaymentStatus),
		errors.Is(err, ErrConcurrentActive):
		api.Fail(c, http.StatusBadRequest, err.Error())
	default:
		logger.WithError(err).Error(message)
		api.Unexpected(c, message, err)
	}
}
