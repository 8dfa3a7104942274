package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/events"
	"github.com/EdwinEstrella/ironcore-gym/internal/gym"
	"github.com/EdwinEstrella/ironcore-gym/internal/logger"
	"github.com/EdwinEstrella/ironcore-gym/internal/member"
	"github.com/EdwinEstrella/ironcore-gym/internal/metrics"
	"github.com/EdwinEstrella/ironcore-gym/internal/plan"

	"github.com/google/uuid"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrPlanUnavailable      = errors.New("plan not found or inactive")
	ErrInvalidStartDate     = errors.New("start_date must be YYYY-MM-DD or RFC 3339")
	ErrInvalidStatus        = errors.New("invalid subscription status")
	ErrInvalidPaymentStatus = errors.New("paymentStatus must be one of PENDING, PAID, FAILED, REFUNDED")
	ErrInvalidAction        = errors.New("invalid action")
	ErrConcurrentActive     = errors.New("member already has an active subscription")
)

// MemberLookup resolves a member inside a gym. member.Repository satisfies it.
type MemberLookup interface {
	GetByID(ctx context.Context, id, gymID string) (*member.Member, error)
}

// PlanLookup resolves a plan inside a gym. plan.Repository satisfies it.
type PlanLookup interface {
	GetByID(ctx context.Context, id, gymID string) (*plan.Plan, error)
}

// Notifier queues subscription emails. email.Service satisfies it.
type Notifier interface {
	SendSubscriptionConfirmation(ctx context.Context, to, name, planName string, start, end time.Time) error
	SendExpiryReminder(ctx context.Context, to, name, planName string, end time.Time) error
}

type Service interface {
	ListSubscriptions(ctx context.Context, gymID, status string) ([]SubscriptionWithDetails, error)
	ListExpiring(ctx context.Context, gymID string) ([]SubscriptionWithDetails, error)
	CreateSubscription(ctx context.Context, gymID string, req CreateSubscriptionRequest) (*Subscription, error)
	CancelSubscription(ctx context.Context, id, gymID string) (*Subscription, error)
	UpdatePayment(ctx context.Context, id, gymID, paymentStatus string) (*Subscription, error)
	ExpireOverdue(ctx context.Context) (int, error)
	SendExpiryReminders(ctx context.Context) (int, error)
}

type service struct {
	repo      Repository
	members   MemberLookup
	plans     PlanLookup
	notifier  Notifier
	publisher events.Publisher
	stats     gym.StatsInvalidator
	now       func() time.Time
}

// NewService builds the subscription service. notifier, publisher and stats
// may be nil.
func NewService(repo Repository, members MemberLookup, plans PlanLookup, notifier Notifier, publisher events.Publisher, stats gym.StatsInvalidator) Service {
	return &service{
		repo:      repo,
		members:   members,
		plans:     plans,
		notifier:  notifier,
		publisher: publisher,
		stats:     stats,
		now:       time.Now,
	}
}

func (s *service) ListSubscriptions(ctx context.Context, gymID, status string) ([]SubscriptionWithDetails, error) {
	if status != "" && !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, gymID, status)
}

func (s *service) ListExpiring(ctx context.Context, gymID string) ([]SubscriptionWithDetails, error) {
	now := s.now()
	return s.repo.ListExpiring(ctx, gymID, now, now.Add(ExpiringWindow))
}

func (s *service) CreateSubscription(ctx context.Context, gymID string, req CreateSubscriptionRequest) (*Subscription, error) {
	m, err := s.members.GetByID(ctx, req.MemberID, gymID)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	p, err := s.plans.GetByID(ctx, req.PlanID, gymID)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			return nil, ErrPlanUnavailable
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrPlanUnavailable
	}

	start := s.now()
	if req.StartDate != nil && *req.StartDate != "" {
		start, err = parseStart(*req.StartDate)
		if err != nil {
			return nil, err
		}
	}

	duration := p.Duration
	if req.Duration != nil {
		duration = *req.Duration
	}

	sub, expired, err := s.repo.Create(ctx, gymID, &Subscription{
		ID:            uuid.NewString(),
		MemberID:      m.ID,
		PlanID:        p.ID,
		StartDate:     start,
		EndDate:       EndDate(start, duration),
		Status:        StatusActive,
		PaymentStatus: PaymentPending,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordSubscription(p.Name)
	metrics.RecordSubscriptionsExpired("replaced", len(expired))
	logger.Info("subscription created",
		"gym_id", gymID,
		"subscription_id", sub.ID,
		"member_id", m.ID,
		"plan", p.Name,
		"replaced", len(expired),
	)

	if m.Email != nil && s.notifier != nil {
		if err := s.notifier.SendSubscriptionConfirmation(ctx, *m.Email, m.FullName(), p.Name, sub.StartDate, sub.EndDate); err != nil {
			logger.WithError(err).Warn("subscription confirmation not queued", "subscription_id", sub.ID)
		}
	}

	for _, id := range expired {
		events.Emit(ctx, s.publisher, events.New(events.SubscriptionExpired, gymID, map[string]string{
			"id":        id,
			"member_id": m.ID,
			"reason":    "replaced",
		}))
	}
	events.Emit(ctx, s.publisher, events.New(events.SubscriptionCreated, gymID, sub))
	gym.Invalidate(ctx, s.stats, gymID)

	return sub, nil
}

func (s *service) CancelSubscription(ctx context.Context, id, gymID string) (*Subscription, error) {
	sub, err := s.repo.SetStatus(ctx, id, gymID, StatusCancelled)
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.SubscriptionCancelled, gymID, sub))
	gym.Invalidate(ctx, s.stats, gymID)

	return sub, nil
}

func (s *service) UpdatePayment(ctx context.Context, id, gymID, paymentStatus string) (*Subscription, error) {
	if !ValidPaymentStatus(paymentStatus) {
		return nil, ErrInvalidPaymentStatus
	}

	sub, err := s.repo.SetPaymentStatus(ctx, id, gymID, paymentStatus)
	if err != nil {
		return nil, err
	}

	logger.Info("payment status updated", "gym_id", gymID, "subscription_id", id, "payment_status", paymentStatus)
	gym.Invalidate(ctx, s.stats, gymID)

	return sub, nil
}

// ExpireOverdue moves every ACTIVE subscription whose end date has passed to
// EXPIRED, across all gyms.
func (s *service) ExpireOverdue(ctx context.Context) (int, error) {
	expired, err := s.repo.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}

	metrics.RecordSubscriptionsExpired("overdue", len(expired))

	gyms := make(map[string]struct{})
	for _, e := range expired {
		events.Emit(ctx, s.publisher, events.New(events.SubscriptionExpired, e.GymID, map[string]string{
			"id":        e.ID,
			"member_id": e.MemberID,
			"reason":    "overdue",
		}))
		gyms[e.GymID] = struct{}{}
	}
	for gymID := range gyms {
		gym.Invalidate(ctx, s.stats, gymID)
	}

	if len(expired) > 0 {
		logger.Info("overdue subscriptions expired", "count", len(expired))
	}
	return len(expired), nil
}

// SendExpiryReminders queues a reminder for every ACTIVE subscription ending
// within ExpiringWindow whose member has an email address.
func (s *service) SendExpiryReminders(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}

	now := s.now()
	subs, err := s.repo.ListExpiringAll(ctx, now, now.Add(ExpiringWindow))
	if err != nil {
		return 0, err
	}

	queued := 0
	for i := range subs {
		sub := &subs[i]
		if sub.MemberEmail == nil {
			continue
		}
		if err := s.notifier.SendExpiryReminder(ctx, *sub.MemberEmail, sub.MemberName(), sub.PlanName, sub.EndDate); err != nil {
			logger.WithError(err).Warn("expiry reminder not queued", "subscription_id", sub.ID)
			continue
		}
		queued++
	}

	return queued, nil
}

func parseStart(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidStartDate
	}
	return t, nil
}
