package plan

import (
	"context"
	"errors"
	"strings"

	"github.com/EdwinEstrella/ironcore-gym/internal/events"
	"github.com/EdwinEstrella/ironcore-gym/internal/gym"
	"github.com/EdwinEstrella/ironcore-gym/internal/logger"
	"github.com/EdwinEstrella/ironcore-gym/internal/metrics"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrPlanNotFound               = errors.New("plan not found")
	ErrPlanHasActiveSubscriptions = errors.New("cannot delete a plan with active subscriptions")
	ErrInvalidPrice               = errors.New("price must be zero or greater")
)

// GymLookup checks that the tenant exists. gym.Repository satisfies it.
type GymLookup interface {
	GetGymByID(ctx context.Context, id string) (*gym.Gym, error)
}

type Service interface {
	ListPlans(ctx context.Context, gymID string, includeInactive bool) ([]PlanWithCount, error)
	GetPlan(ctx context.Context, id, gymID string) (*PlanDetail, error)
	CreatePlan(ctx context.Context, gymID string, req CreatePlanRequest) (*Plan, error)
	UpdatePlan(ctx context.Context, id, gymID string, req UpdatePlanRequest) (*Plan, error)
	DeletePlan(ctx context.Context, id, gymID string) (*Plan, error)
}

type service struct {
	repo      Repository
	gyms      GymLookup
	publisher events.Publisher
	stats     gym.StatsInvalidator
}

// NewService builds the plan service. publisher and stats may be nil.
func NewService(repo Repository, gyms GymLookup, publisher events.Publisher, stats gym.StatsInvalidator) Service {
	return &service{
		repo:      repo,
		gyms:      gyms,
		publisher: publisher,
		stats:     stats,
	}
}

func (s *service) ListPlans(ctx context.Context, gymID string, includeInactive bool) ([]PlanWithCount, error) {
	return s.repo.List(ctx, gymID, includeInactive)
}

func (s *service) GetPlan(ctx context.Context, id, gymID string) (*PlanDetail, error) {
	p, err := s.repo.GetByID(ctx, id, gymID)
	if err != nil {
		return nil, err
	}

	subs, err := s.repo.ListSubscribers(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return &PlanDetail{Plan: *p, Subscriptions: subs}, nil
}

func (s *service) CreatePlan(ctx context.Context, gymID string, req CreatePlanRequest) (*Plan, error) {
	if _, err := s.gyms.GetGymByID(ctx, gymID); err != nil {
		return nil, err
	}

	if req.Price == nil || req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	features := pq.StringArray(req.Features)
	if features == nil {
		features = pq.StringArray{}
	}

	p, err := s.repo.Create(ctx, &Plan{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price.Round(2),
		Duration:    req.Duration,
		MaxUsers:    req.MaxUsers,
		Features:    features,
		IsActive:    true,
		GymID:       gymID,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("plan created", "gym_id", gymID, "plan_id", p.ID, "price", p.Price.StringFixed(2))
	gym.Invalidate(ctx, s.stats, gymID)

	return p, nil
}

func (s *service) UpdatePlan(ctx context.Context, id, gymID string, req UpdatePlanRequest) (*Plan, error) {
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ErrInvalidPrice
		}
		rounded := req.Price.Round(2)
		req.Price = &rounded
	}

	if req.IsActive != nil && !*req.IsActive {
		if _, err := s.repo.GetByID(ctx, id, gymID); err != nil {
			return nil, err
		}
		if err := s.guardDeactivation(ctx, id); err != nil {
			return nil, err
		}
	}

	p, err := s.repo.Update(ctx, id, gymID, req)
	if err != nil {
		if errors.Is(err, ErrPlanHasActiveSubscriptions) {
			metrics.RecordPlanDeletionBlocked()
		}
		return nil, err
	}

	if !p.IsActive && req.IsActive != nil {
		events.Emit(ctx, s.publisher, events.New(events.PlanDeactivated, gymID, p))
	}
	gym.Invalidate(ctx, s.stats, gymID)
	return p, nil
}

// DeletePlan deactivates the plan. The row is kept so past subscriptions
// still resolve their plan.
func (s *service) DeletePlan(ctx context.Context, id, gymID string) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id, gymID)
	if err != nil {
		return nil, err
	}

	if err := s.guardDeactivation(ctx, p.ID); err != nil {
		return nil, err
	}

	deactivated, err := s.repo.Deactivate(ctx, id, gymID)
	if err != nil {
		if errors.Is(err, ErrPlanHasActiveSubscriptions) {
			metrics.RecordPlanDeletionBlocked()
		}
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.PlanDeactivated, gymID, deactivated))
	gym.Invalidate(ctx, s.stats, gymID)

	return deactivated, nil
}

func (s *service) guardDeactivation(ctx context.Context, planID string) error {
	active, err := s.repo.CountActiveSubscriptions(ctx, planID)
	if err != nil {
		return err
	}
	if active > 0 {
		metrics.RecordPlanDeletionBlocked()
		logger.Info("plan deactivation blocked", "plan_id", planID, "active_subscriptions", active)
		return ErrPlanHasActiveSubscriptions
	}
	return nil
}
