package plan

import "context"

type Repository interface {
	List(ctx context.Context, gymID string, includeInactive bool) ([]PlanWithCount, error)
	GetByID(ctx context.Context, id, gymID string) (*Plan, error)
	ListSubscribers(ctx context.Context, planID string) ([]Subscriber, error)
	Create(ctx context.Context, p *Plan) (*Plan, error)
	Update(ctx context.Context, id, gymID string, req UpdatePlanRequest) (*Plan, error)
	CountActiveSubscriptions(ctx context.Context, planID string) (int, error)
	Deactivate(ctx context.Context, id, gymID string) (*Plan, error)
}
