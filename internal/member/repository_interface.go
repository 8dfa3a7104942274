package member

import (
	"context"
	"time"
)

type Repository interface {
	List(ctx context.Context, gymID, status string) ([]MemberWithSubscription, error)
	GetByID(ctx context.Context, id, gymID string) (*Member, error)
	ListSubscriptions(ctx context.Context, memberID string) ([]SubscriptionSummary, error)
	EmailExists(ctx context.Context, gymID, email, excludeID string) (bool, error)
	Create(ctx context.Context, m *Member) (*Member, error)
	Update(ctx context.Context, id, gymID string, ch Changes) (*Member, error)
	SoftDelete(ctx context.Context, id, gymID string) (*Member, error)
	GetStats(ctx context.Context, gymID string, since time.Time) (*Stats, error)
}
