package subscription

import (
	"context"
	"time"
)

type Repository interface {
	List(ctx context.Context, gymID, status string) ([]SubscriptionWithDetails, error)
	ListExpiring(ctx context.Context, gymID string, from, until time.Time) ([]SubscriptionWithDetails, error)
	ListExpiringAll(ctx context.Context, from, until time.Time) ([]SubscriptionWithDetails, error)
	Create(ctx context.Context, gymID string, sub *Subscription) (*Subscription, []string, error)
	SetStatus(ctx context.Context, id, gymID, status string) (*Subscription, error)
	SetPaymentStatus(ctx context.Context, id, gymID, paymentStatus string) (*Subscription, error)
	ExpireOverdue(ctx context.Context, now time.Time) ([]Expired, error)
}
