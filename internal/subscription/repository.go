package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/db"

	"github.com/jmoiron/sqlx"
)

const subscriptionColumns = `id, member_id, plan_id, start_date, end_date, status, payment_status, notes, created_at, updated_at`

const detailSelect = `
	SELECT s.id, s.member_id, s.plan_id, s.start_date, s.end_date, s.status, s.payment_status,
		s.notes, s.created_at, s.updated_at,
		m.gym_id, m.first_name AS member_first_name, m.last_name AS member_last_name, m.email AS member_email,
		p.name AS plan_name, p.price AS plan_price
	FROM subscriptions s
	JOIN members m ON m.id = s.member_id
	JOIN plans p ON p.id = s.plan_id
`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, gymID, status string) ([]SubscriptionWithDetails, error) {
	query := detailSelect + ` WHERE m.gym_id = $1`
	args := []interface{}{gymID}

	if status != "" {
		query += ` AND s.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY s.created_at DESC`

	subs := []SubscriptionWithDetails{}
	if err := r.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repository) ListExpiring(ctx context.Context, gymID string, from, until time.Time) ([]SubscriptionWithDetails, error) {
	query := detailSelect + `
		WHERE m.gym_id = $1 AND s.status = 'ACTIVE' AND s.end_date >= $2 AND s.end_date <= $3
		ORDER BY s.end_date ASC
	`

	subs := []SubscriptionWithDetails{}
	if err := r.db.SelectContext(ctx, &subs, query, gymID, from, until); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repository) ListExpiringAll(ctx context.Context, from, until time.Time) ([]SubscriptionWithDetails, error) {
	query := detailSelect + `
		WHERE s.status = 'ACTIVE' AND s.end_date >= $1 AND s.end_date <= $2
		ORDER BY s.end_date ASC
	`

	subs := []SubscriptionWithDetails{}
	if err := r.db.SelectContext(ctx, &subs, query, from, until); err != nil {
		return nil, err
	}
	return subs, nil
}

// Create inserts sub as the member's only ACTIVE subscription. The member row
// is locked for the duration of the transaction so concurrent creations for the
// same member serialize. It returns the ids of the subscriptions it expired.
func (r *repository) Create(ctx context.Context, gymID string, sub *Subscription) (*Subscription, []string, error) {
	var created Subscription
	var expired []string

	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var memberID string
		err := tx.GetContext(ctx, &memberID,
			`SELECT id FROM members WHERE id = $1 AND gym_id = $2 FOR UPDATE`, sub.MemberID, gymID)
		if err != nil {
			if db.NotFound(err) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("lock member: %w", err)
		}

		err = tx.SelectContext(ctx, &expired, `
			UPDATE subscriptions SET status = 'EXPIRED', updated_at = NOW()
			WHERE member_id = $1 AND status = 'ACTIVE'
			RETURNING id
		`, sub.MemberID)
		if err != nil {
			return fmt.Errorf("expire active subscriptions: %w", err)
		}

		err = tx.GetContext(ctx, &created, `
			INSERT INTO subscriptions (id, member_id, plan_id, start_date, end_date, status, payment_status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+subscriptionColumns,
			sub.ID, sub.MemberID, sub.PlanID, sub.StartDate, sub.EndDate, sub.Status, sub.PaymentStatus, sub.Notes)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrConcurrentActive
			}
			return fmt.Errorf("insert subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &created, expired, nil
}

func (r *repository) SetStatus(ctx context.Context, id, gymID, status string) (*Subscription, error) {
	query := `
		UPDATE subscriptions s SET status = $3, updated_at = NOW()
		FROM members m
		WHERE s.id = $1 AND m.id = s.member_id AND m.gym_id = $2
		RETURNING s.id, s.member_id, s.plan_id, s.start_date, s.end_date, s.status, s.payment_status,
			s.notes, s.created_at, s.updated_at
	`

	var sub Subscription
	if err := r.db.GetContext(ctx, &sub, query, id, gymID, status); err != nil {
		if db.NotFound(err) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) SetPaymentStatus(ctx context.Context, id, gymID, paymentStatus string) (*Subscription, error) {
	query := `
		UPDATE subscriptions s SET payment_status = $3, updated_at = NOW()
		FROM members m
		WHERE s.id = $1 AND m.id = s.member_id AND m.gym_id = $2
		RETURNING s.id, s.member_id, s.plan_id, s.start_date, s.end_date, s.status, s.payment_status,
			s.notes, s.created_at, s.updated_at
	`

	var sub Subscription
	if err := r.db.GetContext(ctx, &sub, query, id, gymID, paymentStatus); err != nil {
		if db.NotFound(err) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) ExpireOverdue(ctx context.Context, now time.Time) ([]Expired, error) {
	query := `
		UPDATE subscriptions s SET status = 'EXPIRED', updated_at = NOW()
		FROM members m
		WHERE m.id = s.member_id AND s.status = 'ACTIVE' AND s.end_date < $1
		RETURNING s.id, s.member_id, m.gym_id
	`

	expired := []Expired{}
	if err := r.db.SelectContext(ctx, &expired, query, now); err != nil {
		return nil, err
	}
	return expired, nil
}
