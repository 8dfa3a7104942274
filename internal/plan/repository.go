package plan

import (
	"context"
	"fmt"

	"github.com/EdwinEstrella/ironcore-gym/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const planColumns = `id, name, description, price, duration, max_users, features, is_active, gym_id, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, gymID string, includeInactive bool) ([]PlanWithCount, error) {
	query := `
		SELECT p.id, p.name, p.description, p.price, p.duration, p.max_users, p.features,
			p.is_active, p.gym_id, p.created_at, p.updated_at,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.plan_id = p.id AND s.status = 'ACTIVE') AS active_subscriptions
		FROM plans p
		WHERE p.gym_id = $1
	`
	if !includeInactive {
		query += " AND p.is_active = TRUE"
	}
	query += " ORDER BY p.created_at DESC"

	plans := []PlanWithCount{}
	if err := r.db.SelectContext(ctx, &plans, query, gymID); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) GetByID(ctx context.Context, id, gymID string) (*Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1 AND gym_id = $2`

	var p Plan
	if err := r.db.GetContext(ctx, &p, query, id, gymID); err != nil {
		if db.NotFound(err) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListSubscribers(ctx context.Context, planID string) ([]Subscriber, error) {
	query := `
		SELECT s.id AS subscription_id, m.id AS member_id, m.first_name, m.last_name, m.email,
			s.start_date, s.end_date, s.payment_status
		FROM subscriptions s
		JOIN members m ON m.id = s.member_id
		WHERE s.plan_id = $1 AND s.status = 'ACTIVE'
		ORDER BY s.created_at DESC
	`

	subs := []Subscriber{}
	if err := r.db.SelectContext(ctx, &subs, query, planID); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repository) Create(ctx context.Context, p *Plan) (*Plan, error) {
	query := `
		INSERT INTO plans (id, name, description, price, duration, max_users, features, is_active, gym_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + planColumns

	var created Plan
	err := r.db.GetContext(ctx, &created, query,
		p.ID, p.Name, p.Description, p.Price, p.Duration, p.MaxUsers, p.Features, p.IsActive, p.GymID)
	if err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}
	return &created, nil
}

// Update applies the non-nil fields of req. Turning is_active off carries the
// same guard as Deactivate; when it holds no row is returned and the call
// fails with ErrPlanHasActiveSubscriptions.
func (r *repository) Update(ctx context.Context, id, gymID string, req UpdatePlanRequest) (*Plan, error) {
	query := `
		UPDATE plans SET
			name = COALESCE($3, name),
			description = COALESCE($4, description),
			price = COALESCE($5, price),
			duration = COALESCE($6, duration),
			max_users = COALESCE($7, max_users),
			features = COALESCE($8, features),
			is_active = COALESCE($9, is_active),
			updated_at = NOW()
		WHERE id = $1 AND gym_id = $2
			AND ($9::boolean IS DISTINCT FROM FALSE
				OR NOT EXISTS (SELECT 1 FROM subscriptions s WHERE s.plan_id = plans.id AND s.status = 'ACTIVE'))
		RETURNING ` + planColumns

	var features pq.StringArray
	if req.Features != nil {
		features = pq.StringArray(req.Features)
	}

	var p Plan
	err := r.db.GetContext(ctx, &p, query, id, gymID,
		req.Name, req.Description, req.Price, req.Duration, req.MaxUsers, features, req.IsActive)
	if err != nil {
		if db.NotFound(err) {
			if req.IsActive != nil && !*req.IsActive {
				return nil, ErrPlanHasActiveSubscriptions
			}
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("update plan: %w", err)
	}
	return &p, nil
}

func (r *repository) CountActiveSubscriptions(ctx context.Context, planID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM subscriptions WHERE plan_id = $1 AND status = 'ACTIVE'`, planID)
	return n, err
}

// Deactivate flips is_active off unless an ACTIVE subscription still points at
// the plan. It returns ErrPlanHasActiveSubscriptions when the guard holds.
func (r *repository) Deactivate(ctx context.Context, id, gymID string) (*Plan, error) {
	query := `
		UPDATE plans SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND gym_id = $2
			AND NOT EXISTS (SELECT 1 FROM subscriptions s WHERE s.plan_id = plans.id AND s.status = 'ACTIVE')
		RETURNING ` + planColumns

	var p Plan
	if err := r.db.GetContext(ctx, &p, query, id, gymID); err != nil {
		if db.NotFound(err) {
			return nil, ErrPlanHasActiveSubscriptions
		}
		return nil, err
	}
	return &p, nil
}
