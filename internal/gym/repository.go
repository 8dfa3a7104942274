package gym

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/db"

	"github.com/jmoiron/sqlx"
)

const gymColumns = `id, name, email, phone, address, logo, max_capacity, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// InsertGym creates a gym using q, which may be a transaction.
func InsertGym(ctx context.Context, q sqlx.QueryerContext, g *Gym) (*Gym, error) {
	query := `
		INSERT INTO gyms (id, name, email, phone, address, max_capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + gymColumns

	var gym Gym
	if err := sqlx.GetContext(ctx, q, &gym, query, g.ID, g.Name, g.Email, g.Phone, g.Address, g.MaxCapacity); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return &gym, nil
}

func (r *repository) GetGymByID(ctx context.Context, id string) (*Gym, error) {
	query := `SELECT ` + gymColumns + ` FROM gyms WHERE id = $1`

	var gym Gym
	if err := r.db.GetContext(ctx, &gym, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGymNotFound
		}
		return nil, err
	}

	return &gym, nil
}

func (r *repository) GetGymDetail(ctx context.Context, id string) (*GymDetail, error) {
	query := `
		SELECT g.id, g.name, g.email, g.phone, g.address, g.logo, g.max_capacity, g.created_at, g.updated_at,
			(SELECT COUNT(*) FROM gym_users u WHERE u.gym_id = g.id) AS user_count,
			(SELECT COUNT(*) FROM members m WHERE m.gym_id = g.id AND m.status = 'ACTIVE') AS active_member_count,
			(SELECT COUNT(*) FROM plans p WHERE p.gym_id = g.id AND p.is_active) AS active_plan_count
		FROM gyms g
		WHERE g.id = $1
	`

	var detail GymDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGymNotFound
		}
		return nil, err
	}

	return &detail, nil
}

func (r *repository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM gyms WHERE LOWER(email) = LOWER($1) AND id::text <> $2)`,
		email, excludeID)
}

func (r *repository) UpdateGym(ctx context.Context, id string, req UpdateGymRequest) (*Gym, error) {
	query := `
		UPDATE gyms SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			address = COALESCE($5, address),
			logo = COALESCE($6, logo),
			max_capacity = COALESCE($7, max_capacity),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + gymColumns

	var gym Gym
	err := r.db.GetContext(ctx, &gym, query, id, req.Name, req.Email, req.Phone, req.Address, req.Logo, req.MaxCapacity)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrGymNotFound
		case db.IsUniqueViolation(err):
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update gym: %w", err)
	}

	return &gym, nil
}

func (r *repository) GetStats(ctx context.Context, gymID string, since time.Time) (*Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM members WHERE gym_id = $1) AS total_members,
			(SELECT COUNT(*) FROM members WHERE gym_id = $1 AND status = 'ACTIVE') AS active_members,
			(SELECT COUNT(*) FROM gym_users WHERE gym_id = $1) AS total_users,
			(SELECT COUNT(*) FROM plans WHERE gym_id = $1 AND is_active) AS total_plans,
			COUNT(s.id) FILTER (WHERE s.status = 'ACTIVE') AS active_subscriptions,
			COUNT(s.id) FILTER (WHERE s.payment_status = 'PAID' AND s.created_at >= $2) AS paid_this_month
		FROM subscriptions s
		JOIN members m ON m.id = s.member_id
		WHERE m.gym_id = $1
	`

	var stats Stats
	if err := r.db.GetContext(ctx, &stats, query, gymID, since); err != nil {
		return nil, err
	}

	return &stats, nil
}
