package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/EdwinEstrella/ironcore-gym/internal/db"
	"github.com/EdwinEstrella/ironcore-gym/internal/gym"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, name, email, password_hash, role, gym_id, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateWithGym(ctx context.Context, g *gym.Gym, u *User) (*gym.Gym, *User, error) {
	var (
		createdGym  *gym.Gym
		createdUser User
	)

	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		createdGym, err = gym.InsertGym(ctx, tx, g)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO gym_users (id, name, email, password_hash, role, gym_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING ` + userColumns

		if err := tx.GetContext(ctx, &createdUser, query,
			u.ID, u.Name, u.Email, u.PasswordHash, u.Role, createdGym.ID); err != nil {
			if db.IsUniqueViolation(err) {
				return ErrEmailExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return createdGym, &createdUser, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM gym_users WHERE LOWER(email) = LOWER($1)`

	var user User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM gym_users WHERE id = $1`

	var user User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *repository) GetProfile(ctx context.Context, id, gymID string) (*Profile, error) {
	query := `
		SELECT u.id, u.name, u.email, u.password_hash, u.role, u.gym_id, u.created_at, u.updated_at,
			g.name AS gym_name
		FROM gym_users u
		JOIN gyms g ON g.id = u.gym_id
		WHERE u.id = $1 AND u.gym_id = $2
	`

	var profile Profile
	if err := r.db.GetContext(ctx, &profile, query, id, gymID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &profile, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM gym_users WHERE LOWER(email) = LOWER($1))`, email)
}
