package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/db"
	"github.com/EdwinEstrella/ironcore-gym/internal/gym"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CheckIn opens a visit. The gym row is locked so the capacity count and the
// insert happen atomically with respect to other check-ins at the same gym.
func (r *repository) CheckIn(ctx context.Context, a *Attendance) (*Attendance, error) {
	var created Attendance

	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var capacity int
		err := tx.GetContext(ctx, &capacity, `SELECT max_capacity FROM gyms WHERE id = $1 FOR UPDATE`, a.GymID)
		if err != nil {
			if db.NotFound(err) {
				return gym.ErrGymNotFound
			}
			return fmt.Errorf("lock gym: %w", err)
		}

		var status string
		err = tx.GetContext(ctx, &status, `SELECT status FROM members WHERE id = $1 AND gym_id = $2`, a.MemberID, a.GymID)
		if err != nil {
			if db.NotFound(err) {
				return ErrMemberNotFound
			}
			return err
		}
		if status != "ACTIVE" {
			return ErrMemberNotActive
		}

		subscribed, err := db.Exists(ctx, tx, `
			SELECT EXISTS(
				SELECT 1 FROM subscriptions
				WHERE member_id = $1 AND status = 'ACTIVE' AND end_date >= NOW()
			)
		`, a.MemberID)
		if err != nil {
			return err
		}
		if !subscribed {
			return ErrNoActiveSubscription
		}

		inside, err := db.Exists(ctx, tx,
			`SELECT EXISTS(SELECT 1 FROM attendances WHERE member_id = $1 AND check_out IS NULL)`, a.MemberID)
		if err != nil {
			return err
		}
		if inside {
			return ErrAlreadyCheckedIn
		}

		var current int
		err = tx.GetContext(ctx, &current,
			`SELECT COUNT(*) FROM attendances WHERE gym_id = $1 AND check_out IS NULL`, a.GymID)
		if err != nil {
			return err
		}
		if current >= capacity {
			return ErrGymFull
		}

		err = tx.GetContext(ctx, &created, `
			INSERT INTO attendances (id, gym_id, member_id, check_in)
			VALUES ($1, $2, $3, $4)
			RETURNING id, gym_id, member_id, check_in, check_out
		`, a.ID, a.GymID, a.MemberID, a.CheckIn)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrAlreadyCheckedIn
			}
			return fmt.Errorf("insert attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) CheckOut(ctx context.Context, gymID, memberID string) (*Attendance, error) {
	query := `
		UPDATE attendances SET check_out = NOW()
		WHERE gym_id = $1 AND member_id = $2 AND check_out IS NULL
		RETURNING id, gym_id, member_id, check_in, check_out
	`

	var a Attendance
	if err := r.db.GetContext(ctx, &a, query, gymID, memberID); err != nil {
		if db.NotFound(err) {
			return nil, ErrNotCheckedIn
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) Occupancy(ctx context.Context, gymID string) (*Occupancy, error) {
	query := `
		SELECT g.max_capacity,
			(SELECT COUNT(*) FROM attendances a WHERE a.gym_id = g.id AND a.check_out IS NULL) AS current
		FROM gyms g
		WHERE g.id = $1
	`

	var o Occupancy
	if err := r.db.GetContext(ctx, &o, query, gymID); err != nil {
		if db.NotFound(err) {
			return nil, gym.ErrGymNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *repository) CheckInsByHour(ctx context.Context, gymID string, since time.Time) ([]HourCount, error) {
	query := `
		SELECT EXTRACT(HOUR FROM check_in)::int AS hour, COUNT(*) AS check_ins
		FROM attendances
		WHERE gym_id = $1 AND check_in >= $2
		GROUP BY hour
		ORDER BY hour
	`

	var counts []HourCount
	if err := r.db.SelectContext(ctx, &counts, query, gymID, since); err != nil {
		return nil, err
	}
	return counts, nil
}
