package member

import (
	"context"
	"fmt"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/db"

	"github.com/jmoiron/sqlx"
)

const memberColumns = `id, first_name, last_name, email, phone, date_of_birth, gender,
	emergency_contact, emergency_phone, notes, status, gym_id, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

type memberRow struct {
	Member
	SubID            *string    `db:"sub_id"`
	SubPlanID        *string    `db:"sub_plan_id"`
	SubPlanName      *string    `db:"sub_plan_name"`
	SubStartDate     *time.Time `db:"sub_start_date"`
	SubEndDate       *time.Time `db:"sub_end_date"`
	SubStatus        *string    `db:"sub_status"`
	SubPaymentStatus *string    `db:"sub_payment_status"`
}

func (r memberRow) toMember() MemberWithSubscription {
	out := MemberWithSubscription{Member: r.Member}
	if r.SubID != nil {
		out.ActiveSubscription = &SubscriptionSummary{
			ID:            *r.SubID,
			PlanID:        deref(r.SubPlanID),
			PlanName:      deref(r.SubPlanName),
			Status:        deref(r.SubStatus),
			PaymentStatus: deref(r.SubPaymentStatus),
		}
		if r.SubStartDate != nil {
			out.ActiveSubscription.StartDate = *r.SubStartDate
		}
		if r.SubEndDate != nil {
			out.ActiveSubscription.EndDate = *r.SubEndDate
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *repository) List(ctx context.Context, gymID, status string) ([]MemberWithSubscription, error) {
	query := `
		SELECT m.id, m.first_name, m.last_name, m.email, m.phone, m.date_of_birth, m.gender,
			m.emergency_contact, m.emergency_phone, m.notes, m.status, m.gym_id, m.created_at, m.updated_at,
			sub.id AS sub_id, sub.plan_id AS sub_plan_id, sub.plan_name AS sub_plan_name,
			sub.start_date AS sub_start_date, sub.end_date AS sub_end_date,
			sub.status AS sub_status, sub.payment_status AS sub_payment_status
		FROM members m
		LEFT JOIN LATERAL (
			SELECT s.id, s.plan_id, p.name AS plan_name, s.start_date, s.end_date, s.status, s.payment_status
			FROM subscriptions s
			JOIN plans p ON p.id = s.plan_id
			WHERE s.member_id = m.id AND s.status = 'ACTIVE'
			ORDER BY s.created_at DESC
			LIMIT 1
		) sub ON TRUE
		WHERE m.gym_id = $1
	`
	args := []interface{}{gymID}

	if status != "" {
		query += " AND m.status = $2"
		args = append(args, status)
	}

	query += " ORDER BY m.created_at DESC"

	var rows []memberRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	members := make([]MemberWithSubscription, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toMember())
	}
	return members, nil
}

func (r *repository) GetByID(ctx context.Context, id, gymID string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 AND gym_id = $2`

	var m Member
	if err := r.db.GetContext(ctx, &m, query, id, gymID); err != nil {
		if db.NotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) ListSubscriptions(ctx context.Context, memberID string) ([]SubscriptionSummary, error) {
	query := `
		SELECT s.id, s.plan_id, p.name AS plan_name, s.start_date, s.end_date, s.status, s.payment_status
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE s.member_id = $1
		ORDER BY s.created_at DESC
	`

	subs := []SubscriptionSummary{}
	if err := r.db.SelectContext(ctx, &subs, query, memberID); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repository) EmailExists(ctx context.Context, gymID, email, excludeID string) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM members WHERE gym_id = $1 AND LOWER(email) = LOWER($2) AND id::text <> $3)`,
		gymID, email, excludeID)
}

func (r *repository) Create(ctx context.Context, m *Member) (*Member, error) {
	query := `
		INSERT INTO members (id, first_name, last_name, email, phone, date_of_birth, gender,
			emergency_contact, emergency_phone, notes, status, gym_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + memberColumns

	var created Member
	err := r.db.GetContext(ctx, &created, query,
		m.ID, m.FirstName, m.LastName, m.Email, m.Phone, m.DateOfBirth, m.Gender,
		m.EmergencyContact, m.EmergencyPhone, m.Notes, m.Status, m.GymID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert member: %w", err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id, gymID string, ch Changes) (*Member, error) {
	query := `
		UPDATE members SET
			first_name = COALESCE($3, first_name),
			last_name = COALESCE($4, last_name),
			email = COALESCE($5, email),
			phone = COALESCE($6, phone),
			date_of_birth = COALESCE($7, date_of_birth),
			gender = COALESCE($8, gender),
			emergency_contact = COALESCE($9, emergency_contact),
			emergency_phone = COALESCE($10, emergency_phone),
			notes = COALESCE($11, notes),
			status = COALESCE($12, status),
			updated_at = NOW()
		WHERE id = $1 AND gym_id = $2
		RETURNING ` + memberColumns

	var m Member
	err := r.db.GetContext(ctx, &m, query, id, gymID,
		ch.FirstName, ch.LastName, ch.Email, ch.Phone, ch.DateOfBirth, ch.Gender,
		ch.EmergencyContact, ch.EmergencyPhone, ch.Notes, ch.Status)
	if err != nil {
		switch {
		case db.NotFound(err):
			return nil, ErrMemberNotFound
		case db.IsUniqueViolation(err):
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update member: %w", err)
	}
	return &m, nil
}

func (r *repository) SoftDelete(ctx context.Context, id, gymID string) (*Member, error) {
	query := `
		UPDATE members SET status = 'CANCELLED', updated_at = NOW()
		WHERE id = $1 AND gym_id = $2
		RETURNING ` + memberColumns

	var m Member
	if err := r.db.GetContext(ctx, &m, query, id, gymID); err != nil {
		if db.NotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) GetStats(ctx context.Context, gymID string, since time.Time) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'ACTIVE') AS active,
			COUNT(*) FILTER (WHERE status = 'INACTIVE') AS inactive,
			COUNT(*) FILTER (WHERE status = 'SUSPENDED') AS suspended,
			COUNT(*) FILTER (WHERE created_at >= $2) AS new_this_month
		FROM members
		WHERE gym_id = $1
	`

	var stats Stats
	if err := r.db.GetContext(ctx, &stats, query, gymID, since); err != nil {
		return nil, err
	}
	return &stats, nil
}
