package subscription

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive    = "ACTIVE"
	StatusExpired   = "EXPIRED"
	StatusCancelled = "CANCELLED"

	PaymentPending  = "PENDING"
	PaymentPaid     = "PAID"
	PaymentFailed   = "FAILED"
	PaymentRefunded = "REFUNDED"

	ActionCancel        = "cancel"
	ActionUpdatePayment = "updatePayment"

	// ExpiringWindow is how far ahead ListExpiring and the reminder job look.
	ExpiringWindow = 7 * 24 * time.Hour

	dateLayout = "2006-01-02"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// EndDate is start plus the given number of calendar days.
func EndDate(start time.Time, days int) time.Time {
	return start.AddDate(0, 0, days)
}

type Subscription struct {
	ID            string    `db:"id" json:"id"`
	MemberID      string    `db:"member_id" json:"member_id"`
	PlanID        string    `db:"plan_id" json:"plan_id"`
	StartDate     time.Time `db:"start_date" json:"start_date"`
	EndDate       time.Time `db:"end_date" json:"end_date"`
	Status        string    `db:"status" json:"status"`
	PaymentStatus string    `db:"payment_status" json:"payment_status"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SubscriptionWithDetails carries the member and plan a subscription links.
type SubscriptionWithDetails struct {
	Subscription
	GymID           string          `db:"gym_id" json:"gym_id"`
	MemberFirstName string          `db:"member_first_name" json:"member_first_name"`
	MemberLastName  string          `db:"member_last_name" json:"member_last_name"`
	MemberEmail     *string         `db:"member_email" json:"member_email,omitempty"`
	PlanName        string          `db:"plan_name" json:"plan_name"`
	PlanPrice       decimal.Decimal `db:"plan_price" json:"plan_price"`
}

func (s *SubscriptionWithDetails) MemberName() string {
	return s.MemberFirstName + " " + s.MemberLastName
}

// Expired identifies a subscription moved to EXPIRED by the overdue sweep.
type Expired struct {
	ID       string `db:"id" json:"id"`
	MemberID string `db:"member_id" json:"member_id"`
	GymID    string `db:"gym_id" json:"gym_id"`
}

type CreateSubscriptionRequest struct {
	MemberID  string  `json:"member_id" binding:"required"`
	PlanID    string  `json:"plan_id" binding:"required"`
	StartDate *string `json:"start_date"`
	Duration  *int    `json:"duration" binding:"omitempty,min=1"`
	Notes     *string `json:"notes"`
}

type PatchSubscriptionRequest struct {
	ID            string  `json:"id" binding:"required"`
	Action        string  `json:"action" binding:"required"`
	PaymentStatus *string `json:"paymentStatus"`
}
