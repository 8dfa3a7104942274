package plan

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Plan struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Duration    int             `db:"duration" json:"duration"`
	MaxUsers    *int            `db:"max_users" json:"max_users,omitempty"`
	Features    pq.StringArray  `db:"features" json:"features"`
	IsActive    bool            `db:"is_active" json:"is_active"`
	GymID       string          `db:"gym_id" json:"gym_id"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type PlanWithCount struct {
	Plan
	ActiveSubscriptions int `db:"active_subscriptions" json:"active_subscriptions"`
}

// Subscriber is an ACTIVE subscription on a plan together with its member.
type Subscriber struct {
	SubscriptionID string    `db:"subscription_id" json:"subscription_id"`
	MemberID       string    `db:"member_id" json:"member_id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Email          *string   `db:"email" json:"email,omitempty"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	EndDate        time.Time `db:"end_date" json:"end_date"`
	PaymentStatus  string    `db:"payment_status" json:"payment_status"`
}

type PlanDetail struct {
	Plan
	Subscriptions []Subscriber `json:"subscriptions"`
}

type CreatePlanRequest struct {
	Name        string           `json:"name" binding:"required,max=100"`
	Description *string          `json:"description" binding:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Duration    int              `json:"duration" binding:"required,min=1"`
	MaxUsers    *int             `json:"max_users" binding:"omitempty,min=1"`
	Features    []string         `json:"features" binding:"omitempty,dive,min=1,max=200"`
}

type UpdatePlanRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string          `json:"description" binding:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price"`
	Duration    *int             `json:"duration" binding:"omitempty,min=1"`
	MaxUsers    *int             `json:"max_users" binding:"omitempty,min=1"`
	Features    []string         `json:"features" binding:"omitempty,dive,min=1,max=200"`
	IsActive    *bool            `json:"is_active"`
}
