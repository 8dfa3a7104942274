package member

import "time"

const (
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusSuspended = "SUSPENDED"
	StatusCancelled = "CANCELLED"

	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"

	dateLayout = "2006-01-02"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusCancelled:
		return true
	}
	return false
}

type Member struct {
	ID               string     `db:"id" json:"id"`
	FirstName        string     `db:"first_name" json:"first_name"`
	LastName         string     `db:"last_name" json:"last_name"`
	Email            *string    `db:"email" json:"email,omitempty"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth      *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender           *string    `db:"gender" json:"gender,omitempty"`
	EmergencyContact *string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	EmergencyPhone   *string    `db:"emergency_phone" json:"emergency_phone,omitempty"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	Status           string     `db:"status" json:"status"`
	GymID            string     `db:"gym_id" json:"gym_id"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// SubscriptionSummary is a subscription as shown next to a member.
type SubscriptionSummary struct {
	ID            string    `db:"id" json:"id"`
	PlanID        string    `db:"plan_id" json:"plan_id"`
	PlanName      string    `db:"plan_name" json:"plan_name"`
	StartDate     time.Time `db:"start_date" json:"start_date"`
	EndDate       time.Time `db:"end_date" json:"end_date"`
	Status        string    `db:"status" json:"status"`
	PaymentStatus string    `db:"payment_status" json:"payment_status"`
}

type MemberWithSubscription struct {
	Member
	ActiveSubscription *SubscriptionSummary `json:"active_subscription,omitempty"`
}

type MemberDetail struct {
	Member
	Subscriptions []SubscriptionSummary `json:"subscriptions"`
}

type Stats struct {
	Total        int `db:"total" json:"total_members"`
	Active       int `db:"active" json:"active_members"`
	Inactive     int `db:"inactive" json:"inactive_members"`
	Suspended    int `db:"suspended" json:"suspended_members"`
	NewThisMonth int `db:"new_this_month" json:"new_members_this_month"`
}

type CreateMemberRequest struct {
	FirstName        string  `json:"first_name" binding:"required,max=100"`
	LastName         string  `json:"last_name" binding:"required,max=100"`
	Email            *string `json:"email" binding:"omitempty,email"`
	Phone            *string `json:"phone" binding:"omitempty,max=50"`
	DateOfBirth      *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Gender           *string `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	EmergencyContact *string `json:"emergency_contact" binding:"omitempty,max=255"`
	EmergencyPhone   *string `json:"emergency_phone" binding:"omitempty,max=50"`
	Notes            *string `json:"notes"`
}

type UpdateMemberRequest struct {
	FirstName        *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName         *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email            *string `json:"email" binding:"omitempty,email"`
	Phone            *string `json:"phone" binding:"omitempty,max=50"`
	DateOfBirth      *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Gender           *string `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	EmergencyContact *string `json:"emergency_contact" binding:"omitempty,max=255"`
	EmergencyPhone   *string `json:"emergency_phone" binding:"omitempty,max=50"`
	Notes            *string `json:"notes"`
	Status           *string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED CANCELLED"`
}

// Changes is a partial update; nil fields keep their stored value.
type Changes struct {
	FirstName        *string
	LastName         *string
	Email            *string
	Phone            *string
	DateOfBirth      *time.Time
	Gender           *string
	EmergencyContact *string
	EmergencyPhone   *string
	Notes            *string
	Status           *string
}
