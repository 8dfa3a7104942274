package gym

import "time"

type Gym struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	Address     *string   `db:"address" json:"address,omitempty"`
	Logo        *string   `db:"logo" json:"logo,omitempty"`
	MaxCapacity int       `db:"max_capacity" json:"max_capacity"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// GymDetail is a gym with the counts shown on the settings page.
type GymDetail struct {
	Gym
	UserCount         int `db:"user_count" json:"user_count"`
	ActiveMemberCount int `db:"active_member_count" json:"active_member_count"`
	ActivePlanCount   int `db:"active_plan_count" json:"active_plan_count"`
}

type Stats struct {
	TotalMembers        int `db:"total_members" json:"total_members"`
	ActiveMembers       int `db:"active_members" json:"active_members"`
	TotalUsers          int `db:"total_users" json:"total_users"`
	TotalPlans          int `db:"total_plans" json:"total_plans"`
	ActiveSubscriptions int `db:"active_subscriptions" json:"active_subscriptions"`
	PaidThisMonth       int `db:"paid_this_month" json:"paid_this_month"`
}

type UpdateGymRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Address     *string `json:"address"`
	Logo        *string `json:"logo" binding:"omitempty,url"`
	MaxCapacity *int    `json:"max_capacity" binding:"omitempty,min=1"`
}
