package attendance

import "time"

const (
	DefaultPeakDays = 7
	MaxPeakDays     = 90
)

type Attendance struct {
	ID       string     `db:"id" json:"id"`
	GymID    string     `db:"gym_id" json:"gym_id"`
	MemberID string     `db:"member_id" json:"member_id"`
	CheckIn  time.Time  `db:"check_in" json:"check_in"`
	CheckOut *time.Time `db:"check_out" json:"check_out,omitempty"`
}

type Occupancy struct {
	Current     int     `db:"current" json:"current"`
	MaxCapacity int     `db:"max_capacity" json:"max_capacity"`
	Percentage  float64 `db:"-" json:"percentage"`
}

type HourCount struct {
	Hour     int `db:"hour" json:"hour"`
	CheckIns int `db:"check_ins" json:"check_ins"`
}

type CheckInRequest struct {
	MemberID string `json:"member_id" binding:"required"`
}
