package attendance

import (
	"context"
	"time"
)

type Repository interface {
	CheckIn(ctx context.Context, a *Attendance) (*Attendance, error)
	CheckOut(ctx context.Context, gymID, memberID string) (*Attendance, error)
	Occupancy(ctx context.Context, gymID string) (*Occupancy, error)
	CheckInsByHour(ctx context.Context, gymID string, since time.Time) ([]HourCount, error)
}
