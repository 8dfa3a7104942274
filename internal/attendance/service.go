package attendance

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/logger"
	"github.com/EdwinEstrella/ironcore-gym/internal/metrics"

	"github.com/google/uuid"
)

var (
	ErrMemberNotFound       = errors.New("member not found")
	ErrMemberNotActive      = errors.New("member is not active")
	ErrNoActiveSubscription = errors.New("member has no active subscription")
	ErrAlreadyCheckedIn     = errors.New("member is already checked in")
	ErrNotCheckedIn         = errors.New("member is not checked in")
	ErrGymFull              = errors.New("gym is at full capacity")
	ErrInvalidDays          = errors.New("days must be between 1 and 90")
)

type Service interface {
	CheckIn(ctx context.Context, gymID, memberID string) (*Attendance, error)
	CheckOut(ctx context.Context, gymID, memberID string) (*Attendance, error)
	Occupancy(ctx context.Context, gymID string) (*Occupancy, error)
	PeakHours(ctx context.Context, gymID string, days int) ([]HourCount, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *service) CheckIn(ctx context.Context, gymID, memberID string) (*Attendance, error) {
	a, err := s.repo.CheckIn(ctx, &Attendance{
		ID:       uuid.NewString(),
		GymID:    gymID,
		MemberID: memberID,
		CheckIn:  s.now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrGymFull):
			metrics.RecordCheckIn("full")
		case errors.Is(err, ErrMemberNotFound), errors.Is(err, ErrMemberNotActive),
			errors.Is(err, ErrNoActiveSubscription), errors.Is(err, ErrAlreadyCheckedIn):
			metrics.RecordCheckIn("rejected")
		}
		return nil, err
	}

	metrics.RecordCheckIn("ok")
	logger.Debug("member checked in", "gym_id", gymID, "member_id", memberID)
	return a, nil
}

func (s *service) CheckOut(ctx context.Context, gymID, memberID string) (*Attendance, error) {
	return s.repo.CheckOut(ctx, gymID, memberID)
}

func (s *service) Occupancy(ctx context.Context, gymID string) (*Occupancy, error) {
	o, err := s.repo.Occupancy(ctx, gymID)
	if err != nil {
		return nil, err
	}
	if o.MaxCapacity > 0 {
		o.Percentage = math.Round(float64(o.Current)/float64(o.MaxCapacity)*1000) / 10
	}
	return o, nil
}

// PeakHours returns 24 buckets, one per hour of day, counting check-ins over
// the last days days.
func (s *service) PeakHours(ctx context.Context, gymID string, days int) ([]HourCount, error) {
	if days < 1 || days > MaxPeakDays {
		return nil, ErrInvalidDays
	}

	counts, err := s.repo.CheckInsByHour(ctx, gymID, s.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}

	hours := make([]HourCount, 24)
	for h := range hours {
		hours[h].Hour = h
	}
	for _, c := range counts {
		if c.Hour >= 0 && c.Hour < 24 {
			hours[c.Hour].CheckIns = c.CheckIns
		}
	}
	return hours, nil
}
