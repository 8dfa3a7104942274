package gym

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/logger"
	"github.com/EdwinEstrella/ironcore-gym/internal/metrics"
)

var (
	ErrGymNotFound    = errors.New("gym not found")
	ErrDuplicateEmail = errors.New("a gym with that email already exists")
	ErrCacheMiss      = errors.New("stats cache miss")
)

// StatsCache keeps computed dashboard stats per gym. Get returns ErrCacheMiss
// when nothing is stored.
type StatsCache interface {
	Get(ctx context.Context, gymID string) (*Stats, error)
	Set(ctx context.Context, gymID string, stats *Stats) error
	StatsInvalidator
}

// StatsInvalidator is implemented by anything that must forget a gym's stats
// after a tenant write.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, gymID string) error
}

type Service interface {
	GetGym(ctx context.Context, gymID string) (*GymDetail, error)
	UpdateGym(ctx context.Context, gymID string, req UpdateGymRequest) (*Gym, error)
	GetStats(ctx context.Context, gymID string) (*Stats, error)
}

type service struct {
	repo  Repository
	cache StatsCache
	now   func() time.Time
}

// NewService builds the gym service. cache may be nil.
func NewService(repo Repository, cache StatsCache) Service {
	return &service{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

func (s *service) GetGym(ctx context.Context, gymID string) (*GymDetail, error) {
	return s.repo.GetGymDetail(ctx, gymID)
}

func (s *service) UpdateGym(ctx context.Context, gymID string, req UpdateGymRequest) (*Gym, error) {
	existing, err := s.repo.GetGymByID(ctx, gymID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		req.Email = &email
		if !strings.EqualFold(email, existing.Email) {
			taken, err := s.repo.EmailExists(ctx, email, gymID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrDuplicateEmail
			}
		}
	}

	return s.repo.UpdateGym(ctx, gymID, req)
}

func (s *service) GetStats(ctx context.Context, gymID string) (*Stats, error) {
	if s.cache != nil {
		stats, err := s.cache.Get(ctx, gymID)
		if err == nil {
			metrics.RecordStatsCache("hit")
			return stats, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			logger.WithError(err).Warn("stats cache read failed", "gym_id", gymID)
		}
		metrics.RecordStatsCache("miss")
	}

	if _, err := s.repo.GetGymByID(ctx, gymID); err != nil {
		return nil, err
	}

	stats, err := s.repo.GetStats(ctx, gymID, MonthStart(s.now()))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, gymID, stats); err != nil {
			logger.WithError(err).Warn("stats cache write failed", "gym_id", gymID)
		}
	}

	return stats, nil
}

// MonthStart is midnight on the first day of t's month, in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Invalidate drops cached stats for gymID, logging instead of failing.
func Invalidate(ctx context.Context, inv StatsInvalidator, gymID string) {
	if inv == nil {
		return
	}
	if err := inv.Invalidate(ctx, gymID); err != nil {
		logger.WithError(err).Warn("stats cache invalidation failed", "gym_id", gymID)
	}
}
