package gym

import (
	"context"
	"time"
)

type Repository interface {
	GetGymByID(ctx context.Context, id string) (*Gym, error)
	GetGymDetail(ctx context.Context, id string) (*GymDetail, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	UpdateGym(ctx context.Context, id string, req UpdateGymRequest) (*Gym, error)
	GetStats(ctx context.Context, gymID string, since time.Time) (*Stats, error)
}
