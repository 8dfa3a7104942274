package user

import (
	"context"

	"github.com/EdwinEstrella/ironcore-gym/internal/gym"
)

type Repository interface {
	// CreateWithGym inserts the gym and its first user atomically.
	CreateWithGym(ctx context.Context, g *gym.Gym, u *User) (*gym.Gym, *User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	GetProfile(ctx context.Context, id, gymID string) (*Profile, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
