package user

import (
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/auth"
	"github.com/EdwinEstrella/ironcore-gym/internal/gym"
)

const (
	RoleOwner = "OWNER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	GymID        string    `db:"gym_id" json:"gym_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, GymID: u.GymID, Email: u.Email, Role: u.Role}
}

// Profile is the authenticated user together with the name of their gym.
type Profile struct {
	User
	GymName string `db:"gym_name" json:"gym_name"`
}

type RegisterRequest struct {
	GymName    string `json:"gym_name" binding:"required,max=255"`
	GymEmail   string `json:"gym_email" binding:"required,email"`
	GymPhone   string `json:"gym_phone" binding:"omitempty,max=50"`
	GymAddress string `json:"gym_address"`
	Name       string `json:"name" binding:"required,max=255"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthResponse struct {
	*auth.TokenPair
	User *User    `json:"user"`
	Gym  *gym.Gym `json:"gym,omitempty"`
}
