package user

import (
	"context"
	"errors"
	"strings"

	"github.com/EdwinEstrella/ironcore-gym/internal/auth"
	"github.com/EdwinEstrella/ironcore-gym/internal/gym"

	"github.com/google/uuid"
)

const defaultMaxCapacity = 100

var (
	ErrEmailExists        = errors.New("a user with that email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// GymEmailChecker reports whether a gym email is already registered.
type GymEmailChecker interface {
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Me(ctx context.Context, userID, gymID string) (*Profile, error)
}

type service struct {
	repo      Repository
	gyms      GymEmailChecker
	jwtSecret string
}

func NewService(repo Repository, gyms GymEmailChecker, jwtSecret string) Service {
	return &service{
		repo:      repo,
		gyms:      gyms,
		jwtSecret: jwtSecret,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	gymEmail := normalizeEmail(req.GymEmail)
	userEmail := normalizeEmail(req.Email)

	taken, err := s.gyms.EmailExists(ctx, gymEmail, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, gym.ErrDuplicateEmail
	}

	exists, err := s.repo.EmailExists(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	g, u, err := s.repo.CreateWithGym(ctx,
		&gym.Gym{
			ID:          uuid.NewString(),
			Name:        strings.TrimSpace(req.GymName),
			Email:       gymEmail,
			Phone:       optional(req.GymPhone),
			Address:     optional(req.GymAddress),
			MaxCapacity: defaultMaxCapacity,
		},
		&User{
			ID:           uuid.NewString(),
			Name:         strings.TrimSpace(req.Name),
			Email:        userEmail,
			PasswordHash: passwordHash,
			Role:         RoleOwner,
		},
	)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.GenerateTokens(u.Identity(), s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{TokenPair: tokens, User: u, Gym: g}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := auth.GenerateTokens(u.Identity(), s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{TokenPair: tokens, User: u}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u.GymID != claims.GymID {
		return nil, auth.ErrInvalidToken
	}

	accessToken, err := auth.GenerateAccessToken(u.Identity(), s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		TokenPair: &auth.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int64(auth.AccessTokenTTL.Seconds()),
		},
		User: u,
	}, nil
}

func (s *service) Me(ctx context.Context, userID, gymID string) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID, gymID)
}
