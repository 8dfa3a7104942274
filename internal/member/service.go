package member

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/events"
	"github.com/EdwinEstrella/ironcore-gym/internal/gym"
	"github.com/EdwinEstrella/ironcore-gym/internal/logger"
	"github.com/EdwinEstrella/ironcore-gym/internal/metrics"

	"github.com/google/uuid"
)

var (
	ErrMemberNotFound  = errors.New("member not found")
	ErrDuplicateEmail  = errors.New("a member with that email already exists in this gym")
	ErrInvalidStatus   = errors.New("invalid member status")
	ErrInvalidBirthday = errors.New("date_of_birth must be YYYY-MM-DD")
)

// GymLookup resolves the tenant a member belongs to. gym.Repository satisfies it.
type GymLookup interface {
	GetGymByID(ctx context.Context, id string) (*gym.Gym, error)
}

// Notifier sends the welcome email. email.Service satisfies it.
type Notifier interface {
	SendWelcome(ctx context.Context, to, name, gymName string) error
}

type Service interface {
	ListMembers(ctx context.Context, gymID, status string) ([]MemberWithSubscription, error)
	GetMember(ctx context.Context, id, gymID string) (*MemberDetail, error)
	CreateMember(ctx context.Context, gymID string, req CreateMemberRequest) (*Member, error)
	UpdateMember(ctx context.Context, id, gymID string, req UpdateMemberRequest) (*Member, error)
	DeleteMember(ctx context.Context, id, gymID string) (*Member, error)
	GetMemberStats(ctx context.Context, gymID string) (*Stats, error)
}

type service struct {
	repo      Repository
	gyms      GymLookup
	notifier  Notifier
	publisher events.Publisher
	stats     gym.StatsInvalidator
	now       func() time.Time
}

// NewService builds the member service. notifier, publisher and stats may be nil.
func NewService(repo Repository, gyms GymLookup, notifier Notifier, publisher events.Publisher, stats gym.StatsInvalidator) Service {
	return &service{
		repo:      repo,
		gyms:      gyms,
		notifier:  notifier,
		publisher: publisher,
		stats:     stats,
		now:       time.Now,
	}
}

func (s *service) ListMembers(ctx context.Context, gymID, status string) ([]MemberWithSubscription, error) {
	if status != "" && !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, gymID, status)
}

func (s *service) GetMember(ctx context.Context, id, gymID string) (*MemberDetail, error) {
	m, err := s.repo.GetByID(ctx, id, gymID)
	if err != nil {
		return nil, err
	}

	subs, err := s.repo.ListSubscriptions(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	return &MemberDetail{Member: *m, Subscriptions: subs}, nil
}

func (s *service) CreateMember(ctx context.Context, gymID string, req CreateMemberRequest) (*Member, error) {
	g, err := s.gyms.GetGymByID(ctx, gymID)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if email != nil {
		taken, err := s.repo.EmailExists(ctx, gymID, *email, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateEmail
		}
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	m, err := s.repo.Create(ctx, &Member{
		ID:               uuid.NewString(),
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            email,
		Phone:            req.Phone,
		DateOfBirth:      dob,
		Gender:           req.Gender,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
		Notes:            req.Notes,
		Status:           StatusActive,
		GymID:            gymID,
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordMemberCreated()
	logger.Info("member created", "gym_id", gymID, "member_id", m.ID)

	if m.Email != nil && s.notifier != nil {
		if err := s.notifier.SendWelcome(ctx, *m.Email, m.FullName(), g.Name); err != nil {
			logger.WithError(err).Warn("welcome email not queued", "member_id", m.ID)
		}
	}

	events.Emit(ctx, s.publisher, events.New(events.MemberCreated, gymID, m))
	gym.Invalidate(ctx, s.stats, gymID)

	return m, nil
}

func (s *service) UpdateMember(ctx context.Context, id, gymID string, req UpdateMemberRequest) (*Member, error) {
	existing, err := s.repo.GetByID(ctx, id, gymID)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if email != nil && (existing.Email == nil || !strings.EqualFold(*email, *existing.Email)) {
		taken, err := s.repo.EmailExists(ctx, gymID, *email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateEmail
		}
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && !ValidStatus(*req.Status) {
		return nil, ErrInvalidStatus
	}

	m, err := s.repo.Update(ctx, id, gymID, Changes{
		FirstName:        trimmed(req.FirstName),
		LastName:         trimmed(req.LastName),
		Email:            email,
		Phone:            req.Phone,
		DateOfBirth:      dob,
		Gender:           req.Gender,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
		Notes:            req.Notes,
		Status:           req.Status,
	})
	if err != nil {
		return nil, err
	}

	if m.Status != existing.Status {
		logger.Info("member status changed", "member_id", id, "from", existing.Status, "to", m.Status)
		if m.Status == StatusCancelled {
			events.Emit(ctx, s.publisher, events.New(events.MemberCancelled, gymID, m))
		}
		gym.Invalidate(ctx, s.stats, gymID)
	}

	return m, nil
}

func (s *service) DeleteMember(ctx context.Context, id, gymID string) (*Member, error) {
	m, err := s.repo.SoftDelete(ctx, id, gymID)
	if err != nil {
		return nil, err
	}

	metrics.RecordMemberCancelled()
	events.Emit(ctx, s.publisher, events.New(events.MemberCancelled, gymID, m))
	gym.Invalidate(ctx, s.stats, gymID)

	return m, nil
}

func (s *service) GetMemberStats(ctx context.Context, gymID string) (*Stats, error) {
	return s.repo.GetStats(ctx, gymID, gym.MonthStart(s.now()))
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	e := strings.ToLower(strings.TrimSpace(*email))
	if e == "" {
		return nil
	}
	return &e
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, ErrInvalidBirthday
	}
	return &t, nil
}
