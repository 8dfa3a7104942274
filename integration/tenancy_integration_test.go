package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/attendance"
	"github.com/EdwinEstrella/ironcore-gym/internal/member"
	"github.com/EdwinEstrella/ironcore-gym/internal/plan"
	"github.com/EdwinEstrella/ironcore-gym/internal/subscription"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberEmailScopedToGym_Integration(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	repo := member.NewRepository(database)

	north := createTestGym(t, database, "North", 100)
	south := createTestGym(t, database, "South", 100)

	createTestMember(t, database, north.ID, "ana@example.com")
	createTestMember(t, database, south.ID, "ana@example.com")

	email := "ana@example.com"
	_, err := repo.Create(ctx, &member.Member{
		ID:        uuid.NewString(),
		FirstName: "Ana",
		LastName:  "Twin",
		Email:     &email,
		Status:    member.StatusActive,
		GymID:     north.ID,
	})
	assert.ErrorIs(t, err, member.ErrDuplicateEmail)

	exists, err := repo.EmailExists(ctx, south.ID, "ANA@example.com", "")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemberNotVisibleAcrossGyms_Integration(t *testing.T) {
	database := setupTestDB(t)
	repo := member.NewRepository(database)

	north := createTestGym(t, database, "North", 100)
	south := createTestGym(t, database, "South", 100)
	m := createTestMember(t, database, north.ID, "")

	_, err := repo.GetByID(context.Background(), m.ID, south.ID)
	assert.ErrorIs(t, err, member.ErrMemberNotFound)

	_, err = repo.SoftDelete(context.Background(), m.ID, south.ID)
	assert.ErrorIs(t, err, member.ErrMemberNotFound)
}

func TestSingleActiveSubscription_Integration(t *testing.T) {
	database := setupTestDB(t)

	g := createTestGym(t, database, "North", 100)
	m := createTestMember(t, database, g.ID, "")
	p := createTestPlan(t, database, g.ID)

	first, replaced := subscribe(t, database, g.ID, m.ID, p.ID, time.Now(), 30)
	assert.Empty(t, replaced)

	second, replaced := subscribe(t, database, g.ID, m.ID, p.ID, time.Now(), 90)
	assert.Equal(t, []string{first.ID}, replaced)

	var active []string
	require.NoError(t, database.Select(&active,
		`SELECT id FROM subscriptions WHERE member_id = $1 AND status = 'ACTIVE'`, m.ID))
	assert.Equal(t, []string{second.ID}, active)
	assert.Equal(t, second.StartDate.AddDate(0, 0, 90).Unix(), second.EndDate.Unix())
}

func TestSubscriptionRejectsForeignMember_Integration(t *testing.T) {
	database := setupTestDB(t)

	north := createTestGym(t, database, "North", 100)
	south := createTestGym(t, database, "South", 100)
	m := createTestMember(t, database, north.ID, "")
	p := createTestPlan(t, database, south.ID)

	_, _, err := subscription.NewRepository(database).Create(context.Background(), south.ID, &subscription.Subscription{
		ID:            uuid.NewString(),
		MemberID:      m.ID,
		PlanID:        p.ID,
		StartDate:     time.Now(),
		EndDate:       time.Now().AddDate(0, 0, 30),
		Status:        subscription.StatusActive,
		PaymentStatus: subscription.PaymentPending,
	})
	assert.ErrorIs(t, err, subscription.ErrMemberNotFound)
}

func TestPlanDeletionBlockedByActiveSubscription_Integration(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	plans := plan.NewRepository(database)
	subs := subscription.NewRepository(database)

	g := createTestGym(t, database, "North", 100)
	m := createTestMember(t, database, g.ID, "")
	p := createTestPlan(t, database, g.ID)
	sub, _ := subscribe(t, database, g.ID, m.ID, p.ID, time.Now(), 30)

	count, err := plans.CountActiveSubscriptions(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = plans.Deactivate(ctx, p.ID, g.ID)
	assert.ErrorIs(t, err, plan.ErrPlanHasActiveSubscriptions)

	_, err = subs.SetStatus(ctx, sub.ID, g.ID, subscription.StatusCancelled)
	require.NoError(t, err)

	deactivated, err := plans.Deactivate(ctx, p.ID, g.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	list, err := plans.List(ctx, g.ID, false)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestExpireOverdue_Integration(t *testing.T) {
	database := setupTestDB(t)
	subs := subscription.NewRepository(database)

	g := createTestGym(t, database, "North", 100)
	lapsed := createTestMember(t, database, g.ID, "")
	current := createTestMember(t, database, g.ID, "")
	p := createTestPlan(t, database, g.ID)

	old, _ := subscribe(t, database, g.ID, lapsed.ID, p.ID, time.Now().AddDate(0, 0, -40), 30)
	subscribe(t, database, g.ID, current.ID, p.ID, time.Now(), 30)

	expired, err := subs.ExpireOverdue(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, old.ID, expired[0].ID)
	assert.Equal(t, g.ID, expired[0].GymID)
}

func TestCheckInRespectsCapacity_Integration(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	repo := attendance.NewRepository(database)

	g := createTestGym(t, database, "Tiny", 1)
	p := createTestPlan(t, database, g.ID)
	first := createTestMember(t, database, g.ID, "")
	second := createTestMember(t, database, g.ID, "")
	subscribe(t, database, g.ID, first.ID, p.ID, time.Now().Add(-time.Hour), 30)
	subscribe(t, database, g.ID, second.ID, p.ID, time.Now().Add(-time.Hour), 30)

	visit := func(memberID string) (*attendance.Attendance, error) {
		return repo.CheckIn(ctx, &attendance.Attendance{
			ID:       uuid.NewString(),
			GymID:    g.ID,
			MemberID: memberID,
			CheckIn:  time.Now(),
		})
	}

	_, err := visit(first.ID)
	require.NoError(t, err)

	_, err = visit(first.ID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	_, err = visit(second.ID)
	assert.ErrorIs(t, err, attendance.ErrGymFull)

	_, err = repo.CheckOut(ctx, g.ID, first.ID)
	require.NoError(t, err)

	_, err = visit(second.ID)
	assert.NoError(t, err)

	o, err := repo.Occupancy(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, o.Current)
}
