package gym

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gymCols = []string{"id", "name", "email", "phone", "address", "logo", "max_capacity", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (Repository, *sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dbx := sqlx.NewDb(db, "sqlmock")
	return NewRepository(dbx), dbx, mock
}

func TestInsertGym(t *testing.T) {
	_, dbx, mock := newMockRepo(t)
	now := time.Now()
	phone := "555-0100"

	mock.ExpectQuery(`INSERT INTO gyms`).
		WithArgs("g-1", "Iron Temple", "hello@iron.test", phone, nil, 100).
		WillReturnRows(sqlmock.NewRows(gymCols).
			AddRow("g-1", "Iron Temple", "hello@iron.test", phone, nil, nil, 100, now, now))

	gym, err := InsertGym(context.Background(), dbx, &Gym{
		ID: "g-1", Name: "Iron Temple", Email: "hello@iron.test", Phone: &phone, MaxCapacity: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "g-1", gym.ID)
	assert.Equal(t, "555-0100", *gym.Phone)
	assert.Nil(t, gym.Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertGymDuplicateEmail(t *testing.T) {
	_, dbx, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO gyms`).
		WillReturnError(&pq.Error{Code: "23505"})

	gym, err := InsertGym(context.Background(), dbx, &Gym{ID: "g-1", Name: "A", Email: "a@a.test", MaxCapacity: 1})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Nil(t, gym)
}

func TestGetGymByID(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM gyms WHERE id = \$1`).
		WithArgs("g-1").
		WillReturnRows(sqlmock.NewRows(gymCols).
			AddRow("g-1", "Iron Temple", "hello@iron.test", nil, nil, nil, 80, now, now))

	gym, err := repo.GetGymByID(context.Background(), "g-1")
	require.NoError(t, err)
	assert.Equal(t, 80, gym.MaxCapacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGymByIDNotFound(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .* FROM gyms WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	gym, err := repo.GetGymByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrGymNotFound)
	assert.Nil(t, gym)
}

func TestGetGymDetail(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	now := time.Now()

	cols := append(append([]string{}, gymCols...), "user_count", "active_member_count", "active_plan_count")
	mock.ExpectQuery(`SELECT g.id, .* FROM gyms g WHERE g.id = \$1`).
		WithArgs("g-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("g-1", "Iron Temple", "hello@iron.test", nil, nil, nil, 80, now, now, 2, 40, 3))

	detail, err := repo.GetGymDetail(context.Background(), "g-1")
	require.NoError(t, err)
	assert.Equal(t, "Iron Temple", detail.Name)
	assert.Equal(t, 2, detail.UserCount)
	assert.Equal(t, 40, detail.ActiveMemberCount)
	assert.Equal(t, 3, detail.ActivePlanCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailExists(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("taken@iron.test", "g-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), "taken@iron.test", "g-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateGym(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	now := time.Now()
	name := "Iron Temple II"
	capacity := 120

	mock.ExpectQuery(`UPDATE gyms SET`).
		WithArgs("g-1", name, nil, nil, nil, nil, capacity).
		WillReturnRows(sqlmock.NewRows(gymCols).
			AddRow("g-1", name, "hello@iron.test", nil, nil, nil, capacity, now, now))

	gym, err := repo.UpdateGym(context.Background(), "g-1", UpdateGymRequest{Name: &name, MaxCapacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, name, gym.Name)
	assert.Equal(t, 120, gym.MaxCapacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateGymErrors(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{"not found", sql.ErrNoRows, ErrGymNotFound},
		{"duplicate email", &pq.Error{Code: "23505"}, ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, mock := newMockRepo(t)
			mock.ExpectQuery(`UPDATE gyms SET`).WillReturnError(tt.dbErr)

			gym, err := repo.UpdateGym(context.Background(), "g-1", UpdateGymRequest{})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, gym)
		})
	}

	t.Run("unexpected error is wrapped", func(t *testing.T) {
		repo, _, mock := newMockRepo(t)
		boom := errors.New("connection reset")
		mock.ExpectQuery(`UPDATE gyms SET`).WillReturnError(boom)

		_, err := repo.UpdateGym(context.Background(), "g-1", UpdateGymRequest{})
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "update gym")
	})
}

func TestGetStats(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	since := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* AS total_members`).
		WithArgs("g-1", since).
		WillReturnRows(sqlmock.NewRows([]string{
			"total_members", "active_members", "total_users", "total_plans", "active_subscriptions", "paid_this_month",
		}).AddRow(50, 42, 3, 4, 39, 12))

	stats, err := repo.GetStats(context.Background(), "g-1", since)
	require.NoError(t, err)
	assert.Equal(t, &Stats{
		TotalMembers:        50,
		ActiveMembers:       42,
		TotalUsers:          3,
		TotalPlans:          4,
		ActiveSubscriptions: 39,
		PaidThisMonth:       12,
	}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}
