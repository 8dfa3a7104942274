package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/gym"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "name", "email", "password_hash", "role", "gym_id", "created_at", "updated_at"}

func setupUserMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCreateWithGym(t *testing.T) {
	repo, mock := setupUserMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO gyms`).
		WithArgs("g-1", "Iron", "iron@gym.test", nil, nil, 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "address", "logo", "max_capacity", "created_at", "updated_at"}).
			AddRow("g-1", "Iron", "iron@gym.test", nil, nil, nil, 100, now, now))
	mock.ExpectQuery(`INSERT INTO gym_users`).
		WithArgs("u-1", "Alice", "alice@gym.test", "hash", RoleOwner, "g-1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "Alice", "alice@gym.test", "hash", RoleOwner, "g-1", now, now))
	mock.ExpectCommit()

	g, u, err := repo.CreateWithGym(context.Background(),
		&gym.Gym{ID: "g-1", Name: "Iron", Email: "iron@gym.test", MaxCapacity: 100},
		&User{ID: "u-1", Name: "Alice", Email: "alice@gym.test", PasswordHash: "hash", Role: RoleOwner},
	)
	require.NoError(t, err)
	assert.Equal(t, "g-1", g.ID)
	assert.Equal(t, "g-1", u.GymID)
	assert.Equal(t, RoleOwner, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithGymRollsBackOnDuplicateUser(t *testing.T) {
	repo, mock := setupUserMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO gyms`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "address", "logo", "max_capacity", "created_at", "updated_at"}).
			AddRow("g-1", "Iron", "iron@gym.test", nil, nil, nil, 100, now, now))
	mock.ExpectQuery(`INSERT INTO gym_users`).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	g, u, err := repo.CreateWithGym(context.Background(),
		&gym.Gym{ID: "g-1", Name: "Iron", Email: "iron@gym.test", MaxCapacity: 100},
		&User{ID: "u-1", Name: "Alice", Email: "alice@gym.test", PasswordHash: "hash", Role: RoleOwner},
	)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Nil(t, g)
	assert.Nil(t, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail(t *testing.T) {
	repo, mock := setupUserMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM gym_users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("alice@gym.test").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "Alice", "alice@gym.test", "hash", RoleAdmin, "g-1", now, now))

	u, err := repo.FindByEmail(context.Background(), "alice@gym.test")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestFindByIDNotFound(t *testing.T) {
	repo, mock := setupUserMock(t)

	mock.ExpectQuery(`SELECT .* FROM gym_users WHERE id = \$1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, u)
}

func TestGetProfile(t *testing.T) {
	repo, mock := setupUserMock(t)
	now := time.Now()

	cols := append(append([]string{}, userCols...), "gym_name")
	mock.ExpectQuery(`FROM gym_users u JOIN gyms g`).
		WithArgs("u-1", "g-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u-1", "Alice", "alice@gym.test", "hash", RoleOwner, "g-1", now, now, "Iron"))

	p, err := repo.GetProfile(context.Background(), "u-1", "g-1")
	require.NoError(t, err)
	assert.Equal(t, "Iron", p.GymName)
	assert.Equal(t, "Alice", p.Name)
}

func TestUserEmailExists(t *testing.T) {
	repo, mock := setupUserMock(t)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM gym_users`).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.EmailExists(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
