package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userCols = "u.id, u.name, u.email, u.provider, u.created_at"

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepositoryWithDB(mock, "https://api.example.com"), mock
}

func TestPostgresGetByIDBuildsAvatarURL(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()
	avatarID := uuid.New()
	avatarPath := "4f1a-profile.png"
	createdAt := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "name", "email", "provider", "created_at", "f.id", "f.path"}).
		AddRow(userID, "Diego Fernandes", "diego@example.com", true, createdAt, &avatarID, &avatarPath)

	mock.ExpectQuery("SELECT " + userCols).
		WithArgs(userID).
		WillReturnRows(rows)

	u, err := repo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, u.Provider)
	require.NotNil(t, u.Avatar)
	assert.Equal(t, avatarID, u.Avatar.ID)
	assert.Equal(t, "https://api.example.com/files/4f1a-profile.png", u.Avatar.URL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByIDWithoutAvatar(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	rows := pgxmock.NewRows([]string{"id", "name", "email", "provider", "created_at", "f.id", "f.path"}).
		AddRow(userID, "Cleiton Souza", "cleiton@example.com", false,
			time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), (*uuid.UUID)(nil), (*string)(nil))

	mock.ExpectQuery("SELECT " + userCols).
		WithArgs(userID).
		WillReturnRows(rows)

	u, err := repo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, u.Avatar)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	mock.ExpectQuery("SELECT " + userCols).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), userID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
