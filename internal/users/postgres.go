package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies it
// in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository reads users from the relational database.
type PostgresRepository struct {
	db          DB
	fileBaseURL string
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool, fileBaseURL string) *PostgresRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{db: pool, fileBaseURL: fileBaseURL}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(db DB, fileBaseURL string) *PostgresRepository {
	return &PostgresRepository{db: db, fileBaseURL: fileBaseURL}
}

// GetByID fetches a user with its avatar reference.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.provider, u.created_at, f.id, f.path
		FROM users u
		LEFT JOIN files f ON f.id = u.avatar_id
		WHERE u.id = $1
	`
	var (
		u          User
		avatarID   *uuid.UUID
		avatarPath *string
	)
	row := r.db.QueryRow(ctx, query, id)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Provider, &u.CreatedAt, &avatarID, &avatarPath); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	u.Avatar = r.avatar(avatarID, avatarPath)
	return &u, nil
}

// ListProviders returns all provider-flagged users ordered by name.
func (r *PostgresRepository) ListProviders(ctx context.Context) ([]*User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.provider, u.created_at, f.id, f.path
		FROM users u
		LEFT JOIN files f ON f.id = u.avatar_id
		WHERE u.provider = TRUE
		ORDER BY u.name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("users: list providers failed: %w", err)
	}
	defer rows.Close()

	providers := make([]*User, 0)
	for rows.Next() {
		var (
			u          User
			avatarID   *uuid.UUID
			avatarPath *string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Provider, &u.CreatedAt, &avatarID, &avatarPath); err != nil {
			return nil, fmt.Errorf("users: scan provider failed: %w", err)
		}
		u.Avatar = r.avatar(avatarID, avatarPath)
		providers = append(providers, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: list providers failed: %w", err)
	}
	return providers, nil
}

func (r *PostgresRepository) avatar(id *uuid.UUID, path *string) *Avatar {
	if id == nil || path == nil {
		return nil
	}
	return &Avatar{
		ID:   *id,
		Path: *path,
		URL:  strings.TrimSuffix(r.fileBaseURL, "/") + "/files/" + *path,
	}
}

var _ Repository = (*PostgresRepository)(nil)
