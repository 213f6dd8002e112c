package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies it
// in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores appointments in the relational database. The
// partial unique index on (provider_id, date) for active rows is the
// authoritative double-booking guard; Insert translates its violation to
// ErrSlotTaken.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("scheduling: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const appointmentColumns = `id, user_id, provider_id, date, canceled_at, created_at`

func (r *PostgresRepository) FindActiveByProviderAndDate(ctx context.Context, providerID uuid.UUID, date time.Time) (*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE provider_id = $1 AND date = $2 AND canceled_at IS NULL
	`
	a, err := scanAppointment(r.db.QueryRow(ctx, query, providerID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scheduling: select by provider and date failed: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) FindActiveInRange(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE provider_id = $1 AND canceled_at IS NULL AND date BETWEEN $2 AND $3
		ORDER BY date
	`
	rows, err := r.db.Query(ctx, query, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("scheduling: select range failed: %w", err)
	}
	return collectAppointments(rows)
}

func (r *PostgresRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE user_id = $1 AND canceled_at IS NULL
		ORDER BY date
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("scheduling: list by user failed: %w", err)
	}
	return collectAppointments(rows)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1
	`
	a, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("scheduling: select by id failed: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	query := `
		INSERT INTO appointments (id, user_id, provider_id, date)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, a.ID, a.UserID, a.ProviderID, a.Date).Scan(&a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("scheduling: insert failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Save(ctx context.Context, a *Appointment) error {
	query := `
		UPDATE appointments SET canceled_at = $2 WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, a.ID, a.CanceledAt)
	if err != nil {
		return fmt.Errorf("scheduling: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(&a.ID, &a.UserID, &a.ProviderID, &a.Date, &a.CanceledAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	appointments := make([]*Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scheduling: scan failed: %w", err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scheduling: rows failed: %w", err)
	}
	return appointments, nil
}

var _ Repository = (*PostgresRepository)(nil)
