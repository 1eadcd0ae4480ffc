package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ticketBooker/internal/config"
)

//go:embed schema.sql
var schema string

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"

	constraintUsername       = "users_username_key"
	constraintUserEvent      = "reservations_user_event_key"
	constraintReservationFK  = "reservations_event_fk"
	constraintReservationUFK = "reservations_user_fk"
)

type Storage struct {
	DB           *sql.DB
	queryTimeout time.Duration
}

func InitDB(dbCfg *config.Database, queryTimeout time.Duration) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.DBName,
		dbCfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	db.SetMaxOpenConns(dbCfg.MaxOpenConns)
	db.SetMaxIdleConns(dbCfg.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return New(db, queryTimeout), nil
}

// New wraps an open connection pool. Every store call is bounded by queryTimeout.
func New(db *sql.DB, queryTimeout time.Duration) *Storage {
	return &Storage{DB: db, queryTimeout: queryTimeout}
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

// Migrate creates the schema if it is missing.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.queryTimeout)
}

func pqError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}

	return nil, false
}

func isViolation(err error, code, constraint string) bool {
	pqErr, ok := pqError(err)
	return ok && string(pqErr.Code) == code && pqErr.Constraint == constraint
}
