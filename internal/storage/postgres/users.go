package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ticketBooker/internal/models"
	"ticketBooker/internal/storage"
)

func (s *Storage) CreateUser(ctx context.Context, username, passwordHash string, isAdmin bool) (int64, error) {
	const op = "storage.postgres.CreateUser"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (username, password_hash, is_admin)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id int64
	if err := s.DB.QueryRowContext(ctx, query, username, passwordHash, isAdmin).Scan(&id); err != nil {
		if isViolation(err, codeUniqueViolation, constraintUsername) {
			return 0, storage.ErrUserExists
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	const op = "storage.postgres.GetUserByUsername"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, username, password_hash, is_admin, created_at
		FROM users
		WHERE username = $1`

	var user models.User
	err := s.DB.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage.postgres.ListUsers"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, username, is_admin, created_at
		FROM users
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err = rows.Scan(&u.ID, &u.Username, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan user: %w", op, err)
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// DeleteUser removes the user together with their reservations and returns
// the freed units to each event, clamped to capacity. The user row is locked
// first so no reservation for this user can be inserted meanwhile.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteUser"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var locked int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrUserNotFound
		}
		return fmt.Errorf("%s: lock user: %w", op, err)
	}

	releaseQuery := `
		WITH removed AS (
			DELETE FROM reservations
			WHERE user_id = $1
			RETURNING event_id
		), freed AS (
			SELECT event_id, COUNT(*) AS units
			FROM removed
			GROUP BY event_id
		)
		UPDATE events e
		SET tickets_left = LEAST(e.capacity, e.tickets_left + freed.units)
		FROM freed
		WHERE e.id = freed.event_id`

	if _, err = tx.ExecContext(ctx, releaseQuery, id); err != nil {
		return fmt.Errorf("%s: release reservations: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: delete user: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}
