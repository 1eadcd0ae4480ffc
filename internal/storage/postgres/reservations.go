package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ticketBooker/internal/models"
	"ticketBooker/internal/storage"
)

func (s *Storage) HasReservation(ctx context.Context, userID, eventID int64) (bool, error) {
	const op = "storage.postgres.HasReservation"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT EXISTS(
			SELECT 1 FROM reservations
			WHERE user_id = $1 AND event_id = $2
		)`

	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userID, eventID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// CreateReservation inserts the reservation row and takes one ticket unit in a
// single transaction. The decrement only applies while tickets_left > 0, so a
// sold-out event rolls the insert back with storage.ErrNoTicketsLeft.
func (s *Storage) CreateReservation(ctx context.Context, userID, eventID int64) (models.Reservation, int, error) {
	const op = "storage.postgres.CreateReservation"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Reservation{}, 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	insertQuery := `
		INSERT INTO reservations (user_id, event_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	reservation := models.Reservation{UserID: userID, EventID: eventID}
	err = tx.QueryRowContext(ctx, insertQuery, userID, eventID).Scan(&reservation.ID, &reservation.CreatedAt)
	if err != nil {
		switch {
		case isViolation(err, codeUniqueViolation, constraintUserEvent):
			return models.Reservation{}, 0, storage.ErrReservationExists
		case isViolation(err, codeForeignKeyViolation, constraintReservationFK):
			return models.Reservation{}, 0, storage.ErrEventNotFound
		case isViolation(err, codeForeignKeyViolation, constraintReservationUFK):
			return models.Reservation{}, 0, storage.ErrUserNotFound
		}
		return models.Reservation{}, 0, fmt.Errorf("%s: insert reservation: %w", op, err)
	}

	decrementQuery := `
		UPDATE events
		SET tickets_left = tickets_left - 1
		WHERE id = $1 AND tickets_left > 0
		RETURNING tickets_left`

	var ticketsLeft int
	err = tx.QueryRowContext(ctx, decrementQuery, eventID).Scan(&ticketsLeft)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Reservation{}, 0, storage.ErrNoTicketsLeft
		}
		return models.Reservation{}, 0, fmt.Errorf("%s: decrement tickets: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return models.Reservation{}, 0, fmt.Errorf("%s: commit: %w", op, err)
	}

	return reservation, ticketsLeft, nil
}

// DeleteReservation removes the (user, event) reservation and gives the freed
// units back in the same transaction, never above capacity. Zero removed rows
// leave the event untouched.
func (s *Storage) DeleteReservation(ctx context.Context, userID, eventID int64) (int64, int, error) {
	const op = "storage.postgres.DeleteReservation"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM reservations WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: delete reservation: %w", op, err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	if removed == 0 {
		return 0, 0, nil
	}

	incrementQuery := `
		UPDATE events
		SET tickets_left = LEAST(capacity, tickets_left + $2)
		WHERE id = $1
		RETURNING tickets_left`

	var ticketsLeft int
	err = tx.QueryRowContext(ctx, incrementQuery, eventID, removed).Scan(&ticketsLeft)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, storage.ErrEventNotFound
		}
		return 0, 0, fmt.Errorf("%s: increment tickets: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("%s: commit: %w", op, err)
	}

	return removed, ticketsLeft, nil
}

func (s *Storage) ListUserReservations(ctx context.Context, userID int64) ([]models.UserReservation, error) {
	const op = "storage.postgres.ListUserReservations"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT r.id, e.id, e.name, r.created_at
		FROM reservations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY r.created_at ASC, r.id ASC`

	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	reservations := make([]models.UserReservation, 0)
	for rows.Next() {
		var r models.UserReservation
		if err = rows.Scan(&r.ReservationID, &r.EventID, &r.EventName, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan reservation: %w", op, err)
		}
		reservations = append(reservations, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reservations, nil
}
