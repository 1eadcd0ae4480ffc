package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ticketBooker/internal/models"
	"ticketBooker/internal/storage"
)

func (s *Storage) CreateEvent(ctx context.Context, name string, capacity int) (int64, error) {
	const op = "storage.postgres.CreateEvent"

	if capacity < 0 {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrInvalidCapacity)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO events (name, capacity, tickets_left)
		VALUES ($1, $2, $2)
		RETURNING id`

	var id int64
	if err := s.DB.QueryRowContext(ctx, query, name, capacity).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	const op = "storage.postgres.GetEvent"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, capacity, tickets_left, created_at
		FROM events
		WHERE id = $1`

	var event models.Event
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Capacity,
		&event.TicketsLeft,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, storage.ErrEventNotFound
		}
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]models.Event, error) {
	const op = "storage.postgres.ListEvents"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, capacity, tickets_left, created_at
		FROM events
		ORDER BY id ASC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var event models.Event
		err = rows.Scan(
			&event.ID,
			&event.Name,
			&event.Capacity,
			&event.TicketsLeft,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: scan event: %w", op, err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// UpdateEvent renames the event, changes its capacity, or both. A new
// capacity recomputes tickets_left from the reservation count while the event
// row is locked, so reservations in flight wait for it.
func (s *Storage) UpdateEvent(ctx context.Context, id int64, name *string, capacity *int) (models.Event, error) {
	const op = "storage.postgres.UpdateEvent"

	if capacity != nil && *capacity < 0 {
		return models.Event{}, fmt.Errorf("%s: %w", op, storage.ErrInvalidCapacity)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	selectQuery := `
		SELECT id, name, capacity, tickets_left, created_at
		FROM events
		WHERE id = $1
		FOR UPDATE`

	var event models.Event
	err = tx.QueryRowContext(ctx, selectQuery, id).Scan(
		&event.ID,
		&event.Name,
		&event.Capacity,
		&event.TicketsLeft,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, storage.ErrEventNotFound
		}
		return models.Event{}, fmt.Errorf("%s: lock event: %w", op, err)
	}

	if name != nil {
		event.Name = *name
	}

	if capacity != nil {
		var reserved int
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE event_id = $1`, id).Scan(&reserved)
		if err != nil {
			return models.Event{}, fmt.Errorf("%s: count reservations: %w", op, err)
		}
		if *capacity < reserved {
			return models.Event{}, fmt.Errorf("%s: %w", op, storage.ErrCapacityTooLow)
		}

		event.Capacity = *capacity
		event.TicketsLeft = *capacity - reserved
	}

	updateQuery := `
		UPDATE events
		SET name = $2, capacity = $3, tickets_left = $4
		WHERE id = $1`

	if _, err = tx.ExecContext(ctx, updateQuery, id, event.Name, event.Capacity, event.TicketsLeft); err != nil {
		return models.Event{}, fmt.Errorf("%s: update event: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return models.Event{}, fmt.Errorf("%s: commit: %w", op, err)
	}

	return event, nil
}

// DeleteEvent removes the event and every reservation held against it.
// Reservations go first so the lock order matches DeleteReservation.
func (s *Storage) DeleteEvent(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteEvent"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM reservations WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("%s: delete reservations: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: delete event: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return storage.ErrEventNotFound
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

func (s *Storage) ListEventReservations(ctx context.Context, eventID int64) ([]models.EventReservation, error) {
	const op = "storage.postgres.ListEventReservations"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT r.id, u.id, u.username, r.created_at
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.created_at ASC, r.id ASC`

	rows, err := s.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	reservations := make([]models.EventReservation, 0)
	for rows.Next() {
		var r models.EventReservation
		if err = rows.Scan(&r.ReservationID, &r.UserID, &r.Username, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan reservation: %w", op, err)
		}
		reservations = append(reservations, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reservations, nil
}

// AuditInventory lists events whose sold units (capacity - tickets_left)
// differ from the number of reservation rows.
func (s *Storage) AuditInventory(ctx context.Context) ([]models.InventoryDrift, error) {
	const op = "storage.postgres.AuditInventory"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT e.id, e.capacity, e.tickets_left, COUNT(r.id)
		FROM events e
		LEFT JOIN reservations r ON r.event_id = e.id
		GROUP BY e.id, e.capacity, e.tickets_left
		HAVING e.capacity - e.tickets_left <> COUNT(r.id)
		ORDER BY e.id ASC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var drifts []models.InventoryDrift
	for rows.Next() {
		var d models.InventoryDrift
		if err = rows.Scan(&d.EventID, &d.Capacity, &d.TicketsLeft, &d.Reservations); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		drifts = append(drifts, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return drifts, nil
}
