// Package reservation enforces the ticket inventory invariant: for every
// event 0 <= tickets_left <= capacity, and reservations never outnumber the
// capacity. Reserve and Cancel on the same event are serialized by a
// per-event lock; the store's conditional updates keep the invariant even
// without one.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"ticketBooker/internal/lib/lock"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/lib/metrics"
	"ticketBooker/internal/models"
	"ticketBooker/internal/storage"
)

// Store is the inventory the engine coordinates. CreateReservation and
// DeleteReservation must each be atomic with their ticket count update.
type Store interface {
	GetEvent(ctx context.Context, id int64) (models.Event, error)
	HasReservation(ctx context.Context, userID, eventID int64) (bool, error)
	CreateReservation(ctx context.Context, userID, eventID int64) (models.Reservation, int, error)
	DeleteReservation(ctx context.Context, userID, eventID int64) (int64, int, error)
}

const defaultOpTimeout = 2 * time.Second

type Engine struct {
	log     *slog.Logger
	store   Store
	locker  lock.Locker
	timeout time.Duration
}

type Option func(*Engine)

// WithTimeout bounds each Reserve/Cancel, guard wait included.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func New(log *slog.Logger, store Store, locker lock.Locker, opts ...Option) *Engine {
	if locker == nil {
		locker = lock.None{}
	}

	e := &Engine{
		log:     log,
		store:   store,
		locker:  locker,
		timeout: defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

type ReserveResult struct {
	Reservation models.Reservation
	TicketsLeft int
}

type CancelResult struct {
	Cancelled   int64
	TicketsLeft int
}

// Reserve takes one ticket unit of the event for the caller.
func (e *Engine) Reserve(ctx context.Context, who models.Identity, eventID int64) (ReserveResult, error) {
	const op = "reservation.Engine.Reserve"

	log := e.log.With(
		slog.String("op", op),
		slog.Int64("user_id", who.UserID),
		slog.Int64("event_id", eventID),
	)

	res, err := e.reserve(ctx, who, eventID)
	e.report(log, "reserve", err)
	if err == nil {
		log.Info("ticket reserved", slog.Int("tickets_left", res.TicketsLeft))
	}

	return res, err
}

func (e *Engine) reserve(ctx context.Context, who models.Identity, eventID int64) (ReserveResult, error) {
	if who.UserID <= 0 {
		return ReserveResult{}, ErrUnknownUser
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	unlock, err := e.acquire(ctx, "reserve", eventID)
	if err != nil {
		return ReserveResult{}, err
	}
	defer unlock()

	event, err := e.store.GetEvent(ctx, eventID)
	if err != nil {
		return ReserveResult{}, mapStoreErr(ctx, err)
	}
	if event.TicketsLeft <= 0 {
		return ReserveResult{}, ErrSoldOut
	}

	held, err := e.store.HasReservation(ctx, who.UserID, eventID)
	if err != nil {
		return ReserveResult{}, mapStoreErr(ctx, err)
	}
	if held {
		return ReserveResult{}, ErrAlreadyReserved
	}

	reservation, ticketsLeft, err := e.store.CreateReservation(ctx, who.UserID, eventID)
	if err != nil {
		return ReserveResult{}, mapStoreErr(ctx, err)
	}

	return ReserveResult{Reservation: reservation, TicketsLeft: ticketsLeft}, nil
}

// Cancel drops the caller's reservation for the event and returns its unit
// to the pool.
func (e *Engine) Cancel(ctx context.Context, who models.Identity, eventID int64) (CancelResult, error) {
	const op = "reservation.Engine.Cancel"

	log := e.log.With(
		slog.String("op", op),
		slog.Int64("user_id", who.UserID),
		slog.Int64("event_id", eventID),
	)

	res, err := e.cancel(ctx, who, eventID)
	e.report(log, "cancel", err)
	if err == nil {
		log.Info("reservation cancelled",
			slog.Int64("cancelled", res.Cancelled),
			slog.Int("tickets_left", res.TicketsLeft),
		)
	}

	return res, err
}

func (e *Engine) cancel(ctx context.Context, who models.Identity, eventID int64) (CancelResult, error) {
	if who.UserID <= 0 {
		return CancelResult{}, ErrUnknownUser
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	unlock, err := e.acquire(ctx, "cancel", eventID)
	if err != nil {
		return CancelResult{}, err
	}
	defer unlock()

	removed, ticketsLeft, err := e.store.DeleteReservation(ctx, who.UserID, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrEventNotFound) {
			return CancelResult{}, ErrNoSuchReservation
		}
		return CancelResult{}, mapStoreErr(ctx, err)
	}
	if removed == 0 {
		return CancelResult{}, ErrNoSuchReservation
	}

	return CancelResult{Cancelled: removed, TicketsLeft: ticketsLeft}, nil
}

func (e *Engine) acquire(ctx context.Context, operation string, eventID int64) (lock.Unlock, error) {
	start := time.Now()
	unlock, err := e.locker.Lock(ctx, strconv.FormatInt(eventID, 10))
	metrics.TrackGuardWait(operation, time.Since(start))

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return unlock, nil
}

// report logs failures at a level matching their kind and counts the outcome.
// Business rejections are not faults and never reach the error level.
func (e *Engine) report(log *slog.Logger, operation string, err error) {
	metrics.TrackOperation(operation, outcome(err))

	switch {
	case err == nil:
	case isBusiness(err):
		log.Info("request rejected", slog.String("reason", err.Error()))
	case errors.Is(err, ErrTimeout):
		log.Warn("request timed out", sl.Err(err))
	default:
		log.Error("storage failure", sl.Err(err))
	}
}

// mapStoreErr turns store errors into engine errors. A caller that went away
// or ran out of time is a timeout, not a storage fault. Drivers do not always
// surface the context error, so a done ctx counts as well.
func mapStoreErr(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, storage.ErrEventNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrNoTicketsLeft):
		return ErrSoldOut
	case errors.Is(err, storage.ErrReservationExists):
		return ErrAlreadyReserved
	case errors.Is(err, storage.ErrUserNotFound):
		return ErrUnknownUser
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
}
