// Package audit periodically checks that every event's sold units match its
// reservation rows.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/lib/metrics"
	"ticketBooker/internal/models"
)

type Auditor interface {
	AuditInventory(ctx context.Context) ([]models.InventoryDrift, error)
}

type Job struct {
	log     *slog.Logger
	auditor Auditor
	timeout time.Duration
}

func New(log *slog.Logger, auditor Auditor, timeout time.Duration) *Job {
	return &Job{
		log:     log.With(slog.String("component", "jobs/audit")),
		auditor: auditor,
		timeout: timeout,
	}
}

// Run performs one audit and returns the number of drifted events.
func (j *Job) Run(ctx context.Context) (int, error) {
	const op = "jobs.audit.Run"

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	drifts, err := j.auditor.AuditInventory(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, d := range drifts {
		j.log.Warn("inventory drift",
			slog.Int64("event_id", d.EventID),
			slog.Int("capacity", d.Capacity),
			slog.Int("tickets_left", d.TicketsLeft),
			slog.Int("reservations", d.Reservations),
		)
	}
	metrics.SetInventoryDrift(len(drifts))

	return len(drifts), nil
}

// Schedule registers the audit on a new scheduler. The caller starts and
// shuts it down.
func (j *Job) Schedule(interval time.Duration) (gocron.Scheduler, error) {
	const op = "jobs.audit.Schedule"

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := j.Run(context.Background()); err != nil {
				j.log.Error("inventory audit failed", sl.Err(err))
			}
		}),
		gocron.WithName("inventory-audit"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sched, nil
}
