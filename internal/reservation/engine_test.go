package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketBooker/internal/lib/lock"
	"ticketBooker/internal/lib/logger/handlers/slogdiscard"
	"ticketBooker/internal/models"
	"ticketBooker/internal/storage/memory"
)

type fixture struct {
	store  *memory.Storage
	engine *Engine
	locker lock.Locker
}

// guards lists every per-event guard the engine can run with.
func guards() map[string]lock.Locker {
	return map[string]lock.Locker{
		"local": lock.NewLocal(),
		"none":  lock.None{},
	}
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()

	return newGuardedFixture(t, lock.NewLocal(), opts...)
}

func newGuardedFixture(t *testing.T, locker lock.Locker, opts ...Option) fixture {
	t.Helper()

	store := memory.New()

	return fixture{
		store:  store,
		engine: New(slogdiscard.NewDiscardLogger(), store, locker, opts...),
		locker: locker,
	}
}

func (f fixture) user(t *testing.T, name string) models.Identity {
	t.Helper()

	id, err := f.store.CreateUser(context.Background(), name, "hash", false)
	require.NoError(t, err)

	return models.Identity{UserID: id, Username: name}
}

func (f fixture) event(t *testing.T, name string, capacity int) int64 {
	t.Helper()

	id, err := f.store.CreateEvent(context.Background(), name, capacity)
	require.NoError(t, err)

	return id
}

func (f fixture) ticketsLeft(t *testing.T, eventID int64) int {
	t.Helper()

	event, err := f.store.GetEvent(context.Background(), eventID)
	require.NoError(t, err)

	return event.TicketsLeft
}

func TestConcertScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	concert := f.event(t, "Concert", 2)
	a, b, c := f.user(t, "A"), f.user(t, "B"), f.user(t, "C")

	res, err := f.engine.Reserve(ctx, a, concert)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TicketsLeft)

	res, err = f.engine.Reserve(ctx, b, concert)
	require.NoError(t, err)
	assert.Equal(t, 0, res.TicketsLeft)

	_, err = f.engine.Reserve(ctx, c, concert)
	assert.ErrorIs(t, err, ErrSoldOut)
	assert.Equal(t, 0, f.ticketsLeft(t, concert))

	cancelled, err := f.engine.Cancel(ctx, a, concert)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cancelled.Cancelled)
	assert.Equal(t, 1, cancelled.TicketsLeft)

	_, err = f.engine.Cancel(ctx, a, concert)
	assert.ErrorIs(t, err, ErrNoSuchReservation)
	assert.Equal(t, 1, f.ticketsLeft(t, concert))
}

func TestConcurrentReserveNeverOversells(t *testing.T) {
	t.Parallel()

	for name, locker := range guards() {
		locker := locker

		t.Run(name, func(t *testing.T) {
			t.Parallel()
			testNeverOversells(t, newGuardedFixture(t, locker))
		})
	}
}

func testNeverOversells(t *testing.T, f fixture) {
	const (
		tickets = 10
		callers = 50
	)

	eventID := f.event(t, "Festival", tickets)

	users := make([]models.Identity, callers)
	for i := range users {
		users[i] = f.user(t, fmt.Sprintf("user-%d", i))
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		soldOut int
		other   []error
	)

	start := make(chan struct{})
	for _, u := range users {
		wg.Add(1)
		go func(who models.Identity) {
			defer wg.Done()
			<-start

			_, err := f.engine.Reserve(context.Background(), who, eventID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrSoldOut):
				soldOut++
			default:
				other = append(other, err)
			}
		}(u)
	}
	close(start)
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, tickets, ok)
	assert.Equal(t, callers-tickets, soldOut)
	assert.Equal(t, 0, f.ticketsLeft(t, eventID))
	if local, isLocal := f.locker.(*lock.Local); isLocal {
		assert.Zero(t, local.Len())
	}

	drifts, err := f.store.AuditInventory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestConcurrentReserveAndCancel(t *testing.T) {
	t.Parallel()

	for name, locker := range guards() {
		locker := locker

		t.Run(name, func(t *testing.T) {
			t.Parallel()
			testReserveAndCancel(t, newGuardedFixture(t, locker))
		})
	}
}

func testReserveAndCancel(t *testing.T, f fixture) {
	const capacity = 3

	eventID := f.event(t, "Play", capacity)

	users := make([]models.Identity, 20)
	for i := range users {
		users[i] = f.user(t, fmt.Sprintf("user-%d", i))
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(who models.Identity) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				if _, err := f.engine.Reserve(context.Background(), who, eventID); err == nil {
					_, err = f.engine.Cancel(context.Background(), who, eventID)
					assert.NoError(t, err)
				}
			}
		}(u)
	}
	wg.Wait()

	assert.Equal(t, capacity, f.ticketsLeft(t, eventID))

	drifts, err := f.store.AuditInventory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestReserveThenCancelRestores(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	eventID := f.event(t, "Opera", 5)
	who := f.user(t, "alice")

	_, err := f.engine.Reserve(ctx, who, eventID)
	require.NoError(t, err)
	assert.Equal(t, 4, f.ticketsLeft(t, eventID))

	_, err = f.engine.Cancel(ctx, who, eventID)
	require.NoError(t, err)
	assert.Equal(t, 5, f.ticketsLeft(t, eventID))
}

func TestReserveErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		prepare func(t *testing.T, f fixture) (models.Identity, int64)
		wantErr error
	}{
		{
			name: "sold out at zero",
			prepare: func(t *testing.T, f fixture) (models.Identity, int64) {
				return f.user(t, "alice"), f.event(t, "Empty", 0)
			},
			wantErr: ErrSoldOut,
		},
		{
			name: "unknown event",
			prepare: func(t *testing.T, f fixture) (models.Identity, int64) {
				return f.user(t, "alice"), 404
			},
			wantErr: ErrNotFound,
		},
		{
			name: "already reserved",
			prepare: func(t *testing.T, f fixture) (models.Identity, int64) {
				who, eventID := f.user(t, "alice"), f.event(t, "Concert", 2)
				_, err := f.engine.Reserve(context.Background(), who, eventID)
				require.NoError(t, err)
				return who, eventID
			},
			wantErr: ErrAlreadyReserved,
		},
		{
			name: "anonymous caller",
			prepare: func(t *testing.T, f fixture) (models.Identity, int64) {
				return models.Identity{}, f.event(t, "Concert", 2)
			},
			wantErr: ErrUnknownUser,
		},
		{
			name: "deleted user",
			prepare: func(t *testing.T, f fixture) (models.Identity, int64) {
				return models.Identity{UserID: 77, Username: "ghost"}, f.event(t, "Concert", 2)
			},
			wantErr: ErrUnknownUser,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			who, eventID := tc.prepare(t, f)

			before, err := f.store.ListEvents(context.Background())
			require.NoError(t, err)

			_, err = f.engine.Reserve(context.Background(), who, eventID)
			require.ErrorIs(t, err, tc.wantErr)

			after, err := f.store.ListEvents(context.Background())
			require.NoError(t, err)
			assert.Equal(t, before, after, "a rejected reserve must not change inventory")
		})
	}
}

func TestCancelWithoutReservation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	eventID := f.event(t, "Concert", 2)

	_, err := f.engine.Cancel(context.Background(), f.user(t, "alice"), eventID)
	assert.ErrorIs(t, err, ErrNoSuchReservation)

	_, err = f.engine.Cancel(context.Background(), f.user(t, "bob"), 404)
	assert.ErrorIs(t, err, ErrNoSuchReservation)

	assert.Equal(t, 2, f.ticketsLeft(t, eventID))
}

func TestReserveTimesOutWhileGuardHeld(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithTimeout(30*time.Millisecond))
	eventID := f.event(t, "Concert", 2)
	who := f.user(t, "alice")

	unlock, err := f.locker.Lock(context.Background(), fmt.Sprint(eventID))
	require.NoError(t, err)

	_, err = f.engine.Reserve(context.Background(), who, eventID)
	assert.ErrorIs(t, err, ErrTimeout)

	_, err = f.engine.Cancel(context.Background(), who, eventID)
	assert.ErrorIs(t, err, ErrTimeout)

	unlock()

	assert.Equal(t, 2, f.ticketsLeft(t, eventID))

	_, err = f.engine.Reserve(context.Background(), who, eventID)
	assert.NoError(t, err)
}

type brokenStore struct {
	err error
}

func (b brokenStore) GetEvent(context.Context, int64) (models.Event, error) {
	return models.Event{ID: 1, Capacity: 1, TicketsLeft: 1}, nil
}

func (b brokenStore) HasReservation(context.Context, int64, int64) (bool, error) {
	return false, nil
}

func (b brokenStore) CreateReservation(context.Context, int64, int64) (models.Reservation, int, error) {
	return models.Reservation{}, 0, b.err
}

func (b brokenStore) DeleteReservation(context.Context, int64, int64) (int64, int, error) {
	return 0, 0, b.err
}

func TestStoreFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "connection lost", err: errors.New("connection reset by peer"), wantErr: ErrStorage},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), wantErr: ErrTimeout},
		{name: "caller went away", err: fmt.Errorf("query: %w", context.Canceled), wantErr: ErrTimeout},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := New(slogdiscard.NewDiscardLogger(), brokenStore{err: tc.err}, nil)
			who := models.Identity{UserID: 1}

			_, err := e.Reserve(context.Background(), who, 1)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, tc.err)

			_, err = e.Cancel(context.Background(), who, 1)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCancelledCallerIsNotAStorageFault(t *testing.T) {
	t.Parallel()

	for name, locker := range guards() {
		locker := locker

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			store := memory.New()
			e := New(slogdiscard.NewDiscardLogger(), store, locker)

			userID, err := store.CreateUser(context.Background(), "alice", "hash", false)
			require.NoError(t, err)
			eventID, err := store.CreateEvent(context.Background(), "Concert", 1)
			require.NoError(t, err)
			who := models.Identity{UserID: userID}

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			for i := 0; i < 20; i++ {
				_, err = e.Reserve(ctx, who, eventID)
				require.ErrorIs(t, err, ErrTimeout)
				require.NotErrorIs(t, err, ErrStorage)

				_, err = e.Cancel(ctx, who, eventID)
				require.ErrorIs(t, err, ErrTimeout)
				require.NotErrorIs(t, err, ErrStorage)
			}

			event, err := store.GetEvent(context.Background(), eventID)
			require.NoError(t, err)
			assert.Equal(t, 1, event.TicketsLeft)
		})
	}
}

func TestOutcomeLabels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "sold_out", outcome(ErrSoldOut))
	assert.Equal(t, "timeout", outcome(fmt.Errorf("%w: x", ErrTimeout)))
	assert.Equal(t, "storage_error", outcome(fmt.Errorf("%w: x", ErrStorage)))
	assert.True(t, isBusiness(ErrAlreadyReserved))
	assert.False(t, isBusiness(ErrStorage))
}
