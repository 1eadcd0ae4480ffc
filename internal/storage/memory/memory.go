// Package memory is an in-process inventory store with the same contract as
// the Postgres store. State is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ticketBooker/internal/models"
	"ticketBooker/internal/storage"
)

type reservationKey struct {
	userID  int64
	eventID int64
}

type Storage struct {
	mu sync.RWMutex

	now func() time.Time

	events       map[int64]models.Event
	users        map[int64]models.User
	reservations map[reservationKey]models.Reservation

	nextEventID       int64
	nextUserID        int64
	nextReservationID int64
}

func New() *Storage {
	return &Storage{
		now:          func() time.Time { return time.Now().UTC() },
		events:       make(map[int64]models.Event),
		users:        make(map[int64]models.User),
		reservations: make(map[reservationKey]models.Reservation),
	}
}

func (s *Storage) Close() error {
	return nil
}

func (s *Storage) CreateEvent(ctx context.Context, name string, capacity int) (int64, error) {
	const op = "storage.memory.CreateEvent"

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if capacity < 0 {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrInvalidCapacity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	s.events[s.nextEventID] = models.Event{
		ID:          s.nextEventID,
		Name:        name,
		Capacity:    capacity,
		TicketsLeft: capacity,
		CreatedAt:   s.now(),
	}

	return s.nextEventID, nil
}

func (s *Storage) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	if err := ctx.Err(); err != nil {
		return models.Event{}, fmt.Errorf("storage.memory.GetEvent: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return models.Event{}, storage.ErrEventNotFound
	}

	return event, nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("storage.memory.ListEvents: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })

	return events, nil
}

// UpdateEvent renames the event and/or sets a new capacity, recomputing
// tickets_left from the reservations currently held.
func (s *Storage) UpdateEvent(ctx context.Context, id int64, name *string, capacity *int) (models.Event, error) {
	const op = "storage.memory.UpdateEvent"

	if err := ctx.Err(); err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	if capacity != nil && *capacity < 0 {
		return models.Event{}, fmt.Errorf("%s: %w", op, storage.ErrInvalidCapacity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return models.Event{}, storage.ErrEventNotFound
	}

	if capacity != nil {
		reserved := 0
		for key := range s.reservations {
			if key.eventID == id {
				reserved++
			}
		}
		if *capacity < reserved {
			return models.Event{}, fmt.Errorf("%s: %w", op, storage.ErrCapacityTooLow)
		}

		event.Capacity = *capacity
		event.TicketsLeft = *capacity - reserved
	}
	if name != nil {
		event.Name = *name
	}

	s.events[id] = event

	return event, nil
}

func (s *Storage) DeleteEvent(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("storage.memory.DeleteEvent: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return storage.ErrEventNotFound
	}

	for key := range s.reservations {
		if key.eventID == id {
			delete(s.reservations, key)
		}
	}
	delete(s.events, id)

	return nil
}

func (s *Storage) ListEventReservations(ctx context.Context, eventID int64) ([]models.EventReservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("storage.memory.ListEventReservations: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.EventReservation, 0)
	for key, r := range s.reservations {
		if key.eventID != eventID {
			continue
		}
		out = append(out, models.EventReservation{
			ReservationID: r.ID,
			UserID:        r.UserID,
			Username:      s.users[r.UserID].Username,
			CreatedAt:     r.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservationID < out[j].ReservationID })

	return out, nil
}

func (s *Storage) AuditInventory(ctx context.Context) ([]models.InventoryDrift, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("storage.memory.AuditInventory: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int, len(s.events))
	for key := range s.reservations {
		counts[key.eventID]++
	}

	var drifts []models.InventoryDrift
	for id, e := range s.events {
		if e.Capacity-e.TicketsLeft != counts[id] {
			drifts = append(drifts, models.InventoryDrift{
				EventID:      id,
				Capacity:     e.Capacity,
				TicketsLeft:  e.TicketsLeft,
				Reservations: counts[id],
			})
		}
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].EventID < drifts[j].EventID })

	return drifts, nil
}

func (s *Storage) HasReservation(ctx context.Context, userID, eventID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("storage.memory.HasReservation: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.reservations[reservationKey{userID: userID, eventID: eventID}]

	return ok, nil
}

func (s *Storage) CreateReservation(ctx context.Context, userID, eventID int64) (models.Reservation, int, error) {
	if err := ctx.Err(); err != nil {
		return models.Reservation{}, 0, fmt.Errorf("storage.memory.CreateReservation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return models.Reservation{}, 0, storage.ErrEventNotFound
	}
	if _, ok = s.users[userID]; !ok {
		return models.Reservation{}, 0, storage.ErrUserNotFound
	}

	key := reservationKey{userID: userID, eventID: eventID}
	if _, ok = s.reservations[key]; ok {
		return models.Reservation{}, 0, storage.ErrReservationExists
	}
	if event.TicketsLeft <= 0 {
		return models.Reservation{}, 0, storage.ErrNoTicketsLeft
	}

	s.nextReservationID++
	reservation := models.Reservation{
		ID:        s.nextReservationID,
		UserID:    userID,
		EventID:   eventID,
		CreatedAt: s.now(),
	}

	event.TicketsLeft--
	s.events[eventID] = event
	s.reservations[key] = reservation

	return reservation, event.TicketsLeft, nil
}

func (s *Storage) DeleteReservation(ctx context.Context, userID, eventID int64) (int64, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, fmt.Errorf("storage.memory.DeleteReservation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := reservationKey{userID: userID, eventID: eventID}
	if _, ok := s.reservations[key]; !ok {
		return 0, 0, nil
	}

	event, ok := s.events[eventID]
	if !ok {
		return 0, 0, storage.ErrEventNotFound
	}

	delete(s.reservations, key)
	event.TicketsLeft = min(event.Capacity, event.TicketsLeft+1)
	s.events[eventID] = event

	return 1, event.TicketsLeft, nil
}

func (s *Storage) ListUserReservations(ctx context.Context, userID int64) ([]models.UserReservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("storage.memory.ListUserReservations: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.UserReservation, 0)
	for key, r := range s.reservations {
		if key.userID != userID {
			continue
		}
		out = append(out, models.UserReservation{
			ReservationID: r.ID,
			EventID:       r.EventID,
			EventName:     s.events[r.EventID].Name,
			CreatedAt:     r.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservationID < out[j].ReservationID })

	return out, nil
}

func (s *Storage) CreateUser(ctx context.Context, username, passwordHash string, isAdmin bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("storage.memory.CreateUser: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return 0, storage.ErrUserExists
		}
	}

	s.nextUserID++
	s.users[s.nextUserID] = models.User{
		ID:           s.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    s.now(),
	}

	return s.nextUserID, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, fmt.Errorf("storage.memory.GetUserByUsername: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("storage.memory.ListUsers: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		u.PasswordHash = ""
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

// DeleteUser drops the user's reservations, returning each unit to its event.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("storage.memory.DeleteUser: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return storage.ErrUserNotFound
	}

	for key := range s.reservations {
		if key.userID != id {
			continue
		}
		delete(s.reservations, key)
		if event, ok := s.events[key.eventID]; ok {
			event.TicketsLeft = min(event.Capacity, event.TicketsLeft+1)
			s.events[key.eventID] = event
		}
	}
	delete(s.users, id)

	return nil
}
