package models

import "time"

type Reservation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	EventID   int64     `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EventReservation is a reservation joined with the reserving user's name.
type EventReservation struct {
	ReservationID int64     `json:"reservation_id"`
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserReservation is a reservation joined with the reserved event's name.
type UserReservation struct {
	ReservationID int64     `json:"reservation_id"`
	EventID       int64     `json:"event_id"`
	EventName     string    `json:"event_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// InventoryDrift reports an event whose sold units disagree with its reservation rows.
type InventoryDrift struct {
	EventID      int64 `json:"event_id"`
	Capacity     int   `json:"capacity"`
	TicketsLeft  int   `json:"tickets_left"`
	Reservations int   `json:"reservations"`
}
