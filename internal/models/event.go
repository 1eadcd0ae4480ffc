package models

import "time"

type Event struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	TicketsLeft int       `json:"tickets_left"`
	CreatedAt   time.Time `json:"created_at"`
}
