package storage

import "errors"

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrReservationExists = errors.New("reservation already exists")
	ErrNoTicketsLeft     = errors.New("no tickets left")
	ErrInvalidCapacity   = errors.New("invalid capacity")
	ErrCapacityTooLow    = errors.New("capacity below reserved tickets")
)
