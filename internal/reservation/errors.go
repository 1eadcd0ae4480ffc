package reservation

import "errors"

// Business outcomes. These are terminal for the request and are not retried.
var (
	ErrNotFound          = errors.New("event not found")
	ErrSoldOut           = errors.New("tickets sold out")
	ErrNoSuchReservation = errors.New("no reservation for this event")
	ErrAlreadyReserved   = errors.New("event already reserved by this user")
	ErrUnknownUser       = errors.New("user does not exist")
)

// Infrastructure failures. Callers may retry these.
var (
	ErrStorage = errors.New("storage failure")
	ErrTimeout = errors.New("reservation timed out")
)

// outcome labels the error for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSoldOut):
		return "sold_out"
	case errors.Is(err, ErrNoSuchReservation):
		return "no_such_reservation"
	case errors.Is(err, ErrAlreadyReserved):
		return "already_reserved"
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "storage_error"
	}
}

func isBusiness(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSoldOut) ||
		errors.Is(err, ErrNoSuchReservation) ||
		errors.Is(err, ErrAlreadyReserved) ||
		errors.Is(err, ErrUnknownUser)
}
