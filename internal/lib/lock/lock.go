// Package lock provides per-key mutual exclusion used as the reservation
// serialization guard.
package lock

import "context"

// Unlock releases a held lock. Calling it more than once is a no-op.
type Unlock func()

type Locker interface {
	// Lock blocks until the key is held or ctx is done. A ctx failure is
	// returned wrapped so callers can test it with errors.Is.
	Lock(ctx context.Context, key string) (Unlock, error)
}

// None performs no locking; the store's conditional updates are the only guard.
type None struct{}

func (None) Lock(ctx context.Context, _ string) (Unlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return func() {}, nil
}
