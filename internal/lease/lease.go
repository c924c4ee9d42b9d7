// Package lease provides short-lived exclusive leases keyed by string, used to
// allow at most one in-flight checkout per cart.
package lease

import (
	"context"
	"errors"
	"time"
)

// ErrHeld is returned by Acquire when another holder owns the key
var ErrHeld = errors.New("lease already held")

// Release gives the lease back. Releasing after expiry, or after another
// holder has taken the key, is a no-op.
type Release func(ctx context.Context) error

// Locker hands out leases. Acquire never blocks waiting for a holder.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}
