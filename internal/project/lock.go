package project

import (
	"context"
	"time"

	"github.com/gofrs/flock"
	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
)

const lockRetryDelay = 100 * time.Millisecond

// Lock takes the project's advisory lock, retrying until ctx is done. The
// returned function releases it and is safe to call more than once.
func Lock(ctx context.Context, layout Layout) (func(), error) {
	fl := flock.New(layout.LockPath())

	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, lnrerrors.Wrapf(err, lnrerrors.ErrLocked,
			"another lnr command is running in %s", layout.Root)
	}
	if !locked {
		return nil, lnrerrors.Newf(lnrerrors.ErrLocked,
			"another lnr command is running in %s", layout.Root)
	}

	return func() { _ = fl.Unlock() }, nil
}
