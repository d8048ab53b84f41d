package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/fsutil"
	"github.com/gofrs/flock"
)

// lockRetryDelay is the polling interval while waiting for a held lock.
const lockRetryDelay = 100 * time.Millisecond

// Unlocker releases a lock acquired with Lock.
type Unlocker func() error

// Lock takes the advisory lock guarding artifactPath. It waits until the
// lock is free, ctx is done, or timeout elapses. A zero timeout waits on
// ctx alone.
func Lock(ctx context.Context, artifactPath string, timeout time.Duration) (Unlocker, error) {
	if err := fsutil.EnsureDir(filepath.Dir(artifactPath), CacheDirPerm); err != nil {
		return nil, errors.Wrap(err, "could not create cache directory")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fl := flock.New(LockPath(artifactPath))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s: %w", fl.Path(), errors.ErrLockTimeout)
		}
		return nil, errors.Wrapf(err, "could not lock %s", fl.Path())
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", fl.Path(), errors.ErrLockTimeout)
	}
	return fl.Unlock, nil
}
