package registry

import (
	"fmt"
	"os"
	"time"
)

const (
	lockRetryInterval = 50 * time.Millisecond
	lockWaitWindow    = 5 * time.Second
	lockStaleAfter    = 30 * time.Second
)

// acquireLock takes the sidecar advisory lock guarding the registration
// document. The lock is a `<path>.lock` file created O_CREATE|O_EXCL;
// holders that died are detected by age and their lock reclaimed. The
// returned release func removes the lock file.
func acquireLock(path string) (func(), error) {
	lockPath := path + ".lock"
	deadline := time.Now().Add(lockWaitWindow)

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			fmt.Fprintf(f, "%d %s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file %s: %w", lockPath, err)
		}

		if stale(lockPath) {
			// Holder is gone; reclaim and retry immediately.
			os.Remove(lockPath)
			continue
		}
		if time.Now().After(deadline) {
			if pid := lockOwner(lockPath); pid > 0 {
				return nil, fmt.Errorf("registration document is locked by pid %d (lock file %s)", pid, lockPath)
			}
			return nil, fmt.Errorf("registration document is locked by another process (lock file %s)", lockPath)
		}
		time.Sleep(lockRetryInterval)
	}
}

func stale(lockPath string) bool {
	info, err := os.Stat(lockPath)
	if err != nil {
		// Vanished between the create attempt and now; the next create
		// attempt settles it.
		return false
	}
	return time.Since(info.ModTime()) > lockStaleAfter
}

// lockOwner reports the pid recorded in a lock file, 0 when unreadable.
func lockOwner(lockPath string) int {
	data, err := os.ReadFile(lockPath)
	if err != nil || len(data) == 0 {
		return 0
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0
	}
	return pid
}
