// Package store persists the terminal session between runs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the state lock past the
// lock timeout.
var ErrLocked = errors.New("state file is locked")

// LockTimeout bounds how long LoadState and SaveState wait for the lock.
var LockTimeout = 2 * time.Second

// State is the persisted session.
type State struct {
	LastURL string    `json:"last_url"`
	SavedAt time.Time `json:"saved_at"`
}

// LoadState reads state from path.
// If the file does not exist, it returns a zero-value State and nil error.
// If the file exists but cannot be parsed, it returns an error so callers can log it.
func LoadState(ctx context.Context, path string) (State, error) {
	var s State
	unlock, err := lock(ctx, path, false)
	if err != nil {
		return s, err
	}
	defer unlock()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("open state: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return s, fmt.Errorf("read state: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}

// SaveState writes state to path atomically under an exclusive lock.
func SaveState(ctx context.Context, path string, s State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	unlock, err := lock(ctx, path, true)
	if err != nil {
		return err
	}
	defer unlock()

	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now().UTC()
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open tmp: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode state: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename tmp: %w", err)
	}
	return nil
}

// lock takes the sidecar lock for path. The state file itself is replaced
// on every save, so it cannot carry the lock.
func lock(ctx context.Context, path string, exclusive bool) (func(), error) {
	lockPath := path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	fl := flock.New(lockPath)

	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()

	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = fl.TryLockContext(lockCtx, 50*time.Millisecond)
	} else {
		locked, err = fl.TryRLockContext(lockCtx, 50*time.Millisecond)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("acquire state lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return func() { _ = fl.Unlock() }, nil
}
