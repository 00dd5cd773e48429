// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fileutil removes temporary files that another process may still
// hold open, and waits for freshly written files to become readable.
package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/pdiddy/pdfmerge/pkg/types"
)

var (
	// ErrStillLocked is returned by Remove when the retry budget runs out.
	ErrStillLocked = errors.New("file still locked")

	// ErrNotReadable is returned by WaitReadable when the file does not
	// become readable within the timeout.
	ErrNotReadable = errors.New("file not readable")
)

// Remover deletes files with bounded retries and polls for readability.
type Remover struct {
	fs     afero.Fs
	remove types.RemoveConfig
	wait   types.WaitConfig
	logger *zap.Logger
}

// NewRemover returns a Remover over the OS filesystem. Zero config fields
// take their defaults; a nil logger discards output.
func NewRemover(remove types.RemoveConfig, wait types.WaitConfig, logger *zap.Logger) *Remover {
	return newRemover(afero.NewOsFs(), remove, wait, logger)
}

func newRemover(fsys afero.Fs, remove types.RemoveConfig, wait types.WaitConfig, logger *zap.Logger) *Remover {
	cfg := types.MergeConfig{Remove: remove, Wait: wait}.Defaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remover{fs: fsys, remove: cfg.Remove, wait: cfg.Wait, logger: logger}
}

// Remove deletes path. Before each attempt it probes the file by opening it
// for append; a failed probe or a permission error on delete waits and
// retries, up to MaxRetries attempts. A missing file counts as removed.
// When the budget is exhausted the file is left in place and an error
// wrapping ErrStillLocked is returned.
func (r *Remover) Remove(ctx context.Context, path string) error {
	delay := r.remove.Delay
	for attempt := 1; attempt <= r.remove.MaxRetries; attempt++ {
		locked, err := r.locked(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			r.logger.Debug("file already gone", zap.String("path", path))
			return nil
		case locked:
			r.logger.Debug("file locked, waiting for release",
				zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
		default:
			err = r.fs.Remove(path)
			if err == nil || errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if !errors.Is(err, fs.ErrPermission) {
				r.logger.Warn("removing file", zap.String("path", path), zap.Error(err))
				return fmt.Errorf("removing %s: %w", path, err)
			}
			r.logger.Debug("permission error removing file, retrying",
				zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
		}

		if attempt == r.remove.MaxRetries {
			break
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay = time.Duration(float64(delay) * r.remove.Backoff)
	}

	r.logger.Warn("giving up on file removal",
		zap.String("path", path), zap.Int("attempts", r.remove.MaxRetries))
	return fmt.Errorf("removing %s after %d attempts: %w", path, r.remove.MaxRetries, ErrStillLocked)
}

// locked reports whether path cannot be opened for append. A missing file
// is reported through err, not as locked.
func (r *Remover) locked(path string) (bool, error) {
	f, err := r.fs.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, err
		}
		return true, err
	}
	f.Close()
	return false, nil
}

// WaitReadable polls path every Interval until it opens for reading. It
// returns an error wrapping ErrNotReadable once Timeout elapses, or the
// context error if ctx ends first.
func (r *Remover) WaitReadable(ctx context.Context, path string) error {
	deadline := time.Now().Add(r.wait.Timeout)
	for {
		f, err := r.fs.Open(path)
		if err == nil {
			f.Close()
			return nil
		}
		if !time.Now().Before(deadline) {
			r.logger.Warn("file never became readable",
				zap.String("path", path), zap.Duration("timeout", r.wait.Timeout), zap.Error(err))
			return fmt.Errorf("waiting for %s after %v: %w", path, r.wait.Timeout, ErrNotReadable)
		}
		if err := sleep(ctx, r.wait.Interval); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
