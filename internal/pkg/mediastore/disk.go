// Package mediastore keeps uploaded media files in a local directory that
// is served under the public media path.
package mediastore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/googleapis/gax-go/v2"
)

var (
	ErrInvalidName = errors.New("invalid media file name")
	ErrExists      = errors.New("media file already exists")
)

// DiskStore writes media files below a single directory.
type DiskStore struct {
	dir      string
	attempts int
	backoff  gax.Backoff
	remove   func(string) error
}

type Option func(*DiskStore)

// WithRetry sets how often Delete is attempted and the pause between tries.
func WithRetry(attempts int, backoff gax.Backoff) Option {
	return func(s *DiskStore) {
		if attempts > 0 {
			s.attempts = attempts
		}
		s.backoff = backoff
	}
}

func withRemover(fn func(string) error) Option {
	return func(s *DiskStore) { s.remove = fn }
}

// NewDiskStore creates dir when missing.
func NewDiskStore(dir string, opts ...Option) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir %s: %w", dir, err)
	}
	s := &DiskStore{
		dir:      dir,
		attempts: 4,
		backoff:  gax.Backoff{Initial: 50 * time.Millisecond, Max: time.Second, Multiplier: 2},
		remove:   os.Remove,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *DiskStore) Dir() string { return s.dir }

// Save streams r into a new file and returns the number of bytes written.
// A partially written file is removed on error.
func (s *DiskStore) Save(ctx context.Context, filename string, r io.Reader) (int64, error) {
	path, err := s.path(filename)
	if err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, ErrExists
		}
		return 0, fmt.Errorf("create %s: %w", filename, err)
	}
	n, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("write %s: %w", filename, err)
	}
	return n, nil
}

// Delete removes filename. A file that does not exist counts as removed.
// Other failures are retried with exponential backoff until the attempts
// run out or ctx is done.
func (s *DiskStore) Delete(ctx context.Context, filename string) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}
	bo := s.backoff
	for attempt := 1; ; attempt++ {
		err = s.remove(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if attempt >= s.attempts {
			return fmt.Errorf("delete %s after %d attempts: %w", filename, attempt, err)
		}
		if serr := gax.Sleep(ctx, bo.Pause()); serr != nil {
			return fmt.Errorf("delete %s: %w", filename, err)
		}
	}
}

func (s *DiskStore) path(filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || filepath.Base(filename) != filename {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}
	return filepath.Join(s.dir, filename), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
