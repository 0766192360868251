package mediastore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = WithRetry(3, gax.Backoff{Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 1})

func TestDiskStore_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(filepath.Join(t.TempDir(), "media"))
	require.NoError(t, err)

	n, err := s.Save(ctx, "thumbnail-1-2.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)

	body, err := os.ReadFile(filepath.Join(s.Dir(), "thumbnail-1-2.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))

	_, err = s.Save(ctx, "thumbnail-1-2.png", strings.NewReader("again"))
	assert.ErrorIs(t, err, ErrExists)

	require.NoError(t, s.Delete(ctx, "thumbnail-1-2.png"))
	_, err = os.Stat(filepath.Join(s.Dir(), "thumbnail-1-2.png"))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, s.Delete(ctx, "thumbnail-1-2.png"))
}

func TestDiskStore_RejectsPathNames(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"", "..", "../x.png", "a/b.png", `a\b.png`} {
		_, err := s.Save(context.Background(), name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, name)
		assert.ErrorIs(t, s.Delete(context.Background(), name), ErrInvalidName, name)
	}
}

func TestDiskStore_DeleteRetries(t *testing.T) {
	busy := errors.New("device busy")

	t.Run("succeeds after transient failure", func(t *testing.T) {
		calls := 0
		s, err := NewDiskStore(t.TempDir(), fastRetry, withRemover(func(string) error {
			calls++
			if calls < 3 {
				return busy
			}
			return nil
		}))
		require.NoError(t, err)
		assert.NoError(t, s.Delete(context.Background(), "a.png"))
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		s, err := NewDiskStore(t.TempDir(), fastRetry, withRemover(func(string) error {
			calls++
			return busy
		}))
		require.NoError(t, err)
		err = s.Delete(context.Background(), "a.png")
		assert.ErrorIs(t, err, busy)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s, err := NewDiskStore(t.TempDir(), WithRetry(5, gax.Backoff{Initial: time.Second, Max: time.Second}), withRemover(func(string) error {
			return busy
		}))
		require.NoError(t, err)
		assert.ErrorIs(t, s.Delete(ctx, "a.png"), busy)
	})
}
