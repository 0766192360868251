package main

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-service/internal/config"
)

type fakeStore struct {
	count     int64
	deleteErr error

	deleted         bool
	publishedCutoff time.Time
	failedCutoff    time.Time
}

func (f *fakeStore) CountExpired(_ context.Context, publishedCutoff, failedCutoff time.Time) (int64, error) {
	f.publishedCutoff, f.failedCutoff = publishedCutoff, failedCutoff
	return f.count, nil
}

func (f *fakeStore) DeleteExpired(context.Context, time.Time, time.Time) (int64, error) {
	f.deleted = true
	return f.count, f.deleteErr
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCleanup(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	cfg := config.OutboxConfig{PublishedMaxAge: 24 * time.Hour, FailedMaxAge: 48 * time.Hour}

	t.Run("deletes expired rows", func(t *testing.T) {
		store := &fakeStore{count: 3}
		n, err := cleanup(context.Background(), store, cfg, now, false, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.True(t, store.deleted)
		assert.Equal(t, now.Add(-24*time.Hour), store.publishedCutoff)
		assert.Equal(t, now.Add(-48*time.Hour), store.failedCutoff)
	})

	t.Run("dry run only counts", func(t *testing.T) {
		store := &fakeStore{count: 2}
		n, err := cleanup(context.Background(), store, cfg, now, true, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.False(t, store.deleted)
	})

	t.Run("nothing expired", func(t *testing.T) {
		store := &fakeStore{}
		n, err := cleanup(context.Background(), store, cfg, now, false, quietLogger())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.False(t, store.deleted)
	})

	t.Run("delete error", func(t *testing.T) {
		store := &fakeStore{count: 1, deleteErr: errors.New("aborted")}
		_, err := cleanup(context.Background(), store, cfg, now, false, quietLogger())
		assert.Error(t, err)
	})
}

func TestApplyOverrides(t *testing.T) {
	cfg := &config.Config{Outbox: config.OutboxConfig{PublishedMaxAge: time.Hour, FailedMaxAge: time.Hour}}
	applyOverrides(cfg, options{database: "projects/p/instances/i/databases/d", failedMaxAge: 3 * time.Hour})

	assert.Equal(t, "projects/p/instances/i/databases/d", cfg.Storage.SpannerDatabase)
	assert.Equal(t, time.Hour, cfg.Outbox.PublishedMaxAge)
	assert.Equal(t, 3*time.Hour, cfg.Outbox.FailedMaxAge)
}
