// Command cleanup_outbox deletes outbox rows past their retention window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-service/internal/app/outbox"
	"github.com/light-bringer/catalog-service/internal/config"
	"github.com/light-bringer/catalog-service/internal/pkg/logging"
)

type options struct {
	configFile      string
	database        string
	publishedMaxAge time.Duration
	failedMaxAge    time.Duration
	dryRun          bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configFile, "config", "", "Path to a config file")
	flag.StringVar(&opts.database, "database", "", "Spanner database path, overrides storage.spanner_database")
	flag.DurationVar(&opts.publishedMaxAge, "published-max-age", 0, "Retention for published events, overrides outbox.published_max_age")
	flag.DurationVar(&opts.failedMaxAge, "failed-max-age", 0, "Retention for failed events, overrides outbox.failed_max_age")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Count expired events without deleting them")
	flag.Parse()

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(cfg, opts)

	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err := run(context.Background(), cfg, opts.dryRun, log); err != nil {
		log.WithError(err).Fatal("outbox cleanup failed")
	}
}

func applyOverrides(cfg *config.Config, opts options) {
	if opts.database != "" {
		cfg.Storage.SpannerDatabase = opts.database
	}
	if opts.publishedMaxAge > 0 {
		cfg.Outbox.PublishedMaxAge = opts.publishedMaxAge
	}
	if opts.failedMaxAge > 0 {
		cfg.Outbox.FailedMaxAge = opts.failedMaxAge
	}
}

// expiredStore is the part of the outbox repository the job needs.
type expiredStore interface {
	CountExpired(ctx context.Context, publishedCutoff, failedCutoff time.Time) (int64, error)
	DeleteExpired(ctx context.Context, publishedCutoff, failedCutoff time.Time) (int64, error)
}

func run(ctx context.Context, cfg *config.Config, dryRun bool, log *logrus.Logger) error {
	client, err := spanner.NewClient(ctx, cfg.Storage.SpannerDatabase)
	if err != nil {
		return fmt.Errorf("create spanner client: %w", err)
	}
	defer client.Close()

	_, err = cleanup(ctx, outbox.NewRepo(client, cfg.Outbox.MaxRetries), cfg.Outbox, time.Now().UTC(), dryRun, log)
	return err
}

func cleanup(ctx context.Context, store expiredStore, cfg config.OutboxConfig, now time.Time, dryRun bool, log logrus.FieldLogger) (int64, error) {
	publishedCutoff := now.Add(-cfg.PublishedMaxAge)
	failedCutoff := now.Add(-cfg.FailedMaxAge)

	entry := log.WithFields(logrus.Fields{
		"published_cutoff": publishedCutoff.Format(time.RFC3339),
		"failed_cutoff":    failedCutoff.Format(time.RFC3339),
		"dry_run":          dryRun,
	})

	count, err := store.CountExpired(ctx, publishedCutoff, failedCutoff)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		entry.Info("no expired outbox events")
		return 0, nil
	}
	if dryRun {
		entry.WithField("count", count).Info("would delete expired outbox events")
		return count, nil
	}

	deleted, err := store.DeleteExpired(ctx, publishedCutoff, failedCutoff)
	if err != nil {
		return 0, err
	}
	entry.WithField("deleted", deleted).Info("expired outbox events deleted")
	return deleted, nil
}
