// Command relay drains the Spanner outbox into the RabbitMQ events exchange.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/spanner"
	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-service/internal/app/outbox"
	"github.com/light-bringer/catalog-service/internal/config"
	"github.com/light-bringer/catalog-service/internal/pkg/logging"
	"github.com/light-bringer/catalog-service/internal/pkg/rabbitmq"
	"github.com/light-bringer/catalog-service/internal/pkg/telemetry"
)

func main() {
	configFile := flag.String("config", "", "Path to a config file")
	once := flag.Bool("once", false, "Publish a single batch and exit")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, *once, log); err != nil {
		log.WithError(err).Fatal("relay stopped with error")
	}
}

func run(cfg *config.Config, once bool, log *logrus.Logger) error {
	if cfg.Storage.Driver != config.DriverSpanner {
		return fmt.Errorf("relay requires the %q storage driver, got %q", config.DriverSpanner, cfg.Storage.Driver)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRatio: cfg.Telemetry.SampleRatio,
		ServiceName: cfg.ServiceName + "-relay",
		Version:     cfg.ServiceVersion,
	})
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.WithError(err).Warn("tracer shutdown failed")
		}
	}()

	client, err := spanner.NewClient(ctx, cfg.Storage.SpannerDatabase)
	if err != nil {
		return fmt.Errorf("create spanner client: %w", err)
	}
	defer client.Close()

	pool, err := rabbitmq.NewChannelPool(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.PoolSize)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer pool.Close()

	relay := outbox.NewRelay(
		outbox.NewRepo(client, cfg.Outbox.MaxRetries),
		rabbitmq.NewPublisher(pool),
		outbox.RelayConfig{Interval: cfg.Outbox.PollInterval, BatchSize: cfg.Outbox.BatchSize},
		log,
	)

	if once {
		n, err := relay.RunOnce(ctx)
		log.WithField("published", n).Info("relay batch done")
		return err
	}
	if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
