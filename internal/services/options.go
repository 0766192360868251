package services

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/gin-gonic/gin"
	"github.com/googleapis/gax-go/v2"
	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-service/internal/app/outbox"
	productcontracts "github.com/light-bringer/catalog-service/internal/app/product/contracts"
	"github.com/light-bringer/catalog-service/internal/app/product/queries/find_products"
	"github.com/light-bringer/catalog-service/internal/app/product/queries/get_product"
	productrepo "github.com/light-bringer/catalog-service/internal/app/product/repo"
	"github.com/light-bringer/catalog-service/internal/app/product/usecases/create_product"
	"github.com/light-bringer/catalog-service/internal/app/product/usecases/delete_product"
	"github.com/light-bringer/catalog-service/internal/app/product/usecases/replace_product"
	"github.com/light-bringer/catalog-service/internal/app/product/usecases/update_product"
	tagcontracts "github.com/light-bringer/catalog-service/internal/app/tag/contracts"
	"github.com/light-bringer/catalog-service/internal/app/tag/queries/find_tags"
	tagrepo "github.com/light-bringer/catalog-service/internal/app/tag/repo"
	"github.com/light-bringer/catalog-service/internal/app/tag/usecases/create_tag"
	"github.com/light-bringer/catalog-service/internal/app/tag/usecases/delete_tag"
	"github.com/light-bringer/catalog-service/internal/app/tag/usecases/update_tag"
	"github.com/light-bringer/catalog-service/internal/config"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
	"github.com/light-bringer/catalog-service/internal/pkg/committer"
	"github.com/light-bringer/catalog-service/internal/pkg/mediastore"
	httptransport "github.com/light-bringer/catalog-service/internal/transport/http"
)

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	SpannerClient *spanner.Client
	Router        *gin.Engine
}

type storage struct {
	client   *spanner.Client
	products productcontracts.ProductRepository
	tags     tagcontracts.TagRepository
	events   httptransport.EventLister
}

// NewServiceOptions creates and wires up all application dependencies.
func NewServiceOptions(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*ServiceOptions, error) {
	// 1. Infrastructure
	clk := clock.NewRealClock()
	store, err := newStorage(ctx, cfg, clk, logger)
	if err != nil {
		return nil, err
	}

	media, err := mediastore.NewDiskStore(cfg.Media.Dir, mediastore.WithRetry(
		cfg.Media.DeleteAttempts,
		gax.Backoff{Initial: 50 * time.Millisecond, Max: time.Second, Multiplier: 2},
	))
	if err != nil {
		store.close()
		return nil, err
	}
	uploads := httptransport.NewUploader(media, httptransport.UploadLimits{
		MaxFileSize:  cfg.Media.MaxFileSize,
		MaxFieldSize: cfg.Media.MaxFieldSize,
		MaxBodySize:  cfg.Media.MaxBodySize,
		AllowedTypes: cfg.Media.AllowedTypes,
	}, clk, logger)

	// 2. Product commands and queries
	products := httptransport.NewProductHandler(
		create_product.NewInteractor(store.products, media, clk, logger),
		update_product.NewInteractor(store.products, clk),
		replace_product.NewInteractor(store.products, media, clk, logger),
		delete_product.NewInteractor(store.products, clk),
		get_product.NewQuery(store.products),
		find_products.NewQuery(store.products),
		uploads,
	)

	// 3. Tag commands and queries
	tags := httptransport.NewTagHandler(
		create_tag.NewInteractor(store.tags, clk),
		update_tag.NewInteractor(store.tags, clk),
		delete_tag.NewInteractor(store.tags, clk),
		find_tags.NewQuery(store.tags),
	)

	// 4. HTTP router
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Products:    products,
		Tags:        tags,
		Events:      httptransport.NewEventsHandler(store.events),
		Uploads:     uploads,
		MediaDir:    media.Dir(),
		ServiceName: cfg.ServiceName,
		Logger:      logger,
	})

	return &ServiceOptions{SpannerClient: store.client, Router: router}, nil
}

func newStorage(ctx context.Context, cfg *config.Config, clk clock.Clock, logger logrus.FieldLogger) (*storage, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log := outbox.NewMemoryLog(clk.Now, logger)
		return &storage{
			products: productrepo.NewMemoryProductRepo(log.Record),
			tags:     tagrepo.NewMemoryTagRepo(log.Record),
			events:   log,
		}, nil
	}

	client, err := spanner.NewClient(ctx, cfg.Storage.SpannerDatabase)
	if err != nil {
		return nil, fmt.Errorf("create spanner client: %w", err)
	}
	comm := committer.NewCommitter(client)
	outboxRepo := outbox.NewRepo(client, cfg.Outbox.MaxRetries)
	return &storage{
		client:   client,
		products: productrepo.NewProductRepo(client, comm, outboxRepo),
		tags:     tagrepo.NewTagRepo(client, comm, outboxRepo),
		events:   outboxRepo,
	}, nil
}

func (s *storage) close() {
	if s.client != nil {
		s.client.Close()
	}
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.SpannerClient != nil {
		s.SpannerClient.Close()
	}
}
