package di

import (
	"context"
	"fmt"
	"time"

	"TTVPull/internal/domain/repository"
	dservice "TTVPull/internal/domain/service"
	"TTVPull/internal/handler/api"
	mid "TTVPull/internal/middleware"
	internalrepo "TTVPull/internal/repository"
	"TTVPull/internal/services/catalog"
	"TTVPull/internal/services/lightcurve"
	"TTVPull/internal/services/publish"
	"TTVPull/internal/services/ratelimit"
	"TTVPull/internal/services/transitfit"
	"TTVPull/internal/usecase"
	"TTVPull/pkg/cache"
	pkgch "TTVPull/pkg/clickhouse"
	"TTVPull/pkg/config"
	xhttp "TTVPull/pkg/http"
	pkgkafka "TTVPull/pkg/kafka"
	applogger "TTVPull/pkg/logger"
	"TTVPull/pkg/metrics"
	"TTVPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache builds the caching layer: layered memory+Redis when Redis is
// enabled, plain in-memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc), nil
}

// ProvideRateLimiter creates the shared upstream limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideCatalog creates the exoplanet-catalog client.
func ProvideCatalog(cfg *config.Config, c cache.Service, rl *ratelimit.Limiter, l *applogger.Logger) dservice.Catalog {
	return catalog.New(
		cfg.Catalog.BaseURL,
		xhttp.NewClient(xhttp.WithTimeout(cfg.Catalog.Timeout)),
		catalog.WithCache(c, cfg.Catalog.CacheTTL),
		catalog.WithLimiter(rl),
		catalog.WithLogger(l),
	)
}

// ProvideArchive creates the light-curve archive client.
func ProvideArchive(cfg *config.Config, c cache.Service, rl *ratelimit.Limiter, l *applogger.Logger) dservice.Archive {
	return lightcurve.New(
		cfg.Archive.BaseURL,
		xhttp.NewClient(xhttp.WithTimeout(cfg.Archive.Timeout)),
		lightcurve.WithCache(c, cfg.Archive.CacheTTL),
		lightcurve.WithLimiter(rl),
		lightcurve.WithLogger(l),
	)
}

// ProvideFitter creates the transit-fit service client.
func ProvideFitter(cfg *config.Config, l *applogger.Logger) dservice.TransitFitter {
	return transitfit.New(
		cfg.Fitter.BaseURL,
		xhttp.NewClient(xhttp.WithTimeout(cfg.Fitter.Timeout)),
		transitfit.Params{
			PriorWidth:  cfg.Fitter.PriorWidth,
			Iterations:  cfg.Fitter.Iterations,
			Population:  cfg.Fitter.Population,
			MCMCLength:  cfg.Fitter.MCMCLength,
			MCMCThin:    cfg.Fitter.MCMCThin,
			MCMCRepeats: cfg.Fitter.MCMCRepeats,
		},
		transitfit.WithLogger(l),
	)
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideCampaignStore creates the ClickHouse campaign store and its schema.
func ProvideCampaignStore(chClient *pkgch.Client, l *applogger.Logger) (repository.CampaignStore, error) {
	store := internalrepo.NewCHCampaignStore(chClient)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("campaign schema: %w", err)
	}
	return store, nil
}

// ProvidePublisher creates the Kafka series publisher, or nil when Kafka is
// disabled.
func ProvidePublisher(cfg *config.Config, l *applogger.Logger) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return publish.NewKafkaPublisher(producer, cfg.Kafka.SeriesTopic, l), nil
}

// ProvideProgressHub creates the progress fan-out hub.
func ProvideProgressHub() *mid.ProgressHub {
	return mid.NewProgressHub()
}

// ProvideFitRunner creates the concurrent fit runner.
func ProvideFitRunner(fitter dservice.TransitFitter, m repository.Metrics, cfg *config.Config, l *applogger.Logger) *usecase.FitRunner {
	return usecase.NewFitRunner(fitter, cfg.Fitter.Workers, m, l)
}

// ProvideCampaignRunner wires the pipeline.
func ProvideCampaignRunner(
	cat dservice.Catalog,
	arch dservice.Archive,
	fits *usecase.FitRunner,
	store repository.CampaignStore,
	pub repository.Publisher,
	hub *mid.ProgressHub,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.CampaignRunner {
	return usecase.NewCampaignRunner(cat, arch, fits, store, pub, hub, m, l)
}

// ProvideKafkaConsumer creates the campaign-request consumer, or nil when
// Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, runner *usecase.CampaignRunner, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.RequestTopic == "" {
		return nil, nil
	}
	handler := usecase.NewRequestsHandler(cfg.Kafka.RequestTopic, runner, l)
	consumer, err := pkgkafka.NewConsumer(handler,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroup(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerTopic(cfg.Kafka.RequestTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerBackoff(cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideHTTPHandler assembles the API routes.
func ProvideHTTPHandler(
	l *applogger.Logger,
	runner *usecase.CampaignRunner,
	cat dservice.Catalog,
	store repository.CampaignStore,
	hub *mid.ProgressHub,
) xhttp.Handler {
	return api.NewRoutes(
		api.NewTTVHandler(l, runner, cat, store),
		api.NewProgressHandler(l, hub),
	)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	store repository.CampaignStore,
	pub repository.Publisher,
	hub *mid.ProgressHub,
) *server.App {
	return server.New(cfg, l, handler, consumer, store, pub, hub)
}
