package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/afero"

	"FinScreen/internal/domain/repository"
	dsvc "FinScreen/internal/domain/service"
	"FinScreen/internal/handler/api"
	internalrepo "FinScreen/internal/repository"
	svccache "FinScreen/internal/service/cache"
	"FinScreen/internal/service/edinet"
	svcmetrics "FinScreen/internal/service/metrics"
	"FinScreen/internal/service/minkabu"
	"FinScreen/internal/service/ratelimit"
	"FinScreen/internal/service/yahoojp"
	"FinScreen/internal/usecase"
	"FinScreen/pkg/cache"
	pkgch "FinScreen/pkg/clickhouse"
	"FinScreen/pkg/config"
	xhttp "FinScreen/pkg/http"
	pkgkafka "FinScreen/pkg/kafka"
	"FinScreen/pkg/logger"
	"FinScreen/pkg/metrics"
	"FinScreen/pkg/server"
)

const resultBatchSize = 50

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger builds the application logger. Error logs are aggregated and
// shipped to Kafka when collection is enabled and a producer exists.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*logger.Logger, func(), error) {
	l, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Log.Collect.Enabled && producer != nil {
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   cfg.Log.Collect.Interval,
			CountThreshold: cfg.Log.Collect.Threshold,
			Topic:          cfg.Log.Collect.Topic,
			IncludeWarn:    cfg.Log.Collect.IncludeWarn,
			Publisher:      producer,
		})
	}
	return l, l.RemoveCollector, nil
}

var (
	recorderOnce sync.Once
	recorder     *metrics.Recorder
)

// ProvideMetrics returns the process-wide Prometheus recorder. Collectors
// live on the default registry, so they are registered once.
func ProvideMetrics() repository.Metrics {
	recorderOnce.Do(func() {
		svcmetrics.Register()
		recorder = metrics.New(nil)
	})
	return recorder
}

// ProvideArtifactStore opens the download directory on the OS filesystem.
func ProvideArtifactStore(cfg *config.Config) (repository.ArtifactStore, error) {
	store, err := internalrepo.NewFileArtifactStore(afero.NewOsFs(), cfg.Edinet.StorageDir, repository.ExistingMode(cfg.Edinet.ExistingMode))
	if err != nil {
		return nil, fmt.Errorf("artifact store: %w", err)
	}
	return store, nil
}

// ProvideEdinetClient creates the disclosure API client.
func ProvideEdinetClient(cfg *config.Config, l *logger.Logger) *edinet.Client {
	log := l.Component("edinet")
	hc := xhttp.NewClient(
		xhttp.WithTimeout(cfg.Edinet.Timeout),
		xhttp.WithMaxAttempts(cfg.Edinet.MaxAttempts),
		xhttp.WithRetryHook(func(attempt int, err error) {
			log.Warn("retrying request", logger.Int("attempt", attempt), logger.Error(err))
		}),
	)
	return edinet.New(cfg.Edinet.ListURL, cfg.Edinet.DocumentURL, cfg.Edinet.APIKey,
		edinet.WithHTTPClient(hc),
		edinet.WithLogger(log),
	)
}

func ProvideFilingIndex(c *edinet.Client) dsvc.FilingIndex { return c }

func ProvideDocumentFetcher(c *edinet.Client) dsvc.DocumentFetcher { return c }

// ProvideCache returns a Redis-backed layered cache when Redis is enabled and
// a process-local cache otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, func(), error) {
	if !cfg.Redis.Enabled {
		mc := cache.NewMemoryCache(
			cache.WithMemoryMaxSize(10000),
			cache.WithMemoryDefaultTTL(cfg.Providers.CacheTTL),
		)
		return mc, func() { _ = mc.Close() }, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix("finscreen"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	lc := cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(2000),
		cache.WithLayeredMemoryTTL(10*time.Minute),
	)
	return lc, func() { _ = lc.Close() }, nil
}

func ProvideLimiter() *ratelimit.Limiter { return ratelimit.New() }

func providerHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Providers.Timeout),
		xhttp.WithUserAgent(cfg.Providers.UserAgent),
	)
}

func providerPace(cfg *config.Config, key string) ratelimit.Pace {
	return ratelimit.Pace{
		Key:       key,
		Burst:     float64(cfg.Providers.Burst),
		PerSecond: cfg.Providers.RequestsPerSecond,
	}
}

// ProvideQuoteProvider stacks cache, then rate limit, in front of the
// Yahoo!ファイナンス scraper. Cache hits never wait for a request slot.
func ProvideQuoteProvider(cfg *config.Config, c cache.Service, lim *ratelimit.Limiter, l *logger.Logger) dsvc.QuoteProvider {
	log := l.Component("yahoojp")
	var p dsvc.QuoteProvider = yahoojp.New(cfg.Providers.YahooURL,
		yahoojp.WithHTTPClient(providerHTTPClient(cfg)),
		yahoojp.WithLogger(log),
	)
	p = ratelimit.NewQuotes(p, lim, providerPace(cfg, "yahoojp"))
	return svccache.NewQuotes(p, c, cfg.Providers.CacheTTL, log)
}

// ProvideProfileProvider does the same for みんかぶ profiles.
func ProvideProfileProvider(cfg *config.Config, c cache.Service, lim *ratelimit.Limiter, l *logger.Logger) dsvc.ProfileProvider {
	log := l.Component("minkabu")
	var p dsvc.ProfileProvider = minkabu.New(cfg.Providers.MinkabuURL,
		minkabu.WithHTTPClient(providerHTTPClient(cfg)),
		minkabu.WithLogger(log),
	)
	p = ratelimit.NewProfiles(p, lim, providerPace(cfg, "minkabu"))
	return svccache.NewProfiles(p, c, cfg.Providers.CacheTTL, log)
}

// ProvideThresholds maps the screening section onto stage thresholds.
func ProvideThresholds(cfg *config.Config) usecase.Thresholds {
	s := cfg.Screening
	return usecase.Thresholds{
		MinScorePerStock:      s.MinScorePerStock,
		MinEarningsPerStock:   s.MinEarningsPerStock,
		MinScoreRatio:         s.MinScoreRatio,
		MaxPriceEarningsRatio: s.MaxPriceEarningsRatio,
		CodeLength:            s.CodeLength,
		BlacklistIndustries:   s.BlacklistIndustries,
		UnfavourableAnalyst:   s.UnfavourableAnalystMark,
		UnfavourablePick:      s.UnfavourablePickMark,
		OptionalTier:          s.OptionalTier.Enabled,
		MinAverageSalary:      s.OptionalTier.MinAverageSalary,
		MinEarningPower:       s.OptionalTier.MinEmployeeEarningPower,
		MinBoardMemberReward:  s.OptionalTier.MinBoardMemberReward,
	}
}

func ProvideScreener(th usecase.Thresholds, quotes dsvc.QuoteProvider, profiles dsvc.ProfileProvider, l *logger.Logger, m repository.Metrics) *usecase.Screener {
	return usecase.NewScreener(th, quotes, profiles,
		usecase.WithScreenerLogger(l.Component("screener")),
		usecase.WithScreenerMetrics(m),
	)
}

// ProvideClickHouseClient connects and creates the result table, or returns
// nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
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
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.ResultSchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideResultStorage stores results in ClickHouse, or in memory when
// ClickHouse is disabled.
func ProvideResultStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	if chClient == nil {
		return internalrepo.NewMemoryStorage()
	}
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
}

// ProvideResultPublisher returns nil when Kafka is disabled.
func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

func ProvideScreeningRun(
	artifacts repository.ArtifactStore,
	screener *usecase.Screener,
	store repository.Storage,
	pub repository.Publisher,
	l *logger.Logger,
	m repository.Metrics,
) *usecase.ScreeningRun {
	return usecase.NewScreeningRun(artifacts, screener, store, pub, l.Component("screening"), m, resultBatchSize)
}

func ProvideFilingCollector(
	index dsvc.FilingIndex,
	docs dsvc.DocumentFetcher,
	artifacts repository.ArtifactStore,
	l *logger.Logger,
	m repository.Metrics,
) *usecase.FilingCollector {
	return usecase.NewFilingCollector(index, docs, artifacts, l.Component("download"), m)
}

func ProvideHandler(l *logger.Logger, store repository.Storage, run *usecase.ScreeningRun) xhttp.Handler {
	return api.NewScreeningEchoHandler(l.Component("api"), store, run)
}

// ProvideApp creates the HTTP application.
func ProvideApp(cfg *config.Config, l *logger.Logger, h xhttp.Handler) *server.App {
	return server.New(cfg, l, h)
}
