package di

import (
	"context"
	"fmt"
	"time"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	domsvc "RecoPulse/internal/domain/service"
	"RecoPulse/internal/handler/api"
	internalrepo "RecoPulse/internal/repository"
	"RecoPulse/internal/service/ratelimit"
	"RecoPulse/internal/services/fundamental"
	"RecoPulse/internal/services/macro"
	"RecoPulse/internal/services/provider"
	"RecoPulse/internal/services/sentiment"
	"RecoPulse/internal/services/technical"
	"RecoPulse/internal/usecase"
	"RecoPulse/pkg/cache"
	pkgch "RecoPulse/pkg/clickhouse"
	"RecoPulse/pkg/config"
	pkgkafka "RecoPulse/pkg/kafka"
	applogger "RecoPulse/pkg/logger"
	"RecoPulse/pkg/metrics"
	"RecoPulse/pkg/server"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

const serviceName = "recopulse"

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopics(cfg.Kafka.AutoCreate),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger builds the application logger. Repeated errors are shipped to
// Kafka when a collect topic is configured.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil && cfg.Log.CollectTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			Service:         serviceName,
			Topic:           cfg.Log.CollectTopic,
			Publisher:       producer,
			GroupBy:         []string{"source", "ticker"},
			CollectWarnings: cfg.Log.CollectWarnings,
		})
	}
	return l, nil
}

// ProvideRedisCache connects to Redis, or returns nil when it is disabled.
// The connection is closed by the layered cache built on top of it.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		cache.WithRedisPool(cfg.Cache.Redis.PoolSize, cfg.Cache.Redis.MinIdle, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCache returns a memory+Redis layered cache, or memory only.
func ProvideCache(cfg *config.Config, rc *cache.RedisCache) (cache.Service, func()) {
	if rc != nil {
		lc := cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
			cache.WithLayeredL1TTL(cfg.Cache.L1MaxTTL),
		)
		return lc, func() { _ = lc.Close() }
	}
	mc := cache.NewMemoryCache(
		cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
		cache.WithMemoryCleanup(cfg.Cache.MemoryCleanup),
	)
	return mc, func() { _ = mc.Close() }
}

// ProvideClickHouseClient connects to ClickHouse when it backs the candle
// source and creates the candle schema. It returns nil otherwise.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	if cfg.Sources.Technical.Provider != "clickhouse" {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.CandleSchema); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse candle store ready", applogger.String("database", cfg.ClickHouse.Database))

	return client, func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}, nil
}

// ProvideLimiter creates the limiter shared by all upstream clients.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideCandleSource picks the technical data provider. With ClickHouse the
// store is read first and Yahoo fills the gaps, writing what it downloads.
func ProvideCandleSource(ch *pkgch.Client, l *applogger.Logger) domrepo.CandleSource {
	yahoo := internalrepo.NewYahooCandleSource(l)
	if ch == nil {
		return yahoo
	}
	store := internalrepo.NewCHCandleStore(ch)
	store.SetLogger(l)
	return internalrepo.NewFallbackCandleSource(store, yahoo.WithWriter(store), technical.MinBars, l)
}

func ProvideTechnicalAnalyzer(cfg *config.Config, src domrepo.CandleSource, c cache.Service, l *applogger.Logger) *technical.Analyzer {
	tc := cfg.Sources.Technical
	return technical.NewAnalyzer(src,
		technical.WithCache(c, tc.CacheTTL),
		technical.WithLookback(tc.Lookback),
		technical.WithLogger(l),
	)
}

func ProvideFundamentalAnalyzer(cfg *config.Config, lim *ratelimit.Limiter, c cache.Service, l *applogger.Logger) *fundamental.Analyzer {
	fc := cfg.Sources.Fundamental
	base := provider.NewHTTPServiceBase("fmp", fc.BaseURL, fc.Timeout, provider.WithLimiter(lim, fc.MinInterval))
	return fundamental.NewAnalyzer(fundamental.NewFMPClient(base, fc.APIKey), fc.SupportedTickers, c, fc.CacheTTL, l)
}

// ProvideSentimentClassifier returns the chat model classifier when selected
// and keyed, the keyword classifier otherwise.
func ProvideSentimentClassifier(cfg *config.Config, l *applogger.Logger) domsvc.SentimentClassifier {
	sc := cfg.Sources.Sentiment
	if sc.Classifier == "openai" && sc.OpenAI.APIKey != "" {
		return sentiment.NewOpenAIClassifier(sentiment.OpenAIConfig{
			APIKey:      sc.OpenAI.APIKey,
			BaseURL:     sc.OpenAI.BaseURL,
			Model:       sc.OpenAI.Model,
			Temperature: sc.OpenAI.Temperature,
			Timeout:     sc.OpenAI.Timeout,
		}, l)
	}
	return sentiment.KeywordClassifier{}
}

func ProvideSentimentAnalyzer(
	cfg *config.Config,
	lim *ratelimit.Limiter,
	classifier domsvc.SentimentClassifier,
	c cache.Service,
	l *applogger.Logger,
) *sentiment.Analyzer {
	sc := cfg.Sources.Sentiment
	base := provider.NewHTTPServiceBase("gnews", sc.BaseURL, sc.Timeout, provider.WithLimiter(lim, sc.MinInterval))
	return sentiment.NewAnalyzer(sentiment.NewGNewsClient(base, sc.APIKey, sc.Language), classifier, c, sentiment.Settings{
		MaxNews:      sc.MaxNews,
		LookbackDays: sc.LookbackDays,
		CacheTTL:     sc.CacheTTL,
	}, l)
}

func ProvideMacroAnalyzer(cfg *config.Config, c cache.Service, l *applogger.Logger) *macro.Analyzer {
	mc := cfg.Sources.Macro
	base := provider.NewHTTPServiceBase("bcra", mc.BaseURL, mc.Timeout)
	client := macro.NewBCRAClient(base, macro.Series{
		CER:         mc.Series.CER,
		USDOfficial: mc.Series.USDOfficial,
		Inflation:   mc.Series.Inflation,
		CountryRisk: mc.Series.CountryRisk,
	}, mc.Retries, l)
	return macro.NewAnalyzer(client, c, mc.CacheTTL, l)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideHealthCheckers lists every upstream and store reported by /api/health.
func ProvideHealthCheckers(
	tech *technical.Analyzer,
	fund *fundamental.Analyzer,
	sent *sentiment.Analyzer,
	mac *macro.Analyzer,
	ch *pkgch.Client,
	rc *cache.RedisCache,
) []domsvc.HealthChecker {
	checks := []domsvc.HealthChecker{tech, fund, sent, mac}
	if ch != nil {
		checks = append(checks, ch)
	}
	if rc != nil {
		checks = append(checks, rc)
	}
	return checks
}

// ProvideRecommendationEngine validates the scoring configuration; invalid
// weights abort startup.
func ProvideRecommendationEngine(
	cfg *config.Config,
	tech *technical.Analyzer,
	fund *fundamental.Analyzer,
	sent *sentiment.Analyzer,
	mac *macro.Analyzer,
	m domrepo.Metrics,
	checks []domsvc.HealthChecker,
	l *applogger.Logger,
) (*usecase.RecommendationEngine, error) {
	sc := cfg.Scoring
	w, err := models.NewWeights(sc.Weights.Technical, sc.Weights.Fundamental, sc.Weights.Macro, sc.Weights.Sentiment)
	if err != nil {
		return nil, fmt.Errorf("scoring weights: %w", err)
	}
	th, err := models.NewThresholds(sc.Thresholds.Buy, sc.Thresholds.Hold)
	if err != nil {
		return nil, fmt.Errorf("scoring thresholds: %w", err)
	}
	return usecase.NewRecommendationEngine(tech, fund, sent, mac,
		usecase.EngineConfig{
			Weights:    w,
			Thresholds: th,
			BatchSize:  sc.BatchSize,
			Tickers:    sc.Tickers,
		},
		usecase.WithMetrics(m),
		usecase.WithHealthCheckers(checks...),
		usecase.WithEngineLogger(l),
	)
}

// ProvidePublisher ships daily runs to Kafka, or drops them when disabled.
func ProvidePublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.RecommendationPublisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	return internalrepo.NewKafkaRecommendationPublisher(producer, cfg.Kafka.Topic)
}

func ProvideDailyScheduler(
	cfg *config.Config,
	engine *usecase.RecommendationEngine,
	pub domrepo.RecommendationPublisher,
	c cache.Service,
	l *applogger.Logger,
) *usecase.DailyScheduler {
	return usecase.NewDailyScheduler(engine,
		usecase.WithInterval(cfg.Scoring.RefreshInterval),
		usecase.WithRunTimeout(cfg.Scoring.RunTimeout),
		usecase.WithPublisher(pub),
		usecase.WithLock(c),
		usecase.WithSchedulerLogger(l),
	)
}

func ProvideRecommendationsHandler(
	l *applogger.Logger,
	engine *usecase.RecommendationEngine,
	sched *usecase.DailyScheduler,
) *api.RecommendationsEchoHandler {
	return api.NewRecommendationsEchoHandler(l, engine, sched, Version)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	sched *usecase.DailyScheduler,
	handler *api.RecommendationsEchoHandler,
	pub domrepo.RecommendationPublisher,
) *server.App {
	return server.New(cfg, l, sched, handler, pub)
}
