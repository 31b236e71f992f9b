package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultUniverse is the ticker set analyzed when none is configured.
var DefaultUniverse = []string{
	"YPF", "GGAL", "PAM", "TEO", "TGS", "CEPU", "BMA", "SUPV",
	"CRESY", "LOMA", "IRCP", "VIST", "MELI", "GLOB", "DESP",
}

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"8000" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Log struct {
		Level        string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format       string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output       string `yaml:"output" default:"stdout"`
		CollectTopic string `yaml:"collect_topic"`
		// CollectWarnings also ships warnings, which is where extractor failures land.
		CollectWarnings bool `yaml:"collect_warnings" default:"true"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Scoring struct {
		Weights struct {
			Technical   float64 `yaml:"technical" default:"0.5"`
			Fundamental float64 `yaml:"fundamental" default:"0.3"`
			Macro       float64 `yaml:"macro" default:"0.1"`
			Sentiment   float64 `yaml:"sentiment" default:"0.1"`
		} `yaml:"weights"`
		Thresholds struct {
			Buy  float64 `yaml:"buy" default:"70"`
			Hold float64 `yaml:"hold" default:"40"`
		} `yaml:"thresholds"`
		BatchSize       int           `yaml:"batch_size" default:"3" validate:"gte=1,lte=50"`
		Tickers         []string      `yaml:"tickers"`
		RefreshInterval time.Duration `yaml:"refresh_interval" default:"24h"`
		RunTimeout      time.Duration `yaml:"run_timeout" default:"5m"`
	} `yaml:"scoring"`
	Sources struct {
		Technical struct {
			Provider string        `yaml:"provider" default:"yahoo" validate:"oneof=yahoo clickhouse"`
			Lookback time.Duration `yaml:"lookback" default:"4392h"`
			CacheTTL time.Duration `yaml:"cache_ttl" default:"30m"`
		} `yaml:"technical"`
		Fundamental struct {
			BaseURL          string        `yaml:"base_url" default:"https://financialmodelingprep.com/api/v3"`
			APIKey           string        `yaml:"api_key"`
			SupportedTickers []string      `yaml:"supported_tickers"`
			Timeout          time.Duration `yaml:"timeout" default:"10s"`
			MinInterval      time.Duration `yaml:"min_interval" default:"1s"`
			CacheTTL         time.Duration `yaml:"cache_ttl" default:"30m"`
		} `yaml:"fundamental"`
		Sentiment struct {
			BaseURL      string        `yaml:"base_url" default:"https://gnews.io/api/v4"`
			APIKey       string        `yaml:"api_key"`
			Language     string        `yaml:"language" default:"en"`
			MaxNews      int           `yaml:"max_news" default:"10" validate:"gte=1,lte=100"`
			LookbackDays int           `yaml:"lookback_days" default:"7" validate:"gte=1"`
			Timeout      time.Duration `yaml:"timeout" default:"10s"`
			MinInterval  time.Duration `yaml:"min_interval" default:"2s"`
			CacheTTL     time.Duration `yaml:"cache_ttl" default:"30m"`
			Classifier   string        `yaml:"classifier" default:"keyword" validate:"oneof=keyword openai"`
			OpenAI       struct {
				APIKey      string        `yaml:"api_key"`
				BaseURL     string        `yaml:"base_url"`
				Model       string        `yaml:"model" default:"gpt-4o-mini"`
				Temperature float32       `yaml:"temperature"`
				Timeout     time.Duration `yaml:"timeout" default:"20s"`
			} `yaml:"openai"`
		} `yaml:"sentiment"`
		Macro struct {
			BaseURL  string        `yaml:"base_url" default:"https://api.bcra.gob.ar/estadisticas/v2.0"`
			Timeout  time.Duration `yaml:"timeout" default:"10s"`
			Retries  int           `yaml:"retries" default:"2"`
			CacheTTL time.Duration `yaml:"cache_ttl" default:"6h"`
			Series   struct {
				CER         int `yaml:"cer" default:"30"`
				USDOfficial int `yaml:"usd_official" default:"4"`
				Inflation   int `yaml:"inflation" default:"27"`
				// 0 disables the series; country risk is not published by every provider.
				CountryRisk int `yaml:"country_risk"`
			} `yaml:"series"`
		} `yaml:"macro"`
	} `yaml:"sources"`
	Cache struct {
		MemoryMaxSize int           `yaml:"memory_max_size" default:"2000"`
		MemoryCleanup time.Duration `yaml:"memory_cleanup" default:"5m"`
		L1MaxTTL      time.Duration `yaml:"l1_max_ttl" default:"5m"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"recopulse"`
			PoolSize int    `yaml:"pool_size" default:"10"`
			MinIdle  int    `yaml:"min_idle" default:"2"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"recopulse.recommendations"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		AutoCreate   bool     `yaml:"auto_create_topics"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"100ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"recopulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
}

// envOverrides are read from the process environment (and .env when present).
type envOverrides struct {
	FMPAPIKey    string   `envconfig:"FMP_API_KEY"`
	GNewsAPIKey  string   `envconfig:"GNEWS_API_KEY"`
	OpenAIAPIKey string   `envconfig:"OPENAI_API_KEY"`
	Tickers      []string `envconfig:"TICKERS"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	RedisHost    string   `envconfig:"REDIS_HOST"`
	LogLevel     string   `envconfig:"LOG_LEVEL"`
	Port         int      `envconfig:"PORT"`
}

var validate = validator.New()

// Default returns a config populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	c.normalize()
	return &c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse applies defaults, decodes YAML and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.normalize()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}

	if env.FMPAPIKey != "" {
		c.Sources.Fundamental.APIKey = env.FMPAPIKey
	}
	if env.GNewsAPIKey != "" {
		c.Sources.Sentiment.APIKey = env.GNewsAPIKey
	}
	if env.OpenAIAPIKey != "" {
		c.Sources.Sentiment.OpenAI.APIKey = env.OpenAIAPIKey
	}
	if len(env.Tickers) > 0 {
		c.Scoring.Tickers = env.Tickers
	}
	if len(env.KafkaBrokers) > 0 {
		c.Kafka.Brokers = env.KafkaBrokers
	}
	if env.RedisHost != "" {
		c.Cache.Redis.Host = env.RedisHost
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.Port > 0 {
		c.Server.Port = env.Port
	}
	c.normalize()
	return nil
}

// normalize upper-cases and de-duplicates tickers and fills the default universe.
func (c *Config) normalize() {
	if len(c.Scoring.Tickers) == 0 {
		c.Scoring.Tickers = append([]string(nil), DefaultUniverse...)
	}
	c.Scoring.Tickers = normalizeTickers(c.Scoring.Tickers)
	if len(c.Sources.Fundamental.SupportedTickers) == 0 {
		c.Sources.Fundamental.SupportedTickers = append([]string(nil), c.Scoring.Tickers...)
	}
	c.Sources.Fundamental.SupportedTickers = normalizeTickers(c.Sources.Fundamental.SupportedTickers)
}

func normalizeTickers(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	w := c.Scoring.Weights
	sum := w.Technical + w.Fundamental + w.Macro + w.Sentiment
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("scoring.weights must sum to 1.0 (+/-0.01), got %.4f", sum)
	}
	th := c.Scoring.Thresholds
	if th.Buy <= th.Hold {
		return fmt.Errorf("scoring.thresholds.buy (%v) must be greater than hold (%v)", th.Buy, th.Hold)
	}
	if len(c.Scoring.Tickers) == 0 {
		return fmt.Errorf("scoring.tickers cannot be empty")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}

// Warnings lists non-fatal gaps, such as missing API keys.
func (c *Config) Warnings() []string {
	var out []string
	if c.Sources.Fundamental.APIKey == "" {
		out = append(out, "FMP_API_KEY not configured - fundamental analysis will be neutral")
	}
	if c.Sources.Sentiment.APIKey == "" {
		out = append(out, "GNEWS_API_KEY not configured - sentiment analysis will be neutral")
	}
	if c.Sources.Sentiment.Classifier == "openai" && c.Sources.Sentiment.OpenAI.APIKey == "" {
		out = append(out, "OPENAI_API_KEY not configured - falling back to keyword classifier")
	}
	return out
}
