package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"FinScreen/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required,oneof=development staging production test"`
	Log         struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format     string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output     string `yaml:"output" default:"stdout"`
		TimeFormat string `yaml:"time_format"`
		Collect    struct {
			Enabled     bool          `yaml:"enabled"`
			Topic       string        `yaml:"topic" default:"finscreen.logs"`
			Interval    time.Duration `yaml:"interval" default:"30s"`
			Threshold   int           `yaml:"threshold" default:"100" validate:"gte=1"`
			IncludeWarn bool          `yaml:"include_warn"`
		} `yaml:"collect"`
	} `yaml:"log"`
	Edinet struct {
		ListURL      string        `yaml:"list_url" default:"https://disclosure.edinet-fsa.go.jp/api/v2/documents.json" validate:"required,url"`
		DocumentURL  string        `yaml:"document_url" default:"https://api.edinet-fsa.go.jp/api/v2/documents" validate:"required,url"`
		APIKey       string        `yaml:"api_key"`
		Timeout      time.Duration `yaml:"timeout" default:"60s"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3" validate:"gte=1,lte=10"`
		StorageDir   string        `yaml:"storage_dir" default:"downloads" validate:"required"`
		ExistingMode string        `yaml:"existing_mode" default:"skip" validate:"oneof=skip replace"`
		From         string        `yaml:"from" validate:"omitempty,datetime=2006-01-02"`
		To           string        `yaml:"to" validate:"omitempty,datetime=2006-01-02"`
	} `yaml:"edinet"`
	Screening struct {
		MinScorePerStock        float64  `yaml:"min_score_per_stock" default:"0"`
		MinEarningsPerStock     float64  `yaml:"min_earnings_per_stock" default:"0"`
		MinScoreRatio           float64  `yaml:"min_score_ratio" default:"0.1"`
		MaxPriceEarningsRatio   float64  `yaml:"max_price_earnings_ratio" default:"10" validate:"gt=0"`
		CodeLength              int      `yaml:"code_length" default:"4" validate:"gte=1"`
		BlacklistIndustries     []string `yaml:"blacklist_industries" default:"[\"建設業\",\"銀行業\",\"不動産業\"]"`
		UnfavourableAnalystMark []string `yaml:"unfavourable_analyst_marks" default:"[\"割高\"]"`
		UnfavourablePickMark    []string `yaml:"unfavourable_pick_marks" default:"[\"売り\"]"`
		OptionalTier            struct {
			Enabled                 bool    `yaml:"enabled"`
			MinAverageSalary        float64 `yaml:"min_average_salary" default:"6000000"`
			MinEmployeeEarningPower float64 `yaml:"min_employee_earning_power" default:"0.1"`
			// ten-thousand-yen units
			MinBoardMemberReward float64 `yaml:"min_board_member_reward" default:"1000"`
		} `yaml:"optional_tier"`
	} `yaml:"screening"`
	Providers struct {
		YahooURL          string        `yaml:"yahoo_url" default:"https://finance.yahoo.co.jp" validate:"required,url"`
		MinkabuURL        string        `yaml:"minkabu_url" default:"https://minkabu.jp" validate:"required,url"`
		UserAgent         string        `yaml:"user_agent" default:"Mozilla/5.0 (compatible; finscreen/1.0)"`
		Timeout           time.Duration `yaml:"timeout" default:"15s"`
		CacheTTL          time.Duration `yaml:"cache_ttl" default:"6h"`
		RequestsPerSecond float64       `yaml:"requests_per_second" default:"1" validate:"gt=0"`
		Burst             int           `yaml:"burst" default:"2" validate:"gte=1"`
	} `yaml:"providers"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379" validate:"required_if=Enabled true"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost" validate:"required_if=Enabled true"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"finscreen"`
		Table            string        `yaml:"table" default:"screening_results"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers" validate:"required_if=Enabled true"`
		Topic        string   `yaml:"topic" default:"finscreen.results"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
}

var validate = validator.New()

// ErrMissingAPIKey is returned when a command needs the disclosure API credential.
var ErrMissingAPIKey = errors.New("edinet.api_key is required (set EDINET_API_KEY)")

// Load reads a YAML configuration file, fills defaults and validates it.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// Variables from envFiles (".env" when none given) are loaded first; missing
// files are ignored and already-set variables win.
func LoadWithEnv(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	c, err := read(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// read fills defaults first so that explicit zero values in the file win.
func read(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("EDINET_API_KEY"); v != "" {
		c.Edinet.APIKey = v
	}
	if v := os.Getenv("DOWNLOAD_DIR"); v != "" {
		c.Edinet.StorageDir = v
	}
	if v := os.Getenv("EXISTING_MODE"); v != "" {
		c.Edinet.ExistingMode = v
	}
	if v := os.Getenv("ANALYSIS_FROM"); v != "" {
		c.Edinet.From = v
	}
	if v := os.Getenv("ANALYSIS_TO"); v != "" {
		c.Edinet.To = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, _, err := c.DateRange(time.Now()); err != nil {
		return err
	}
	return nil
}

// RequireAPIKey fails when the disclosure API credential is missing.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Edinet.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// DateRange resolves the analysis window. A missing bound defaults to the
// day of now; from must not be after to.
func (c *Config) DateRange(now time.Time) (time.Time, time.Time, error) {
	y, m, d := now.In(util.JST).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, util.JST)
	from, to := today, today
	var err error
	if c.Edinet.From != "" {
		if from, err = util.ParseDate(c.Edinet.From); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("edinet.from: %w", err)
		}
	}
	if c.Edinet.To != "" {
		if to, err = util.ParseDate(c.Edinet.To); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("edinet.to: %w", err)
		}
	} else if c.Edinet.From != "" && from.After(today) {
		to = from
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("edinet.from %s is after edinet.to %s", from.Format(util.DateLayout), to.Format(util.DateLayout))
	}
	return from, to, nil
}
