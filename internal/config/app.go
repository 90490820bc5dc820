package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultConfigFile = "config.yaml"

type HTTPServer struct {
	Port string `mapstructure:"port" validate:"required,numeric"`
}

// RatesAPI is the rates backend a converter session fetches its table from.
type RatesAPI struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

// ExchangeRateAPI is the upstream provider behind the /rates endpoint. An empty APIKey
// disables the endpoint.
type ExchangeRateAPI struct {
	BaseURL  string `mapstructure:"base_url" validate:"required,url"`
	APIKey   string `mapstructure:"api_key"`
	BaseCode string `mapstructure:"base_code" validate:"required,len=3,alpha"`
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"gte=0"`
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Sessions struct {
	MaxItems   int64 `mapstructure:"max_items" validate:"gt=0"`
	TTLSeconds int   `mapstructure:"ttl_seconds" validate:"gte=0"`
}

type Scheduler struct {
	JobDurationSec int `mapstructure:"job_duration_sec" validate:"gt=0"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	HTTPServer      HTTPServer      `mapstructure:"http_server"`
	RatesAPI        RatesAPI        `mapstructure:"rates_api"`
	ExchangeRateAPI ExchangeRateAPI `mapstructure:"exchange_rate_api"`
	HTTPClient      HTTPClient      `mapstructure:"http_client"`
	CORS            CORS            `mapstructure:"cors"`
	Sessions        Sessions        `mapstructure:"sessions"`
	Scheduler       Scheduler       `mapstructure:"scheduler"`
	Logging         Logging         `mapstructure:"logging"`
}

// Init loads .env (if present) and the file named by CONFIG_PATH, config.yaml by default.
func Init() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigFile
	}
	return Load(path)
}

// Load reads the yaml file at path, which may be missing, and applies defaults and env overrides.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	v := viper.New()

	v.SetDefault("http_server.port", "5000")
	v.SetDefault("rates_api.base_url", "http://localhost:5000")
	v.SetDefault("exchange_rate_api.base_url", "https://v6.exchangerate-api.com/v6")
	v.SetDefault("exchange_rate_api.base_code", "USD")
	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("sessions.max_items", 10000)
	v.SetDefault("sessions.ttl_seconds", 1800)
	v.SetDefault("scheduler.job_duration_sec", 15)
	v.SetDefault("logging.level", "info")

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	_ = v.BindEnv("http_server.port", "PORT")

	// converter rates source
	_ = v.BindEnv("rates_api.base_url", "RATES_API_URL")

	// upstream provider
	_ = v.BindEnv("exchange_rate_api.base_url", "EXCHANGE_API_URL")
	_ = v.BindEnv("exchange_rate_api.api_key", "EXCHANGE_API_KEY")
	_ = v.BindEnv("exchange_rate_api.base_code", "EXCHANGE_API_BASE")

	// http client env vars
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")

	_ = v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")
	_ = v.BindEnv("sessions.max_items", "SESSIONS_MAX_ITEMS")
	_ = v.BindEnv("sessions.ttl_seconds", "SESSIONS_TTL_SECONDS")
	_ = v.BindEnv("scheduler.job_duration_sec", "SCHEDULER_JOB_DURATION_SEC")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.RatesAPI.BaseURL = strings.TrimSuffix(cfg.RatesAPI.BaseURL, "/")
	cfg.ExchangeRateAPI.BaseURL = strings.TrimSuffix(cfg.ExchangeRateAPI.BaseURL, "/")
	cfg.ExchangeRateAPI.BaseCode = strings.ToUpper(cfg.ExchangeRateAPI.BaseCode)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// UpstreamLatestURL is the provider URL the base currency code is appended to. It embeds
// the API key and must not be logged.
func (c ExchangeRateAPI) UpstreamLatestURL() string {
	return fmt.Sprintf("%s/%s/latest", c.BaseURL, c.APIKey)
}
