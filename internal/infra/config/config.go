package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	TMDB      TMDBConfig      `yaml:"tmdb"`
	Outbound  OutboundConfig  `yaml:"outbound"`
	Recommend RecommendConfig `yaml:"recommend"`
	Trending  TrendingConfig  `yaml:"trending"`
	Rooms     RoomsConfig     `yaml:"rooms"`
	History   HistoryConfig   `yaml:"history"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
	// StaticDir is served at / when it exists.
	StaticDir string `yaml:"staticDir"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// TMDBConfig contains metadata provider credentials. V4Token wins over APIKey.
type TMDBConfig struct {
	APIKey   string        `yaml:"apiKey"`
	V4Token  string        `yaml:"v4Token"`
	BaseURL  string        `yaml:"baseUrl"`
	Language string        `yaml:"language"`
	Region   string        `yaml:"region"`
	Timeout  time.Duration `yaml:"timeout"`
}

// OutboundConfig is the retry, pacing and breaker policy shared by upstream clients.
type OutboundConfig struct {
	Attempts          uint          `yaml:"attempts"`
	BaseDelay         time.Duration `yaml:"baseDelay"`
	MaxJitter         time.Duration `yaml:"maxJitter"`
	ForceIPv4         bool          `yaml:"forceIPv4"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
	Breaker           BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the per-upstream circuit breaker.
type BreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Failures    uint32        `yaml:"failures"`
	OpenTimeout time.Duration `yaml:"openTimeout"`
}

// RecommendConfig tunes the recommendation pipeline.
type RecommendConfig struct {
	TitleCount    int     `yaml:"titleCount"`
	MaxCandidates int     `yaml:"maxCandidates"`
	MinRating     float64 `yaml:"minRating"`
	Floor         int     `yaml:"floor"`
	Target        int     `yaml:"target"`
	MaxMoodLength int     `yaml:"maxMoodLength"`
	Concurrency   int     `yaml:"concurrency"`
	SystemPrompt  string  `yaml:"systemPrompt"`
}

// TrendingConfig tunes the trending cache.
type TrendingConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	MinRating   float64       `yaml:"minRating"`
	Limit       int           `yaml:"limit"`
	Concurrency int           `yaml:"concurrency"`
	WarmOnStart bool          `yaml:"warmOnStart"`
}

// RoomsConfig selects the room store.
type RoomsConfig struct {
	TTL    time.Duration `yaml:"ttl"`
	Valkey ValkeyConfig  `yaml:"valkey"`
}

// HistoryConfig selects the search history store. Postgres wins over Valkey.
type HistoryConfig struct {
	Limit    int            `yaml:"limit"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// ValkeyConfig contains connection information for key-value storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.HTTP.StaticDir = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}

	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}

	if v := os.Getenv("TMDB_API_KEY"); v != "" {
		cfg.TMDB.APIKey = v
	}
	if v := os.Getenv("TMDB_V4_TOKEN"); v != "" {
		cfg.TMDB.V4Token = v
	}
	if v := os.Getenv("TMDB_BASE_URL"); v != "" {
		cfg.TMDB.BaseURL = v
	}

	if v := os.Getenv("FORCE_IPV4"); v != "" {
		cfg.Outbound.ForceIPv4 = parseBool(v)
	}
	if v := os.Getenv("OUTBOUND_ATTEMPTS"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Outbound.Attempts = uint(parsed)
		}
	}
	if v := os.Getenv("OUTBOUND_BASE_DELAY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Outbound.BaseDelay = parsed
		}
	}
	if v := os.Getenv("OUTBOUND_RPS"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Outbound.RequestsPerSecond = parsed
		}
	}
	if v := os.Getenv("OUTBOUND_BREAKER_ENABLED"); v != "" {
		cfg.Outbound.Breaker.Enabled = parseBool(v)
	}

	if v := os.Getenv("RECOMMEND_CONCURRENCY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Recommend.Concurrency = parsed
		}
	}
	if v := os.Getenv("TRENDING_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Trending.TTL = parsed
		}
	}

	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Rooms.Valkey.Addr = v
		cfg.History.Valkey.Addr = v
	}
	if v := os.Getenv("ROOMS_VALKEY_ENABLED"); v != "" {
		cfg.Rooms.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("HISTORY_VALKEY_ENABLED"); v != "" {
		cfg.History.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("HISTORY_POSTGRES_DSN"); v != "" {
		cfg.History.Postgres.DSN = v
	}
	if v := os.Getenv("HISTORY_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.Postgres.MaxConns = int32(parsed)
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":5000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			CORSOrigins: []string{
				"http://localhost:8080",
				"http://localhost:3000",
				"http://localhost:5000",
				"http://127.0.0.1:5500",
				"https://cinevibe-ej8v.onrender.com",
				"https://cinevibe-frontend.netlify.app",
			},
			StaticDir: "public",
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.8,
			MaxTokens:   600,
			Timeout:     20 * time.Second,
		},
		TMDB: TMDBConfig{
			Language: "en-US",
			Region:   "US",
			Timeout:  15 * time.Second,
		},
		Outbound: OutboundConfig{
			Attempts:          4,
			BaseDelay:         300 * time.Millisecond,
			MaxJitter:         100 * time.Millisecond,
			RequestsPerSecond: 40,
			Burst:             20,
			Breaker: BreakerConfig{
				Enabled:     true,
				Failures:    5,
				OpenTimeout: 30 * time.Second,
			},
		},
		Recommend: RecommendConfig{
			TitleCount:    15,
			MaxCandidates: 30,
			MinRating:     5.0,
			Floor:         8,
			Target:        15,
			MaxMoodLength: 500,
		},
		Trending: TrendingConfig{
			TTL:         time.Hour,
			MinRating:   6.0,
			Limit:       20,
			Concurrency: 4,
			WarmOnStart: true,
		},
		Rooms: RoomsConfig{
			TTL: 24 * time.Hour,
		},
		History: HistoryConfig{
			Limit: 10,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.TMDB.APIKey) == "" && strings.TrimSpace(c.TMDB.V4Token) == "" {
		return errors.New("tmdb.apiKey or tmdb.v4Token is required")
	}
	if c.Outbound.Attempts == 0 {
		return errors.New("outbound.attempts must be positive")
	}
	if c.Outbound.Breaker.Enabled && c.Outbound.Breaker.Failures == 0 {
		return errors.New("outbound.breaker.failures must be positive")
	}
	if c.Recommend.MaxMoodLength <= 0 {
		return errors.New("recommend.maxMoodLength must be positive")
	}
	if c.Recommend.Floor < 0 || c.Recommend.Target < c.Recommend.Floor {
		return errors.New("recommend.target must be at least recommend.floor")
	}
	if c.Recommend.Concurrency < 0 {
		return errors.New("recommend.concurrency cannot be negative")
	}
	if c.Trending.TTL <= 0 {
		return errors.New("trending.ttl must be positive")
	}
	if c.Trending.Concurrency <= 0 {
		return errors.New("trending.concurrency must be positive")
	}
	if c.Rooms.Valkey.Enabled && strings.TrimSpace(c.Rooms.Valkey.Addr) == "" {
		return errors.New("rooms.valkey.addr cannot be empty when valkey is enabled")
	}
	if c.History.Valkey.Enabled && strings.TrimSpace(c.History.Valkey.Addr) == "" {
		return errors.New("history.valkey.addr cannot be empty when valkey is enabled")
	}
	if c.History.Limit <= 0 {
		return errors.New("history.limit must be positive")
	}
	return nil
}
