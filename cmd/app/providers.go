package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/discover"
	"github.com/Jayesh25-trade/CineVibe/internal/domain/history"
	"github.com/Jayesh25-trade/CineVibe/internal/domain/recommender"
	"github.com/Jayesh25-trade/CineVibe/internal/domain/room"
	"github.com/Jayesh25-trade/CineVibe/internal/domain/trending"
	"github.com/Jayesh25-trade/CineVibe/internal/infra/config"
	"github.com/Jayesh25-trade/CineVibe/internal/infra/historystore"
	"github.com/Jayesh25-trade/CineVibe/internal/infra/httpx"
	"github.com/Jayesh25-trade/CineVibe/internal/infra/llm/chatgpt"
	"github.com/Jayesh25-trade/CineVibe/internal/infra/roomstore"
	"github.com/Jayesh25-trade/CineVibe/internal/infra/tmdb"
)

const valkeyPrefix = "cinevibe"

// provideTransport shares one connection pool between upstream clients.
func provideTransport(cfg *config.Config) *http.Transport {
	return httpx.NewTransport(cfg.Outbound.ForceIPv4)
}

func outboundConfig(cfg *config.Config, name string, timeout time.Duration) httpx.Config {
	return httpx.Config{
		Name:              name,
		Timeout:           timeout,
		Attempts:          cfg.Outbound.Attempts,
		BaseDelay:         cfg.Outbound.BaseDelay,
		MaxJitter:         cfg.Outbound.MaxJitter,
		RequestsPerSecond: cfg.Outbound.RequestsPerSecond,
		Burst:             cfg.Outbound.Burst,
		Breaker: httpx.BreakerConfig{
			Enabled:     cfg.Outbound.Breaker.Enabled,
			Failures:    cfg.Outbound.Breaker.Failures,
			OpenTimeout: cfg.Outbound.Breaker.OpenTimeout,
		},
	}
}

func provideTMDBClient(cfg *config.Config, transport *http.Transport, logger *slog.Logger) (*tmdb.Client, error) {
	getter := httpx.New(outboundConfig(cfg, "tmdb", cfg.TMDB.Timeout), transport, logger)
	return tmdb.NewClient(tmdb.Config{
		BaseURL:  cfg.TMDB.BaseURL,
		APIKey:   cfg.TMDB.APIKey,
		V4Token:  cfg.TMDB.V4Token,
		Language: cfg.TMDB.Language,
		Region:   cfg.TMDB.Region,
	}, getter, logger)
}

func provideChatGPTClient(cfg *config.Config, transport *http.Transport, logger *slog.Logger) (*chatgpt.Client, error) {
	poster := httpx.New(outboundConfig(cfg, "openai", cfg.LLM.Timeout), transport, logger)
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, poster)
}

func provideRecommenderConfig(cfg *config.Config) recommender.Config {
	return recommender.Config{
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		MaxTokens:     cfg.LLM.MaxTokens,
		SystemPrompt:  cfg.Recommend.SystemPrompt,
		TitleCount:    cfg.Recommend.TitleCount,
		MaxCandidates: cfg.Recommend.MaxCandidates,
		MaxMoodLength: cfg.Recommend.MaxMoodLength,
		MinRating:     cfg.Recommend.MinRating,
		Floor:         cfg.Recommend.Floor,
		Target:        cfg.Recommend.Target,
		Concurrency:   cfg.Recommend.Concurrency,
	}
}

func provideTrendingConfig(cfg *config.Config) trending.Config {
	return trending.Config{
		TTL:         cfg.Trending.TTL,
		MinRating:   cfg.Trending.MinRating,
		Limit:       cfg.Trending.Limit,
		Concurrency: cfg.Trending.Concurrency,
	}
}

func provideDiscoverConfig(cfg *config.Config) discover.Config {
	return discover.Config{
		MinRating:  cfg.Recommend.MinRating,
		SimilarCap: discover.DefaultConfig().SimilarCap,
	}
}

func provideRoomConfig(cfg *config.Config) room.Config {
	return room.Config{TTL: cfg.Rooms.TTL}
}

func provideHistoryConfig(cfg *config.Config) history.Config {
	return history.Config{Limit: cfg.History.Limit}
}

func provideRoomStore(cfg *config.Config, logger *slog.Logger) room.Store {
	if cfg.Rooms.Valkey.Enabled {
		if client, ok := connectValkey(cfg.Rooms.Valkey.Addr, logger); ok {
			logger.Info("room valkey store enabled", "addr", cfg.Rooms.Valkey.Addr)
			return roomstore.NewValkeyStore(client, valkeyPrefix)
		}
	}
	return roomstore.NewMemoryStore()
}

func provideHistoryStore(cfg *config.Config, logger *slog.Logger) history.Store {
	if store, ok := providePostgresHistoryStore(cfg, logger); ok {
		return store
	}
	if cfg.History.Valkey.Enabled {
		if client, ok := connectValkey(cfg.History.Valkey.Addr, logger); ok {
			logger.Info("history valkey store enabled", "addr", cfg.History.Valkey.Addr)
			return historystore.NewValkeyStore(client, valkeyPrefix)
		}
	}
	return historystore.NewMemoryStore()
}

func providePostgresHistoryStore(cfg *config.Config, logger *slog.Logger) (*historystore.PostgresStore, bool) {
	dsn := strings.TrimSpace(cfg.History.Postgres.DSN)
	if dsn == "" {
		return nil, false
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, skipping postgres history store", "error", err)
		return nil, false
	}
	if cfg.History.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.History.Postgres.MaxConns
	}
	if cfg.History.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.History.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, skipping postgres history store", "error", err)
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, skipping postgres history store", "error", err)
		pool.Close()
		return nil, false
	}
	store := historystore.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to create history schema, skipping postgres history store", "error", err)
		pool.Close()
		return nil, false
	}
	logger.Info("history postgres store enabled")
	return store, true
}

func connectValkey(addr string, logger *slog.Logger) (valkey.Client, bool) {
	opt, err := buildValkeyOptions(addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return nil, false
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return nil, false
	}
	return client, true
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
