//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/Jayesh25-trade/CineVibe/internal/bootstrap"
	"github.com/Jayesh25-trade/CineVibe/internal/domain/discover"
	"github.com/Jayesh25-trade/CineVibe/internal/domain/history"
	"github.com/Jayesh25-trade/CineVibe/internal/domain/recommender"
	"github.com/Jayesh25-trade/CineVibe/internal/domain/room"
	"github.com/Jayesh25-trade/CineVibe/internal/domain/trending"
	"github.com/Jayesh25-trade/CineVibe/internal/infra/config"
	"github.com/Jayesh25-trade/CineVibe/internal/infra/llm/chatgpt"
	"github.com/Jayesh25-trade/CineVibe/internal/infra/tmdb"
	httpiface "github.com/Jayesh25-trade/CineVibe/internal/interface/http"
	"github.com/Jayesh25-trade/CineVibe/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideTransport,
		provideTMDBClient,
		provideChatGPTClient,
		provideRecommenderConfig,
		provideTrendingConfig,
		provideDiscoverConfig,
		provideRoomConfig,
		provideHistoryConfig,
		provideRoomStore,
		provideHistoryStore,
		trending.NewCache,
		recommender.NewService,
		discover.NewService,
		room.NewService,
		history.NewService,
		wire.Bind(new(trending.Source), new(*tmdb.Client)),
		wire.Bind(new(recommender.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(recommender.MovieFinder), new(*tmdb.Client)),
		wire.Bind(new(recommender.TrendingSource), new(*trending.Cache)),
		wire.Bind(new(discover.Catalog), new(*tmdb.Client)),
		wire.Bind(new(httpiface.TrendingReader), new(*trending.Cache)),
		wire.Bind(new(bootstrap.Warmer), new(*trending.Cache)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
