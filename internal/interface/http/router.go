package http

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Jayesh25-trade/CineVibe/internal/infra/config"
	"github.com/Jayesh25-trade/CineVibe/pkg/metrics"
)

const indexFile = "prompt.html"

var availableEndpoints = []string{
	"GET /api/health",
	"GET /api/trending",
	"GET /api/trending/all",
	"GET /api/now-playing",
	"GET /api/upcoming",
	"POST /api/recommend",
	"GET /api/movie/:title",
	"GET /api/details/:id",
	"GET /api/recommendations/:id",
	"POST /api/room/create",
	"GET /api/room/join/:id",
	"GET /api/history",
}

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		requestIDMiddleware(),
		recoveryMiddleware(handler.logger),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		bodyLimitMiddleware(maxBodyBytes),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger))
	{
		api.GET("/health", handler.Health)
		api.GET("/trending", handler.Trending)
		api.GET("/trending/all", handler.TrendingAll)
		api.GET("/now-playing", handler.NowPlaying)
		api.GET("/upcoming", handler.Upcoming)
		api.POST("/recommend", handler.Recommend)
		api.GET("/movie/:title", handler.MovieByTitle)
		api.GET("/details/:id", handler.Details)
		api.GET("/recommendations/:id", handler.MoreLikeThis)
		api.POST("/room/create", handler.CreateRoom)
		api.GET("/room/join/:id", handler.JoinRoom)
		api.GET("/history", handler.History)
	}

	router.NoRoute(staticOrNotFound(cfg.HTTP.StaticDir))

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds(), "request_id", c.GetString("request_id"))
	}
}

// staticOrNotFound serves the frontend from dir for unmatched GETs and
// answers everything else with the endpoint listing.
func staticOrNotFound(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dir != "" && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
			name := path.Clean("/" + c.Request.URL.Path)
			if name == "/" {
				name = "/" + indexFile
			}
			file := filepath.Join(dir, filepath.FromSlash(name))
			if info, err := os.Stat(file); err == nil && !info.IsDir() {
				c.File(file)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{
			"success":            false,
			"error":              "Endpoint not found",
			"availableEndpoints": availableEndpoints,
		})
	}
}
