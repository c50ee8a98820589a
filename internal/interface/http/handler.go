package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/discover"
	"github.com/Jayesh25-trade/CineVibe/internal/domain/history"
	"github.com/Jayesh25-trade/CineVibe/internal/domain/movie"
	"github.com/Jayesh25-trade/CineVibe/internal/domain/recommender"
	"github.com/Jayesh25-trade/CineVibe/internal/domain/room"
)

const apiVersion = "2.2.0"

var features = []string{"recommendations", "trending", "detailed-info", "more-like-this"}

// TrendingReader is the trending cache surface the API needs.
type TrendingReader interface {
	Trending(ctx context.Context) []movie.Record
	Fresh() bool
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	recommenderSvc recommender.Service
	trending       TrendingReader
	discoverSvc    discover.Service
	roomSvc        room.Service
	historySvc     history.Service
	logger         *slog.Logger
	now            func() time.Time
}

// NewHandler constructs the root HTTP handler.
func NewHandler(recommenderSvc recommender.Service, trending TrendingReader, discoverSvc discover.Service, roomSvc room.Service, historySvc history.Service, logger *slog.Logger) *Handler {
	return &Handler{
		recommenderSvc: recommenderSvc,
		trending:       trending,
		discoverSvc:    discoverSvc,
		roomSvc:        roomSvc,
		historySvc:     historySvc,
		logger:         logger.With("component", "http.handler"),
		now:            time.Now,
	}
}

// Health reports liveness and the feature set.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
		"version":   apiVersion,
		"features":  features,
	})
}

// Trending serves the cached trending list.
func (h *Handler) Trending(c *gin.Context) {
	movies := h.trending.Trending(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(movies),
		"movies":  movies,
		"cached":  h.trending.Fresh(),
	})
}

// Recommend runs the mood pipeline and remembers the mood on success.
func (h *Handler) Recommend(c *gin.Context) {
	var req recommender.Request
	// an empty body is validated as an empty mood
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "Invalid JSON body", err))
		return
	}

	resp, err := h.recommenderSvc.Recommend(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomain(err, http.StatusServiceUnavailable, "Internal server error"))
		return
	}

	if h.historySvc != nil {
		if _, err := h.historySvc.Record(c.Request.Context(), resp.Mood); err != nil {
			h.logger.Warn("search history not recorded", "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"mood":           resp.Mood,
		"count":          resp.Count,
		"movies":         resp.Movies,
		"processingTime": resp.ProcessingTime,
	})
}

// MovieByTitle searches a title and returns its details with trailer.
func (h *Handler) MovieByTitle(c *gin.Context) {
	title := c.Param("title")
	if decoded, err := url.PathUnescape(title); err == nil {
		title = decoded
	}
	rec, err := h.discoverSvc.MovieByTitle(c.Request.Context(), title)
	if err != nil {
		abortWithError(c, fromDomain(err, http.StatusBadGateway, "Failed to search for movie"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "movie": rec})
}

// Details looks an id up as a movie, then as a TV show.
func (h *Handler) Details(c *gin.Context) {
	rec, err := h.discoverSvc.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, fromDomain(err, http.StatusBadGateway, "Failed to fetch details"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "movie": rec})
}

// MoreLikeThis lists titles related to an id.
func (h *Handler) MoreLikeThis(c *gin.Context) {
	movies, err := h.discoverSvc.Similar(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, fromDomain(err, http.StatusInternalServerError, "Failed to fetch recommendations"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(movies), "movies": movies})
}

// TrendingAll returns the regional trending rows.
func (h *Handler) TrendingAll(c *gin.Context) {
	rows, err := h.discoverSvc.TrendingAll(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomain(err, http.StatusBadGateway, "Failed to fetch trending"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hollywood": rows.Hollywood, "bollywood": rows.Bollywood, "anime": rows.Anime})
}

// NowPlaying returns US and India theatrical listings.
func (h *Handler) NowPlaying(c *gin.Context) {
	out, err := h.discoverSvc.NowPlaying(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomain(err, http.StatusBadGateway, "Failed to fetch now playing"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "us": out.US, "in": out.IN})
}

// Upcoming returns the regional upcoming rows.
func (h *Handler) Upcoming(c *gin.Context) {
	rows, err := h.discoverSvc.Upcoming(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomain(err, http.StatusBadGateway, "Failed to fetch upcoming"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hollywood": rows.Hollywood, "bollywood": rows.Bollywood, "anime": rows.Anime})
}

// CreateRoom allocates a new watch room code.
func (h *Handler) CreateRoom(c *gin.Context) {
	id, err := h.roomSvc.Create(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomain(err, http.StatusInternalServerError, "Failed to create room"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "roomId": id})
}

// JoinRoom confirms a room code exists.
func (h *Handler) JoinRoom(c *gin.Context) {
	id, err := h.roomSvc.Join(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, fromDomain(err, http.StatusInternalServerError, "Failed to join room"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "roomId": id})
}

// History lists recent moods, newest first.
func (h *Handler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer", err))
			return
		}
		limit = parsed
	}
	items, err := h.historySvc.Recent(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, fromDomain(err, http.StatusInternalServerError, "Failed to load search history"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "history": items})
}
