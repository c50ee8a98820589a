// Package history keeps the most recent distinct moods searched.
package history

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Jayesh25-trade/CineVibe/pkg/errors"
)

// Item is one remembered search.
type Item struct {
	ID        string    `json:"id"`
	Mood      string    `json:"mood"`
	Timestamp time.Time `json:"timestamp"`
}

// Key folds case and surrounding space so repeated searches collapse.
func Key(mood string) string {
	return strings.ToLower(strings.TrimSpace(mood))
}

// Store persists history items.
type Store interface {
	// Save upserts item by Key(item.Mood) and keeps only the newest limit items.
	Save(ctx context.Context, item Item, limit int) error
	// Recent returns up to limit items, newest first.
	Recent(ctx context.Context, limit int) ([]Item, error)
}

// Config bounds the history size.
type Config struct {
	Limit int
}

// Service records and lists searches.
type Service interface {
	Record(ctx context.Context, mood string) (Item, error)
	Recent(ctx context.Context, limit int) ([]Item, error)
}

type service struct {
	cfg    Config
	store  Store
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// NewService is a wire provider for search history.
func NewService(cfg Config, store Store, logger *slog.Logger) Service {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	return &service{
		cfg:    cfg,
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger.With("component", "history.service"),
	}
}

func (s *service) Record(ctx context.Context, mood string) (Item, error) {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return Item{}, apperrors.Wrap(apperrors.CodeInvalidInput, "Mood is required and must be non-empty", nil)
	}
	item := Item{ID: s.newID(), Mood: mood, Timestamp: s.now().UTC()}
	if err := s.store.Save(ctx, item, s.cfg.Limit); err != nil {
		return Item{}, apperrors.Wrap(apperrors.CodeInternal, "Failed to save search history", err)
	}
	return item, nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 || limit > s.cfg.Limit {
		limit = s.cfg.Limit
	}
	items, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to load search history", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}
