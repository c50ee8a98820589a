// Package room manages short-lived watch rooms identified by a six
// character code.
package room

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	apperrors "github.com/Jayesh25-trade/CineVibe/pkg/errors"
)

const (
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength   = 6
)

// Store persists room codes.
type Store interface {
	// Create records id unless it already exists and reports whether it did.
	Create(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// Config controls room lifetime.
type Config struct {
	TTL time.Duration
}

// Service exposes room operations.
type Service interface {
	Create(ctx context.Context) (string, error)
	Join(ctx context.Context, id string) (string, error)
}

type service struct {
	cfg     Config
	store   Store
	newCode func() (string, error)
	logger  *slog.Logger
}

// NewService is a wire provider for rooms.
func NewService(cfg Config, store Store, logger *slog.Logger) Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &service{cfg: cfg, store: store, newCode: randomCode, logger: logger.With("component", "room.service")}
}

func (s *service) Create(ctx context.Context) (string, error) {
	id, err := s.newCode()
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "Failed to create room", err)
	}
	created, err := s.store.Create(ctx, id, s.cfg.TTL)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "Failed to create room", err)
	}
	if !created {
		return "", apperrors.Wrap(apperrors.CodeRoomExists, "Room already exists", nil)
	}
	s.logger.Info("room created", "room_id", id)
	return id, nil
}

func (s *service) Join(ctx context.Context, id string) (string, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return "", apperrors.Wrap(apperrors.CodeNotFound, "Room not found", nil)
	}
	ok, err := s.store.Exists(ctx, id)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "Failed to join room", err)
	}
	if !ok {
		return "", apperrors.Wrap(apperrors.CodeNotFound, "Room not found", nil)
	}
	return id, nil
}

func randomCode() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate room code: %w", err)
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
