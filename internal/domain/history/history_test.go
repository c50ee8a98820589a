package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/Jayesh25-trade/CineVibe/pkg/errors"
	"github.com/Jayesh25-trade/CineVibe/pkg/logger"
)

type stubStore struct {
	saved     []Item
	lastLimit int
	items     []Item
	err       error
}

func (s *stubStore) Save(_ context.Context, item Item, limit int) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, item)
	s.lastLimit = limit
	return nil
}

func (s *stubStore) Recent(_ context.Context, limit int) ([]Item, error) {
	s.lastLimit = limit
	return s.items, s.err
}

func TestRecordStampsItem(t *testing.T) {
	store := &stubStore{}
	svc := NewService(Config{}, store, logger.Discard()).(*service)
	fixed := time.Date(2024, 3, 9, 10, 0, 0, 0, time.FixedZone("X", 3600))
	svc.now = func() time.Time { return fixed }
	svc.newID = func() string { return "id-1" }

	item, err := svc.Record(context.Background(), "  feel good 90s  ")
	require.NoError(t, err)
	require.Equal(t, Item{ID: "id-1", Mood: "feel good 90s", Timestamp: fixed.UTC()}, item)
	require.Equal(t, 10, store.lastLimit)
	require.Len(t, store.saved, 1)
}

func TestRecordRejectsBlankMood(t *testing.T) {
	store := &stubStore{}
	_, err := NewService(Config{}, store, logger.Discard()).Record(context.Background(), " ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Empty(t, store.saved)
}

func TestRecentClampsLimit(t *testing.T) {
	tests := []struct {
		asked int
		want  int
	}{
		{asked: 0, want: 5},
		{asked: -1, want: 5},
		{asked: 3, want: 3},
		{asked: 50, want: 5},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.asked), func(t *testing.T) {
			store := &stubStore{}
			items, err := NewService(Config{Limit: 5}, store, logger.Discard()).Recent(context.Background(), tt.asked)
			require.NoError(t, err)
			require.NotNil(t, items)
			require.Equal(t, tt.want, store.lastLimit)
		})
	}
}

func TestStoreErrorsAreInternal(t *testing.T) {
	store := &stubStore{err: errors.New("db down")}
	svc := NewService(Config{}, store, logger.Discard())

	_, err := svc.Record(context.Background(), "noir")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInternal))
	_, err = svc.Recent(context.Background(), 3)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInternal))
}

func TestKey(t *testing.T) {
	require.Equal(t, Key(" Rainy Day "), Key("rainy day"))
}
