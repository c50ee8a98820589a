package historystore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/history"
)

// ValkeyStore keeps history in a sorted set of mood keys scored by search
// time, with the item payloads in a hash.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "cinevibe"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Save(ctx context.Context, item history.Item, limit int) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	key := history.Key(item.Mood)
	score := float64(item.Timestamp.UnixMilli())

	results := s.client.DoMulti(ctx,
		s.client.B().Zadd().Key(s.indexKey()).ScoreMember().ScoreMember(score, key).Build(),
		s.client.B().Hset().Key(s.itemsKey()).FieldValue().FieldValue(key, string(payload)).Build(),
	)
	for _, r := range results {
		if err := r.Error(); err != nil {
			return err
		}
	}
	if limit <= 0 {
		return nil
	}
	return s.trim(ctx, limit)
}

// trim drops everything older than the newest limit entries.
func (s *ValkeyStore) trim(ctx context.Context, limit int) error {
	stale, err := s.client.Do(ctx, s.client.B().Zrange().Key(s.indexKey()).Min("0").Max(fmt.Sprint(-limit-1)).Build()).AsStrSlice()
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}
	results := s.client.DoMulti(ctx,
		s.client.B().Zrem().Key(s.indexKey()).Member(stale...).Build(),
		s.client.B().Hdel().Key(s.itemsKey()).Field(stale...).Build(),
	)
	for _, r := range results {
		if err := r.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ValkeyStore) Recent(ctx context.Context, limit int) ([]history.Item, error) {
	if limit <= 0 {
		limit = 10
	}
	keys, err := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.indexKey()).Start(0).Stop(int64(limit-1)).Build()).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return []history.Item{}, nil
		}
		return nil, err
	}
	if len(keys) == 0 {
		return []history.Item{}, nil
	}
	values, err := s.client.Do(ctx, s.client.B().Hmget().Key(s.itemsKey()).Field(keys...).Build()).ToArray()
	if err != nil {
		return nil, err
	}
	out := make([]history.Item, 0, len(values))
	for _, v := range values {
		payload, err := v.ToString()
		if err != nil {
			if valkey.IsValkeyNil(err) {
				continue
			}
			return nil, err
		}
		var item history.Item
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *ValkeyStore) indexKey() string {
	return fmt.Sprintf("%s:history", s.prefix)
}

func (s *ValkeyStore) itemsKey() string {
	return fmt.Sprintf("%s:history:items", s.prefix)
}

var _ history.Store = (*ValkeyStore)(nil)
