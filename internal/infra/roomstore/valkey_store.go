package roomstore

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/room"
)

// ValkeyStore persists room codes with SET NX so concurrent instances
// never hand out the same code twice.
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

func (s *ValkeyStore) Create(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	builder := s.client.B().Set().Key(s.roomKey(id)).Value("1").Nx()
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	err := s.client.Do(ctx, cmd).Error()
	if err != nil {
		// NX on an existing key answers nil
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *ValkeyStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Do(ctx, s.client.B().Exists().Key(s.roomKey(id)).Build()).AsInt64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *ValkeyStore) roomKey(id string) string {
	return fmt.Sprintf("%s:room:%s", s.prefix, id)
}

var _ room.Store = (*ValkeyStore)(nil)
