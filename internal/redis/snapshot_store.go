package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mrmateussiilva/api-sgp/internal/domain"
)

// SnapshotStore keeps the single latest materialized view per order in Redis.
// Writes overwrite unconditionally; there is no version history.
type SnapshotStore struct {
	rdb *goredis.Client
}

func NewSnapshotStore(rdb *goredis.Client) *SnapshotStore {
	return &SnapshotStore{rdb: rdb}
}

func snapshotKey(id int64) string {
	return "order:snapshot:" + strconv.FormatInt(id, 10)
}

// Put overwrites the snapshot for an order id with the given view.
func (s *SnapshotStore) Put(ctx context.Context, id int64, order *domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, snapshotKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// GetLatest returns the current snapshot, or domain.ErrSnapshotNotFound.
func (s *SnapshotStore) GetLatest(ctx context.Context, id int64) (*domain.Order, error) {
	data, err := s.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &order, nil
}

// Delete removes the snapshot for a deleted order. Deleting an absent
// snapshot is a no-op.
func (s *SnapshotStore) Delete(ctx context.Context, id int64) error {
	if err := s.rdb.Del(ctx, snapshotKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
