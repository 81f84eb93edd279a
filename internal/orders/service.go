// Package orders implements the mutation pipeline: commit the change to the
// order store, materialize the post-mutation snapshot, then announce the
// event. The snapshot write strictly precedes the broadcast so a subscriber
// that re-reads the snapshot after an announcement never observes state
// older than the announcement.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mrmateussiilva/api-sgp/internal/domain"
	"github.com/mrmateussiilva/api-sgp/internal/logging"
	"github.com/mrmateussiilva/api-sgp/internal/metrics"
	"github.com/mrmateussiilva/api-sgp/internal/platform/retry"
)

const (
	snapshotRetryAttempts = 3
	snapshotRetryBackoff  = 100 * time.Millisecond
)

type Service struct {
	repo        domain.OrderRepository
	snapshots   domain.SnapshotStore
	broadcaster domain.Broadcaster
	clock       clockwork.Clock
}

func NewService(repo domain.OrderRepository, snapshots domain.SnapshotStore, broadcaster domain.Broadcaster, clock clockwork.Clock) *Service {
	return &Service{
		repo:        repo,
		snapshots:   snapshots,
		broadcaster: broadcaster,
		clock:       clock,
	}
}

// Create commits a new order, snapshots it, and announces it. A store
// failure aborts with no side effects; everything after the commit is
// best-effort and never fails the caller.
func (s *Service) Create(ctx context.Context, req domain.OrderCreate, actor *domain.Actor) (*domain.Order, error) {
	s.applyCreateDefaults(&req)
	if req.Status != "" && !domain.ValidStatus(req.Status) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, req.Status)
	}

	order, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	metrics.OrderMutationsTotal.WithLabelValues("create").Inc()

	s.writeSnapshot(ctx, order)
	s.broadcaster.BroadcastAll(domain.Event{
		Kind:    domain.EventCreated,
		OrderID: order.ID,
		Order:   order,
		Actor:   actor,
	})
	return order, nil
}

// Update applies a partial update. Alongside the unconditional updated event,
// a status_changed event is emitted when any status-relevant field actually
// changed, both carrying the same post-mutation payload.
func (s *Service) Update(ctx context.Context, id int64, req domain.OrderUpdate, actor *domain.Actor) (*domain.Order, error) {
	if req.Status != nil && !domain.ValidStatus(*req.Status) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *req.Status)
	}

	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	after, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", id, err)
	}
	metrics.OrderMutationsTotal.WithLabelValues("update").Inc()

	s.writeSnapshot(ctx, after)

	s.broadcaster.BroadcastAll(domain.Event{
		Kind:    domain.EventUpdated,
		OrderID: after.ID,
		Order:   after,
		Actor:   actor,
	})
	if before.StatusFields() != after.StatusFields() {
		s.broadcaster.BroadcastAll(domain.Event{
			Kind:    domain.EventStatusChanged,
			OrderID: after.ID,
			Order:   after,
			Actor:   actor,
		})
	}
	return after, nil
}

// Delete removes the order and its snapshot, then announces the deletion
// with no payload.
func (s *Service) Delete(ctx context.Context, id int64, actor *domain.Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.OrderMutationsTotal.WithLabelValues("delete").Inc()

	if err := s.snapshots.Delete(ctx, id); err != nil {
		slog.Error("failed to delete order snapshot", "order_id", id, "error", err)
	}

	s.broadcaster.BroadcastAll(domain.Event{
		Kind:    domain.EventDeleted,
		OrderID: id,
		Actor:   actor,
	})
	return nil
}

// Get reads one order from the store.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// List reads orders matching the filter.
func (s *Service) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	if filter.Status != "" && !domain.ValidStatus(filter.Status) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, filter.Status)
	}
	return s.repo.List(ctx, filter)
}

// GetLatest serves the snapshot read path. A missing snapshot falls back to
// the order store and backfills, healing the degraded window left by a
// failed snapshot write.
func (s *Service) GetLatest(ctx context.Context, id int64) (*domain.Order, error) {
	snap, err := s.snapshots.GetLatest(ctx, id)
	if err == nil {
		return snap, nil
	}

	order, repoErr := s.repo.GetByID(ctx, id)
	if repoErr != nil {
		return nil, repoErr
	}
	slog.Warn("snapshot missing, backfilling from order store", "order_id", id, "error", err)
	s.writeSnapshot(ctx, order)
	return order, nil
}

// LatestID returns the highest committed order id, read from the store so it
// reflects a single serialized source rather than an in-process counter.
func (s *Service) LatestID(ctx context.Context) (int64, error) {
	return s.repo.LatestID(ctx)
}

// writeSnapshot materializes the post-mutation view. Failure degrades the
// snapshot read path until the next successful write for this id; it is
// retried, logged loudly, and never surfaced to the mutation's caller.
func (s *Service) writeSnapshot(ctx context.Context, order *domain.Order) {
	policy := retry.Policy{
		MaxAttempts:    snapshotRetryAttempts,
		InitialBackoff: snapshotRetryBackoff,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("snapshot write failed, retrying",
				"order_id", order.ID,
				"attempt", attempt,
				"backoff", backoff,
				"error", err,
			)
		},
	}
	err := retry.Do(ctx, policy, func() error {
		return s.snapshots.Put(ctx, order.ID, order)
	})
	if err != nil {
		metrics.SnapshotWriteFailures.Inc()
		logging.WithOrder(order.ID).Error("snapshot write failed permanently, read path degraded",
			"error", err,
		)
	}
}

func (s *Service) applyCreateDefaults(req *domain.OrderCreate) {
	now := s.clock.Now().UTC()
	if req.Number == "" {
		req.Number = strconv.FormatInt(now.Unix(), 10)
	}
	if req.EntryDate == "" {
		req.EntryDate = now.Format("2006-01-02")
	}
	if req.DeliveryDate == "" {
		req.DeliveryDate = req.EntryDate
	}
	if req.Priority == "" {
		req.Priority = domain.PriorityNormal
	}
	if req.Status == "" {
		req.Status = domain.StatusPending
	}
	if len(req.Items) == 0 {
		req.Items = []byte("[]")
	}
}
