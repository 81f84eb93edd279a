package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mrmateussiilva/api-sgp/internal/auth"
	"github.com/mrmateussiilva/api-sgp/internal/config"
	"github.com/mrmateussiilva/api-sgp/internal/domain"
	"github.com/mrmateussiilva/api-sgp/internal/hub"
	"github.com/mrmateussiilva/api-sgp/internal/orders"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// memRepo is an in-memory order store for handler tests.
type memRepo struct {
	mu     sync.Mutex
	orders map[int64]*domain.Order
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{orders: make(map[int64]*domain.Order), nextID: 1}
}

func (m *memRepo) Create(_ context.Context, req domain.OrderCreate) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order := &domain.Order{
		ID:           m.nextID,
		Number:       req.Number,
		EntryDate:    req.EntryDate,
		DeliveryDate: req.DeliveryDate,
		Customer:     req.Customer,
		Priority:     req.Priority,
		Status:       req.Status,
		Items:        req.Items,
	}
	m.orders[order.ID] = order
	m.nextID++
	cp := *order
	return &cp, nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRepo) Update(_ context.Context, id int64, req domain.OrderUpdate) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if req.Status != nil {
		order.Status = *req.Status
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}
	if req.Finance != nil {
		order.Finance = *req.Finance
	}
	cp := *order
	return &cp, nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *memRepo) LatestID(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextID - 1, nil
}

// memSnapshots is an in-memory snapshot store.
type memSnapshots struct {
	mu        sync.Mutex
	snapshots map[int64]*domain.Order
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{snapshots: make(map[int64]*domain.Order)}
}

func (m *memSnapshots) Put(_ context.Context, id int64, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	m.snapshots[id] = &cp
	return nil
}

func (m *memSnapshots) GetLatest(_ context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.snapshots[id]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *memSnapshots) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, id)
	return nil
}

// newTestServer builds a server backed by in-memory stores and a live hub.
func newTestServer(t *testing.T) (*Server, *orders.Service, *hub.Hub) {
	t.Helper()

	cfg := &config.Config{
		AppEnv:            "test",
		Port:              "0",
		TokenSecret:       testSecret,
		HeartbeatInterval: time.Minute,
	}

	clock := clockwork.NewRealClock()
	h := hub.New(clock, cfg.HeartbeatInterval)
	t.Cleanup(h.Stop)

	svc := orders.NewService(newMemRepo(), newMemSnapshots(), h, clock)
	verifier := auth.NewVerifier(cfg.TokenSecret)

	srv := NewServer(cfg, svc, h, verifier, nil, nil, clock)
	return srv, svc, h
}

func signToken(t *testing.T, userID int64, username string, admin bool) string {
	t.Helper()
	token, err := auth.NewVerifier(testSecret).Sign(auth.Identity{
		UserID:   userID,
		Username: username,
		Admin:    admin,
	}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
