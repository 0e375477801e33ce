package repositories

import (
	"context"
	"sync"

	"kulit/internal/models"
)

// MemoryStore keeps products, carts, orders and the stock ledger in memory.
// Transactions hold the store lock for their whole duration and restore a
// snapshot when the unit of work fails.
type MemoryStore struct {
	mu          sync.Mutex
	products    map[string]models.Product
	carts       map[string]models.Cart
	orders      map[string]models.Order
	adjustments []models.StockAdjustment
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]models.Product),
		carts:    make(map[string]models.Cart),
		orders:   make(map[string]models.Order),
	}
}

// Repositories returns repositories that lock the store per call.
func (s *MemoryStore) Repositories() Repositories {
	return s.repositories(false)
}

func (s *MemoryStore) repositories(inTx bool) Repositories {
	v := memoryView{store: s, inTx: inTx}
	return Repositories{
		Products:    &MockProductRepository{v},
		Carts:       &MockCartRepository{v},
		Orders:      &MockOrderRepository{v},
		Adjustments: &MockStockAdjustmentRepository{v},
	}
}

// Transaction runs fn with exclusive access to the store.
func (s *MemoryStore) Transaction(ctx context.Context, fn func(repos Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(s.repositories(true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	products    map[string]models.Product
	carts       map[string]models.Cart
	orders      map[string]models.Order
	adjustments int
}

// snapshot copies the maps. Stored values are never mutated in place, so a
// shallow copy of each map is enough.
func (s *MemoryStore) snapshot() memorySnapshot {
	snap := memorySnapshot{
		products:    make(map[string]models.Product, len(s.products)),
		carts:       make(map[string]models.Cart, len(s.carts)),
		orders:      make(map[string]models.Order, len(s.orders)),
		adjustments: len(s.adjustments),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.carts {
		snap.carts[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.products = snap.products
	s.carts = snap.carts
	s.orders = snap.orders
	s.adjustments = s.adjustments[:snap.adjustments]
}

// memoryView is embedded by the mock repositories. Inside a transaction the
// store lock is already held.
type memoryView struct {
	store *MemoryStore
	inTx  bool
}

func (v memoryView) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.store.mu.Lock()
	return v.store.mu.Unlock
}
