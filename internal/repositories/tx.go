package repositories

import "context"

// Repositories groups the repositories that take part in checkout and
// fulfillment units of work.
type Repositories struct {
	Products    ProductRepository
	Carts       CartRepository
	Orders      OrderRepository
	Adjustments StockAdjustmentRepository
}

// TxManager runs fn as a single all-or-nothing unit of work. If fn returns
// an error every write made through the given repositories is discarded.
type TxManager interface {
	Transaction(ctx context.Context, fn func(repos Repositories) error) error
}
