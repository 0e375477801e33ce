package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"kulit/internal/events"
	"kulit/internal/metrics"
	"kulit/internal/models"
	"kulit/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// publishTimeout bounds a best-effort event publication.
const publishTimeout = 5 * time.Second

// OrderResult is an order together with non-fatal warnings raised by
// best-effort collaborators after the order was committed.
type OrderResult struct {
	Order    *models.Order `json:"order"`
	Warnings []string      `json:"warnings,omitempty"`
}

// CheckoutQuote prices the current cart at live prices without placing an order.
type CheckoutQuote struct {
	Items        []models.OrderItem `json:"items"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
	ShippingFee  decimal.Decimal    `json:"shipping_fee"`
	Total        decimal.Decimal    `json:"total"`
	FreeShipping bool               `json:"free_shipping"`
}

// OrderService handles checkout and the order status lifecycle.
type OrderService struct {
	txm       repositories.TxManager
	orderRepo repositories.OrderRepository
	cartRepo  repositories.CartRepository
	products  repositories.ProductRepository
	cart      *CartService
	shipping  *ShippingService
	publisher events.Publisher
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(txm repositories.TxManager, repos repositories.Repositories, cart *CartService, shipping *ShippingService, publisher events.Publisher) *OrderService {
	return &OrderService{
		txm:       txm,
		orderRepo: repos.Orders,
		cartRepo:  repos.Carts,
		products:  repos.Products,
		cart:      cart,
		shipping:  shipping,
		publisher: publisher,
	}
}

// GetAllOrders retrieves all orders, optionally filtered by status.
func (s *OrderService) GetAllOrders(status models.OrderStatus) ([]models.Order, error) {
	if status == "" {
		return s.orderRepo.GetAll()
	}
	return s.orderRepo.GetByStatus(status)
}

// GetOrdersForUser retrieves the orders placed by userID.
func (s *OrderService) GetOrdersForUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// GetOrderForUser retrieves an order owned by userID. Orders of other users
// are reported as not found.
func (s *OrderService) GetOrderForUser(userID, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order with ID %s %w", orderID, models.ErrNotFound)
	}
	return order, nil
}

// Quote prices the user's cart at live prices and resolves the shipping fee.
func (s *OrderService) Quote(userID string, address models.ShippingAddress) (*CheckoutQuote, error) {
	cart, err := s.cartRepo.Get(userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, models.ErrEmptyCart
	}
	items, subtotal, err := priceCart(s.products, cart.Items)
	if err != nil {
		return nil, err
	}
	fee, err := s.shipping.FeeFor(address, subtotal)
	if err != nil {
		return nil, err
	}
	return &CheckoutQuote{
		Items:        items,
		Subtotal:     subtotal,
		ShippingFee:  fee,
		Total:        subtotal.Add(fee),
		FreeShipping: s.shipping.IsFreeShipping(subtotal),
	}, nil
}

// CreateOrder turns the user's cart into an order. Live prices are
// re-read, stock is decremented with conditional updates, the order is
// inserted and the cart cleared, all in one transaction: either every step
// commits or none does.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, address models.ShippingAddress, method models.PaymentMethod) (*OrderResult, error) {
	if method != models.PaymentCashOnDelivery {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidPaymentMethod, method)
	}

	// The region fee is resolved up front; the free-shipping threshold is
	// applied to the live subtotal inside the transaction.
	regionFee, err := s.shipping.ResolveFee(address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve shipping fee: %w", err)
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		ShippingAddress: address,
		PaymentMethod:   method,
		PaymentDetails:  models.PaymentDetails{Status: initialPaymentStatus(method)},
		Status:          models.StatusPending,
	}

	err = s.cart.withUserLock(userID, func() error {
		return s.txm.Transaction(ctx, func(repos repositories.Repositories) error {
			cart, err := repos.Carts.Get(userID)
			if err != nil {
				return err
			}
			if len(cart.Items) == 0 {
				return models.ErrEmptyCart
			}

			items, subtotal, err := priceCart(repos.Products, cart.Items)
			if err != nil {
				return err
			}

			// Decrement in product order so concurrent checkouts lock rows
			// in the same sequence.
			byProduct := append([]models.OrderItem(nil), items...)
			sort.SliceStable(byProduct, func(i, j int) bool {
				return byProduct[i].ProductID < byProduct[j].ProductID
			})
			reason := "order:" + order.ID
			for _, item := range byProduct {
				if _, err := applyAdjustment(repos, item.ProductID, models.AdjustmentRemove, item.Quantity, reason); err != nil {
					return err
				}
			}

			order.Items = items
			order.Subtotal = subtotal
			order.ShippingFee = s.shipping.ApplyThreshold(regionFee, subtotal)
			order.Total = order.Subtotal.Add(order.ShippingFee)
			order.CreatedAt = time.Now()
			if err := repos.Orders.Create(order); err != nil {
				return err
			}
			return repos.Carts.Checkout(userID)
		})
	})
	if err != nil {
		metrics.CheckoutRejected.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	log.Printf("[Order] Order %s placed by user %s: %d items, total %s", order.ID, userID, len(order.Items), order.Total)

	result := &OrderResult{Order: order}
	s.notify(ctx, result, events.RoutingOrderCreated, "")
	return result, nil
}

// UpdateOrderStatus moves an order to target. Shipping attaches the
// shipment info, delivering a cash-on-delivery order completes its payment
// and cancelling returns every item's quantity to stock through the ledger.
// A rejected transition changes nothing.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, target models.OrderStatus, shipment *models.ShipmentInfo, reason string) (*OrderResult, error) {
	var (
		order    *models.Order
		previous models.OrderStatus
	)
	err := s.txm.Transaction(ctx, func(repos repositories.Repositories) error {
		var err error
		order, err = repos.Orders.GetByID(orderID)
		if err != nil {
			return err
		}
		previous = order.Status
		if !previous.CanTransitionTo(target) {
			return fmt.Errorf("%w: order %s cannot move from %s to %s", models.ErrInvalidTransition, orderID, previous, target)
		}

		now := time.Now()
		switch target {
		case models.StatusShipped:
			if shipment == nil {
				return fmt.Errorf("%w: carrier and tracking number must be provided to ship", models.ErrEmptyReason)
			}
			order.Carrier = shipment.Carrier
			order.TrackingNumber = shipment.TrackingNumber
			order.ShippedAt = &now
		case models.StatusDelivered:
			order.DeliveredAt = &now
			if order.PaymentMethod == models.PaymentCashOnDelivery {
				order.PaymentDetails.Status = models.PaymentCompleted
				order.PaymentDetails.PaidAt = &now
			}
		case models.StatusCancelled:
			order.CancelledAt = &now
			order.CancelReason = reason
		}
		order.Status = target
		order.UpdatedAt = now
		// The status write is conditional on previous and runs before any
		// restock, so a concurrent transition from the same status loses here.
		if err := repos.Orders.UpdateFulfillment(order, previous); err != nil {
			return err
		}

		if target == models.StatusCancelled {
			restock := "cancel:" + order.ID
			for _, item := range order.Items {
				if _, err := applyAdjustment(repos, item.ProductID, models.AdjustmentAdd, item.Quantity, restock); err != nil {
					return fmt.Errorf("failed to restock %s for cancelled order %s: %w", item.ProductID, order.ID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderTransitions.WithLabelValues(string(target)).Inc()
	log.Printf("[Order] Order %s moved from %s to %s", orderID, previous, target)

	result := &OrderResult{Order: order}
	s.notify(ctx, result, events.RoutingOrderStatusChanged, previous)
	return result, nil
}

// CancelOrder lets the owner cancel an order that has not shipped yet.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID, reason string) (*OrderResult, error) {
	if _, err := s.GetOrderForUser(userID, orderID); err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "cancelled by customer"
	}
	return s.UpdateOrderStatus(ctx, orderID, models.StatusCancelled, nil, reason)
}

// notify publishes the order event. Failures are logged and reported as
// warnings; the committed order is never affected.
func (s *OrderService) notify(ctx context.Context, result *OrderResult, routingKey string, previous models.OrderStatus) {
	if s.publisher == nil {
		log.Printf("[Order] No event publisher configured. Skipping %s for order %s.", routingKey, result.Order.ID)
		return
	}

	body, err := events.NewOrderEvent(routingKey, result.Order, previous).Encode()
	if err == nil {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		err = s.publisher.Publish(pubCtx, routingKey, body)
	}
	if err != nil {
		metrics.NotificationFailures.Inc()
		log.Printf("Warning: Failed to publish %s event for order %s: %v", routingKey, result.Order.ID, err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("order notification could not be sent: %v", err))
	}
}

// priceCart re-reads every product, validates it is still for sale and that
// live stock covers the quantity requested across all colors, and snapshots
// live prices into order items.
func priceCart(products repositories.ProductRepository, lines []models.CartItem) ([]models.OrderItem, decimal.Decimal, error) {
	requested := make(map[string]int)
	for _, line := range lines {
		if line.Quantity < models.MinItemQuantity || line.Quantity > models.MaxItemQuantity {
			return nil, decimal.Zero, fmt.Errorf("%w: quantity of %s must be between %d and %d",
				models.ErrInvalidQuantity, line.Name, models.MinItemQuantity, models.MaxItemQuantity)
		}
		requested[line.ProductID] += line.Quantity
	}

	live := make(map[string]*models.Product)
	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		product, seen := live[line.ProductID]
		if !seen {
			var err error
			product, err = products.GetByID(line.ProductID)
			if err != nil {
				return nil, decimal.Zero, err
			}
			live[line.ProductID] = product
		}
		// Every line is checked against the live color list, not only the
		// first line of each product.
		if err := checkPurchasable(product, line.Color); err != nil {
			return nil, decimal.Zero, err
		}
		if !seen && product.Stock < requested[product.ID] {
			return nil, decimal.Zero, models.NewStockError(product, requested[product.ID])
		}

		item := models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Color:     line.Color,
			Quantity:  line.Quantity,
			Price:     product.Price,
		}
		items = append(items, item)
		subtotal = subtotal.Add(item.Subtotal())
	}
	return items, subtotal, nil
}

func initialPaymentStatus(method models.PaymentMethod) models.PaymentStatus {
	if method == models.PaymentCashOnDelivery {
		return models.PaymentPending
	}
	return models.PaymentProcessing
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, models.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, models.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrProductUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
