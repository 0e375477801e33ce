package services

import (
	"errors"
	"fmt"

	"kulit/internal/models"
	"kulit/internal/repositories"

	"github.com/im7mortal/kmutex"
)

// CartService manages per-user carts. Mutations for one user are serialized;
// different users never wait on each other.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	locks    *kmutex.Kmutex
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		locks:    kmutex.New(),
	}
}

// withUserLock runs fn while holding the user's cart lock.
func (s *CartService) withUserLock(userID string, fn func() error) error {
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)
	return fn()
}

// AddItem adds quantity units of (productID, color). An existing line is
// merged and its quantity clamped to the live stock and MaxItemQuantity.
func (s *CartService) AddItem(userID, productID, color string, quantity int) (*models.CartView, error) {
	product, err := s.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if err := checkPurchasable(product, color); err != nil {
		return nil, err
	}
	if product.Stock <= 0 {
		return nil, models.NewStockError(product, quantity)
	}
	if quantity < models.MinItemQuantity || quantity > models.MaxItemQuantity {
		return nil, fmt.Errorf("%w: quantity must be between %d and %d", models.ErrInvalidQuantity, models.MinItemQuantity, models.MaxItemQuantity)
	}
	if quantity > product.Stock {
		return nil, models.NewStockError(product, quantity)
	}

	var cart *models.Cart
	err = s.withUserLock(userID, func() error {
		cart, err = s.carts.Get(userID)
		if err != nil {
			return err
		}
		if idx := cart.Find(productID, color); idx >= 0 {
			merged := cart.Items[idx].Quantity + quantity
			merged = min(merged, product.Stock, models.MaxItemQuantity)
			cart.Items[idx] = snapshotLine(product, color, merged)
		} else {
			cart.Items = append(cart.Items, snapshotLine(product, color, quantity))
		}
		return s.carts.Save(cart)
	})
	if err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// UpdateItem sets the quantity of an existing line. Zero removes the line.
func (s *CartService) UpdateItem(userID, productID, color string, quantity int) (*models.CartView, error) {
	if quantity < 0 || quantity > models.MaxItemQuantity {
		return nil, fmt.Errorf("%w: quantity must be between 0 and %d", models.ErrInvalidQuantity, models.MaxItemQuantity)
	}
	if quantity == 0 {
		return s.RemoveItem(userID, productID, color)
	}

	product, err := s.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, models.NewStockError(product, quantity)
	}

	var cart *models.Cart
	err = s.withUserLock(userID, func() error {
		cart, err = s.carts.Get(userID)
		if err != nil {
			return err
		}
		idx := cart.Find(productID, color)
		if idx < 0 {
			return fmt.Errorf("cart item %s (%s) %w", productID, color, models.ErrNotFound)
		}
		if err := checkPurchasable(product, color); err != nil {
			return err
		}
		cart.Items[idx] = snapshotLine(product, color, quantity)
		return s.carts.Save(cart)
	})
	if err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// RemoveItem drops a line. Removing an absent line is a no-op.
func (s *CartService) RemoveItem(userID, productID, color string) (*models.CartView, error) {
	var cart *models.Cart
	err := s.withUserLock(userID, func() error {
		var err error
		cart, err = s.carts.Get(userID)
		if err != nil {
			return err
		}
		if !cart.Remove(productID, color) {
			return nil
		}
		return s.carts.Save(cart)
	})
	if err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// Clear empties the cart unconditionally.
func (s *CartService) Clear(userID string) error {
	return s.withUserLock(userID, func() error {
		return s.carts.Clear(userID)
	})
}

// GetCart returns the cart annotated with live stock and price. It does not
// write anything.
func (s *CartService) GetCart(userID string) (*models.CartView, error) {
	cart, err := s.carts.Get(userID)
	if err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// view derives totals from the stored snapshots and annotates each line with
// the live catalog state. Lookup failures mark the line unavailable.
func (s *CartService) view(cart *models.Cart) *models.CartView {
	v := &models.CartView{
		UserID:    cart.UserID,
		Items:     make([]models.CartLineView, 0, len(cart.Items)),
		CartTotal: cart.Total(),
		ItemCount: cart.ItemCount(),
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		line := models.CartLineView{CartItem: item}
		product, err := s.products.GetByID(item.ProductID)
		if err == nil {
			line.LivePrice = product.Price
			line.LiveStock = product.Stock
			line.Available = product.Status == models.ProductActive && product.Stock >= item.Quantity
			line.PriceDrift = !product.Price.Equal(item.Price)
		} else if !errors.Is(err, models.ErrNotFound) {
			line.LivePrice = item.Price
			line.LiveStock = item.Stock
			line.Available = true
		}
		v.Items = append(v.Items, line)
	}
	return v
}

func snapshotLine(product *models.Product, color string, quantity int) models.CartItem {
	return models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.Image,
		Color:     color,
		Quantity:  quantity,
		Price:     product.Price,
		Stock:     product.Stock,
	}
}

// checkPurchasable rejects products that are not on sale or colors the
// product does not come in.
func checkPurchasable(product *models.Product, color string) error {
	if product.Status != models.ProductActive {
		return fmt.Errorf("%w: %s", models.ErrProductUnavailable, product.Name)
	}
	if !product.HasColor(color) {
		return fmt.Errorf("%w: %s does not come in %q", models.ErrInvalidColor, product.Name, color)
	}
	return nil
}
