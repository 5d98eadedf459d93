package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

type CartService struct {
	Store store.Carts
}

func (s *CartService) Items(ctx context.Context, email string) ([]models.CartItem, error) {
	cart, err := s.Store.GetCart(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []models.CartItem{}, nil
		}
		return nil, storeErr(err, "Cart")
	}
	if cart.Items == nil {
		return []models.CartItem{}, nil
	}
	return cart.Items, nil
}

// AddItem merges into an existing line with the same product and variation.
// The merged line keeps the price captured when it was first added.
func (s *CartService) AddItem(ctx context.Context, email string, item models.CartItem) ([]models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add_item", "product_id", item.ProductID)

	if item.Quantity < 1 {
		return nil, wrap(ErrValidation, "Quantity must be at least 1")
	}
	if item.Price < 0 {
		return nil, wrap(ErrValidation, "Price cannot be negative")
	}
	item.Variation = models.NormalizeVariation(item.Variation)
	if item.Title == "" {
		item.Title = models.UnknownProductTitle
	}

	items, err := s.Store.AddCartItem(ctx, email, item)
	if err != nil {
		l.Error("add_item_error", "status", 500, "error", err)
		return nil, storeErr(err, "Cart")
	}
	return items, nil
}

// UpdateQuantity overwrites the line quantity; qty <= 0 removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, email, productID string, variation *string, qty int) ([]models.CartItem, error) {
	items, err := s.Store.SetCartItemQuantity(ctx, email, productID, models.NormalizeVariation(variation), qty)
	if err != nil {
		return nil, storeErr(err, "Cart")
	}
	return items, nil
}

func (s *CartService) RemoveItem(ctx context.Context, email, productID string, variation *string) ([]models.CartItem, error) {
	items, err := s.Store.RemoveCartItem(ctx, email, productID, models.NormalizeVariation(variation))
	if err != nil {
		return nil, storeErr(err, "Cart")
	}
	return items, nil
}

func (s *CartService) Clear(ctx context.Context, email string) error {
	return storeErr(s.Store.ClearCart(ctx, email), "Cart")
}
