package service

import (
	"context"
	"errors"
	"slices"

	"github.com/Skotchmaster/droneshop/internal/store"
)

type WishlistService struct {
	Store store.Wishlists
}

func (s *WishlistService) Items(ctx context.Context, email string) ([]string, error) {
	w, err := s.Store.GetWishlist(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []string{}, nil
		}
		return nil, storeErr(err, "Wishlist")
	}
	if w.Items == nil {
		return []string{}, nil
	}
	return w.Items, nil
}

func (s *WishlistService) Add(ctx context.Context, email, productID string) ([]string, error) {
	items, err := s.Store.AddWishlistItem(ctx, email, productID)
	return items, storeErr(err, "Wishlist")
}

func (s *WishlistService) Remove(ctx context.Context, email, productID string) ([]string, error) {
	items, err := s.Store.RemoveWishlistItem(ctx, email, productID)
	return items, storeErr(err, "Wishlist")
}

func (s *WishlistService) Contains(ctx context.Context, email, productID string) (bool, error) {
	items, err := s.Items(ctx, email)
	if err != nil {
		return false, err
	}
	return slices.Contains(items, productID), nil
}
