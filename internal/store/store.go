// Package store defines the persistence contract shared by the MongoDB and
// SQL backends.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Skotchmaster/droneshop/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// NewID returns a fresh identifier. Both backends use the 24-char hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

func ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// ProductSortFields lists the sortable product fields by their wire names.
var ProductSortFields = map[string]bool{
	"title":         true,
	"price":         true,
	"originalPrice": true,
	"category":      true,
	"stock":         true,
	"views":         true,
	"sales":         true,
	"averageRating": true,
	"totalRatings":  true,
	"createdAt":     true,
	"updatedAt":     true,
}

type ProductQuery struct {
	Category string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string
	Desc     bool
	Offset   int
	Limit    int
}

type OrderFilter struct {
	Email  string
	Status string
}

type UserFilter struct {
	Active *bool
}

type RatingStats struct {
	Average float64
	Total   int64
}

type Products interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, int64, error)
	FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error)
	LatestProducts(ctx context.Context, limit int) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) error
	DeleteProduct(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	IncrementSales(ctx context.Context, id string, qty int) error
	SetRatingSummary(ctx context.Context, id string, stats RatingStats) error
	DistinctCategories(ctx context.Context) ([]string, error)
}

type Ratings interface {
	CreateRating(ctx context.Context, r *models.Rating) error
	ListRatings(ctx context.Context, productID string) ([]models.Rating, error)
	RatingStats(ctx context.Context, productID string) (RatingStats, error)
	DeleteRating(ctx context.Context, id string) (*models.Rating, error)
}

type Categories interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
}

type Accounts interface {
	CreateAuth(ctx context.Context, a *models.Auth) error
	GetAuthByEmail(ctx context.Context, email string) (*models.Auth, error)
	// RedeemVerifyToken marks the owning account verified and clears the
	// token in one step. It fails with ErrNotFound for unknown or expired tokens.
	RedeemVerifyToken(ctx context.Context, token string, now time.Time) (string, error)
	SetVerifyToken(ctx context.Context, email, token string, expires time.Time) error
	DeleteAuth(ctx context.Context, email string) (bool, error)
}

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	UpsertUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, f UserFilter) ([]models.User, error)
	SetUserRole(ctx context.Context, email, role string) error
	SetUserActive(ctx context.Context, email string, active bool) error
	DeleteUser(ctx context.Context, email string) (bool, error)
}

type Carts interface {
	GetCart(ctx context.Context, email string) (*models.Cart, error)
	// AddCartItem merges into an existing line with the same product and
	// variation, keeping that line's price snapshot.
	AddCartItem(ctx context.Context, email string, item models.CartItem) ([]models.CartItem, error)
	// SetCartItemQuantity removes the line when qty <= 0.
	SetCartItemQuantity(ctx context.Context, email, productID string, variation *string, qty int) ([]models.CartItem, error)
	RemoveCartItem(ctx context.Context, email, productID string, variation *string) ([]models.CartItem, error)
	ClearCart(ctx context.Context, email string) error
	DeleteCart(ctx context.Context, email string) error
}

type Wishlists interface {
	GetWishlist(ctx context.Context, email string) (*models.Wishlist, error)
	AddWishlistItem(ctx context.Context, email, productID string) ([]string, error)
	RemoveWishlistItem(ctx context.Context, email, productID string) ([]string, error)
	DeleteWishlist(ctx context.Context, email string) error
}

type Orders interface {
	// CreateOrder fails with ErrDuplicate when the tracking number is taken.
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrderByTracking(ctx context.Context, trackingNumber string) (*models.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	// AppendStatus sets the current status and appends entry to the history
	// atomically. A non-empty trackingNumber replaces the stored one.
	AppendStatus(ctx context.Context, id string, entry models.StatusEntry, trackingNumber string) error
	DeleteOrder(ctx context.Context, id string) error
}

type Store interface {
	Products
	Ratings
	Categories
	Accounts
	Users
	Carts
	Wishlists
	Orders

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
