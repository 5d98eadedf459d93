package transport

import (
	"time"

	"github.com/Skotchmaster/droneshop/internal/models"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Success *bool  `json:"success,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type ProductsPage struct {
	Products   []models.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

type CreatedResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ProductID  string `json:"productId,omitempty"`
	RatingID   string `json:"ratingId,omitempty"`
	UserID     string `json:"userId,omitempty"`
	InsertedID string `json:"insertedId,omitempty"`
}

type RegisterResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	UserID    string `json:"userId"`
	EmailSent bool   `json:"emailSent"`
}

type SessionUser struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type LoginResponse struct {
	Success     bool        `json:"success"`
	User        SessionUser `json:"user"`
	AccessToken string      `json:"accessToken,omitempty"`
}

type PlaceOrderResponse struct {
	Success        bool   `json:"success"`
	OrderID        string `json:"orderId"`
	InsertedID     string `json:"insertedId"`
	TrackingNumber string `json:"trackingNumber"`
}

type CartResponse struct {
	Success bool              `json:"success"`
	Cart    []models.CartItem `json:"cart"`
	Message string            `json:"message,omitempty"`
}

type WishlistResponse struct {
	Success  bool     `json:"success"`
	Wishlist []string `json:"wishlist"`
}

type WishlistCheckResponse struct {
	IsInWishlist bool `json:"isInWishlist"`
}

type AdminUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type CheckAdminResponse struct {
	IsAdmin bool       `json:"isAdmin"`
	User    *AdminUser `json:"user"`
}

type UserSummary struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewUserSummary(u models.User) UserSummary {
	role := u.Role
	if role == "" {
		role = models.RoleUser
	}
	return UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      role,
		Active:    u.IsActive(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
	Filename string `json:"filename"`
}

type SearchResponse struct {
	Query      string           `json:"query"`
	Products   []models.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

type RootResponse struct {
	Message  string `json:"message"`
	Database string `json:"database"`
}
