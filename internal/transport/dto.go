// Package transport holds the JSON request and response shapes of the HTTP API
// and validates requests once at the boundary.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/droneshop/internal/models"
)

var ErrInvalidRequest = errors.New("invalid request")

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
}

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"     validate:"required"`
}

var registerMessages = messages{
	"Email.required":    "Email, password, and name are required",
	"Password.required": "Email, password, and name are required",
	"Name.required":     "Email, password, and name are required",
	"Email.email":       "Invalid email format",
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	return check(r, registerMessages)
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return check(r, messages{
		"Email":    "Email and password are required",
		"Password": "Email and password are required",
	})
}

type EmailRequest struct {
	Email string `json:"email" validate:"required"`
}

func (r *EmailRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return check(r, messages{"Email": "Email is required"})
}

type ProductRequest struct {
	Title         string             `json:"title"         validate:"required"`
	Description   string             `json:"description"`
	Img           string             `json:"img"`
	Price         *FlexFloat         `json:"price"         validate:"required,finite,gte=0"`
	OriginalPrice *FlexFloat         `json:"originalPrice" validate:"omitempty,finite,gte=0"`
	Category      string             `json:"category"`
	Stock         int                `json:"stock"         validate:"gte=0"`
	Featured      bool               `json:"featured"`
	Variations    []models.Variation `json:"variations"`
}

var productMessages = messages{
	"Title":          "Title is required",
	"Price.required": "Price is required",
	"Price.finite":   "Price must be a number",
	"Price":          "Price cannot be negative",
	"OriginalPrice":  "Original price must be a non-negative number",
	"Stock":          "Stock cannot be negative",
}

func (r *ProductRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if err := check(r, productMessages); err != nil {
		return err
	}
	return validVariations(r.Variations)
}

func (r *ProductRequest) Product() *models.Product {
	p := &models.Product{
		Title:       r.Title,
		Description: r.Description,
		Img:         r.Img,
		Price:       float64(*r.Price),
		Category:    strings.TrimSpace(r.Category),
		Stock:       r.Stock,
		Featured:    r.Featured,
		Variations:  r.Variations,
	}
	if r.OriginalPrice != nil {
		p.OriginalPrice = float64(*r.OriginalPrice)
	}
	return p
}

type ProductPatchRequest struct {
	Title         *string             `json:"title"`
	Description   *string             `json:"description"`
	Img           *string             `json:"img"`
	Price         *FlexFloat          `json:"price"         validate:"omitempty,finite,gte=0"`
	OriginalPrice *FlexFloat          `json:"originalPrice" validate:"omitempty,finite,gte=0"`
	Category      *string             `json:"category"`
	Stock         *int                `json:"stock"         validate:"omitempty,gte=0"`
	Featured      *bool               `json:"featured"`
	Variations    *[]models.Variation `json:"variations"`
}

func (r *ProductPatchRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return invalid("Title cannot be empty")
	}
	if err := check(r, productMessages); err != nil {
		return err
	}
	if r.Variations != nil {
		if err := validVariations(*r.Variations); err != nil {
			return err
		}
	}
	if r.Patch().Empty() {
		return invalid("No fields to update")
	}
	return nil
}

func (r *ProductPatchRequest) Patch() models.ProductPatch {
	return models.ProductPatch{
		Title:         r.Title,
		Description:   r.Description,
		Img:           r.Img,
		Price:         r.Price.Ptr(),
		OriginalPrice: r.OriginalPrice.Ptr(),
		Category:      r.Category,
		Stock:         r.Stock,
		Featured:      r.Featured,
		Variations:    r.Variations,
	}
}

func validVariations(vs []models.Variation) error {
	for _, v := range vs {
		if strings.TrimSpace(v.Name) == "" {
			return invalid("Variation name is required")
		}
		if err := validate.Var(v.Price, "finite,gte=0"); err != nil {
			return invalid("Variation price cannot be negative")
		}
	}
	return nil
}

type RatingRequest struct {
	ProductID string    `json:"productId" validate:"required"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Img       string    `json:"img"`
	Text      string    `json:"text"`
	Rating    FlexFloat `json:"rating"    validate:"finite,min=1,max=5,whole"`
}

func (r *RatingRequest) Validate() error {
	return check(r, messages{
		"ProductID":    "Product ID is required",
		"Rating.whole": "Rating must be a whole number",
		"Rating":       "Rating must be between 1 and 5",
	})
}

func (r *RatingRequest) Model() *models.Rating {
	return &models.Rating{
		ProductID: r.ProductID,
		Name:      strings.TrimSpace(r.Name),
		Email:     strings.TrimSpace(r.Email),
		Img:       r.Img,
		Text:      r.Text,
		Rating:    float64(r.Rating),
	}
}

// CartProduct is the product snapshot the storefront posts when adding to cart.
type CartProduct struct {
	ID         string             `json:"_id"   validate:"required"`
	Title      string             `json:"title"`
	Img        string             `json:"img"`
	Image      string             `json:"image"`
	Price      FlexFloat          `json:"price" validate:"finite,gte=0"`
	Variations []models.Variation `json:"variations"`
}

type CartAddRequest struct {
	Email     string       `json:"email"    validate:"required"`
	Product   *CartProduct `json:"product"  validate:"required"`
	Quantity  *int         `json:"quantity" validate:"omitempty,min=1"`
	Variation *string      `json:"variation"`
}

var cartAddMessages = messages{
	"Email":        "Email is required",
	"Product":      "Product information is required",
	"ID":           "Product information is required",
	"Price.finite": "Price must be a number",
	"Price":        "Price cannot be negative",
	"Quantity":     "Quantity must be at least 1",
}

func (r *CartAddRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Quantity == nil {
		one := 1
		r.Quantity = &one
	}
	if err := check(r, cartAddMessages); err != nil {
		return err
	}
	r.Variation = models.NormalizeVariation(r.Variation)
	return nil
}

// Item resolves the line to store: the variation price when the variation is
// known, else the base price.
func (r *CartAddRequest) Item() models.CartItem {
	p := models.Product{Price: float64(r.Product.Price), Variations: r.Product.Variations}
	title := strings.TrimSpace(r.Product.Title)
	if title == "" {
		title = models.UnknownProductTitle
	}
	img := r.Product.Img
	if img == "" {
		img = r.Product.Image
	}
	return models.CartItem{
		ProductID: r.Product.ID,
		Title:     title,
		Img:       img,
		Price:     p.PriceFor(r.Variation),
		Quantity:  *r.Quantity,
		Variation: r.Variation,
	}
}

var emailAndProduct = messages{
	"Email":     "Email and product ID are required",
	"ProductID": "Email and product ID are required",
}

type CartUpdateRequest struct {
	Email     string  `json:"email"     validate:"required"`
	ProductID string  `json:"productId" validate:"required"`
	Quantity  int     `json:"quantity"`
	Variation *string `json:"variation"`
}

func (r *CartUpdateRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if err := check(r, emailAndProduct); err != nil {
		return err
	}
	r.Variation = models.NormalizeVariation(r.Variation)
	return nil
}

type CartRemoveRequest struct {
	Email     string  `json:"email"     validate:"required"`
	ProductID string  `json:"productId" validate:"required"`
	Variation *string `json:"variation"`
}

func (r *CartRemoveRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if err := check(r, emailAndProduct); err != nil {
		return err
	}
	r.Variation = models.NormalizeVariation(r.Variation)
	return nil
}

type WishlistRequest struct {
	Email     string `json:"email"     validate:"required"`
	ProductID string `json:"productId" validate:"required"`
}

func (r *WishlistRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return check(r, emailAndProduct)
}

type UserInfoRequest struct {
	Email       string `json:"email" validate:"required"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	PhotoURL    string `json:"photoURL"`
}

func (r *UserInfoRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return check(r, messages{"Email": "Email is required"})
}

func (r *UserInfoRequest) User() *models.User {
	return &models.User{
		Email:       r.Email,
		Name:        strings.TrimSpace(r.Name),
		DisplayName: strings.TrimSpace(r.DisplayName),
		Phone:       r.Phone,
		Address:     r.Address,
		PhotoURL:    r.PhotoURL,
	}
}

type UserStatusRequest struct {
	Email  string `json:"email"  validate:"required"`
	Active *bool  `json:"active" validate:"required"`
}

func (r *UserStatusRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return check(r, messages{
		"Email":  "Email and active (boolean) are required",
		"Active": "Email and active (boolean) are required",
	})
}

type OrderStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

func (r *OrderStatusRequest) Validate() error {
	r.Status = strings.TrimSpace(r.Status)
	r.TrackingNumber = strings.TrimSpace(r.TrackingNumber)
	return check(r, messages{"Status": "Status is required"})
}

type OrderItemRequest struct {
	ProductID string    `json:"productId" validate:"required"`
	Title     string    `json:"title"`
	Img       string    `json:"img"`
	Price     FlexFloat `json:"price"     validate:"finite,gte=0"`
	Quantity  int       `json:"quantity"  validate:"min=1"`
	Variation *string   `json:"variation"`
}

// PlaceOrderRequest accepts the shipping contact as shippingAddress or as a
// "shipping" object, and the shipping cost as shippingCost or as a numeric
// "shipping" field. Both spellings are in use by storefront builds.
type PlaceOrderRequest struct {
	Email           string             `json:"email"           validate:"omitempty,email"`
	Items           []OrderItemRequest `json:"items"           validate:"min=1,dive"`
	ShippingAddress *models.Address    `json:"shippingAddress"`
	Payment         models.Payment     `json:"payment"`
	Subtotal        *FlexFloat         `json:"subtotal"        validate:"omitempty,finite,gte=0"`
	ShippingCost    *FlexFloat         `json:"shippingCost"    validate:"omitempty,finite,gte=0"`
	Total           *FlexFloat         `json:"total"           validate:"omitempty,finite,gte=0"`
	Notes           string             `json:"notes"`
}

var placeOrderMessages = messages{
	"Email":        "Invalid email format",
	"Items":        "Order must contain at least one item",
	"ProductID":    "Product ID is required for every item",
	"Quantity":     "Quantity must be at least 1",
	"Price.finite": "Price must be a number",
	"Price":        "Price cannot be negative",
	"Subtotal":     "Amounts cannot be negative",
	"ShippingCost": "Amounts cannot be negative",
	"Total":        "Amounts cannot be negative",
}

func (r *PlaceOrderRequest) UnmarshalJSON(b []byte) error {
	type plain PlaceOrderRequest
	var aux struct {
		plain
		Shipping json.RawMessage `json:"shipping"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = PlaceOrderRequest(aux.plain)

	raw := strings.TrimSpace(string(aux.Shipping))
	switch {
	case raw == "" || raw == "null":
	case strings.HasPrefix(raw, "{"):
		if r.ShippingAddress == nil {
			var addr models.Address
			if err := json.Unmarshal(aux.Shipping, &addr); err != nil {
				return fmt.Errorf("shipping: %w", err)
			}
			r.ShippingAddress = &addr
		}
	default:
		if r.ShippingCost == nil {
			var cost FlexFloat
			if err := json.Unmarshal(aux.Shipping, &cost); err != nil {
				return fmt.Errorf("shipping: %w", err)
			}
			r.ShippingCost = &cost
		}
	}
	return nil
}

func (r *PlaceOrderRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if err := check(r, placeOrderMessages); err != nil {
		return err
	}
	if r.ShippingAddress != nil && r.ShippingAddress.Email != "" && !ValidEmail(r.ShippingAddress.Email) {
		return invalid("Invalid shipping email format")
	}
	return nil
}

// Order builds the order snapshot. A missing subtotal is summed from the
// items and a missing total is subtotal plus shipping.
func (r *PlaceOrderRequest) Order() *models.Order {
	o := &models.Order{
		Email:   r.Email,
		Items:   make([]models.OrderItem, 0, len(r.Items)),
		Payment: r.Payment,
		Notes:   strings.TrimSpace(r.Notes),
	}
	if r.ShippingAddress != nil {
		o.ShippingAddress = *r.ShippingAddress
	}
	var sum float64
	for _, it := range r.Items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			title = models.UnknownProductTitle
		}
		o.Items = append(o.Items, models.OrderItem{
			ProductID: it.ProductID,
			Title:     title,
			Img:       it.Img,
			Price:     float64(it.Price),
			Quantity:  it.Quantity,
			Variation: models.NormalizeVariation(it.Variation),
		})
		sum += float64(it.Price) * float64(it.Quantity)
	}
	o.Subtotal = sum
	if r.Subtotal != nil {
		o.Subtotal = float64(*r.Subtotal)
	}
	if r.ShippingCost != nil {
		o.ShippingCost = float64(*r.ShippingCost)
	}
	o.Total = o.Subtotal + o.ShippingCost
	if r.Total != nil {
		o.Total = float64(*r.Total)
	}
	return o
}
