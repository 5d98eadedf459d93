package models

import (
	"strings"
	"time"
)

const UnknownProductTitle = "Unknown Product"

// CartItem is a cart line. A line is identified by ProductID and Variation;
// a nil Variation means the base product.
type CartItem struct {
	ProductID string  `json:"productId"           bson:"productId"`
	Title     string  `json:"title"               bson:"title"`
	Img       string  `json:"img,omitempty"       bson:"img,omitempty"`
	Price     float64 `json:"price"               bson:"price"`
	Quantity  int     `json:"quantity"            bson:"quantity"`
	Variation *string `json:"variation"           bson:"variation"`
}

func (i CartItem) Matches(productID string, variation *string) bool {
	return i.ProductID == productID && SameVariation(i.Variation, variation)
}

type Cart struct {
	Email     string     `json:"email"     bson:"email"`
	Items     []CartItem `json:"items"     bson:"items"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

type Wishlist struct {
	Email     string    `json:"email"     bson:"email"`
	Items     []string  `json:"items"     bson:"items"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NormalizeVariation maps blank variation names to nil so that "" and a
// missing variation select the same line.
func NormalizeVariation(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

func SameVariation(a, b *string) bool {
	a, b = NormalizeVariation(a), NormalizeVariation(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func VariationKey(v *string) string {
	if v = NormalizeVariation(v); v == nil {
		return ""
	}
	return *v
}
