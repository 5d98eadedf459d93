package models

import "time"

const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

type OrderItem struct {
	ProductID string  `json:"productId"           bson:"productId"`
	Title     string  `json:"title"               bson:"title"`
	Img       string  `json:"img,omitempty"       bson:"img,omitempty"`
	Price     float64 `json:"price"               bson:"price"`
	Quantity  int     `json:"quantity"            bson:"quantity"`
	Variation *string `json:"variation,omitempty" bson:"variation,omitempty"`
}

type Address struct {
	FullName   string `json:"fullName"   bson:"fullName"`
	Email      string `json:"email"      bson:"email"`
	Phone      string `json:"phone"      bson:"phone"`
	Address    string `json:"address"    bson:"address"`
	City       string `json:"city"       bson:"city"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	Country    string `json:"country"    bson:"country"`
}

type Payment struct {
	Method string `json:"method" bson:"method"`
	Status string `json:"status" bson:"status"`
}

type StatusEntry struct {
	Status      string    `json:"status"      bson:"status"`
	Date        time.Time `json:"date"        bson:"date"`
	Description string    `json:"description" bson:"description"`
}

// Order totals are fixed at placement and never recomputed.
type Order struct {
	ID              string        `gorm:"primaryKey;size:24"                     json:"_id"             bson:"_id,omitempty"`
	Email           string        `gorm:"index"                                  json:"email"           bson:"email"`
	Items           []OrderItem   `gorm:"-"                                      json:"items"           bson:"items"`
	ShippingAddress Address       `gorm:"embedded;embeddedPrefix:shipping_"      json:"shippingAddress" bson:"shippingAddress"`
	Payment         Payment       `gorm:"embedded;embeddedPrefix:payment_"       json:"payment"         bson:"payment"`
	Subtotal        float64       `                                              json:"subtotal"        bson:"subtotal"`
	ShippingCost    float64       `                                              json:"shippingCost"    bson:"shippingCost"`
	Total           float64       `                                              json:"total"           bson:"total"`
	Notes           string        `                                              json:"notes,omitempty" bson:"notes,omitempty"`
	TrackingNumber  string        `gorm:"uniqueIndex;not null"                   json:"trackingNumber"  bson:"trackingNumber"`
	Status          string        `gorm:"index;not null"                         json:"status"          bson:"status"`
	StatusHistory   []StatusEntry `gorm:"-"                                      json:"statusHistory"   bson:"statusHistory"`
	CreatedAt       time.Time     `gorm:"index"                                  json:"createdAt"       bson:"createdAt"`
	UpdatedAt       time.Time     `                                              json:"updatedAt"       bson:"updatedAt"`
}

// RecipientEmail prefers the shipping contact over the account email.
func (o *Order) RecipientEmail() string {
	if o.ShippingAddress.Email != "" {
		return o.ShippingAddress.Email
	}
	return o.Email
}
