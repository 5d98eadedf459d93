package events

type ProductEvent struct {
	Type      string  `json:"type"`
	ProductID string  `json:"productID"`
	Title     string  `json:"title,omitempty"`
	Price     float64 `json:"price,omitempty"`
}

type OrderEvent struct {
	Type           string  `json:"type"`
	OrderID        string  `json:"orderID"`
	TrackingNumber string  `json:"trackingNumber,omitempty"`
	Email          string  `json:"email,omitempty"`
	Status         string  `json:"status,omitempty"`
	Total          float64 `json:"total,omitempty"`
}

type UserEvent struct {
	Type  string `json:"type"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}
