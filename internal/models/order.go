package models

const (
	OrderStatusPending = "pending"
	OrderStatusDone    = "done"
)

// Order is a buyer's order as reported by the backend.
type Order struct {
	ID            ID     `json:"id"`
	ProductID     ID     `json:"product_id,omitempty"`
	ProductName   string `json:"product_name,omitempty"`
	BuyerUsername string `json:"buyer_username,omitempty"`
	BuyerID       ID     `json:"buyer_id,omitempty"`
	Qty           Count  `json:"qty"`
	Status        string `json:"status"`
	DeliveryText  string `json:"delivery_text,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// BuyerLabel renders the buyer as @username or "(unknown)".
func (o *Order) BuyerLabel() string {
	if o.BuyerUsername != "" {
		return "@" + o.BuyerUsername
	}
	return "(unknown)"
}

// ValidOrderStatus reports whether status can be set from the dashboard.
func ValidOrderStatus(status string) bool {
	return status == OrderStatusPending || status == OrderStatusDone
}

// OrderStatusBody is the body of PUT /api/orders/:id/status.
type OrderStatusBody struct {
	Status string `json:"status"`
}
