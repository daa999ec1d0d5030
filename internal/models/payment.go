package models

// Payment lifecycle states. Confirmed and rejected are terminal.
const (
	PaymentAwaiting  = "awaiting"
	PaymentConfirmed = "confirmed"
	PaymentRejected  = "rejected"
)

// ProofTypePhoto marks a proof that can be shown as an image.
const ProofTypePhoto = "photo"

// Payment is a buyer-submitted manual payment awaiting review.
type Payment struct {
	ID            ID      `json:"id"`
	OrderID       ID      `json:"order_id"`
	BuyerUsername string  `json:"buyer_username,omitempty"`
	BuyerID       ID      `json:"buyer_id,omitempty"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency,omitempty"`
	Status        string  `json:"status"`
	ProofType     string  `json:"proof_type,omitempty"`
	ProofFileID   string  `json:"proof_file_id,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// Actionable reports whether approve/reject may be offered.
func (p *Payment) Actionable() bool {
	return p.Status == PaymentAwaiting
}

// ValidPaymentFilter reports whether s is an accepted list filter.
// The empty filter lists every payment.
func ValidPaymentFilter(s string) bool {
	switch s {
	case "", PaymentAwaiting, PaymentConfirmed, PaymentRejected:
		return true
	}
	return false
}

// Proof is the raw proof payload served by GET /api/payments/:id/proof.
type Proof struct {
	ContentType string
	Data        []byte
}
