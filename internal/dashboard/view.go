package dashboard

import (
	"fmt"
	"math"
	"strconv"

	"storedash/internal/models"
)

// Delta directions.
const (
	DeltaUp   = "up"
	DeltaDown = "down"
	DeltaFlat = "flat"
)

// Delta is a rendered period-over-period percent change.
type Delta struct {
	Direction string `json:"direction"`
	Text      string `json:"text"`
	Available bool   `json:"available"`
}

// FormatDelta renders pct with one decimal and a sign. A missing or
// non-finite value renders as "—".
func FormatDelta(pct *float64) Delta {
	if pct == nil || math.IsNaN(*pct) || math.IsInf(*pct, 0) {
		return Delta{Direction: DeltaFlat, Text: "—"}
	}
	n := *pct
	abs := strconv.FormatFloat(math.Abs(n), 'f', 1, 64)
	switch {
	case n > 0:
		return Delta{Direction: DeltaUp, Text: "+" + abs + "%", Available: true}
	case n < 0:
		return Delta{Direction: DeltaDown, Text: "-" + abs + "%", Available: true}
	default:
		return Delta{Direction: DeltaFlat, Text: "0.0%", Available: true}
	}
}

// FormatMoney prefixes value with the store currency symbol.
func FormatMoney(currency string, value float64) string {
	v := strconv.FormatFloat(value, 'f', -1, 64)
	if currency == "" {
		return v
	}
	return currency + v
}

// StoreView is the overview card.
type StoreView struct {
	Name                  string `json:"name"`
	Currency              string `json:"currency"`
	Channel               string `json:"channel"`
	DeliveryNote          string `json:"delivery_note"`
	BankDetailsSet        bool   `json:"bank_details_set"`
	SubscriptionStatus    string `json:"subscription_status,omitempty"`
	SubscriptionExpiresAt string `json:"subscription_expires_at,omitempty"`
}

func newStoreView(s *models.Store) StoreView {
	return StoreView{
		Name:                  s.Name,
		Currency:              s.Currency,
		Channel:               s.ChannelLabel(),
		DeliveryNote:          s.DeliveryNote,
		BankDetailsSet:        s.BankDetailsSet(),
		SubscriptionStatus:    s.SubscriptionStatus,
		SubscriptionExpiresAt: s.SubscriptionExpiresAt,
	}
}

// SettingsView is the settings tab: store card plus the bank form values.
type SettingsView struct {
	Store StoreView          `json:"store"`
	Bank  models.BankDetails `json:"bank"`
}

// ProductRow is one catalog table row.
type ProductRow struct {
	models.Product
	PriceLabel string `json:"price_label"`
	StockLabel string `json:"stock_label"`
}

func newProductRow(p models.Product, currency string) ProductRow {
	stock := "Out"
	if p.InStock {
		stock = "In stock"
	}
	return ProductRow{Product: p, PriceLabel: FormatMoney(currency, p.Price), StockLabel: stock}
}

// OrderRow is one order table row.
type OrderRow struct {
	models.Order
	Buyer string `json:"buyer"`
}

// PaymentRow is one payment table row. Actions is empty unless the
// payment is still awaiting review.
type PaymentRow struct {
	models.Payment
	AmountLabel string   `json:"amount_label"`
	Buyer       string   `json:"buyer"`
	Actions     []string `json:"actions"`
}

// NewPaymentRow renders p, preferring its own currency over the store's.
func NewPaymentRow(p models.Payment, currency string) PaymentRow {
	if p.Currency != "" {
		currency = p.Currency
	}
	buyer := "(unknown)"
	if p.BuyerUsername != "" {
		buyer = "@" + p.BuyerUsername
	}
	actions := []string{}
	if p.Actionable() {
		actions = []string{"approve", "reject"}
	}
	return PaymentRow{Payment: p, AmountLabel: FormatMoney(currency, p.Amount), Buyer: buyer, Actions: actions}
}

// Proof kinds.
const (
	ProofImage = "image"
	ProofFile  = "file"
)

// ProofView says how a payment proof should be shown.
type ProofView struct {
	Kind   string `json:"kind"`
	FileID string `json:"file_id,omitempty"`
}

// PaymentDetail is the payment modal.
type PaymentDetail struct {
	PaymentRow
	Proof ProofView `json:"proof"`
}

func proofView(p *models.Payment) ProofView {
	if p.ProofType == models.ProofTypePhoto {
		return ProofView{Kind: ProofImage, FileID: p.ProofFileID}
	}
	return ProofView{Kind: ProofFile, FileID: p.ProofFileID}
}

// KPI is a metric with its rendered delta.
type KPI struct {
	Value float64 `json:"value"`
	Delta Delta   `json:"delta"`
}

// KPIPanel is the analytics section of the overview.
type KPIPanel struct {
	Period   string         `json:"period"`
	Orders   KPI            `json:"orders"`
	Revenue  KPI            `json:"revenue"`
	Pending  KPI            `json:"pending"`
	Products KPI            `json:"products"`
	Series   *models.Series `json:"series,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// Overview is the landing view.
type Overview struct {
	Store *StoreView `json:"store"`
	KPIs  KPIPanel   `json:"kpis"`
}

func (p KPIPanel) String() string {
	return fmt.Sprintf("orders=%v revenue=%v pending=%v products=%v", p.Orders.Value, p.Revenue.Value, p.Pending.Value, p.Products.Value)
}
