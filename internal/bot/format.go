package bot

import (
	"fmt"
	"html"
	"strings"

	"storedash/internal/dashboard"
	"storedash/internal/models"
)

const helpText = "<b>Store admin</b>\n\n" +
	"/login &lt;token&gt; start a session\n" +
	"/logout forget the token\n" +
	"/overview [period] KPIs, e.g. /overview 7d\n" +
	"/products catalog with stock toggles\n" +
	"/orders orders with status buttons\n" +
	"/pending payments awaiting review\n" +
	"/payment &lt;id&gt; payment detail and proof"

func esc(s string) string {
	return html.EscapeString(s)
}

func kpiLine(label string, value string, d dashboard.Delta) string {
	return fmt.Sprintf("%s: <b>%s</b> (%s)", label, esc(value), esc(d.Text))
}

func number(v float64) string {
	return dashboard.FormatMoney("", v)
}

func formatOverview(ov dashboard.Overview) string {
	var sb strings.Builder
	currency := ""
	if ov.Store != nil {
		currency = ov.Store.Currency
		fmt.Fprintf(&sb, "🏪 <b>%s</b>\nChannel: %s\n", esc(ov.Store.Name), esc(ov.Store.Channel))
		bank := "not set"
		if ov.Store.BankDetailsSet {
			bank = "set"
		}
		fmt.Fprintf(&sb, "Bank details: %s\n", bank)
		if ov.Store.SubscriptionStatus != "" {
			fmt.Fprintf(&sb, "Subscription: %s\n", esc(ov.Store.SubscriptionStatus))
		}
	}
	k := ov.KPIs
	fmt.Fprintf(&sb, "\n📊 Period: %s\n", esc(k.Period))
	sb.WriteString(kpiLine("Orders", number(k.Orders.Value), k.Orders.Delta) + "\n")
	sb.WriteString(kpiLine("Revenue", dashboard.FormatMoney(currency, k.Revenue.Value), k.Revenue.Delta) + "\n")
	sb.WriteString(kpiLine("Pending", number(k.Pending.Value), k.Pending.Delta) + "\n")
	sb.WriteString(kpiLine("Products", number(k.Products.Value), k.Products.Delta))
	if k.Message != "" {
		fmt.Fprintf(&sb, "\n\n⚠️ %s", esc(k.Message))
	}
	return sb.String()
}

func formatProducts(rows []dashboard.ProductRow) string {
	if len(rows) == 0 {
		return "No products yet."
	}
	var sb strings.Builder
	sb.WriteString("<b>Products</b>\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "\n• %s, %s, %s", esc(r.Name), esc(r.PriceLabel), r.StockLabel)
	}
	return sb.String()
}

func formatOrders(rows []dashboard.OrderRow) string {
	if len(rows) == 0 {
		return "No orders yet."
	}
	var sb strings.Builder
	sb.WriteString("<b>Orders</b>\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "\n#%s %s x%d by %s [%s]", esc(r.ID.String()), esc(r.ProductName), r.Qty, esc(r.Buyer), esc(r.Status))
	}
	return sb.String()
}

func formatPayment(r dashboard.PaymentRow) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "💳 <b>Payment %s</b>\n", esc(r.ID.String()))
	fmt.Fprintf(&sb, "Order: %s\n", esc(r.OrderID.String()))
	fmt.Fprintf(&sb, "Buyer: %s\n", esc(r.Buyer))
	fmt.Fprintf(&sb, "Amount: %s\n", esc(r.AmountLabel))
	fmt.Fprintf(&sb, "Status: %s", esc(r.Status))
	if r.CreatedAt != "" {
		fmt.Fprintf(&sb, "\nSubmitted: %s", esc(r.CreatedAt))
	}
	return sb.String()
}

// PaymentNotice renders a newly awaiting payment for an admin chat.
func PaymentNotice(p models.Payment, currency string) string {
	return "🔔 New payment awaiting review\n\n" + formatPayment(dashboard.NewPaymentRow(p, currency))
}

func decisionNote(action string) string {
	if action == actApprove {
		return "\n\n✅ Approved"
	}
	return "\n\n❌ Rejected"
}
