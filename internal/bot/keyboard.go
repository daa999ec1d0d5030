package bot

import (
	"strings"

	tele "gopkg.in/telebot.v3"

	"storedash/internal/dashboard"
	"storedash/internal/models"
)

// Callback actions.
const (
	actApprove      = "approve"
	actReject       = "reject"
	actView         = "view"
	actToggle       = "toggle"
	actOrderDone    = "order_done"
	actOrderPending = "order_pending"
)

// callbackData encodes action and id the same way whether the markup is
// sent by telebot or by the raw Bot API client.
func callbackData(action, id string) string {
	return action + "|" + id
}

// parseCallback splits callback data into action and id. Data built by
// telebot's unique buttons carries a leading \f, which is dropped.
func parseCallback(data string) (action, id string) {
	data = strings.TrimPrefix(strings.TrimSpace(data), "\f")
	action, id, _ = strings.Cut(data, "|")
	return action, id
}

func btn(text, action, id string) tele.InlineButton {
	return tele.InlineButton{Text: text, Data: callbackData(action, id)}
}

// PaymentKeyboard builds approve/reject/view buttons for a payment. Only
// the view button is offered once the payment has left awaiting.
func PaymentKeyboard(p models.Payment) *tele.ReplyMarkup {
	row := []tele.InlineButton{}
	if p.Actionable() {
		row = append(row,
			btn("✅ Approve", actApprove, p.ID.String()),
			btn("❌ Reject", actReject, p.ID.String()),
		)
	}
	row = append(row, btn("🔍 View", actView, p.ID.String()))
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{row}}
}

// ProductsKeyboard offers one stock toggle per product.
func ProductsKeyboard(rows []dashboard.ProductRow) *tele.ReplyMarkup {
	keys := make([][]tele.InlineButton, 0, len(rows))
	for _, r := range rows {
		label := "⛔ Mark out: " + r.Name
		if !r.InStock {
			label = "✅ Mark in stock: " + r.Name
		}
		keys = append(keys, []tele.InlineButton{btn(label, actToggle, r.ID.String())})
	}
	return &tele.ReplyMarkup{InlineKeyboard: keys}
}

// OrdersKeyboard offers the opposite status for each order.
func OrdersKeyboard(rows []dashboard.OrderRow) *tele.ReplyMarkup {
	keys := make([][]tele.InlineButton, 0, len(rows))
	for _, r := range rows {
		if r.Status == models.OrderStatusDone {
			keys = append(keys, []tele.InlineButton{btn("↩️ Pending #"+r.ID.String(), actOrderPending, r.ID.String())})
			continue
		}
		keys = append(keys, []tele.InlineButton{btn("✔️ Done #"+r.ID.String(), actOrderDone, r.ID.String())})
	}
	return &tele.ReplyMarkup{InlineKeyboard: keys}
}
