package bot

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"storedash/internal/config"
	"storedash/internal/dashboard"
	"storedash/internal/models"
	"storedash/internal/storeapi"
)

const (
	handlerTimeout = 30 * time.Second
	maxListRows    = 40
)

// Bot is the store owner's Telegram surface over the dashboard controller.
type Bot struct {
	tb         *tele.Bot
	webhook    *tele.Webhook
	useWebhook bool
	cfg        *config.Config
	ctrl       *dashboard.Controller
	logger     *zap.Logger
	admins     map[int64]bool
}

// New creates and configures a new Bot instance.
func New(cfg *config.Config, ctrl *dashboard.Controller, logger *zap.Logger) (*Bot, error) {
	useWebhook, err := UseWebhook(cfg.Bot)
	if err != nil {
		return nil, err
	}

	var poller tele.Poller
	var webhook *tele.Webhook
	if useWebhook {
		webhook = &tele.Webhook{
			Listen:   "", // Empty: we mount on Echo instead of telebot's own server
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Bot.WebhookURL},
		}
		poller = webhook
	} else {
		poller = &tele.LongPoller{Timeout: 10 * time.Second}
	}

	pref := tele.Settings{
		Token:  cfg.Bot.Token,
		Poller: poller,
		OnError: func(err error, c tele.Context) {
			logger.Error("telebot error", zap.Error(err))
		},
	}

	tb, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telebot: %w", err)
	}

	b := &Bot{
		tb:         tb,
		webhook:    webhook,
		useWebhook: useWebhook,
		cfg:        cfg,
		ctrl:       ctrl,
		logger:     logger,
		admins:     parseAdminIDs(cfg.Bot.AdminIDs, logger),
	}
	if len(b.admins) == 0 {
		logger.Warn("BOT_ADMIN_ID is empty, the bot will ignore every chat")
	}

	b.registerHandlers()

	return b, nil
}

// UseWebhook resolves BOT_UPDATE_MODE. "auto" picks webhook mode when a
// public URL is configured.
func UseWebhook(cfg config.BotConfig) (bool, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.UpdateMode))
	hasURL := strings.TrimSpace(cfg.WebhookURL) != ""
	switch mode {
	case "polling":
		return false, nil
	case "webhook":
		if !hasURL {
			return false, fmt.Errorf("BOT_WEBHOOK_URL is required when BOT_UPDATE_MODE=webhook")
		}
		return true, nil
	default: // auto
		return hasURL, nil
	}
}

func parseAdminIDs(ids []string, logger *zap.Logger) map[int64]bool {
	admins := make(map[int64]bool, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			logger.Warn("Ignoring invalid admin id", zap.String("value", raw))
			continue
		}
		admins[id] = true
	}
	return admins
}

// WebhookHandler returns the webhook handler for mounting on Echo.
// Returns nil when running in long-polling mode.
func (b *Bot) WebhookHandler() http.Handler {
	if b.webhook == nil {
		return nil
	}
	return b.webhook
}

// Start begins polling/webhook processing. It blocks until Stop.
func (b *Bot) Start() {
	if b.useWebhook {
		b.logger.Info("Starting Telegram bot", zap.String("mode", "webhook"), zap.String("webhook_url", b.cfg.Bot.WebhookURL))
	} else {
		// Long polling requires webhook to be removed first.
		if err := b.tb.RemoveWebhook(true); err != nil {
			b.logger.Warn("Failed to remove webhook before long polling", zap.Error(err))
		}
		b.logger.Info("Starting Telegram bot", zap.String("mode", "polling"))
	}
	b.tb.Start()
}

// Stop gracefully shuts down the bot.
func (b *Bot) Stop() {
	b.tb.Stop()
}

func (b *Bot) registerHandlers() {
	b.tb.Use(b.adminOnly)

	b.tb.Handle("/start", b.handleStart)
	b.tb.Handle("/help", b.handleStart)
	b.tb.Handle("/login", b.handleLogin)
	b.tb.Handle("/logout", b.handleLogout)

	b.tb.Handle("/overview", b.handleOverview, b.requireSession)
	b.tb.Handle("/products", b.handleProducts, b.requireSession)
	b.tb.Handle("/orders", b.handleOrders, b.requireSession)
	b.tb.Handle("/pending", b.handlePending, b.requireSession)
	b.tb.Handle("/payment", b.handlePayment, b.requireSession)
	b.tb.Handle(tele.OnCallback, b.handleCallback, b.requireSession)
}

func (b *Bot) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), handlerTimeout)
}

// ── Middleware ────────────────────────────────────────────────────────

func (b *Bot) adminOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil || !b.admins[sender.ID] {
			if sender != nil {
				b.logger.Warn("Ignoring update from non-admin", zap.Int64("user_id", sender.ID))
			}
			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: "Not allowed"})
			}
			return nil
		}
		return next(c)
	}
}

func (b *Bot) requireSession(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !b.ctrl.Session().LoggedIn() {
			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: "Not logged in", ShowAlert: true})
			}
			return c.Send("Not logged in. Use /login &lt;token&gt;", tele.ModeHTML)
		}
		return next(c)
	}
}

// fail reports err to the admin: an alert for button presses, a message otherwise.
func (b *Bot) fail(c tele.Context, err error) error {
	msg := storeapi.UserMessage(err)
	b.logger.Warn("Bot action failed", zap.Error(err))
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: msg, ShowAlert: true})
	}
	return c.Send("⚠️ " + esc(msg), tele.ModeHTML)
}

// ── Commands ──────────────────────────────────────────────────────────

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(helpText, tele.ModeHTML)
}

func (b *Bot) handleLogin(c tele.Context) error {
	token := strings.TrimSpace(c.Message().Payload)
	if token == "" {
		return c.Send("Usage: /login &lt;token&gt;", tele.ModeHTML)
	}
	// Keep the token out of the chat history.
	if err := c.Delete(); err != nil {
		b.logger.Debug("Could not delete login message", zap.Error(err))
	}

	ctx, cancel := b.ctx()
	defer cancel()
	if err := b.ctrl.Login(ctx, token); err != nil {
		return b.fail(c, err)
	}
	return c.Send("✅ Logged in\n\n"+formatOverview(b.ctrl.Overview()), tele.ModeHTML)
}

func (b *Bot) handleLogout(c tele.Context) error {
	ctx, cancel := b.ctx()
	defer cancel()
	b.ctrl.Logout(ctx)
	return c.Send("Logged out.")
}

func (b *Bot) handleOverview(c tele.Context) error {
	ctx, cancel := b.ctx()
	defer cancel()

	if period := strings.TrimSpace(c.Message().Payload); period != "" {
		if _, err := b.ctrl.SetPeriod(ctx, period); err != nil {
			return b.fail(c, err)
		}
	} else {
		b.ctrl.LoadAnalyticsSafe(ctx)
	}
	return c.Send(formatOverview(b.ctrl.Overview()), tele.ModeHTML)
}

func (b *Bot) handleProducts(c tele.Context) error {
	ctx, cancel := b.ctx()
	defer cancel()
	if _, err := b.ctrl.LoadProducts(ctx); err != nil {
		return b.fail(c, err)
	}
	rows := limitRows(b.ctrl.Products())
	return c.Send(formatProducts(rows), ProductsKeyboard(rows), tele.ModeHTML)
}

func (b *Bot) handleOrders(c tele.Context) error {
	ctx, cancel := b.ctx()
	defer cancel()
	if _, err := b.ctrl.LoadOrders(ctx); err != nil {
		return b.fail(c, err)
	}
	rows := limitRows(b.ctrl.Orders())
	return c.Send(formatOrders(rows), OrdersKeyboard(rows), tele.ModeHTML)
}

func (b *Bot) handlePending(c tele.Context) error {
	ctx, cancel := b.ctx()
	defer cancel()
	payments, err := b.ctrl.FetchAwaiting(ctx)
	if err != nil {
		return b.fail(c, err)
	}
	if len(payments) == 0 {
		return c.Send("No payments awaiting review.")
	}
	currency := b.currency()
	for _, p := range limitRows(payments) {
		if err := c.Send(formatPayment(dashboard.NewPaymentRow(p, currency)), PaymentKeyboard(p), tele.ModeHTML); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handlePayment(c tele.Context) error {
	id := strings.TrimSpace(c.Message().Payload)
	if id == "" {
		return c.Send("Usage: /payment &lt;id&gt;", tele.ModeHTML)
	}
	return b.sendPayment(c, id)
}

func (b *Bot) sendPayment(c tele.Context, id string) error {
	ctx, cancel := b.ctx()
	defer cancel()
	detail, err := b.ctrl.PaymentDetail(ctx, id)
	if err != nil {
		return b.fail(c, err)
	}
	if c.Callback() != nil {
		_ = c.Respond()
	}
	if err := c.Send(formatPayment(detail.PaymentRow), PaymentKeyboard(detail.Payment), tele.ModeHTML); err != nil {
		return err
	}
	return b.sendProof(c, detail.Proof)
}

// sendProof shows photo proofs inline and names any other proof by file id.
func (b *Bot) sendProof(c tele.Context, proof dashboard.ProofView) error {
	if proof.FileID == "" {
		return c.Send("No proof attached.")
	}
	if proof.Kind == dashboard.ProofImage {
		err := c.Send(&tele.Photo{File: tele.File{FileID: proof.FileID}, Caption: "Proof"})
		if err == nil {
			return nil
		}
		b.logger.Warn("Could not send proof photo", zap.String("file_id", proof.FileID), zap.Error(err))
	}
	return c.Send("Proof file: <code>"+esc(proof.FileID)+"</code>", tele.ModeHTML)
}

// ── Callbacks ─────────────────────────────────────────────────────────

func (b *Bot) handleCallback(c tele.Context) error {
	action, id := parseCallback(c.Callback().Data)
	if id == "" {
		b.logger.Debug("Unknown callback", zap.String("data", c.Callback().Data))
		return c.Respond()
	}

	switch action {
	case actApprove, actReject:
		return b.decidePayment(c, action, id)
	case actView:
		return b.sendPayment(c, id)
	case actToggle:
		return b.toggleProduct(c, id)
	case actOrderDone:
		return b.setOrderStatus(c, id, models.OrderStatusDone)
	case actOrderPending:
		return b.setOrderStatus(c, id, models.OrderStatusPending)
	default:
		b.logger.Debug("Unknown callback", zap.String("data", c.Callback().Data))
		return c.Respond()
	}
}

func (b *Bot) decidePayment(c tele.Context, action, id string) error {
	ctx, cancel := b.ctx()
	defer cancel()

	var err error
	if action == actApprove {
		err = b.ctrl.Approve(ctx, id)
	} else {
		err = b.ctrl.Reject(ctx, id)
	}
	if err != nil {
		return b.fail(c, err)
	}
	b.logger.Info("Payment decided from Telegram",
		zap.String("payment_id", id),
		zap.String("action", action),
		zap.Int64("admin_id", c.Sender().ID),
	)
	_ = c.Respond(&tele.CallbackResponse{Text: strings.TrimSpace(decisionNote(action))})

	detail, err := b.ctrl.PaymentDetail(ctx, id)
	if err != nil {
		return b.fail(c, err)
	}
	return b.editOrSend(c, formatPayment(detail.PaymentRow)+decisionNote(action), PaymentKeyboard(detail.Payment))
}

func (b *Bot) toggleProduct(c tele.Context, id string) error {
	ctx, cancel := b.ctx()
	defer cancel()
	if err := b.ctrl.ToggleStock(ctx, id); err != nil {
		return b.fail(c, err)
	}
	_ = c.Respond(&tele.CallbackResponse{Text: "Stock updated"})
	rows := limitRows(b.ctrl.Products())
	return b.editOrSend(c, formatProducts(rows), ProductsKeyboard(rows))
}

func (b *Bot) setOrderStatus(c tele.Context, id, status string) error {
	ctx, cancel := b.ctx()
	defer cancel()
	if err := b.ctrl.SetOrderStatus(ctx, id, status); err != nil {
		return b.fail(c, err)
	}
	_ = c.Respond(&tele.CallbackResponse{Text: "Order marked " + status})
	rows := limitRows(b.ctrl.Orders())
	return b.editOrSend(c, formatOrders(rows), OrdersKeyboard(rows))
}

// editOrSend replaces the message the button was on, falling back to a
// new message when the edit is refused.
func (b *Bot) editOrSend(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	var err error
	if msg := c.Message(); msg != nil && msg.Photo != nil {
		err = c.EditCaption(text, markup, tele.ModeHTML)
	} else {
		err = c.Edit(text, markup, tele.ModeHTML)
	}
	if err == nil {
		return nil
	}
	b.logger.Debug("Edit failed, sending new message", zap.Error(err))
	return c.Send(text, markup, tele.ModeHTML)
}

func (b *Bot) currency() string {
	if v := b.ctrl.StoreView(); v != nil {
		return v.Currency
	}
	return ""
}

func limitRows[T any](rows []T) []T {
	if len(rows) > maxListRows {
		return rows[:maxListRows]
	}
	return rows
}
