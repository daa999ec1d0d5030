package bot

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storedash/internal/models"
	"storedash/internal/pkg/telegram"
)

// Notifier pushes payment notices to every admin chat through the raw Bot
// API, so it works without an update to reply to.
type Notifier struct {
	api    *telegram.BotAPI
	admins []string
	logger *zap.Logger
}

func NewNotifier(api *telegram.BotAPI, admins []string, logger *zap.Logger) *Notifier {
	return &Notifier{api: api, admins: admins, logger: logger}
}

// NotifyPayment sends p with its review buttons. Photo proofs are attached
// when Telegram accepts the file id; otherwise a text notice is sent.
func (n *Notifier) NotifyPayment(ctx context.Context, p models.Payment, currency string) error {
	text := PaymentNotice(p, currency)
	markup := PaymentKeyboard(p)

	var errs []error
	for _, admin := range n.admins {
		var err error
		if p.ProofType == models.ProofTypePhoto && p.ProofFileID != "" {
			err = n.api.SendPhoto(ctx, admin, p.ProofFileID, text, markup)
			if err != nil {
				n.logger.Warn("Proof photo rejected, sending text notice",
					zap.String("admin", admin),
					zap.Stringer("payment_id", p.ID),
					zap.Error(err),
				)
				err = n.api.SendMessage(ctx, admin, text, markup)
			}
		} else {
			err = n.api.SendMessage(ctx, admin, text, markup)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("notify admin %s: %w", admin, err))
		}
	}
	return errors.Join(errs...)
}
