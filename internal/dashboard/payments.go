package dashboard

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"storedash/internal/models"
)

// LoadPayments refreshes the payment cache with the given status filter,
// which is remembered for later reloads. "" lists every payment.
func (c *Controller) LoadPayments(ctx context.Context, filter string) ([]models.Payment, error) {
	if !models.ValidPaymentFilter(filter) {
		return nil, invalid(fmt.Sprintf("Unknown payment status %q", filter))
	}
	payments, err := c.api.ListPayments(ctx, filter)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.payments = payments
	c.paymentFilter = filter
	c.mu.Unlock()
	return payments, nil
}

// PaymentFilter returns the filter of the last payment load.
func (c *Controller) PaymentFilter() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paymentFilter
}

// Payments returns the payment rows.
func (c *Controller) Payments() []PaymentRow {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows := make([]PaymentRow, 0, len(c.payments))
	for _, p := range c.payments {
		rows = append(rows, NewPaymentRow(p, c.currencyLocked()))
	}
	return rows
}

// FetchAwaiting lists awaiting payments without touching the cache or the
// remembered filter.
func (c *Controller) FetchAwaiting(ctx context.Context) ([]models.Payment, error) {
	return c.api.ListPayments(ctx, models.PaymentAwaiting)
}

// PaymentDetail fetches one payment with its proof on demand.
func (c *Controller) PaymentDetail(ctx context.Context, id string) (*PaymentDetail, error) {
	p, err := c.api.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	currency := c.currencyLocked()
	c.mu.RUnlock()
	return &PaymentDetail{PaymentRow: NewPaymentRow(*p, currency), Proof: proofView(p)}, nil
}

// PaymentProof downloads the raw proof.
func (c *Controller) PaymentProof(ctx context.Context, id string) (*models.Proof, error) {
	return c.api.PaymentProof(ctx, id)
}

// Approve moves an awaiting payment to confirmed.
func (c *Controller) Approve(ctx context.Context, id string) error {
	return c.decide(ctx, id, true)
}

// Reject moves an awaiting payment to rejected.
func (c *Controller) Reject(ctx context.Context, id string) error {
	return c.decide(ctx, id, false)
}

// decide only acts on payments this dashboard last saw as awaiting. The
// check is local: another operator may have decided in the meantime, in
// which case the backend has the final word.
func (c *Controller) decide(ctx context.Context, id string, approve bool) error {
	p, err := c.lookupPayment(ctx, id)
	if err != nil {
		return err
	}
	if !p.Actionable() {
		return fmt.Errorf("%w (status %s)", ErrNotAwaiting, p.Status)
	}

	action := "reject"
	if approve {
		action = "approve"
		err = c.api.ApprovePayment(ctx, id)
	} else {
		err = c.api.RejectPayment(ctx, id)
	}
	if err != nil {
		return err
	}
	c.logger.Info("Payment decided",
		zap.String("payment_id", id),
		zap.Stringer("order_id", p.OrderID),
		zap.String("action", action),
	)

	// The backend updates the linked order as a side effect.
	c.mu.RLock()
	filter := c.paymentFilter
	c.mu.RUnlock()
	if _, err := c.LoadPayments(ctx, filter); err != nil {
		return err
	}
	if _, err := c.LoadOrders(ctx); err != nil {
		return err
	}
	c.LoadAnalyticsSafe(ctx)
	return nil
}

// lookupPayment prefers the cache and falls back to a detail fetch for
// payments the cache has not seen yet, e.g. ones announced by the poller.
func (c *Controller) lookupPayment(ctx context.Context, id string) (models.Payment, error) {
	c.mu.RLock()
	for _, p := range c.payments {
		if p.ID.String() == id {
			c.mu.RUnlock()
			return p, nil
		}
	}
	c.mu.RUnlock()

	p, err := c.api.GetPayment(ctx, id)
	if err != nil {
		if HTTPStatus(err) == http.StatusNotFound {
			return models.Payment{}, ErrPaymentNotFound
		}
		return models.Payment{}, err
	}
	return *p, nil
}

func (c *Controller) currencyLocked() string {
	if c.store == nil {
		return ""
	}
	return c.store.Currency
}
