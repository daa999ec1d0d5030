package dashboard

import (
	"context"

	"storedash/internal/models"
)

// LoadOrders refreshes the order cache. The pending KPI follows the local
// count until analytics overrides it.
func (c *Controller) LoadOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := c.api.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.orders = orders
	c.kpis.Pending.Value = float64(countPending(orders))
	c.mu.Unlock()
	return orders, nil
}

// Orders returns the order rows.
func (c *Controller) Orders() []OrderRow {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows := make([]OrderRow, 0, len(c.orders))
	for _, o := range c.orders {
		rows = append(rows, OrderRow{Order: o, Buyer: o.BuyerLabel()})
	}
	return rows
}

// SetOrderStatus marks an order pending or done, then reloads orders and
// analytics.
func (c *Controller) SetOrderStatus(ctx context.Context, id, status string) error {
	if !models.ValidOrderStatus(status) {
		return ErrInvalidOrderStatus
	}
	if err := c.api.SetOrderStatus(ctx, id, status); err != nil {
		return err
	}
	if _, err := c.LoadOrders(ctx); err != nil {
		return err
	}
	c.LoadAnalyticsSafe(ctx)
	return nil
}

func countPending(orders []models.Order) int {
	n := 0
	for _, o := range orders {
		if o.Status == models.OrderStatusPending {
			n++
		}
	}
	return n
}
