package dashboard

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"storedash/internal/storeapi"
)

// Period returns the analytics period in use.
func (c *Controller) Period() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.period
}

// KPIs returns the last rendered KPI panel.
func (c *Controller) KPIs() KPIPanel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kpis
}

// Overview returns the store card and KPI panel.
func (c *Controller) Overview() Overview {
	return Overview{Store: c.StoreView(), KPIs: c.KPIs()}
}

// SetPeriod switches the analytics period and re-issues the summary call.
func (c *Controller) SetPeriod(ctx context.Context, period string) (KPIPanel, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		return c.KPIs(), invalid("Period is required.")
	}
	c.mu.Lock()
	c.period = period
	c.mu.Unlock()
	return c.LoadAnalyticsSafe(ctx), nil
}

// LoadAnalyticsSafe refreshes the KPI panel. It never fails: when the
// summary call errors, KPIs fall back to counts derived from the cached
// orders and products and every delta is marked unavailable. Before the
// store is loaded it is a no-op.
func (c *Controller) LoadAnalyticsSafe(ctx context.Context) KPIPanel {
	c.mu.RLock()
	loaded := c.store != nil
	period := c.period
	c.mu.RUnlock()
	if !loaded {
		return c.KPIs()
	}

	a, err := c.api.GetAnalytics(ctx, period)

	c.mu.Lock()
	defer c.mu.Unlock()

	orders := float64(len(c.orders))
	pending := float64(countPending(c.orders))
	products := float64(len(c.products))

	panel := KPIPanel{Period: period}
	if err != nil {
		c.logger.Warn("Analytics unavailable, using local counts",
			zap.String("period", period),
			zap.Error(err),
		)
		unavailable := FormatDelta(nil)
		panel.Orders = KPI{Value: orders, Delta: unavailable}
		panel.Revenue = KPI{Value: 0, Delta: unavailable}
		panel.Pending = KPI{Value: pending, Delta: unavailable}
		panel.Products = KPI{Value: products, Delta: unavailable}
		panel.Series = c.kpis.Series
		panel.Message = "Analytics error: " + storeapi.UserMessage(err)
		c.kpis = panel
		return panel
	}

	panel.Orders = KPI{Value: orDefault(a.OrdersTotal, orders), Delta: FormatDelta(a.OrdersChangePct)}
	panel.Revenue = KPI{Value: orDefault(a.RevenueTotal, 0), Delta: FormatDelta(a.RevenueChangePct)}
	panel.Pending = KPI{Value: orDefault(a.PendingTotal, pending), Delta: FormatDelta(a.PendingChangePct)}
	panel.Products = KPI{Value: orDefault(a.ProductsTotal, products), Delta: FormatDelta(a.ProductsChangePct)}

	// Keep the previous chart unless the new series is complete.
	panel.Series = c.kpis.Series
	if a.Series != nil && len(a.Series.Labels) > 0 && len(a.Series.Values) > 0 {
		panel.Series = a.Series
	}

	c.kpis = panel
	c.logger.Debug("Analytics refreshed", zap.String("period", period), zap.Stringer("kpis", panel))
	return panel
}

func orDefault(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
