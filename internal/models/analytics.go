package models

// Analytics is the period-scoped summary from GET /api/analytics.
// Every figure is optional; missing values fall back to local counts.
type Analytics struct {
	OrdersTotal       *float64 `json:"orders_total"`
	OrdersChangePct   *float64 `json:"orders_change_pct"`
	RevenueTotal      *float64 `json:"revenue_total"`
	RevenueChangePct  *float64 `json:"revenue_change_pct"`
	PendingTotal      *float64 `json:"pending_total"`
	PendingChangePct  *float64 `json:"pending_change_pct"`
	ProductsTotal     *float64 `json:"products_total"`
	ProductsChangePct *float64 `json:"products_change_pct"`
	Series            *Series  `json:"series"`
}

// Series is the chart time series.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}
