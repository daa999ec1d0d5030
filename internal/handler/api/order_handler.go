package api

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storedash/internal/dashboard"
	"storedash/internal/models"
)

type OrderHandler struct {
	ctrl   *dashboard.Controller
	logger *zap.Logger
}

func NewOrderHandler(ctrl *dashboard.Controller, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{ctrl: ctrl, logger: logger}
}

// List returns the orders, reloading them first.
// GET /dashboard/orders
func (h *OrderHandler) List(c echo.Context) error {
	if _, err := h.ctrl.LoadOrders(c.Request().Context()); err != nil {
		return failure(c, h.logger, "orders", err)
	}
	return successResponse(c, "Successful", h.ctrl.Orders())
}

// SetStatus marks an order pending or done.
// PUT /dashboard/orders/:id/status
func (h *OrderHandler) SetStatus(c echo.Context) error {
	var req models.OrderStatusBody
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.ctrl.SetOrderStatus(c.Request().Context(), c.Param("id"), req.Status); err != nil {
		return failure(c, h.logger, "order_status", err)
	}
	return successResponse(c, "Order updated", h.ctrl.Orders())
}
