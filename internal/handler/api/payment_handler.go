package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storedash/internal/dashboard"
)

// PaymentHandler handles the manual payment review queue.
type PaymentHandler struct {
	ctrl   *dashboard.Controller
	logger *zap.Logger
}

func NewPaymentHandler(ctrl *dashboard.Controller, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{ctrl: ctrl, logger: logger}
}

// List reloads payments. Without ?status= the previous filter is kept.
// GET /dashboard/payments?status=
func (h *PaymentHandler) List(c echo.Context) error {
	filter := h.ctrl.PaymentFilter()
	if c.QueryParams().Has("status") {
		filter = c.QueryParam("status")
	}
	if _, err := h.ctrl.LoadPayments(c.Request().Context(), filter); err != nil {
		return failure(c, h.logger, "payments", err)
	}
	return successResponse(c, "Successful", map[string]interface{}{
		"filter":   h.ctrl.PaymentFilter(),
		"payments": h.ctrl.Payments(),
	})
}

// Get returns one payment with how its proof should be shown.
// GET /dashboard/payments/:id
func (h *PaymentHandler) Get(c echo.Context) error {
	detail, err := h.ctrl.PaymentDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failure(c, h.logger, "payment", err)
	}
	return successResponse(c, "Successful", detail)
}

// Proof streams the raw proof bytes.
// GET /dashboard/payments/:id/proof
func (h *PaymentHandler) Proof(c echo.Context) error {
	proof, err := h.ctrl.PaymentProof(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failure(c, h.logger, "payment_proof", err)
	}
	contentType := proof.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(http.StatusOK, contentType, proof.Data)
}

// Approve confirms an awaiting payment.
// POST /dashboard/payments/:id/approve
func (h *PaymentHandler) Approve(c echo.Context) error {
	if err := h.ctrl.Approve(c.Request().Context(), c.Param("id")); err != nil {
		return failure(c, h.logger, "payment_approve", err)
	}
	return successResponse(c, "Payment approved", h.ctrl.Payments())
}

// Reject rejects an awaiting payment.
// POST /dashboard/payments/:id/reject
func (h *PaymentHandler) Reject(c echo.Context) error {
	if err := h.ctrl.Reject(c.Request().Context(), c.Param("id")); err != nil {
		return failure(c, h.logger, "payment_reject", err)
	}
	return successResponse(c, "Payment rejected", h.ctrl.Payments())
}
