package api

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storedash/internal/dashboard"
	"storedash/internal/models"
)

type SettingsHandler struct {
	ctrl   *dashboard.Controller
	logger *zap.Logger
}

func NewSettingsHandler(ctrl *dashboard.Controller, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{ctrl: ctrl, logger: logger}
}

// Get returns the store card and bank form values.
// GET /dashboard/settings
func (h *SettingsHandler) Get(c echo.Context) error {
	settings, err := h.ctrl.Settings()
	if err != nil {
		return failure(c, h.logger, "settings", err)
	}
	return successResponse(c, "Successful", settings)
}

// UpdateStore saves name, currency and delivery note.
// PUT /dashboard/settings/store
func (h *SettingsHandler) UpdateStore(c echo.Context) error {
	var req models.StoreSettings
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.ctrl.UpdateStoreSettings(c.Request().Context(), req); err != nil {
		return failure(c, h.logger, "settings_store", err)
	}
	return h.Get(c)
}

// UpdateBank saves the bank transfer details.
// PUT /dashboard/settings/bank
func (h *SettingsHandler) UpdateBank(c echo.Context) error {
	var req models.BankDetails
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	msg, err := h.ctrl.SaveBankDetails(c.Request().Context(), req)
	if err != nil {
		return failure(c, h.logger, "settings_bank", err)
	}
	settings, err := h.ctrl.Settings()
	if err != nil {
		return failure(c, h.logger, "settings", err)
	}
	return successResponse(c, msg, settings)
}
