package api

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storedash/internal/dashboard"
)

// SessionHandler handles login, logout and full refreshes.
type SessionHandler struct {
	ctrl   *dashboard.Controller
	logger *zap.Logger
}

func NewSessionHandler(ctrl *dashboard.Controller, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{ctrl: ctrl, logger: logger}
}

type loginRequest struct {
	Token string `json:"token"`
}

// Login stores the token and loads everything.
// POST /dashboard/login
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.ctrl.Login(c.Request().Context(), req.Token); err != nil {
		return failure(c, h.logger, "login", err)
	}
	return successResponse(c, "Logged in", h.ctrl.Overview())
}

// Logout forgets the token.
// POST /dashboard/logout
func (h *SessionHandler) Logout(c echo.Context) error {
	h.ctrl.Logout(c.Request().Context())
	return successResponse(c, "Logged out", nil)
}

// Status reports whether a session is active.
// GET /dashboard/session
func (h *SessionHandler) Status(c echo.Context) error {
	sess := h.ctrl.Session()
	return successResponse(c, "Successful", map[string]interface{}{
		"logged_in": sess.LoggedIn(),
		"token_set": sess.Token() != "",
		"period":    h.ctrl.Period(),
	})
}

// Refresh reloads every cache.
// POST /dashboard/refresh
func (h *SessionHandler) Refresh(c echo.Context) error {
	if err := h.ctrl.LoadAll(c.Request().Context()); err != nil {
		return failure(c, h.logger, "refresh", err)
	}
	return successResponse(c, "Refreshed", h.ctrl.Overview())
}

// Overview returns the store card and KPIs, switching period when asked.
// GET /dashboard/overview?period=
func (h *SessionHandler) Overview(c echo.Context) error {
	if period := c.QueryParam("period"); period != "" && period != h.ctrl.Period() {
		if _, err := h.ctrl.SetPeriod(c.Request().Context(), period); err != nil {
			return failure(c, h.logger, "set_period", err)
		}
	}
	return successResponse(c, "Successful", h.ctrl.Overview())
}
