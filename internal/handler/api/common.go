package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storedash/internal/dashboard"
	"storedash/internal/models"
	"storedash/internal/storeapi"
)

// Response helpers for the {status, msg, obj} envelope.
func successResponse(c echo.Context, msg string, obj interface{}) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: true,
		Msg:    msg,
		Obj:    obj,
	})
}

func errorResponse(c echo.Context, status int, msg string) error {
	return c.JSON(status, models.APIResponse{
		Status: false,
		Msg:    msg,
		Obj:    nil,
	})
}

// failure reports a controller error with the status it maps to. Backend
// 402 replies carry the subscription lock text.
func failure(c echo.Context, logger *zap.Logger, action string, err error) error {
	status := dashboard.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Dashboard action failed", zap.String("action", action), zap.Error(err))
	} else {
		logger.Debug("Dashboard action refused", zap.String("action", action), zap.Error(err))
	}
	return errorResponse(c, status, storeapi.UserMessage(err))
}

func invalidBody(c echo.Context) error {
	return errorResponse(c, http.StatusBadRequest, "Invalid request body")
}
