package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storedash/internal/models"
	"storedash/internal/session"
	"storedash/internal/storeapi"
)

func deny(c echo.Context, status int, msg string) error {
	return c.JSON(status, models.APIResponse{Status: false, Msg: msg, Obj: nil})
}

// APIAuth validates the Token header against key. An empty key leaves the
// dashboard open, which is only sensible when it listens on localhost.
func APIAuth(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return next(c)
			}
			token := c.Request().Header.Get("Token")
			if token == "" {
				return deny(c, http.StatusUnauthorized, "Token is required")
			}
			if token != key {
				return deny(c, http.StatusUnauthorized, "Invalid token")
			}
			return next(c)
		}
	}
}

// Authenticator logs the dashboard in with a store token.
type Authenticator interface {
	Login(ctx context.Context, token string) error
	Session() *session.Session
}

// QueryTokenLogin logs in with ?token= before the request is handled. The
// URL token takes precedence over whatever session is active.
func QueryTokenLogin(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := strings.TrimSpace(c.QueryParam("token"))
			if token == "" {
				return next(c)
			}
			sess := auth.Session()
			if sess.LoggedIn() && sess.Token() == token {
				return next(c)
			}
			if err := auth.Login(c.Request().Context(), token); err != nil {
				return deny(c, http.StatusUnauthorized, storeapi.UserMessage(err))
			}
			return next(c)
		}
	}
}

// RequireSession rejects data routes until a login has completed.
func RequireSession(sess *session.Session) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !sess.LoggedIn() {
				return deny(c, http.StatusUnauthorized, session.ErrNotLoggedIn.Error())
			}
			return next(c)
		}
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			logger.Info("HTTP request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	}
}

// TelegramIPCheck ensures requests come from Telegram's IP range.
func TelegramIPCheck() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			// Telegram webhook IPs: 149.154.160.0/20 and 91.108.4.0/22
			if !strings.HasPrefix(ip, "149.154.") &&
				!strings.HasPrefix(ip, "91.108.") &&
				ip != "127.0.0.1" &&
				ip != "::1" {
				return c.String(http.StatusForbidden, "Forbidden")
			}
			return next(c)
		}
	}
}

// CORS configures CORS headers.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Access-Control-Allow-Origin", "*")
			c.Response().Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Token, Authorization")
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}
