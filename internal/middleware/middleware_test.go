package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storedash/internal/pkg/dedup"
	"storedash/internal/session"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func serve(mw echo.MiddlewareFunc, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(okHandler)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAPIAuth(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		header string
		want   int
	}{
		{name: "Open when no key", key: "", want: http.StatusOK},
		{name: "Missing header", key: "k", want: http.StatusUnauthorized},
		{name: "Wrong header", key: "k", header: "x", want: http.StatusUnauthorized},
		{name: "Right header", key: "k", header: "k", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dashboard/overview", nil)
			if tt.header != "" {
				req.Header.Set("Token", tt.header)
			}
			rec := serve(APIAuth(tt.key), req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireSession(t *testing.T) {
	sess := session.New(session.NewMemoryStore(), zap.NewNop())

	rec := serve(RequireSession(sess), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"status":false,"msg":"Not logged in","obj":null}`, rec.Body.String())

	require.NoError(t, sess.Begin(context.Background(), "tok"))
	sess.Complete()
	rec = serve(RequireSession(sess), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type mockAuth struct {
	mock.Mock
	sess *session.Session
}

func (m *mockAuth) Login(ctx context.Context, token string) error {
	return m.Called(token).Error(0)
}

func (m *mockAuth) Session() *session.Session {
	return m.sess
}

func TestQueryTokenLogin(t *testing.T) {
	t.Run("No token passes through", func(t *testing.T) {
		auth := &mockAuth{sess: session.New(session.NewMemoryStore(), zap.NewNop())}
		rec := serve(QueryTokenLogin(auth), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		auth.AssertNotCalled(t, "Login", mock.Anything)
	})

	t.Run("Token logs in", func(t *testing.T) {
		auth := &mockAuth{sess: session.New(session.NewMemoryStore(), zap.NewNop())}
		auth.On("Login", "abc").Return(nil).Once()
		rec := serve(QueryTokenLogin(auth), httptest.NewRequest(http.MethodGet, "/?token=abc", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		auth.AssertExpectations(t)
	})

	t.Run("Same token already active", func(t *testing.T) {
		sess := session.New(session.NewMemoryStore(), zap.NewNop())
		require.NoError(t, sess.Begin(context.Background(), "abc"))
		sess.Complete()
		auth := &mockAuth{sess: sess}
		rec := serve(QueryTokenLogin(auth), httptest.NewRequest(http.MethodGet, "/?token=abc", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		auth.AssertNotCalled(t, "Login", mock.Anything)
	})

	t.Run("Failed login", func(t *testing.T) {
		auth := &mockAuth{sess: session.New(session.NewMemoryStore(), zap.NewNop())}
		auth.On("Login", "bad").Return(errors.New("Invalid token"))
		rec := serve(QueryTokenLogin(auth), httptest.NewRequest(http.MethodGet, "/?token=bad", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid token")
	})
}

func TestTelegramUpdateDedup(t *testing.T) {
	mw := TelegramUpdateDedup(dedup.NewMemory(0))
	body := `{"update_id":42,"message":{"text":"/start"}}`

	calls := 0
	handler := mw(func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	})

	e := echo.New()
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/bot/webhook", strings.NewReader(body))
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, calls)
}

func TestTelegramIPCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/bot/webhook", nil)
	req.Header.Set(echo.HeaderXRealIP, "8.8.8.8")
	assert.Equal(t, http.StatusForbidden, serve(TelegramIPCheck(), req).Code)

	req = httptest.NewRequest(http.MethodPost, "/bot/webhook", nil)
	req.Header.Set(echo.HeaderXRealIP, "149.154.167.99")
	assert.Equal(t, http.StatusOK, serve(TelegramIPCheck(), req).Code)
}
