package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_orders/pkg/apperr"
	"github.com/Skotchmaster/shop_orders/pkg/tokens"
)

var secret = []byte("test-jwt-secret")

func token(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	tok, err := tokens.NewAccessToken(secret, 9, "u@example.com", role, exp)
	require.NoError(t, err)
	return tok
}

func serve(t *testing.T, mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	return rec, c, err
}

func TestRequireAuth(t *testing.T) {
	m := NewBearerMiddleware(secret)
	valid := token(t, "buyer", time.Now().Add(time.Minute))
	expired := token(t, "buyer", time.Now().Add(-time.Minute))

	cases := []struct {
		name       string
		header     string
		wantStatus int
		wantTitle  string
	}{
		{"missing header", "", http.StatusUnauthorized, "Token Missing"},
		{"wrong scheme", "Basic abc", http.StatusBadRequest, "Invalid Token Format"},
		{"no token", "Bearer ", http.StatusBadRequest, "Invalid Token Format"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "Token Expired"},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized, "Invalid Token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := serve(t, m.RequireAuth, tc.header)
			require.Error(t, err)
			ae := apperr.From(err)
			assert.Equal(t, tc.wantStatus, ae.Status)
			assert.Equal(t, tc.wantTitle, ae.Title)
		})
	}

	t.Run("valid", func(t *testing.T) {
		rec, c, err := serve(t, m.RequireAuth, "Bearer "+valid)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, uint(9), c.Get(CtxUserID))
		assert.Equal(t, "buyer", c.Get(CtxRole))
		assert.Equal(t, "u@example.com", c.Get(CtxEmail))
	})
}

func TestRequireRole(t *testing.T) {
	m := NewBearerMiddleware(secret)
	mw := m.RequireRole("seller", "admin")

	_, _, err := serve(t, mw, "Bearer "+token(t, "buyer", time.Now().Add(time.Minute)))
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.From(err).Status)

	rec, _, err := serve(t, mw, "Bearer "+token(t, "seller", time.Now().Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
