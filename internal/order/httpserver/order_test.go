package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/internal/models"
	orderrepo "github.com/Skotchmaster/shop_orders/internal/order/repo"
	"github.com/Skotchmaster/shop_orders/internal/order/service"
	"github.com/Skotchmaster/shop_orders/internal/testutil"
	"github.com/Skotchmaster/shop_orders/pkg/events"
	middleware "github.com/Skotchmaster/shop_orders/pkg/middleware/auth"
	"github.com/Skotchmaster/shop_orders/pkg/tokens"
)

var jwtSecret = []byte("test-jwt-secret")

type testEnv struct {
	DB     *gorm.DB
	E      *echo.Echo
	Events *events.Recorder
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	rec := &events.Recorder{}
	svc := service.NewOrderService(&orderrepo.GormRepo{DB: db}, &orderrepo.GormTxRunner{DB: db})

	e := testutil.NewEcho()
	Register(e, &OrderHTTP{Svc: svc, Events: rec}, middleware.NewBearerMiddleware(jwtSecret))

	tok, err := tokens.NewAccessToken(jwtSecret, 1, "buyer@example.com", "buyer", time.Now().Add(time.Hour))
	require.NoError(t, err)

	return &testEnv{DB: db, E: e, Events: rec, token: tok}
}

func (env *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if env.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+env.token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func (env *testEnv) createOrder(t *testing.T, body string) uint {
	t.Helper()
	rec, out := env.do(t, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return uint(out["order_id"].(float64))
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	p := testutil.SeedProduct(t, env.DB, "Pen", "10.00", 5)

	rec, out := env.do(t, http.MethodPost, "/orders",
		fmt.Sprintf(`{"buyer_id": 1, "products": [{"product_id": %d, "quantity": 2}]}`, p.ID))
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, "Order created", out["message"])
	assert.EqualValues(t, 1, out["buyer_id"])
	assert.Equal(t, 20.0, out["total"])
	assert.Equal(t, "pending", out["status"])
	_, err := time.Parse(time.RFC3339, out["created_at"].(string))
	require.NoError(t, err)

	lines := out["order_products"].([]any)
	require.Len(t, lines, 1)
	line := lines[0].(map[string]any)
	assert.EqualValues(t, p.ID, line["product_id"])
	assert.EqualValues(t, 2, line["quantity"])
	assert.Equal(t, 10.0, line["price"])

	require.Len(t, env.Events.Events, 1)
	ev := env.Events.Events[0]
	assert.Equal(t, events.TopicOrders, ev.Topic)
	assert.Equal(t, "order_created", ev.Event.Type)
	assert.Equal(t, "20.00", ev.Event.Payload["total"])
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	rec, out := env.do(t, http.MethodPost, "/orders", `{"buyer_id": 1, "products": [{"product_id": 999, "quantity": 1}]}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Resource Not Found", out["error"])
	assert.Contains(t, out["message"], "999")

	var n int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Empty(t, env.Events.Events)
}

func TestCreateOrder_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		body string
		msg  string
	}{
		{`not json`, "Invalid or missing JSON data"},
		{`{"buyer_id": 1}`, "Missing required fields: buyer_id or products"},
		{`{"buyer_id": 1, "products": [{"product_id": 1}]}`, "Each product must have 'product_id' and 'quantity'"},
		{`{"buyer_id": 1, "products": [{"product_id": 1, "quantity": 1.5}]}`, "product_id must be an integer and quantity must be an integer"},
		{`{"buyer_id": 1, "products": [{"product_id": 1, "quantity": -1}]}`, "Product_id must be non-negative and quantity must be greater than 0"},
	}
	for _, tc := range cases {
		rec, out := env.do(t, http.MethodPost, "/orders", tc.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.body)
		assert.Equal(t, "Bad Request", out["error"], tc.body)
		assert.Equal(t, tc.msg, out["message"], tc.body)
	}
}

func TestOrderRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	env.token = ""

	rec, out := env.do(t, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token Missing", out["error"])

	rec, _ = env.do(t, http.MethodPost, "/orders", `{"buyer_id": 1, "products": [{"product_id": 1, "quantity": 1}]}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetOrder(t *testing.T) {
	env := newTestEnv(t)
	p := testutil.SeedProduct(t, env.DB, "Pen", "1.25", 5)
	id := env.createOrder(t, fmt.Sprintf(`{"buyer_id": 4, "products": [{"product_id": %d, "quantity": 3}]}`, p.ID))

	rec, out := env.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, id, out["order_id"])
	assert.Equal(t, 3.75, out["total"])
	assert.NotContains(t, out, "message")

	rec, out = env.do(t, http.MethodGet, "/orders/12345", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", out["message"])

	rec, out = env.do(t, http.MethodGet, "/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Order id must be an integer", out["message"])
}

func TestListOrders(t *testing.T) {
	env := newTestEnv(t)

	rec, out := env.do(t, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No orders found", out["message"])

	rec, out = env.do(t, http.MethodGet, "/orders/buyer/4", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No orders found for this buyer", out["message"])

	p := testutil.SeedProduct(t, env.DB, "Pen", "1.00", 5)
	env.createOrder(t, fmt.Sprintf(`{"buyer_id": 4, "products": [{"product_id": %d, "quantity": 1}]}`, p.ID))
	env.createOrder(t, fmt.Sprintf(`{"buyer_id": 5, "products": [{"product_id": %d, "quantity": 1}]}`, p.ID))

	rec, _ = env.do(t, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rec, _ = env.do(t, http.MethodGet, "/orders/buyer/4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.EqualValues(t, 4, mine[0]["buyer_id"])
	assert.Len(t, mine[0]["order_products"], 1)
}

func TestUpdateOrder(t *testing.T) {
	env := newTestEnv(t)
	p := testutil.SeedProduct(t, env.DB, "Pen", "1.00", 5)
	id := env.createOrder(t, fmt.Sprintf(`{"buyer_id": 4, "products": [{"product_id": %d, "quantity": 2}]}`, p.ID))
	path := fmt.Sprintf("/orders/%d", id)

	rec, out := env.do(t, http.MethodPatch, path, `{"status": "bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status, valid statuses are: pending, shipped, delivered", out["message"])

	rec, out = env.do(t, http.MethodPatch, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status, valid statuses are: pending, shipped, delivered", out["message"])

	rec, out = env.do(t, http.MethodPatch, path, `{"status": "shipped", "total": 0, "buyer_id": 99}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order updated successfully", out["message"])
	assert.Equal(t, "shipped", out["status"])
	assert.EqualValues(t, 4, out["buyer_id"])
	assert.Equal(t, 2.0, out["total"])
	assert.NotContains(t, out, "order_products")
	assert.EqualValues(t, 3, testutil.ProductStock(t, env.DB, p.ID))

	rec, out = env.do(t, http.MethodPatch, path, `{"status": "delivered"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot modify an order that has already been shipped or delivered", out["message"])

	rec, _ = env.do(t, http.MethodPatch, "/orders/999", `{"status": "shipped"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []string{"order_created", "order_status_updated"}, env.Events.Types())
}

func TestUpdateOrder_InsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	p := testutil.SeedProduct(t, env.DB, "Pen", "1.00", 1)
	id := env.createOrder(t, fmt.Sprintf(`{"buyer_id": 4, "products": [{"product_id": %d, "quantity": 2}]}`, p.ID))

	rec, out := env.do(t, http.MethodPatch, fmt.Sprintf("/orders/%d", id), `{"status": "shipped"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "There is not enough stock of Pen to complete the order", out["message"])
	assert.EqualValues(t, 1, testutil.ProductStock(t, env.DB, p.ID))

	rec, out = env.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", out["status"])
}

func TestDeleteOrder(t *testing.T) {
	env := newTestEnv(t)
	p := testutil.SeedProduct(t, env.DB, "Pen", "1.00", 5)
	id := env.createOrder(t, fmt.Sprintf(`{"buyer_id": 4, "products": [{"product_id": %d, "quantity": 2}]}`, p.ID))
	path := fmt.Sprintf("/orders/%d", id)

	rec, _ := env.do(t, http.MethodPatch, path, `{"status": "shipped"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out := env.do(t, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order deleted successfully", out["message"])
	assert.EqualValues(t, 3, testutil.ProductStock(t, env.DB, p.ID))

	var lines int64
	require.NoError(t, env.DB.Model(&models.OrderLine{}).Count(&lines).Error)
	assert.Zero(t, lines)

	rec, out = env.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", out["message"])
}
