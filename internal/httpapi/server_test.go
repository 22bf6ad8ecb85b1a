package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"golang.org/x/crypto/bcrypt"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/account"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/repository"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/testutil"
)

// Nasi Gudeg in the built-in catalog.
const nasiGudeg = 1

var now = time.Date(2025, 3, 1, 11, 45, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	repo *repository.Repository
	srv  *httptest.Server
	user int64
}

func setup(t *testing.T, opts ...Option) *env {
	t.Helper()
	repo, err := repository.Open(":memory:", repository.Options{
		Clock:      testutil.NewFixedClock(now),
		IDs:        testutil.NewSequenceGenerator("id"),
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	_, err = repo.SeedCatalog(ctx, nil)
	require.NoError(t, err)
	u, err := repo.Accounts.Register(ctx, account.Registration{Username: "andin", Email: "andin@example.com", Password: "pw"})
	require.NoError(t, err)

	srv := httptest.NewServer(New(repo, opts...).Handler())
	t.Cleanup(srv.Close)
	return &env{repo: repo, srv: srv, user: u.ID}
}

func (e *env) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	} else {
		r = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func userPath(id int64, rest string) string {
	return "/users/" + itoa(id) + rest
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func TestCatalogRoutes(t *testing.T) {
	e := setup(t)

	resp, body := e.do(t, "GET", "/tenants", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tenants := decode[[]map[string]any](t, body)
	assert.Len(t, tenants, 5)

	resp, body = e.do(t, "GET", "/tenants/1/menus", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decode[[]map[string]any](t, body))

	resp, body = e.do(t, "GET", "/menus?q=nasi%20gudeg", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	menus := decode[[]map[string]any](t, body)
	require.Len(t, menus, 1)
	assert.Equal(t, "Nasi Gudeg", menus[0]["name"])
	assert.Equal(t, "15000", menus[0]["price"])

	resp, body = e.do(t, "GET", "/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decode[[]string](t, body))

	resp, body = e.do(t, "GET", "/menus/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, errs.NotFound, decode[errorEnvelope](t, body).Error.Code)

	resp, _ = e.do(t, "GET", "/tenants/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	e := setup(t)

	resp, body := e.do(t, "POST", "/users", map[string]string{
		"username": "budi", "email": "Budi@Example.com ", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	u := decode[map[string]any](t, body)
	assert.Equal(t, "budi@example.com", u["email"])
	assert.NotContains(t, u, "password")

	resp, body = e.do(t, "POST", "/users", map[string]string{
		"username": "budi2", "email": "budi@example.com", "password": "secret",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errs.ConstraintViolation, decode[errorEnvelope](t, body).Error.Code)
}

func TestCartAndCheckout(t *testing.T) {
	e := setup(t)

	resp, body := e.do(t, "POST", userPath(e.user, "/cart"), map[string]any{"menu_id": nasiGudeg, "quantity": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	lineID := int64(decode[map[string]float64](t, body)["cart_id"])

	resp, body = e.do(t, "PATCH", "/cart/"+itoa(lineID), map[string]any{"quantity": 3, "note": "pedas"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode, string(body))

	resp, body = e.do(t, "GET", userPath(e.user, "/cart"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[map[string]any](t, body)
	assert.Equal(t, "45000", view["total"])
	assert.EqualValues(t, 1, view["count"])

	resp, body = e.do(t, "POST", userPath(e.user, "/checkout"), map[string]any{"confirmed_total": "40000", "payment_method": "QRIS"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	env := decode[errorEnvelope](t, body)
	assert.Equal(t, errs.TotalMismatch, env.Error.Code)
	assert.Equal(t, "45000", env.Error.Details["actual"])

	resp, body = e.do(t, "POST", userPath(e.user, "/checkout"), map[string]any{"payment_method": "QRIS"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = e.do(t, "POST", userPath(e.user, "/checkout"), map[string]any{"confirmed_total": "45000", "payment_method": "Crypto"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
	env = decode[errorEnvelope](t, body)
	assert.Equal(t, errs.InvalidArgument, env.Error.Code)
	assert.Contains(t, env.Error.Message, "QRIS")

	resp, body = e.do(t, "POST", userPath(e.user, "/checkout"), map[string]any{"confirmed_total": 45000, "payment_method": "QRIS"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	receipt := decode[map[string]any](t, body)
	order := receipt["order"].(map[string]any)
	assert.Equal(t, "45000", order["total_price"])
	assert.Equal(t, "Pending", order["status"])
	orderID := int64(order["id"].(float64))

	resp, body = e.do(t, "POST", userPath(e.user, "/checkout"), map[string]any{"confirmed_total": 0, "payment_method": "QRIS"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, errs.EmptyCart, decode[errorEnvelope](t, body).Error.Code)

	resp, body = e.do(t, "POST", "/orders/"+itoa(orderID)+"/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "Completed", decode[map[string]any](t, body)["status"])

	resp, body = e.do(t, "POST", "/orders/"+itoa(orderID)+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, errs.InvalidTransition, decode[errorEnvelope](t, body).Error.Code)

	resp, body = e.do(t, "GET", "/orders/"+itoa(orderID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[map[string]any](t, body)
	assert.Len(t, detail["lines"], 1)

	resp, body = e.do(t, "GET", userPath(e.user, "/orders"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, body), 1)
}

func TestCartLineRemoveAndClear(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	id, err := e.repo.AddToCart(ctx, e.user, nasiGudeg, 1, "")
	require.NoError(t, err)
	_, err = e.repo.AddToCart(ctx, e.user, 2, 1, "")
	require.NoError(t, err)

	resp, _ := e.do(t, "DELETE", "/cart/"+itoa(id), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = e.do(t, "PATCH", "/cart/"+itoa(id), map[string]any{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, "PATCH", "/cart/"+itoa(id), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := e.do(t, "DELETE", userPath(e.user, "/cart"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode[map[string]float64](t, body)["removed"])

	resp, body = e.do(t, "POST", userPath(e.user, "/cart"), map[string]any{"menu_id": 999})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errs.ConstraintViolation, decode[errorEnvelope](t, body).Error.Code)
}

func TestExportOrders(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.repo.AddToCart(ctx, e.user, nasiGudeg, 2, "")
	require.NoError(t, err)
	_, err = e.repo.Checkout(ctx, e.user, must(e.repo.CartTotal(ctx, e.user)), "Cash")
	require.NoError(t, err)

	resp, body := e.do(t, "GET", userPath(e.user, "/orders/export"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "orders.xlsx")

	file, err := xlsx.OpenBinary(body)
	require.NoError(t, err)
	require.Len(t, file.Sheet["Orders"].Rows, 2)
	assert.Equal(t, "30000", file.Sheet["Orders"].Rows[1].Cells[6].Value)

	resp, _ = e.do(t, "GET", "/users/999/orders/export", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	e := setup(t, WithCORSOrigins("http://localhost:5173"))

	req, err := http.NewRequest("OPTIONS", e.srv.URL+"/tenants", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStatusOf(t *testing.T) {
	cases := map[errs.Code]int{
		errs.NotFound:            http.StatusNotFound,
		errs.ConstraintViolation: http.StatusBadRequest,
		errs.InvalidArgument:     http.StatusBadRequest,
		errs.EmptyCart:           http.StatusConflict,
		errs.TotalMismatch:       http.StatusConflict,
		errs.InvalidTransition:   http.StatusConflict,
		errs.Cancelled:           http.StatusRequestTimeout,
		errs.StoreFailure:        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, statusOf(code), code)
	}
}

func dial(t *testing.T, e *env, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type cartFrame struct {
	Type  string         `json:"type"`
	Seq   int64          `json:"seq"`
	Data  map[string]any `json:"data"`
	Error *errorBody     `json:"error"`
}

func readCart(t *testing.T, conn *websocket.Conn) cartFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f cartFrame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestStreamCart(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	conn := dial(t, e, "/ws/users/"+itoa(e.user)+"/cart")

	f := readCart(t, conn)
	assert.Equal(t, "snapshot", f.Type)
	assert.Equal(t, "0", f.Data["total"])

	_, err := e.repo.AddToCart(ctx, e.user, nasiGudeg, 2, "")
	require.NoError(t, err)

	for {
		f = readCart(t, conn)
		require.Equal(t, "update", f.Type)
		require.Nil(t, f.Error)
		if f.Data["total"] == "30000" {
			break
		}
	}
	assert.Positive(t, f.Seq)

	conn.Close()
	require.Eventually(t, func() bool {
		return e.repo.Engine().Stats().Subscriptions == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStreamOrders_ClosesWithEngine(t *testing.T) {
	e := setup(t)
	conn := dial(t, e, "/ws/users/"+itoa(e.user)+"/orders")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, "snapshot", f.Type)

	e.repo.Engine().Close()

	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), err.Error())
}
