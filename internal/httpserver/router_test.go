package httpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/badge"
	"storefront-api/internal/catalog"
	sessionrepo "storefront-api/internal/repository/session"
	cartsvc "storefront-api/internal/service/cart"
	viewsvc "storefront-api/internal/service/view"
)

const catalogFixture = `[
  {"id":7,"title":"Jacket","price":30.00,"category":"men's clothing","image":"j.png","rating":{"rate":4.6,"count":40}},
  {"id":8,"title":"Ring","price":150.00,"category":"jewelery","image":"r.png","rating":{"rate":3.2,"count":8}},
  {"id":9,"title":"Cap","price":15.00,"category":"men's clothing","image":"c.png"}
]`

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(catalogFixture)); err != nil {
			t.Errorf("write fixture: %v", err)
		}
	}))
	t.Cleanup(upstream.Close)

	logger := log.New(io.Discard, "", 0)
	broadcaster := badge.New()
	carts := cartsvc.New(sessionrepo.NewMemory(time.Hour), broadcaster, logger)
	views := viewsvc.New(catalog.NewClient(upstream.URL, time.Second), carts, logger)

	router := buildRouter(logger, nil, Deps{Carts: carts, Views: views, Badge: broadcaster}, []string{"*"})
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, cookie string, body []byte, out any) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	nextCookie := cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			nextCookie = sessionCookie + "=" + c.Value
		}
	}
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode response: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, nextCookie
}

func TestViewPageSetsSessionCookie(t *testing.T) {
	router := testRouter(t)

	var page viewsvc.Page
	rec, cookie := doJSON(t, router, http.MethodGet, "/api/views/featured", "", nil, &page)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cookie == "" {
		t.Fatal("expected a session cookie to be issued")
	}
	if page.View != "featured" || len(page.Items) != 3 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestUnknownViewIs404(t *testing.T) {
	router := testRouter(t)
	rec, _ := doJSON(t, router, http.MethodGet, "/api/views/clearance", "", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestNonIntegerProductIDIs400(t *testing.T) {
	router := testRouter(t)
	rec, _ := doJSON(t, router, http.MethodPost, "/api/views/featured/items/abc", "", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAddIncreaseDecreaseFlow(t *testing.T) {
	router := testRouter(t)

	var result viewsvc.Mutation
	rec, cookie := doJSON(t, router, http.MethodPost, "/api/views/featured/items/7", "", nil, &result)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d", rec.Code)
	}
	if !result.Item.InCart || result.Item.Quantity != 1 || result.ItemCount != 1 {
		t.Fatalf("unexpected add result %+v", result)
	}

	rec, cookie = doJSON(t, router, http.MethodPost, "/api/views/featured/items/7/increase", cookie, nil, &result)
	if rec.Code != http.StatusOK || result.Item.Quantity != 2 {
		t.Fatalf("increase: code=%d result=%+v", rec.Code, result)
	}

	rec, cookie = doJSON(t, router, http.MethodPost, "/api/views/featured/items/7/decrease", cookie, nil, &result)
	if rec.Code != http.StatusOK || result.Item.Quantity != 1 {
		t.Fatalf("decrease: code=%d result=%+v", rec.Code, result)
	}

	// A second view in the same session sees the same quantity at load.
	var page viewsvc.Page
	rec, _ = doJSON(t, router, http.MethodGet, "/api/views/new-arrivals", cookie, nil, &page)
	if rec.Code != http.StatusOK {
		t.Fatalf("load second view: %d", rec.Code)
	}
	for _, item := range page.Items {
		if item.ID == 7 && (!item.InCart || item.Quantity != 1) {
			t.Fatalf("second view out of sync: %+v", item)
		}
	}
}

func TestCartPageAndEdits(t *testing.T) {
	router := testRouter(t)

	_, cookie := doJSON(t, router, http.MethodPost, "/api/views/featured/items/7", "", nil, nil)
	_, cookie = doJSON(t, router, http.MethodPost, "/api/views/featured/items/9", cookie, nil, nil)

	var cart cartResponse
	rec, cookie := doJSON(t, router, http.MethodGet, "/api/cart", cookie, nil, &cart)
	if rec.Code != http.StatusOK {
		t.Fatalf("cart: expected 200, got %d", rec.Code)
	}
	if len(cart.Lines) != 2 || cart.Empty {
		t.Fatalf("unexpected cart %+v", cart)
	}
	// 3000 + 1500 cents, below the free-shipping threshold.
	if cart.Summary.SubtotalCents != 4500 || cart.Summary.ShippingCents != 1000 || cart.Summary.TotalCents != 5500 {
		t.Fatalf("unexpected summary %+v", cart.Summary)
	}

	// Quantity below 1 is clamped, not rejected.
	rec, cookie = doJSON(t, router, http.MethodPut, "/api/cart/items/7", cookie, []byte(`{"quantity":0}`), &cart)
	if rec.Code != http.StatusOK {
		t.Fatalf("set quantity: expected 200, got %d", rec.Code)
	}
	if cart.Lines[0].ProductID != 7 || cart.Lines[0].Quantity != 1 {
		t.Fatalf("expected clamp to 1, got %+v", cart.Lines[0])
	}

	rec, cookie = doJSON(t, router, http.MethodPut, "/api/cart/items/7", cookie, []byte(`{"quantity":4}`), &cart)
	if rec.Code != http.StatusOK || cart.Lines[0].Quantity != 4 {
		t.Fatalf("set quantity 4: code=%d cart=%+v", rec.Code, cart.Lines)
	}
	// 4x3000 + 1500 crosses the threshold: shipping becomes free.
	if cart.Summary.SubtotalCents != 13500 || cart.Summary.ShippingCents != 0 {
		t.Fatalf("unexpected summary %+v", cart.Summary)
	}

	rec, cookie = doJSON(t, router, http.MethodDelete, "/api/cart/items/7", cookie, nil, &cart)
	if rec.Code != http.StatusOK || len(cart.Lines) != 1 {
		t.Fatalf("remove: code=%d cart=%+v", rec.Code, cart.Lines)
	}

	rec, _ = doJSON(t, router, http.MethodDelete, "/api/cart/items/9", cookie, nil, &cart)
	if rec.Code != http.StatusOK || !cart.Empty {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
	if cart.Summary.TotalCents != 0 || cart.Summary.ShippingCents != 0 {
		t.Fatalf("empty cart must have zero totals, got %+v", cart.Summary)
	}
}

func TestSetQuantityUnknownProductIs404(t *testing.T) {
	router := testRouter(t)
	rec, _ := doJSON(t, router, http.MethodPut, "/api/cart/items/7", "", []byte(`{"quantity":2}`), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCartCountSeedsBadge(t *testing.T) {
	router := testRouter(t)

	_, cookie := doJSON(t, router, http.MethodPost, "/api/views/featured/items/7", "", nil, nil)
	_, cookie = doJSON(t, router, http.MethodPost, "/api/views/featured/items/7/increase", cookie, nil, nil)

	var body struct {
		ItemCount int `json:"itemCount"`
	}
	rec, _ := doJSON(t, router, http.MethodGet, "/api/cart/count", cookie, nil, &body)
	if rec.Code != http.StatusOK || body.ItemCount != 2 {
		t.Fatalf("expected count 2, got code=%d body=%+v", rec.Code, body)
	}
}

func TestReadyzWithMemorySessions(t *testing.T) {
	router := testRouter(t)
	rec, _ := doJSON(t, router, http.MethodGet, "/readyz", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "memory") {
		t.Fatalf("expected memory session backend reported, got %s", rec.Body.String())
	}
}

func TestCartEventsStreamsCounts(t *testing.T) {
	router := testRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	// Establish a session first so the stream and the mutation share it.
	resp, err := http.Get(srv.URL + "/api/cart/count")
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	resp.Body.Close()
	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			cookie = sessionCookie + "=" + c.Value
		}
	}
	if cookie == "" {
		t.Fatal("no session cookie issued")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/cart/events", nil)
	if err != nil {
		t.Fatalf("build events request: %v", err)
	}
	req.Header.Set("Cookie", cookie)

	stream, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open events stream: %v", err)
	}
	defer stream.Body.Close()

	scanner := bufio.NewScanner(stream.Body)
	readCount := func() string {
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, "data:") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
		t.Fatalf("stream ended early: %v", scanner.Err())
		return ""
	}

	if seed := readCount(); seed != "0" {
		t.Fatalf("expected seed count 0, got %q", seed)
	}

	addReq, err := http.NewRequest(http.MethodPost, srv.URL+"/api/views/featured/items/7", nil)
	if err != nil {
		t.Fatalf("build add request: %v", err)
	}
	addReq.Header.Set("Cookie", cookie)
	addResp, err := http.DefaultClient.Do(addReq)
	if err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	addResp.Body.Close()

	if count := readCount(); count != "1" {
		t.Fatalf("expected streamed count 1, got %q", count)
	}
}
