package cart_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/rmagsino/backend-tindahan/internal/app"
	"github.com/rmagsino/backend-tindahan/internal/cart"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newTestService(t)
	h := &cart.Handler{Svc: svc, Validate: app.NewValidator(), Currency: "PHP"}

	r := chi.NewRouter()
	r.Post("/carts", h.Create)
	r.Get("/carts/{id}", h.Get)
	r.Post("/carts/{id}/items", h.AddItem)
	r.Patch("/carts/{id}/items/{itemId}", h.UpdateItem)
	r.Delete("/carts/{id}/items/{itemId}", h.RemoveItem)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func createCart(t *testing.T, h http.Handler) string {
	t.Helper()
	rec, body := do(t, h, http.MethodPost, "/carts", map[string]string{"anonId": "anon-1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	return body["data"].(map[string]any)["cartId"].(string)
}

func TestCartLifecycleOverHTTP(t *testing.T) {
	h := newTestRouter(t)
	id := createCart(t, h)

	add := func(productID, unitID string) (*httptest.ResponseRecorder, map[string]any) {
		return do(t, h, http.MethodPost, "/carts/"+id+"/items", map[string]string{
			"productId": productID, "unitId": unitID,
		})
	}

	rec, _ := add("prod-amsul", "sack")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, unit := range []string{"dyn-25kg", "dyn-25kg", "dyn-10kg"} {
		rec, _ = add("prod-amsul", unit)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, body := do(t, h, http.MethodGet, "/carts/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	lines := data["lines"].([]any)
	require.Len(t, lines, 2)

	base := lines[0].(map[string]any)
	require.Equal(t, true, base["baseTier"])
	require.Equal(t, "1400", base["lineTotal"])
	require.InDelta(t, 50, base["baseQuantity"].(float64), 1e-9)

	sub := lines[1].(map[string]any)
	require.Equal(t, false, sub["baseTier"])
	require.InDelta(t, 60, sub["quantity"].(float64), 1e-9)
	require.Equal(t, "1800", sub["lineTotal"])

	require.Equal(t, "3200", data["subtotal"])
	require.Equal(t, "PHP", data["currency"])
}

func TestUpdateAndRemoveOverHTTP(t *testing.T) {
	h := newTestRouter(t)
	id := createCart(t, h)

	rec, body := do(t, h, http.MethodPost, "/carts/"+id+"/items", map[string]string{
		"productId": "prod-amsul", "unitId": "kilo",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	lines := body["data"].(map[string]any)["lines"].([]any)
	lineID := lines[0].(map[string]any)["id"].(string)

	rec, body = do(t, h, http.MethodPatch, "/carts/"+id+"/items/"+lineID, map[string]float64{"quantity": 12})
	require.Equal(t, http.StatusOK, rec.Code)
	lines = body["data"].(map[string]any)["lines"].([]any)
	require.Equal(t, "360", lines[0].(map[string]any)["lineTotal"])

	rec, body = do(t, h, http.MethodDelete, "/carts/"+id+"/items/"+lineID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, body["data"].(map[string]any)["lines"])
}

func TestCartErrorMapping(t *testing.T) {
	h := newTestRouter(t)
	id := createCart(t, h)

	cases := []struct {
		name    string
		method  string
		path    string
		payload any
		status  int
		code    string
	}{
		{"missing cart", http.MethodGet, "/carts/cart-ghost", nil, http.StatusNotFound, "NOT_FOUND"},
		{"missing product", http.MethodPost, "/carts/" + id + "/items", map[string]string{"productId": "prod-ghost", "unitId": "sack"}, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"unknown unit", http.MethodPost, "/carts/" + id + "/items", map[string]string{"productId": "prod-amsul", "unitId": "dyn-3kg"}, http.StatusUnprocessableEntity, "UNIT_NOT_IN_CATALOG"},
		{"missing fields", http.MethodPost, "/carts/" + id + "/items", map[string]string{"productId": "prod-amsul"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"zero quantity", http.MethodPatch, "/carts/" + id + "/items/line-1", map[string]float64{"quantity": 0}, http.StatusBadRequest, "BAD_REQUEST"},
		{"missing line", http.MethodDelete, "/carts/" + id + "/items/line-ghost", nil, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := do(t, h, tc.method, tc.path, tc.payload)
			require.Equal(t, tc.status, rec.Code)
			errBody := body["error"].(map[string]any)
			require.Equal(t, tc.code, errBody["code"])
		})
	}
}
