package pricing_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rmagsino/backend-tindahan/internal/catalog"
	"github.com/rmagsino/backend-tindahan/internal/pricing"
)

type fakeRepo struct {
	products map[string]catalog.Product
}

func (f *fakeRepo) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, fmt.Errorf("product %s: %w", id, catalog.ErrNotFound)
	}
	return p, nil
}

func (f *fakeRepo) ListProducts(_ context.Context) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	repo := &fakeRepo{products: map[string]catalog.Product{
		"prod-amsul": {
			ID:    "prod-amsul",
			SKU:   "FERT-AMSUL-21",
			Title: "Ammonium Sulfate 21-0-0",
			Price: decimal.NewFromInt(1400),
			Units: []catalog.Unit{
				{ID: "sack", Label: "50kg", ConversionFactor: 50, IsBaseUnit: true, Price: decimal.NewFromInt(1400), MinSellable: 0.25},
				{ID: "kilo", Label: "1kg", ConversionFactor: 1, Price: decimal.NewFromInt(30), MinSellable: 0.25},
			},
		},
		"prod-twine": {
			ID:    "prod-twine",
			Title: "Baler Twine",
			Price: decimal.NewFromInt(220),
			Units: []catalog.Unit{
				{ID: "roll", Label: "roll", ConversionFactor: 1, Price: decimal.NewFromInt(220)},
			},
		},
		"prod-empty": {ID: "prod-empty", Title: "Placeholder"},
	}}

	svc, err := catalog.NewService(catalog.ServiceConfig{Repo: repo, Logger: zerolog.Nop()})
	require.NoError(t, err)
	h := pricing.NewHandler(pricing.HandlerConfig{Service: svc, Currency: "PHP", Logger: zerolog.Nop()})

	r := chi.NewRouter()
	r.Get("/products/{id}/quote", h.Quote)
	return r
}

func doGet(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestQuoteEndpoint(t *testing.T) {
	h := newTestRouter(t)

	cases := []struct {
		qty     string
		mode    string
		display string
		total   string
	}{
		{"10", "per_measure", "per-kg only", "300"},
		{"50", "base_exact", "per base-unit only", "1400"},
		{"60", "base_plus_remainder", "base-unit + remainder per-kg", "1700"},
	}
	for _, tc := range cases {
		rec, body := doGet(t, h, "/products/prod-amsul/quote?qty="+tc.qty)
		require.Equal(t, http.StatusOK, rec.Code, "qty=%s", tc.qty)
		data := body["data"].(map[string]any)
		require.Equal(t, tc.mode, data["mode"], "qty=%s", tc.qty)
		require.Equal(t, tc.display, data["display"], "qty=%s", tc.qty)
		// Decimal totals serialize as JSON strings.
		require.Equal(t, tc.total, data["total"], "qty=%s", tc.qty)
		require.Equal(t, "PHP", data["currency"])
	}
}

func TestQuoteFlatFallback(t *testing.T) {
	h := newTestRouter(t)
	rec, body := doGet(t, h, "/products/prod-twine/quote?qty=3")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	require.Equal(t, "flat", data["mode"])
	require.Equal(t, "flat price", data["display"])
}

func TestQuoteValidation(t *testing.T) {
	h := newTestRouter(t)

	for _, q := range []string{"", "0", "-2", "abc"} {
		rec, body := doGet(t, h, "/products/prod-amsul/quote?qty="+q)
		require.Equal(t, http.StatusBadRequest, rec.Code, "qty=%q", q)
		errBody := body["error"].(map[string]any)
		require.Equal(t, "BAD_REQUEST", errBody["code"])
	}

	rec, body := doGet(t, h, "/products/prod-empty/quote?qty=5")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errBody := body["error"].(map[string]any)
	require.Equal(t, "UNSELLABLE", errBody["code"])
}
