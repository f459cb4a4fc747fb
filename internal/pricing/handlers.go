package pricing

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rmagsino/backend-tindahan/internal/catalog"
	"github.com/rmagsino/backend-tindahan/internal/common"
	"github.com/rmagsino/backend-tindahan/internal/obs"
)

// Handler exposes price quotes over HTTP.
type Handler struct {
	Svc      *catalog.Service
	Currency string
	Logger   zerolog.Logger
}

// HandlerConfig groups Handler dependencies.
type HandlerConfig struct {
	Service  *catalog.Service
	Currency string
	Logger   zerolog.Logger
}

// NewHandler constructs the pricing HTTP handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{Svc: cfg.Service, Currency: cfg.Currency, Logger: cfg.Logger}
}

// Quote prices an arbitrary base-measure quantity of the product.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	qtyParam := strings.TrimSpace(r.URL.Query().Get("qty"))
	qty, err := strconv.ParseFloat(qtyParam, 64)
	if err != nil || qty <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "qty must be a positive number", nil)
		return
	}
	p, err := h.Svc.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	units := h.Svc.Units(r.Context(), p)
	quote, err := Compute(p, units, qty)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoUnits):
			common.JSONError(w, http.StatusUnprocessableEntity, "UNSELLABLE", "product has no purchasable units", nil)
		case errors.Is(err, ErrInvalidQuantity):
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "qty must be a positive number", nil)
		default:
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to price quantity", nil)
		}
		return
	}
	if quote.AmbiguousBase {
		h.Logger.Warn().Str("product_id", p.ID).Msg("multiple base units flagged, first match used")
	}
	obs.ObserveQuote(string(quote.Mode))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"productId":      quote.ProductID,
			"quantity":       quote.Quantity,
			"mode":           quote.Mode,
			"display":        h.displayText(quote),
			"baseCount":      quote.BaseCount,
			"remainder":      quote.Remainder,
			"basePrice":      quote.BasePrice.Round(2),
			"perMeasureRate": quote.PerMeasureRate.Round(2),
			"total":          quote.DisplayTotal(),
			"currency":       h.Currency,
		},
	})
}

// displayText renders the human explanation of the pricing branch taken.
func (h *Handler) displayText(q Quote) string {
	measure := h.Svc.Measure()
	switch q.Mode {
	case ModePerMeasure:
		return fmt.Sprintf("per-%s only", measure)
	case ModeBaseExact:
		return "per base-unit only"
	case ModeBasePlusRemainder:
		return fmt.Sprintf("base-unit + remainder per-%s", measure)
	default:
		return "flat price"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
		return
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load product", nil)
}
