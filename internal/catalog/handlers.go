package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmagsino/backend-tindahan/internal/common"
)

// Handler exposes catalog reads over HTTP.
type Handler struct {
	Svc      *Service
	Currency string
}

// HandlerConfig groups Handler dependencies.
type HandlerConfig struct {
	Service  *Service
	Currency string
}

// NewHandler constructs the catalog HTTP handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{Svc: cfg.Service, Currency: cfg.Currency}
}

// List returns all products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Svc.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to list products", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}

// Get returns a single product with its configured units.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

// Units returns the resolved unit catalog, dynamic denominations included.
func (h *Handler) Units(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	units := h.Svc.Units(r.Context(), p)
	if len(units) == 0 {
		common.JSONError(w, http.StatusUnprocessableEntity, "UNSELLABLE", "product has no purchasable units", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": units})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
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
