package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/rmagsino/backend-tindahan/internal/catalog"
	"github.com/rmagsino/backend-tindahan/internal/common"
)

// Handler wires the cart service to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
	Currency string
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	UnitID    string `json:"unitId" validate:"required"`
}

type updateItemRequest struct {
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}

// Create creates an empty cart for a guest session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload struct {
		AnonID string `json:"anonId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	c, err := h.Svc.Create(r.Context(), strings.TrimSpace(payload.AnonID))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"cartId": c.ID,
			"anonId": c.AnonID,
		},
	})
}

// Get returns the cart contents with display totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeCart(w, http.StatusOK, c)
}

// AddItem merges one instance of the selected unit into the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "productId and unitId are required", nil)
		return
	}
	c, err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "id"), payload.ProductID, payload.UnitID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeCart(w, http.StatusOK, c)
}

// UpdateItem replaces a line's quantity.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "quantity must be positive", nil)
		return
	}
	c, err := h.Svc.UpdateItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), payload.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeCart(w, http.StatusOK, c)
}

// RemoveItem deletes a line from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeCart(w, http.StatusOK, c)
}

func (h *Handler) validate(v any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(v)
}

func (h *Handler) writeCart(w http.ResponseWriter, status int, c Cart) {
	lines := make([]map[string]any, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, map[string]any{
			"id":           l.ID,
			"productId":    l.ProductID,
			"title":        l.Title,
			"baseTier":     l.BaseTier,
			"quantity":     l.Quantity,
			"baseQuantity": l.BaseQuantity(),
			"unitPrice":    l.UnitPrice.Round(2),
			"lineTotal":    l.LineTotal.Round(2),
			"selectedUnit": l.SelectedUnit,
		})
	}
	common.JSON(w, status, map[string]any{
		"data": map[string]any{
			"id":       c.ID,
			"anonId":   c.AnonID,
			"lines":    lines,
			"subtotal": c.Subtotal().Round(2),
			"currency": h.Currency,
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart or line not found", nil)
	case errors.Is(err, catalog.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
	case errors.Is(err, ErrUnitNotInCatalog):
		common.JSONError(w, http.StatusUnprocessableEntity, "UNIT_NOT_IN_CATALOG", "selected unit does not belong to the product", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_INPUT", err.Error(), nil)
	default:
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to process cart", nil)
	}
}
