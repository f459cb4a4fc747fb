package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rmagsino/backend-tindahan/internal/catalog"
	"github.com/rmagsino/backend-tindahan/internal/obs"
)

// Catalog provides product lookups and resolved unit catalogs. Satisfied by
// catalog.Service; tests substitute a fake.
type Catalog interface {
	Product(ctx context.Context, id string) (catalog.Product, error)
	Units(ctx context.Context, p catalog.Product) []catalog.Unit
}

// Service encapsulates cart domain operations over the redis-backed store.
type Service struct {
	Store   *Store
	Catalog Catalog
	Logger  zerolog.Logger
	NewID   func() string
}

func (s *Service) newID() string {
	if s != nil && s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) check() error {
	if s == nil || s.Store == nil || s.Catalog == nil {
		return errors.New("cart service not configured")
	}
	return nil
}

// Create initialises an empty cart bound to the given anonymous id.
func (s *Service) Create(ctx context.Context, anonID string) (Cart, error) {
	if err := s.check(); err != nil {
		return Cart{}, err
	}
	return s.Store.Create(ctx, anonID)
}

// Get loads the current cart snapshot.
func (s *Service) Get(ctx context.Context, cartID string) (Cart, error) {
	if err := s.check(); err != nil {
		return Cart{}, err
	}
	return s.Store.Get(ctx, cartID)
}

// AddItem merges one instance of the selected unit into the cart.
func (s *Service) AddItem(ctx context.Context, cartID, productID, unitID string) (Cart, error) {
	if err := s.check(); err != nil {
		return Cart{}, err
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		obs.ObserveCartOp("add", "not_found")
		return Cart{}, err
	}
	product, err := s.Catalog.Product(ctx, productID)
	if err != nil {
		obs.ObserveCartOp("add", "error")
		return Cart{}, err
	}
	if !product.Sellable() {
		obs.ObserveCartOp("add", "rejected")
		return Cart{}, fmt.Errorf("product %s has no units: %w", productID, ErrInvalidInput)
	}
	units := s.Catalog.Units(ctx, product)
	selected, ok := findUnit(units, unitID)
	if !ok {
		obs.ObserveCartOp("add", "rejected")
		return Cart{}, fmt.Errorf("unit %s for product %s: %w", unitID, productID, ErrUnitNotInCatalog)
	}
	updated, err := Add(c, product, units, selected, s.newID)
	if err != nil {
		obs.ObserveCartOp("add", "rejected")
		return Cart{}, err
	}
	if err := s.Store.Save(ctx, updated); err != nil {
		obs.ObserveCartOp("add", "error")
		return Cart{}, err
	}
	obs.ObserveCartOp("add", "ok")
	s.Logger.Debug().
		Str("cart_id", cartID).
		Str("product_id", productID).
		Str("unit_id", unitID).
		Bool("base_tier", selected.IsBaseUnit).
		Msg("cart item added")
	return updated, nil
}

// UpdateItem sets a line's quantity, recomputing its total from the stored
// unit price.
func (s *Service) UpdateItem(ctx context.Context, cartID, lineID string, qty float64) (Cart, error) {
	if err := s.check(); err != nil {
		return Cart{}, err
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		obs.ObserveCartOp("update", "not_found")
		return Cart{}, err
	}
	updated, err := UpdateQuantity(c, lineID, qty)
	if err != nil {
		obs.ObserveCartOp("update", "rejected")
		return Cart{}, err
	}
	if err := s.Store.Save(ctx, updated); err != nil {
		obs.ObserveCartOp("update", "error")
		return Cart{}, err
	}
	obs.ObserveCartOp("update", "ok")
	return updated, nil
}

// RemoveItem deletes a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, cartID, lineID string) (Cart, error) {
	if err := s.check(); err != nil {
		return Cart{}, err
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		obs.ObserveCartOp("remove", "not_found")
		return Cart{}, err
	}
	updated, err := Remove(c, lineID)
	if err != nil {
		obs.ObserveCartOp("remove", "rejected")
		return Cart{}, err
	}
	if err := s.Store.Save(ctx, updated); err != nil {
		obs.ObserveCartOp("remove", "error")
		return Cart{}, err
	}
	obs.ObserveCartOp("remove", "ok")
	return updated, nil
}

func findUnit(units []catalog.Unit, id string) (catalog.Unit, bool) {
	for _, u := range units {
		if u.ID == id {
			return u, true
		}
	}
	return catalog.Unit{}, false
}
