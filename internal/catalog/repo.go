package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Repo loads products and their configured units from Postgres.
type Repo struct {
	Pool *pgxpool.Pool
}

// GetProduct fetches a product with its configured units.
func (r *Repo) GetProduct(ctx context.Context, id string) (Product, error) {
	if r == nil || r.Pool == nil {
		return Product{}, errors.New("catalog repo not configured")
	}
	var p Product
	err := r.Pool.QueryRow(ctx,
		`SELECT id, sku, title, price FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.SKU, &p.Title, &p.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return Product{}, fmt.Errorf("load product %s: %w", id, err)
	}
	units, err := r.loadUnits(ctx, p.ID)
	if err != nil {
		return Product{}, err
	}
	p.Units = units
	return p, nil
}

// ListProducts returns all products with their configured units.
func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	if r == nil || r.Pool == nil {
		return nil, errors.New("catalog repo not configured")
	}
	rows, err := r.Pool.Query(ctx, `SELECT id, sku, title, price FROM products ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Title, &p.Price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range products {
		units, err := r.loadUnits(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].Units = units
	}
	return products, nil
}

// UpsertProduct writes a product and replaces its configured units. Used by
// the seeder tool.
func (r *Repo) UpsertProduct(ctx context.Context, p Product) error {
	if r == nil || r.Pool == nil {
		return errors.New("catalog repo not configured")
	}
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO products (id, sku, title, price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET sku = EXCLUDED.sku, title = EXCLUDED.title, price = EXCLUDED.price
	`, p.ID, p.SKU, p.Title, p.Price); err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM product_units WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear units for %s: %w", p.ID, err)
	}
	for _, u := range p.Units {
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_units (id, product_id, label, conversion_factor, is_base_unit, price, min_sellable)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, u.ID, p.ID, u.Label, u.ConversionFactor, u.IsBaseUnit, u.Price, u.MinSellable); err != nil {
			return fmt.Errorf("insert unit %s for %s: %w", u.ID, p.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (r *Repo) loadUnits(ctx context.Context, productID string) ([]Unit, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, label, conversion_factor, is_base_unit, price, min_sellable
		FROM product_units
		WHERE product_id = $1
		ORDER BY conversion_factor DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("load units for %s: %w", productID, err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Label, &u.ConversionFactor, &u.IsBaseUnit, &u.Price, &u.MinSellable); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}
