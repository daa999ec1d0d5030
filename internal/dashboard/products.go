package dashboard

import (
	"context"
	"math"
	"strings"

	"storedash/internal/models"
)

// ProductAddedMessage confirms a successful create.
const ProductAddedMessage = "Product added ✅"

// LoadProducts refreshes the catalog cache. The products KPI follows the
// local count until analytics overrides it.
func (c *Controller) LoadProducts(ctx context.Context) ([]models.Product, error) {
	products, err := c.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.products = products
	c.kpis.Products.Value = float64(len(products))
	c.mu.Unlock()
	return products, nil
}

// Products returns the catalog rows.
func (c *Controller) Products() []ProductRow {
	c.mu.RLock()
	defer c.mu.RUnlock()

	currency := ""
	if c.store != nil {
		currency = c.store.Currency
	}
	rows := make([]ProductRow, 0, len(c.products))
	for _, p := range c.products {
		rows = append(rows, newProductRow(p, currency))
	}
	return rows
}

func (c *Controller) cachedProduct(id string) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID.String() == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func normalizeInput(in models.ProductInput) models.ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.PhotoFileID != nil {
		in.PhotoFileID = models.OptionalString(strings.TrimSpace(*in.PhotoFileID))
	}
	return in
}

// AddProduct creates a product, then reloads the catalog and analytics.
func (c *Controller) AddProduct(ctx context.Context, in models.ProductInput) error {
	in = normalizeInput(in)
	if in.Name == "" || !finite(in.Price) {
		return invalid("Name and numeric price are required.")
	}
	if err := c.api.CreateProduct(ctx, in); err != nil {
		return err
	}
	return c.reloadProducts(ctx)
}

// EditProduct resends the full record of a cached product.
func (c *Controller) EditProduct(ctx context.Context, id string, in models.ProductInput) error {
	if _, ok := c.cachedProduct(id); !ok {
		return ErrProductNotFound
	}
	in = normalizeInput(in)
	if !finite(in.Price) || in.Price < 0 {
		return invalid("Invalid price")
	}
	if in.Name == "" {
		return invalid("Product name is required.")
	}
	if err := c.api.UpdateProduct(ctx, id, in); err != nil {
		return err
	}
	return c.reloadProducts(ctx)
}

// ToggleStock flips in_stock on a cached product and resends the record.
func (c *Controller) ToggleStock(ctx context.Context, id string) error {
	p, ok := c.cachedProduct(id)
	if !ok {
		return ErrProductNotFound
	}
	in := p.Input()
	in.InStock = !p.InStock
	if err := c.api.UpdateProduct(ctx, id, in); err != nil {
		return err
	}
	return c.reloadProducts(ctx)
}

func (c *Controller) reloadProducts(ctx context.Context) error {
	if _, err := c.LoadProducts(ctx); err != nil {
		return err
	}
	c.LoadAnalyticsSafe(ctx)
	return nil
}
