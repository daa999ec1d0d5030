package api

import (
	"math"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storedash/internal/dashboard"
	"storedash/internal/models"
)

// ProductHandler handles catalog reads and edits.
type ProductHandler struct {
	ctrl   *dashboard.Controller
	logger *zap.Logger
}

func NewProductHandler(ctrl *dashboard.Controller, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{ctrl: ctrl, logger: logger}
}

// productRequest keeps price optional so a missing one fails validation
// instead of silently becoming 0.
type productRequest struct {
	Name        string      `json:"name"`
	Price       *float64    `json:"price"`
	Description string      `json:"description"`
	InStock     models.Flag `json:"in_stock"`
	PhotoFileID *string     `json:"photo_file_id"`
}

func (r productRequest) input() models.ProductInput {
	price := math.NaN()
	if r.Price != nil {
		price = *r.Price
	}
	return models.ProductInput{
		Name:        r.Name,
		Price:       price,
		Description: r.Description,
		InStock:     r.InStock,
		PhotoFileID: r.PhotoFileID,
	}
}

// List returns the catalog, reloading it first.
// GET /dashboard/products
func (h *ProductHandler) List(c echo.Context) error {
	if _, err := h.ctrl.LoadProducts(c.Request().Context()); err != nil {
		return failure(c, h.logger, "products", err)
	}
	return successResponse(c, "Successful", h.ctrl.Products())
}

// Create adds a product.
// POST /dashboard/products
func (h *ProductHandler) Create(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.ctrl.AddProduct(c.Request().Context(), req.input()); err != nil {
		return failure(c, h.logger, "product_add", err)
	}
	return successResponse(c, dashboard.ProductAddedMessage, h.ctrl.Products())
}

// Update resends the full record of a product.
// PUT /dashboard/products/:id
func (h *ProductHandler) Update(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.ctrl.EditProduct(c.Request().Context(), c.Param("id"), req.input()); err != nil {
		return failure(c, h.logger, "product_edit", err)
	}
	return successResponse(c, "Product updated", h.ctrl.Products())
}

// Toggle flips in_stock.
// POST /dashboard/products/:id/toggle
func (h *ProductHandler) Toggle(c echo.Context) error {
	if err := h.ctrl.ToggleStock(c.Request().Context(), c.Param("id")); err != nil {
		return failure(c, h.logger, "product_toggle", err)
	}
	return successResponse(c, "Stock updated", h.ctrl.Products())
}
