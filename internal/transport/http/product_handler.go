package http

import (
	"net/http"

	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/envelope"
	"ecommerce-api/internal/errs"
	"ecommerce-api/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	useCase usecase.ProductUseCase
}

// NewProductHandler creates a new product handler
func NewProductHandler(useCase usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{useCase: useCase}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(api *echo.Group) {
	products := api.Group("/products")
	products.POST("", h.CreateProduct)
	products.GET("", h.ListProducts)
	products.GET("/:id", h.GetProduct)
	products.PUT("/:id", h.UpdateProduct)
	products.DELETE("/:id", h.DeleteProduct)
}

// CreateProduct creates a new product
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope.Envelope
// @Failure 400 {object} envelope.ErrorResponse
// @Failure 401 {object} envelope.ErrorResponse
// @Failure 403 {object} envelope.ErrorResponse
// @Router /api/v1/products [post]
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	if _, err := requireRole(c, "create", "products", auth.RoleAuthenticated, auth.RoleAdmin); err != nil {
		return err
	}

	data, err := bindData(c, productCreateRules)
	if err != nil {
		return err
	}
	var in domain.ProductInput
	if err := decodeInto(data, &in); err != nil {
		return err
	}

	product, err := h.useCase.CreateProduct(c.Request().Context(), &in)
	if err != nil {
		return errs.Propagate(err, "create_product")
	}

	return respond(c, http.StatusOK, product, "Product created successfully")
}

// UpdateProduct updates an existing product
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} envelope.Envelope
// @Failure 400 {object} envelope.ErrorResponse
// @Failure 404 {object} envelope.ErrorResponse
// @Router /api/v1/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	if _, err := requireRole(c, "update", "products", auth.RoleAuthenticated, auth.RoleAdmin); err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}
	data, err := bindData(c, productUpdateRules)
	if err != nil {
		return err
	}
	var in domain.ProductInput
	if err := decodeInto(data, &in); err != nil {
		return err
	}

	product, err := h.useCase.UpdateProduct(c.Request().Context(), id, &in)
	if err != nil {
		return errs.Propagate(err, "update_product")
	}

	return respond(c, http.StatusOK, product, "Product updated successfully")
}

// DeleteProduct deletes a product
// @Summary Delete a product
// @Tags products
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} envelope.Envelope
// @Failure 404 {object} envelope.ErrorResponse
// @Router /api/v1/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	if _, err := requireRole(c, "delete", "products", auth.RoleAuthenticated, auth.RoleAdmin); err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.useCase.DeleteProduct(c.Request().Context(), id); err != nil {
		return errs.Propagate(err, "delete_product")
	}

	return respondDeleted(c, "Product deleted successfully")
}

// GetProduct retrieves a product with its derived fields
// @Summary Get a product by ID
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} envelope.Envelope
// @Failure 404 {object} envelope.ErrorResponse
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.useCase.GetProduct(c.Request().Context(), id)
	if err != nil {
		return errs.Propagate(err, "find_product")
	}

	return respondData(c, product)
}

// ListProducts lists published products
// @Summary List products
// @Tags products
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} envelope.Envelope
// @Router /api/v1/products [get]
func (h *ProductHandler) ListProducts(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}

	page, err := h.useCase.ListProducts(c.Request().Context(), params)
	if err != nil {
		return errs.Propagate(err, "find_products")
	}

	return c.JSON(http.StatusOK, envelope.New(page.Items).WithPagination(envelope.PaginationOf(page)).Build())
}
