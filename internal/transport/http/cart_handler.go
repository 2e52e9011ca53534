package http

import (
	"net/http"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/envelope"
	"ecommerce-api/internal/errs"
	"ecommerce-api/internal/service"
	"ecommerce-api/pkg/validator"

	"github.com/labstack/echo/v4"
)

// CartHandler handles HTTP requests for carts
type CartHandler struct {
	service   service.CartService
	validator validator.Validator
}

// NewCartHandler creates a new cart handler
func NewCartHandler(service service.CartService, validator validator.Validator) *CartHandler {
	return &CartHandler{service: service, validator: validator}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(api *echo.Group) {
	carts := api.Group("/carts")
	carts.POST("", h.CreateCart)
	carts.GET("", h.ListCarts)
	carts.POST("/merge", h.MergeCarts)
	carts.GET("/:id", h.GetCart)
	carts.PUT("/:id", h.UpdateCart)
	carts.DELETE("/:id", h.DeleteCart)
	carts.POST("/:id/items", h.AddCartItem)
}

// CreateCart creates a cart for the caller
// @Summary Create a cart
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope.Envelope
// @Failure 400 {object} envelope.ErrorResponse
// @Failure 401 {object} envelope.ErrorResponse
// @Router /api/v1/carts [post]
func (h *CartHandler) CreateCart(c echo.Context) error {
	principal, err := requireAuth(c, "create", "carts")
	if err != nil {
		return err
	}

	data, err := bindData(c, cartCreateRules)
	if err != nil {
		return err
	}
	var in domain.CartInput
	if err := decodeInto(data, &in); err != nil {
		return err
	}

	cart, err := h.service.CreateCart(c.Request().Context(), &in, &principal.UserID)
	if err != nil {
		return errs.Propagate(err, "create_cart")
	}

	return respond(c, http.StatusOK, cart, "Cart created successfully")
}

// UpdateCart replaces the cart lines
// @Summary Update a cart
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cart ID"
// @Success 200 {object} envelope.Envelope
// @Router /api/v1/carts/{id} [put]
func (h *CartHandler) UpdateCart(c echo.Context) error {
	if _, err := requireAuth(c, "update", "carts"); err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}
	data, err := bindData(c, cartUpdateRules)
	if err != nil {
		return err
	}
	var in domain.CartInput
	if err := decodeInto(data, &in); err != nil {
		return err
	}

	cart, err := h.service.UpdateCart(c.Request().Context(), id, &in)
	if err != nil {
		return errs.Propagate(err, "update_cart")
	}

	return respond(c, http.StatusOK, cart, "Cart updated successfully")
}

// DeleteCart deletes a cart
// @Summary Delete a cart
// @Tags carts
// @Security BearerAuth
// @Param id path int true "Cart ID"
// @Success 200 {object} envelope.Envelope
// @Router /api/v1/carts/{id} [delete]
func (h *CartHandler) DeleteCart(c echo.Context) error {
	if _, err := requireAuth(c, "delete", "carts"); err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteCart(c.Request().Context(), id); err != nil {
		return errs.Propagate(err, "delete_cart")
	}

	return respondDeleted(c, "Cart deleted successfully")
}

// GetCart retrieves a cart by ID
// @Summary Get a cart by ID
// @Tags carts
// @Produce json
// @Param id path int true "Cart ID"
// @Success 200 {object} envelope.Envelope
// @Failure 404 {object} envelope.ErrorResponse
// @Router /api/v1/carts/{id} [get]
func (h *CartHandler) GetCart(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	cart, err := h.service.GetCart(c.Request().Context(), id)
	if err != nil {
		return errs.Propagate(err, "find_cart")
	}

	return respondData(c, cart)
}

// ListCarts lists carts
// @Summary List carts
// @Tags carts
// @Produce json
// @Success 200 {object} envelope.Envelope
// @Router /api/v1/carts [get]
func (h *CartHandler) ListCarts(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}

	page, err := h.service.ListCarts(c.Request().Context(), params)
	if err != nil {
		return errs.Propagate(err, "find_carts")
	}

	return c.JSON(http.StatusOK, envelope.New(page.Items).WithPagination(envelope.PaginationOf(page)).Build())
}

// AddCartItem adds one line to a cart, merging it with an existing line of the same key
// @Summary Add an item to a cart
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cart ID"
// @Success 200 {object} envelope.Envelope
// @Failure 400 {object} envelope.ErrorResponse
// @Router /api/v1/carts/{id}/items [post]
func (h *CartHandler) AddCartItem(c echo.Context) error {
	if _, err := requireAuth(c, "update", "carts"); err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}
	data, err := bindData(c, cartItemRules)
	if err != nil {
		return err
	}
	var item domain.CartItem
	if err := decodeInto(data, &item); err != nil {
		return err
	}

	cart, err := h.service.AddCartItem(c.Request().Context(), id, item)
	if err != nil {
		return errs.Propagate(err, "add_cart_item")
	}

	return respond(c, http.StatusOK, cart, "Item added to cart")
}

// MergeCarts folds a guest cart into the caller's cart
// @Summary Merge a guest cart into the caller's cart
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MergeCartRequestDTO true "Guest session"
// @Success 200 {object} envelope.Envelope
// @Failure 400 {object} envelope.ErrorResponse
// @Router /api/v1/carts/merge [post]
func (h *CartHandler) MergeCarts(c echo.Context) error {
	principal, err := requireAuth(c, "merge", "carts")
	if err != nil {
		return err
	}

	var req MergeCartRequestDTO
	if err := c.Bind(&req); err != nil {
		return err
	}
	if _, err := h.validator.ValidateStruct(&req); err != nil {
		return err
	}

	cart, err := h.service.MergeCarts(c.Request().Context(), req.SessionID, principal.UserID)
	if err != nil {
		return errs.Propagate(err, "merge_carts")
	}

	return respond(c, http.StatusOK, cart, "Carts merged successfully")
}
