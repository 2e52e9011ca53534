package http

import (
	"net/http"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/envelope"
	"ecommerce-api/internal/errs"
	"ecommerce-api/internal/service"

	"github.com/labstack/echo/v4"
)

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	service service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(api *echo.Group) {
	orders := api.Group("/orders")
	orders.POST("", h.CreateOrder)
	orders.GET("", h.ListOrders)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id", h.UpdateOrder)
	orders.DELETE("/:id", h.DeleteOrder)
}

// CreateOrder places an order for the caller
// @Summary Create an order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope.Envelope
// @Failure 400 {object} envelope.ErrorResponse
// @Failure 401 {object} envelope.ErrorResponse
// @Failure 422 {object} envelope.ErrorResponse
// @Router /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	principal, err := requireAuth(c, "create", "orders")
	if err != nil {
		return err
	}

	data, err := bindData(c, orderCreateRules)
	if err != nil {
		return err
	}
	var in domain.OrderInput
	if err := decodeInto(data, &in); err != nil {
		return err
	}

	order, err := h.service.CreateOrder(c.Request().Context(), &in, &principal.UserID)
	if err != nil {
		return errs.Propagate(err, "create_order")
	}

	return respond(c, http.StatusOK, order, "Order created successfully")
}

// UpdateOrder changes status, payment or total of an order
// @Summary Update an order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} envelope.Envelope
// @Failure 422 {object} envelope.ErrorResponse
// @Router /api/v1/orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	if _, err := requireAuth(c, "update", "orders"); err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}
	data, err := bindData(c, orderUpdateRules)
	if err != nil {
		return err
	}
	var in domain.OrderInput
	if err := decodeInto(data, &in); err != nil {
		return err
	}

	order, err := h.service.UpdateOrder(c.Request().Context(), id, &in)
	if err != nil {
		return errs.Propagate(err, "update_order")
	}

	return respond(c, http.StatusOK, order, "Order updated successfully")
}

// DeleteOrder deletes an order
// @Summary Delete an order
// @Tags orders
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} envelope.Envelope
// @Router /api/v1/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	if _, err := requireAuth(c, "delete", "orders"); err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteOrder(c.Request().Context(), id); err != nil {
		return errs.Propagate(err, "delete_order")
	}

	return respondDeleted(c, "Order deleted successfully")
}

// GetOrder retrieves an order by ID
// @Summary Get an order by ID
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} envelope.Envelope
// @Failure 404 {object} envelope.ErrorResponse
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	order, err := h.service.GetOrder(c.Request().Context(), id)
	if err != nil {
		return errs.Propagate(err, "find_order")
	}

	return respondData(c, order)
}

// ListOrders lists orders
// @Summary List orders
// @Tags orders
// @Produce json
// @Success 200 {object} envelope.Envelope
// @Router /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}

	page, err := h.service.ListOrders(c.Request().Context(), params)
	if err != nil {
		return errs.Propagate(err, "find_orders")
	}

	return c.JSON(http.StatusOK, envelope.New(page.Items).WithPagination(envelope.PaginationOf(page)).Build())
}
