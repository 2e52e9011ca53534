package http

import (
	"net/http"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/envelope"
	"ecommerce-api/internal/errs"
	"ecommerce-api/internal/service"

	"github.com/labstack/echo/v4"
)

// AddressHandler handles HTTP requests for addresses
type AddressHandler struct {
	service service.AddressService
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(service service.AddressService) *AddressHandler {
	return &AddressHandler{service: service}
}

// RegisterRoutes registers all address routes
func (h *AddressHandler) RegisterRoutes(api *echo.Group) {
	addresses := api.Group("/addresses")
	addresses.POST("", h.CreateAddress)
	addresses.GET("", h.ListAddresses)
	addresses.GET("/:id", h.GetAddress)
	addresses.PUT("/:id", h.UpdateAddress)
	addresses.DELETE("/:id", h.DeleteAddress)
}

// CreateAddress stores an address for the caller
// @Summary Create an address
// @Tags addresses
// @Security BearerAuth
// @Success 200 {object} envelope.Envelope
// @Failure 400 {object} envelope.ErrorResponse
// @Router /api/v1/addresses [post]
func (h *AddressHandler) CreateAddress(c echo.Context) error {
	principal, err := requireAuth(c, "create", "addresses")
	if err != nil {
		return err
	}

	data, err := bindData(c, addressCreateRules)
	if err != nil {
		return err
	}
	var in domain.AddressInput
	if err := decodeInto(data, &in); err != nil {
		return err
	}

	address, err := h.service.CreateAddress(c.Request().Context(), &in, &principal.UserID)
	if err != nil {
		return errs.Propagate(err, "create_address")
	}

	return respond(c, http.StatusOK, address, "Address created successfully")
}

// UpdateAddress changes the fields present in the payload
// @Summary Update an address
// @Tags addresses
// @Security BearerAuth
// @Param id path int true "Address ID"
// @Success 200 {object} envelope.Envelope
// @Router /api/v1/addresses/{id} [put]
func (h *AddressHandler) UpdateAddress(c echo.Context) error {
	if _, err := requireAuth(c, "update", "addresses"); err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}
	data, err := bindData(c, addressUpdateRules)
	if err != nil {
		return err
	}
	var in domain.AddressInput
	if err := decodeInto(data, &in); err != nil {
		return err
	}

	address, err := h.service.UpdateAddress(c.Request().Context(), id, &in)
	if err != nil {
		return errs.Propagate(err, "update_address")
	}

	return respond(c, http.StatusOK, address, "Address updated successfully")
}

// DeleteAddress deletes an address
// @Summary Delete an address
// @Tags addresses
// @Security BearerAuth
// @Param id path int true "Address ID"
// @Router /api/v1/addresses/{id} [delete]
func (h *AddressHandler) DeleteAddress(c echo.Context) error {
	if _, err := requireAuth(c, "delete", "addresses"); err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteAddress(c.Request().Context(), id); err != nil {
		return errs.Propagate(err, "delete_address")
	}

	return respondDeleted(c, "Address deleted successfully")
}

// GetAddress retrieves an address by ID
// @Summary Get an address by ID
// @Tags addresses
// @Param id path int true "Address ID"
// @Router /api/v1/addresses/{id} [get]
func (h *AddressHandler) GetAddress(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	address, err := h.service.GetAddress(c.Request().Context(), id)
	if err != nil {
		return errs.Propagate(err, "find_address")
	}

	return respondData(c, address)
}

// ListAddresses lists addresses
// @Summary List addresses
// @Tags addresses
// @Router /api/v1/addresses [get]
func (h *AddressHandler) ListAddresses(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}

	page, err := h.service.ListAddresses(c.Request().Context(), params)
	if err != nil {
		return errs.Propagate(err, "find_addresses")
	}

	return c.JSON(http.StatusOK, envelope.New(page.Items).WithPagination(envelope.PaginationOf(page)).Build())
}

// ReviewHandler handles HTTP requests for reviews
type ReviewHandler struct {
	service service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// RegisterRoutes registers all review routes
func (h *ReviewHandler) RegisterRoutes(api *echo.Group) {
	reviews := api.Group("/reviews")
	reviews.POST("", h.CreateReview)
	reviews.GET("", h.ListReviews)
	reviews.GET("/:id", h.GetReview)
	reviews.PUT("/:id", h.UpdateReview)
	reviews.DELETE("/:id", h.DeleteReview)
}

// CreateReview stores a rating from the caller
// @Summary Create a review
// @Tags reviews
// @Security BearerAuth
// @Success 200 {object} envelope.Envelope
// @Failure 400 {object} envelope.ErrorResponse
// @Router /api/v1/reviews [post]
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	principal, err := requireAuth(c, "create", "reviews")
	if err != nil {
		return err
	}

	data, err := bindData(c, reviewCreateRules)
	if err != nil {
		return err
	}
	var in domain.ReviewInput
	if err := decodeInto(data, &in); err != nil {
		return err
	}

	review, err := h.service.CreateReview(c.Request().Context(), &in, &principal.UserID)
	if err != nil {
		return errs.Propagate(err, "create_review")
	}

	return respond(c, http.StatusOK, review, "Review created successfully")
}

// UpdateReview changes the fields present in the payload
// @Summary Update a review
// @Tags reviews
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Router /api/v1/reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	if _, err := requireAuth(c, "update", "reviews"); err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}
	data, err := bindData(c, reviewUpdateRules)
	if err != nil {
		return err
	}
	var in domain.ReviewInput
	if err := decodeInto(data, &in); err != nil {
		return err
	}

	review, err := h.service.UpdateReview(c.Request().Context(), id, &in)
	if err != nil {
		return errs.Propagate(err, "update_review")
	}

	return respond(c, http.StatusOK, review, "Review updated successfully")
}

// DeleteReview deletes a review
// @Summary Delete a review
// @Tags reviews
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Router /api/v1/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	if _, err := requireAuth(c, "delete", "reviews"); err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteReview(c.Request().Context(), id); err != nil {
		return errs.Propagate(err, "delete_review")
	}

	return respondDeleted(c, "Review deleted successfully")
}

// GetReview retrieves a review by ID
// @Summary Get a review by ID
// @Tags reviews
// @Param id path int true "Review ID"
// @Router /api/v1/reviews/{id} [get]
func (h *ReviewHandler) GetReview(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	review, err := h.service.GetReview(c.Request().Context(), id)
	if err != nil {
		return errs.Propagate(err, "find_review")
	}

	return respondData(c, review)
}

// ListReviews lists reviews
// @Summary List reviews
// @Tags reviews
// @Router /api/v1/reviews [get]
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}

	page, err := h.service.ListReviews(c.Request().Context(), params)
	if err != nil {
		return errs.Propagate(err, "find_reviews")
	}

	return c.JSON(http.StatusOK, envelope.New(page.Items).WithPagination(envelope.PaginationOf(page)).Build())
}
