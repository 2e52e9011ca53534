package http

import (
	"net/http"

	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/errs"
	"ecommerce-api/internal/service"
	"ecommerce-api/pkg/validator"

	"github.com/labstack/echo/v4"
)

// UserHandler handles role management requests
type UserHandler struct {
	service   service.RoleService
	validator validator.Validator
}

// NewUserHandler creates a new user handler
func NewUserHandler(service service.RoleService, validator validator.Validator) *UserHandler {
	return &UserHandler{service: service, validator: validator}
}

// RegisterRoutes registers all user and role routes
func (h *UserHandler) RegisterRoutes(api *echo.Group) {
	users := api.Group("/users")
	users.GET("/roles", h.ListRoles)
	users.POST("/roles", h.CreateRole)
	users.GET("/roles/:id", h.GetRole)
	users.GET("/by-role/:roleId", h.UsersByRole)
	users.GET("/:id/permissions", h.UserPermissions)
	users.PUT("/:id/assign-role", h.AssignRole)
}

// ListRoles lists all roles with their permissions
// @Summary List roles
// @Tags users
// @Security BearerAuth
// @Router /api/v1/users/roles [get]
func (h *UserHandler) ListRoles(c echo.Context) error {
	if _, err := requireAuth(c, "view", "roles"); err != nil {
		return err
	}

	roles, err := h.service.ListRoles(c.Request().Context())
	if err != nil {
		return errs.Propagate(err, "find_roles")
	}
	return respondData(c, roles)
}

// GetRole retrieves a role by ID
// @Summary Get a role by ID
// @Tags users
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Router /api/v1/users/roles/{id} [get]
func (h *UserHandler) GetRole(c echo.Context) error {
	if _, err := requireAuth(c, "view", "roles"); err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	role, err := h.service.GetRole(c.Request().Context(), id)
	if err != nil {
		return errs.Propagate(err, "find_role")
	}
	return respondData(c, role)
}

// UsersByRole lists the users holding a role
// @Summary List users by role
// @Tags users
// @Security BearerAuth
// @Param roleId path int true "Role ID"
// @Router /api/v1/users/by-role/{roleId} [get]
func (h *UserHandler) UsersByRole(c echo.Context) error {
	if _, err := requireRole(c, "view", "users", auth.RoleAdmin); err != nil {
		return err
	}

	roleID, err := parseUintParam(c, "roleId")
	if err != nil {
		return err
	}

	users, err := h.service.UsersByRole(c.Request().Context(), roleID)
	if err != nil {
		return errs.Propagate(err, "find_users_by_role")
	}
	return respondData(c, users)
}

// UserPermissions returns the role and permissions of a user. Callers may read their
// own permissions; admins may read anyone's.
// @Summary Get user permissions
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Router /api/v1/users/{id}/permissions [get]
func (h *UserHandler) UserPermissions(c echo.Context) error {
	principal, err := requireAuth(c, "view", "permissions")
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}
	if principal.UserID != id && !principal.HasRole(auth.RoleAdmin) {
		return errs.Authorization("Insufficient permissions to view permissions")
	}

	perms, err := h.service.UserPermissions(c.Request().Context(), id)
	if err != nil {
		return errs.Propagate(err, "find_user_permissions")
	}
	return respondData(c, perms)
}

// CreateRole creates a role
// @Summary Create a role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param role body CreateRoleRequestDTO true "Role data"
// @Success 201 {object} envelope.Envelope
// @Failure 400 {object} envelope.ErrorResponse
// @Failure 403 {object} envelope.ErrorResponse
// @Router /api/v1/users/roles [post]
func (h *UserHandler) CreateRole(c echo.Context) error {
	if _, err := requireRole(c, "create", "roles", auth.RoleAdmin); err != nil {
		return err
	}

	var req CreateRoleRequestDTO
	if err := c.Bind(&req); err != nil {
		return err
	}
	if _, err := h.validator.ValidateStruct(&req); err != nil {
		return err
	}

	role, err := h.service.CreateRole(c.Request().Context(), req.ToNewRole())
	if err != nil {
		return errs.Propagate(err, "create_role")
	}

	return respond(c, http.StatusCreated, role, "Role created successfully")
}

// AssignRole gives a user a role
// @Summary Assign a role to a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body AssignRoleRequestDTO true "Role"
// @Success 200 {object} envelope.Envelope
// @Router /api/v1/users/{id}/assign-role [put]
func (h *UserHandler) AssignRole(c echo.Context) error {
	if _, err := requireRole(c, "assign", "roles", auth.RoleAdmin); err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req AssignRoleRequestDTO
	if err := c.Bind(&req); err != nil {
		return err
	}
	if _, err := h.validator.ValidateStruct(&req); err != nil {
		return err
	}

	user, err := h.service.AssignRole(c.Request().Context(), id, req.RoleID)
	if err != nil {
		return errs.Propagate(err, "assign_role")
	}

	return respond(c, http.StatusOK, user, "Role assigned successfully")
}
