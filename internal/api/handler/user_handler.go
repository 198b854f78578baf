package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type updateProfileRequest struct {
	Username    *string `json:"username"     validate:"omitempty,max=20"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
}

// Me handles GET /v1/me.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /v1/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.service.Get(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PATCH /v1/me. An empty username clears it.
//
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/me [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), id.UserID, req.Username, req.DisplayName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateLocation handles PUT /v1/me/location.
//
// @Summary      Report current location
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      locationRequest  true  "Coordinates"
// @Success      200   {object}  domain.UserLocation
// @Failure      400   {object}  errorResponse
// @Router       /v1/me/location [put]
func (h *UserHandler) UpdateLocation(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req locationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	loc, err := h.service.UpdateLocation(c.Request().Context(), id.UserID, *req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loc)
}
