package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

// SettingsHandler exposes runtime settings to administrators.
type SettingsHandler struct {
	providers ports.ProviderSettings
	log       zerolog.Logger
}

func NewSettingsHandler(providers ports.ProviderSettings, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{providers: providers, log: log}
}

type providerSettingsRequest struct {
	Providers []string `json:"providers" validate:"required,dive,required"`
}

// GetProviders handles GET /v1/admin/settings/providers.
//
// @Summary      Enabled login providers
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  providersResponse
// @Router       /v1/admin/settings/providers [get]
func (h *SettingsHandler) GetProviders(c echo.Context) error {
	enabled, err := h.providers.Enabled(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, providersResponse{Providers: enabled})
}

// PutProviders handles PUT /v1/admin/settings/providers.
//
// @Summary      Replace enabled login providers
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      providerSettingsRequest  true  "Providers to enable"
// @Success      200   {object}  providersResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/admin/settings/providers [put]
func (h *SettingsHandler) PutProviders(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req providerSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	enabled, err := h.providers.SetEnabled(c.Request().Context(), req.Providers)
	if err != nil {
		return err
	}
	h.log.Info().Str("user_id", id.UserID).Strs("providers", enabled).Msg("login providers updated")
	return c.JSON(http.StatusOK, providersResponse{Providers: enabled})
}
