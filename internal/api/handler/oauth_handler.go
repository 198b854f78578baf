package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

const (
	stateCookie   = "oauth_state"
	stateLifetime = 10 * time.Minute
)

// OAuthHandler runs the authorization-code login flow for every configured provider.
type OAuthHandler struct {
	providers    map[string]ports.IdentityProvider
	settings     ports.ProviderSettings
	authService  ports.AuthService
	secureCookie bool
	log          zerolog.Logger
}

func NewOAuthHandler(providers []ports.IdentityProvider, settings ports.ProviderSettings, authService ports.AuthService, secureCookie bool, log zerolog.Logger) *OAuthHandler {
	byName := make(map[string]ports.IdentityProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &OAuthHandler{providers: byName, settings: settings, authService: authService, secureCookie: secureCookie, log: log}
}

// available lists the configured provider names in a stable order.
func (h *OAuthHandler) available() []string {
	names := make([]string, 0, len(h.providers))
	for name := range h.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type providersResponse struct {
	Providers []string `json:"providers"`
}

// Providers handles GET /auth/providers: the configured providers that are
// currently enabled.
//
// @Summary      Enabled login providers
// @Tags         auth
// @Produce      json
// @Success      200  {object}  providersResponse
// @Router       /auth/providers [get]
func (h *OAuthHandler) Providers(c echo.Context) error {
	enabled, err := h.settings.Enabled(c.Request().Context())
	if err != nil {
		return err
	}
	on := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		on[name] = true
	}
	// Only providers this process holds credentials for can complete a login.
	names := []string{}
	for _, name := range h.available() {
		if on[name] {
			names = append(names, name)
		}
	}
	return c.JSON(http.StatusOK, providersResponse{Providers: names})
}

// Login handles GET /auth/:provider/login by redirecting to the provider.
//
// @Summary      Start OAuth login
// @Tags         auth
// @Param        provider  path  string  true  "google or github"
// @Success      307
// @Failure      403  {object}  errorResponse
// @Failure      400  {object}  errorResponse
// @Router       /auth/{provider}/login [get]
func (h *OAuthHandler) Login(c echo.Context) error {
	p, err := h.provider(c)
	if err != nil {
		return err
	}

	state := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int(stateLifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusTemporaryRedirect, p.AuthCodeURL(state))
}

// Callback handles GET /auth/:provider/callback: it checks the state, exchanges
// the code and signs the user in.
//
// @Summary      Complete OAuth login
// @Tags         auth
// @Produce      json
// @Param        provider  path      string  true  "google or github"
// @Param        state     query     string  true  "State issued by the login redirect"
// @Param        code      query     string  true  "Authorization code"
// @Success      200       {object}  authResponse
// @Failure      400       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /auth/{provider}/callback [get]
func (h *OAuthHandler) Callback(c echo.Context) error {
	p, err := h.provider(c)
	if err != nil {
		return err
	}

	state := c.QueryParam("state")
	cookie, err := c.Cookie(stateCookie)
	if state == "" || err != nil || cookie.Value != state {
		return echo.NewHTTPError(http.StatusForbidden, "state mismatch")
	}
	c.SetCookie(&http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1, HttpOnly: true, Secure: h.secureCookie})

	if errParam := c.QueryParam("error"); errParam != "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "login cancelled: "+errParam)
	}
	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing code")
	}

	ident, err := p.Exchange(c.Request().Context(), code)
	if err != nil {
		h.log.Warn().Err(err).Str("provider", p.Name()).Msg("oauth exchange failed")
		return echo.NewHTTPError(http.StatusUnauthorized, "login failed")
	}

	token, user, err := h.authService.OAuthLogin(c.Request().Context(), ident)
	if err != nil {
		return err
	}
	h.log.Info().Str("user_id", user.ID).Str("provider", p.Name()).Msg("user signed in")
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// provider resolves the :provider path parameter to a configured and enabled provider.
func (h *OAuthHandler) provider(c echo.Context) (ports.IdentityProvider, error) {
	name := c.Param("provider")
	p, ok := h.providers[name]
	if !ok {
		return nil, domain.ErrUnknownProvider
	}
	enabled, err := h.settings.IsEnabled(c.Request().Context(), name)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, domain.ErrProviderDisabled
	}
	return p, nil
}
