package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/projectwatch/dashboard-api/internal/api/metrics"
	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

// ReactionHandler serves rating submission and listings.
type ReactionHandler struct {
	service ports.ReactionService
}

func NewReactionHandler(service ports.ReactionService) *ReactionHandler {
	return &ReactionHandler{service: service}
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
	Address   string   `json:"address"`
}

func (r *locationRequest) toInput() *ports.LocationInput {
	if r == nil {
		return nil
	}
	return &ports.LocationInput{Lat: *r.Latitude, Lng: *r.Longitude, Address: r.Address}
}

type submitReactionRequest struct {
	Rating       string           `json:"rating"`
	Comment      string           `json:"comment"`
	UserLocation *locationRequest `json:"userLocation"`
}

type proximityCheckRequest struct {
	UserLocation *locationRequest `json:"userLocation"`
}

type reactionResponse struct {
	Reaction          *domain.Reaction  `json:"reaction"`
	ProximityVerified bool              `json:"proximityVerified"`
	LocationCaptured  bool              `json:"locationCaptured"`
	ProximityDetails  *proximityDetails `json:"proximityDetails,omitempty"`
	IsAdminBypass     bool              `json:"isAdminBypass"`
}

type proximityCheckResponse struct {
	Allowed           bool              `json:"allowed"`
	ProximityVerified bool              `json:"proximityVerified"`
	LocationCaptured  bool              `json:"locationCaptured"`
	ProximityDetails  *proximityDetails `json:"proximityDetails,omitempty"`
	IsAdminBypass     bool              `json:"isAdminBypass"`
}

type projectReactionItem struct {
	*domain.Reaction
	User domain.PublicUser `json:"user"`
}

type userReactionItem struct {
	*domain.Reaction
	Project ports.ProjectSummary `json:"project"`
}

// Submit handles POST /v1/projects/:id/reactions.
//
// A location farther than 500m from the project is rejected with 403 and the
// measured distance; callers holding the unrestricted rating capability bypass
// the check. Resubmitting replaces the caller's earlier rating.
//
// @Summary      Rate a project
// @Tags         reactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Project ID"
// @Param        body  body      submitReactionRequest  true  "Rating"
// @Success      200   {object}  reactionResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/projects/{id}/reactions [post]
func (h *ReactionHandler) Submit(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req submitReactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.ReactionsRejectedTotal.WithLabelValues("invalid").Inc()
		return err
	}

	res, err := h.service.Submit(c.Request().Context(), ports.SubmitReactionInput{
		UserID:       id.UserID,
		ProjectID:    c.Param("id"),
		Rating:       req.Rating,
		Comment:      req.Comment,
		Location:     req.UserLocation.toInput(),
		Unrestricted: id.Unrestricted,
	})
	if err != nil {
		metrics.ReactionsRejectedTotal.WithLabelValues(rejectionReason(err)).Inc()
		return err
	}

	metrics.ReactionsSubmittedTotal.
		WithLabelValues(string(res.Reaction.Rating), strconv.FormatBool(res.Outcome.Verified)).
		Inc()

	return c.JSON(http.StatusOK, reactionResponse{
		Reaction:          res.Reaction,
		ProximityVerified: res.Outcome.Verified,
		LocationCaptured:  res.Outcome.LocationCaptured,
		ProximityDetails:  outcomeDetails(res.Outcome),
		IsAdminBypass:     res.Outcome.AdminBypass,
	})
}

// CheckProximity handles POST /v1/projects/:id/proximity. It answers whether a
// rating from the given location would be accepted without storing one.
//
// @Summary      Check rating eligibility
// @Tags         reactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Project ID"
// @Param        body  body      proximityCheckRequest  true  "Location"
// @Success      200   {object}  proximityCheckResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/projects/{id}/proximity [post]
func (h *ReactionHandler) CheckProximity(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req proximityCheckRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.service.CheckProximity(c.Request().Context(), id.UserID, c.Param("id"), req.UserLocation.toInput(), id.Unrestricted)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, proximityCheckResponse{
		Allowed:           !out.Rejected,
		ProximityVerified: out.Verified,
		LocationCaptured:  out.LocationCaptured,
		ProximityDetails:  outcomeDetails(out),
		IsAdminBypass:     out.AdminBypass,
	})
}

// Remove handles DELETE /v1/projects/:id/reactions and withdraws the caller's rating.
//
// @Summary      Withdraw my rating
// @Tags         reactions
// @Security     BearerAuth
// @Param        id   path  string  true  "Project ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/projects/{id}/reactions [delete]
func (h *ReactionHandler) Remove(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Remove(c.Request().Context(), id.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListForProject handles GET /v1/projects/:id/reactions.
//
// @Summary      List a project's ratings
// @Tags         reactions
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {array}   projectReactionItem
// @Failure      404  {object}  errorResponse
// @Router       /v1/projects/{id}/reactions [get]
func (h *ReactionHandler) ListForProject(c echo.Context) error {
	rows, err := h.service.ListForProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	out := make([]projectReactionItem, len(rows))
	for i, r := range rows {
		out[i] = projectReactionItem{Reaction: r.Reaction, User: r.User}
	}
	return c.JSON(http.StatusOK, out)
}

// ListMine handles GET /v1/me/reactions, newest first.
//
// @Summary      List my ratings
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  userReactionItem
// @Router       /v1/me/reactions [get]
func (h *ReactionHandler) ListMine(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	rows, err := h.service.ListForUser(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	out := make([]userReactionItem, len(rows))
	for i, r := range rows {
		out[i] = userReactionItem{Reaction: r.Reaction, Project: r.Project}
	}
	return c.JSON(http.StatusOK, out)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrProximityFailed):
		return "too_far"
	case errors.Is(err, domain.ErrProjectNotFound):
		return "not_found"
	default:
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return "invalid"
		}
		return "error"
	}
}
