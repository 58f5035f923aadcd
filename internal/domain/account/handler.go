package account

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NaByeonggil/obesity1-sub001/internal/platform/apperr"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/auth"
	"github.com/NaByeonggil/obesity1-sub001/pkg/pagination"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/me", h.Me)
	// The pharmacy list backs the routing picker after a prescription is
	// issued, so patients need it too.
	api.GET("/pharmacies", h.ListPharmacies)
}

func (h *Handler) Me(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	u, err := h.repo.GetUser(c.Request().Context(), p.ID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListPharmacies(c echo.Context) error {
	params := pagination.FromContext(c)
	items, total, err := h.repo.ListPharmacies(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}
