package settlement

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/NaByeonggil/obesity1-sub001/internal/platform/apperr"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	group := api.Group("", auth.RequireRole(auth.RolePharmacy))
	group.GET("/settlements/daily", h.Daily)
	group.GET("/settlements/monthly", h.Monthly)
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
}

// reportDate parses ?date=YYYY-MM-DD, defaulting to today.
func reportDate(c echo.Context) (time.Time, error) {
	raw := c.QueryParam("date")
	if raw == "" {
		return time.Now(), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	return date, nil
}

// pharmacyID resolves the report subject: the caller's own id, or an
// explicit ?pharmacy_id= for administrators.
func pharmacyID(c echo.Context, p auth.Principal) (uuid.UUID, error) {
	if raw := c.QueryParam("pharmacy_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy_id")
		}
		return id, nil
	}
	return p.ID, nil
}

func (h *Handler) Daily(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	date, err := reportDate(c)
	if err != nil {
		return err
	}
	id, err := pharmacyID(c, p)
	if err != nil {
		return err
	}
	report, err := h.svc.Daily(c.Request().Context(), p, id, date)
	if err != nil {
		return httpError(err)
	}
	report.MonthlyStats, err = h.svc.MonthlyStats(c.Request().Context(), p, id, date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) Monthly(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	date, err := reportDate(c)
	if err != nil {
		return err
	}
	id, err := pharmacyID(c, p)
	if err != nil {
		return err
	}
	stats, err := h.svc.MonthlyStats(c.Request().Context(), p, id, date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
