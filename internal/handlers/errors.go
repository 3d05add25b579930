package handlers

import (
	"errors"
	"net/http"

	"stockpilot/internal/apperrors"

	"github.com/labstack/echo/v4"
)

// httpError maps the service error taxonomy onto HTTP statuses. The
// typed message is passed through so the client can render it without a
// second round-trip (e.g. "only N units available").
func httpError(err error) *echo.HTTPError {
	var (
		validation   *apperrors.ValidationError
		notFound     *apperrors.NotFoundError
		duplicate    *apperrors.DuplicateCodeError
		immutable    *apperrors.ImmutableFieldError
		unitRequired *apperrors.UnitRequiredError
		inactive     *apperrors.WarehouseInactiveError
		insufficient *apperrors.InsufficientStockError
		dependents   *apperrors.HasDependentsError
		busy         *apperrors.BusyError
	)

	switch {
	case errors.As(err, &validation):
		return echo.NewHTTPError(http.StatusBadRequest, validation.Error())
	case errors.As(err, &notFound):
		return echo.NewHTTPError(http.StatusNotFound, notFound.Error())
	case errors.As(err, &duplicate):
		return echo.NewHTTPError(http.StatusConflict, duplicate.Error())
	case errors.As(err, &immutable):
		return echo.NewHTTPError(http.StatusConflict, immutable.Error())
	case errors.As(err, &dependents):
		return echo.NewHTTPError(http.StatusConflict, dependents.Error())
	case errors.As(err, &unitRequired):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, unitRequired.Error())
	case errors.As(err, &inactive):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, inactive.Error())
	case errors.As(err, &insufficient):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"message":   insufficient.Error(),
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
	case errors.As(err, &busy):
		return echo.NewHTTPError(http.StatusServiceUnavailable, busy.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
