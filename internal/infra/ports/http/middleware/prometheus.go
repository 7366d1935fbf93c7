package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/Gamefinity/internal/application/metric"
)

// PrometheusMiddleware собирает метрики HTTP запросов.
// WS апгрейды не попадают в гистограмму: соединение живет минуты.
func PrometheusMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.IsWebSocket() {
				return next(c)
			}

			start := time.Now()

			err := next(c)

			// путь маршрута, а не URI: иначе id комнат раздуют кардинальность
			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "unmatched"
			}

			metric.RecordHTTPMetrics(c.Request().Method, endpoint, statusOf(c, err), time.Since(start))

			return err
		}
	}
}

func statusOf(c echo.Context, err error) int {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	status := c.Response().Status
	if status == 0 {
		status = http.StatusOK
	}

	if err != nil && status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}

	return status
}
