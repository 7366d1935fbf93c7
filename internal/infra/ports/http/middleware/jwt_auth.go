package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/Gamefinity/internal/infra/appctx"
	"github.com/qrave1/Gamefinity/internal/usecase"
)

const CookieName = "jwt"

// JWTAuthMiddleware достает токен из cookie jwt или заголовка Authorization: Bearer
func JWTAuthMiddleware(identityUsecase usecase.IdentityUsecase) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" {
				cookie, err := c.Cookie(CookieName)
				if err != nil || cookie.Value == "" {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or malformed jwt"})
				}

				raw = cookie.Value
			}

			identity, err := identityUsecase.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired jwt"})
			}

			c.SetRequest(
				c.Request().WithContext(
					appctx.WithIdentity(c.Request().Context(), identity),
				),
			)

			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(token)
}
