package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Context key for storing verified token claims
const ContextKeyClaims = "claims"

// RequireAuth middleware checks for a valid bearer token
func RequireAuth(tokens *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromRequest(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "invalid or expired token",
				})
			}

			// Store claims in context for handlers
			c.Set(ContextKeyClaims, claims)

			return next(c)
		}
	}
}

// TokenFromRequest extracts the bearer token from the request
func TokenFromRequest(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// ClaimsFromContext returns the verified claims set by RequireAuth, or nil
func ClaimsFromContext(c echo.Context) *Claims {
	claims, ok := c.Get(ContextKeyClaims).(*Claims)
	if !ok {
		return nil
	}
	return claims
}
