package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// AuthClaims is what the identity provider puts in its session tokens.
// Subject carries the stable external subject id (clerk id); the profile
// fields mirror what the provider knows about the account.
type AuthClaims struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageURL"`
	jwt.RegisteredClaims
}

// ContextKeyClerkID is where Auth stores the verified subject id.
const ContextKeyClerkID = "clerk_id"

// ContextKeyClaims is where Auth stores the full verified claims.
const ContextKeyClaims = "auth_claims"

// Auth verifies the identity provider's bearer token and exposes the
// subject id and profile claims on the request context. This service never
// issues tokens; it only verifies them.
func Auth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": "Authentication required",
				})
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": "Invalid authorization header format",
				})
			}

			claims, err := validateToken(tokenParts[1])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": "Invalid token",
				})
			}

			c.Set(ContextKeyClerkID, claims.Subject)
			c.Set(ContextKeyClaims, claims)

			return next(c)
		}
	}
}

func validateToken(tokenString string) (*AuthClaims, error) {
	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		return nil, errors.New("AUTH_JWT_SECRET not set")
	}

	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
