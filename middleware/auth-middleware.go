package middleware

import (
	"errors"

	"github.com/go-pkgz/auth/v2/token"
	"github.com/gofiber/fiber/v2"
	"github.com/imagineserve/imagine-serve/auth"
)

var ErrNotLoggedIn = errors.New("no authenticated user on request")

// AuthMiddleware validates the bearer token or JWT cookie and stores the
// token user in the request locals.
func AuthMiddleware(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		var tokenStr string

		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		} else {
			tokenStr = c.Cookies("JWT")
		}

		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "You are not authorized!",
				"data":    nil,
			})
		}

		claims, err := svc.TokenService().Parse(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid token",
				"data":    nil,
			})
		}

		c.Locals("user", *claims.User)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// CheckUserLoggedIn returns the authenticated user's external auth id.
func CheckUserLoggedIn(c *fiber.Ctx) (string, error) {
	user, ok := c.Locals("user").(token.User)
	if !ok || user.ID == "" {
		return "", ErrNotLoggedIn
	}
	return user.ID, nil
}
