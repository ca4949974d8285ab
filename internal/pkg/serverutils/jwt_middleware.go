package serverutils

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// JwtMiddleware authenticates requests with the platform-issued token. The
// widget backend issues no tokens of its own; it only verifies the shared
// secret and extracts the user id the session layer keys on.
func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authorization token required"})
	}
	tokenStr := authHeader[len(bearerPrefix):]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authorization token is invalid or expired"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authorization token is invalid or expired"})
	}

	// Handlers expect the user id as a string local.
	userId, ok := claims["user_id"].(string)
	if !ok || userId == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authorization token carries no user id"})
	}

	ctx.Locals("user_id", userId)
	return ctx.Next()
}
