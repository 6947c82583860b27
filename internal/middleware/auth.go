// Package middleware provides request context, authentication, authorization and rate limiting middleware.
package middleware

import (
	"strconv"
	"strings"

	"bagportal/internal/config"
	"bagportal/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the "role" claim of access tokens.
const (
	RoleResident = "resident"
	RoleStaff    = "staff"
)

// Fiber locals set by the auth middleware.
const (
	LocalUserID = "userID"
	LocalRole   = "role"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

func unauthorized(c *fiber.Ctx, message string) error {
	return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(message))
}

// authenticate verifies tokenString and stores the subject and role in locals.
// It returns a non-empty message when the token is rejected.
func authenticate(c *fiber.Ctx, tokenString string) string {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "Invalid or expired token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "Invalid token claims"
	}

	// "sub" carries the user id (RFC 7519 subject).
	subStr, ok := claims["sub"].(string)
	if !ok {
		return "Invalid token structure - missing subject"
	}
	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil || userID == 0 {
		return "Invalid user ID in token"
	}

	role, _ := claims["role"].(string)
	switch role {
	case "":
		role = RoleResident
	case RoleResident, RoleStaff:
	default:
		return "Invalid role in token"
	}

	c.Locals(LocalUserID, uint(userID))
	c.Locals(LocalRole, role)
	return ""
}

func bearerToken(c *fiber.Ctx) (string, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", "Authorization header required"
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid authorization header format"
	}
	return parts[1], ""
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	token, msg := bearerToken(c)
	if msg != "" {
		return unauthorized(c, msg)
	}
	if msg := authenticate(c, token); msg != "" {
		return unauthorized(c, msg)
	}
	return c.Next()
}

// WebSocketAuthRequired accepts the token from the "token" query parameter,
// falling back to the Authorization header.
func WebSocketAuthRequired(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		var msg string
		if token, msg = bearerToken(c); msg != "" {
			return unauthorized(c, msg)
		}
	}
	if msg := authenticate(c, token); msg != "" {
		return unauthorized(c, msg)
	}
	return c.Next()
}

// StaffRequired rejects authenticated users without the staff role. Must run after an auth middleware.
func StaffRequired(c *fiber.Ctx) error {
	if !IsStaff(c) {
		return models.RespondWithError(c, fiber.StatusForbidden, models.NewForbiddenError("Staff role required"))
	}
	return c.Next()
}

// UserID returns the authenticated user id, or 0.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}

// IsStaff reports whether the authenticated user has the staff role.
func IsStaff(c *fiber.Ctx) bool {
	role, _ := c.Locals(LocalRole).(string)
	return role == RoleStaff
}
