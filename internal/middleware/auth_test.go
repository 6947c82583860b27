package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"bagportal/internal/config"
	"bagportal/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func signToken(t *testing.T, userID uint, role string, exp time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(exp).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret})

	app.Get("/test", AuthRequired, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": UserID(c), "staff": IsStaff(c)})
	})

	noneToken := func() string {
		s, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		return s
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
		expectedStaff  bool
	}{
		{"resident", "Bearer " + signToken(t, 123, RoleResident, time.Hour), http.StatusOK, 123, false},
		{"missing role defaults to resident", "Bearer " + signToken(t, 124, "", time.Hour), http.StatusOK, 124, false},
		{"staff", "Bearer " + signToken(t, 7, RoleStaff, time.Hour), http.StatusOK, 7, true},
		{"missing header", "", http.StatusUnauthorized, 0, false},
		{"invalid format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, 0, false},
		{"malformed token", "Bearer malformed.token.here", http.StatusUnauthorized, 0, false},
		{"expired token", "Bearer " + signToken(t, 123, RoleResident, -time.Hour), http.StatusUnauthorized, 0, false},
		{"unknown role", "Bearer " + signToken(t, 123, "admin", time.Hour), http.StatusUnauthorized, 0, false},
		{"zero subject", "Bearer " + signToken(t, 0, RoleResident, time.Hour), http.StatusUnauthorized, 0, false},
		{"unsigned token", "Bearer " + noneToken(), http.StatusUnauthorized, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body struct {
					UserID uint `json:"userID"`
					Staff  bool `json:"staff"`
				}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.expectedUserID, body.UserID)
				assert.Equal(t, tt.expectedStaff, body.Staff)
				return
			}

			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, models.CodeUnauthorized, body.Code)
		})
	}
}

func TestStaffRequired(t *testing.T) {
	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret})
	app.Get("/staff", AuthRequired, StaffRequired, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 5, RoleResident, time.Hour))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 5, RoleStaff, time.Hour))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestWebSocketAuthRequired(t *testing.T) {
	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret})
	app.Get("/ws", WebSocketAuthRequired, func(c *fiber.Ctx) error {
		return c.SendString(strconv.FormatUint(uint64(UserID(c)), 10))
	})

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+signToken(t, 42, RoleStaff, time.Hour), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, RoleStaff, time.Hour))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}
