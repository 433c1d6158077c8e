package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJwtMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	userId := uuid.New()

	app := fiber.New()
	app.Get("/me", JwtMiddleware, func(ctx *fiber.Ctx) error {
		id, err := UserIdFromLocals(ctx)
		if err != nil {
			return err
		}
		return ctx.SendString(id.String())
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", jwt.MapClaims{"user_id": userId.String()}), fiber.StatusUnauthorized},
		{"no user claim", "Bearer " + signToken(t, "test-secret", jwt.MapClaims{"sub": "x"}), fiber.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, "test-secret", jwt.MapClaims{"user_id": userId.String()}), fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, userId.String(), string(body))
			}
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/bad", func(ctx *fiber.Ctx) error {
		return ErrBadRequest("invalid content", errors.New("boom"))
	})
	app.Get("/missing", func(ctx *fiber.Ctx) error { return ErrNotFound })
	app.Get("/internal", func(ctx *fiber.Ctx) error { return errors.New("db password leaked") })

	tests := []struct {
		path        string
		wantStatus  int
		wantMessage string
	}{
		{"/bad", fiber.StatusBadRequest, "invalid content: boom"},
		{"/missing", fiber.StatusNotFound, "resource not found"},
		{"/internal", fiber.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body Response[any]
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantStatus, body.Code)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type request struct {
		Title string `validate:"required"`
		Limit int    `validate:"gte=0,lte=100"`
	}

	assert.NoError(t, ValidateRequest(request{Title: "ok", Limit: 5}))

	err := ValidateRequest(request{Limit: 500})
	require.Error(t, err)
	assert.Equal(t, fiber.StatusBadRequest, StatusOf(err))
	assert.Contains(t, err.Error(), "Title (required)")
	assert.Contains(t, err.Error(), "Limit (lte)")
}
