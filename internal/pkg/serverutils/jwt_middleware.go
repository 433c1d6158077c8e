package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ParseUserToken validates an HMAC signed token and returns its user_id claim.
func ParseUserToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	userIdStr, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return userId, nil
}

func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	userId, err := ParseUserToken(authHeader[7:])
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	ctx.Locals("user_id", userId.String())
	return ctx.Next()
}

// UserIdFromLocals reads the id stored by JwtMiddleware.
func UserIdFromLocals(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return userId, nil
}
