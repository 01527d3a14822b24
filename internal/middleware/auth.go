package middleware

import (
	"github.com/clientdesk/backend/internal/dto"
	"github.com/clientdesk/backend/internal/token"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTProtected verifies the bearer access token and stores it under "user".
// Refresh tokens are signed with a different secret and fail here.
func JWTProtected(issuer *token.Issuer) fiber.Handler {
	return jwtware.New(jwtware.Config{
		KeyFunc: issuer.AccessKeyfunc(),
		Claims:  &token.Claims{},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// AdminRequired lets through only tokens carrying the admin claim.
// It must run after JWTProtected.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := ClaimsFrom(c)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if !claims.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin access required",
			})
		}
		return c.Next()
	}
}

// ClaimsFrom returns the verified claims, or nil if the request is anonymous.
func ClaimsFrom(c *fiber.Ctx) *token.Claims {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return nil
	}
	claims, _ := tok.Claims.(*token.Claims)
	return claims
}
