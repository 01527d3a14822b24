package middleware

import (
	"crypto/subtle"

	"github.com/clientdesk/backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
)

// APIKey rejects requests whose header does not carry the shared key.
func APIKey(header, key string) fiber.Handler {
	expected := []byte(key)
	return keyauth.New(keyauth.Config{
		KeyLookup: "header:" + header,
		Validator: func(_ *fiber.Ctx, got string) (bool, error) {
			if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
				return false, keyauth.ErrMissingOrMalformedAPIKey
			}
			return true, nil
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or missing API key",
			})
		},
	})
}
