package handlers

import (
	"fmt"

	"github.com/clientdesk/backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type normalizer interface {
	Normalize()
}

// bind parses the JSON body into out, normalizes it and runs the shape rules.
func bind(c *fiber.Ctx, v *validation.Validator, out normalizer) error {
	if err := c.BodyParser(out); err != nil {
		return &ValidationError{
			Message: "Invalid request body",
			Fields:  []validation.FieldError{{Field: "body", Rule: "json", Message: "must be a valid JSON object"}},
		}
	}

	out.Normalize()

	if errs := v.Struct(out); len(errs) > 0 {
		return &ValidationError{
			Message: fmt.Sprintf("%q %s", errs[0].Field, errs[0].Message),
			Fields:  errs,
		}
	}
	return nil
}
