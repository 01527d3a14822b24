package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger writes one line per request. Credential headers are never
// logged.
func RequestLogger(logger *slog.Logger, redact ...string) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	hidden := map[string]struct{}{
		http.CanonicalHeaderKey(fiber.HeaderAuthorization): {},
		http.CanonicalHeaderKey(fiber.HeaderCookie):        {},
	}
	for _, h := range redact {
		hidden[http.CanonicalHeaderKey(h)] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		headers := make(map[string]string)
		for k, v := range c.GetReqHeaders() {
			if _, skip := hidden[http.CanonicalHeaderKey(k)]; skip {
				continue
			}
			headers[k] = strings.Join(v, ", ")
		}

		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", float64(time.Since(start).Microseconds()) / 1000,
			"ip", c.IP(),
			"headers", headers,
		}
		if id, ok := c.Locals("requestid").(string); ok {
			attrs = append(attrs, "request_id", id)
		}

		logger.Info("http request", attrs...)
		return err
	}
}
