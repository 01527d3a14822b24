package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogNotifier stands in for the broker in local runs without AMQP_URL.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendWelcome(ctx context.Context, msg WelcomeMessage) (string, error) {
	id := uuid.NewString()
	n.logger.InfoContext(ctx, "welcome notification (log only)",
		"message_id", id,
		"email", msg.Email,
		"name", msg.Name,
	)
	return id, nil
}
