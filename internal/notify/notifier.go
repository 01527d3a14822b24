package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	WelcomeSubject  = "Welcome"
	WelcomeTemplate = "welcome"
)

// WelcomeMessage is sent once per successful registration.
type WelcomeMessage struct {
	Email string
	Name  string
}

// Notifier delivers a welcome message and returns the transport's message id.
type Notifier interface {
	SendWelcome(ctx context.Context, msg WelcomeMessage) (string, error)
}

// Publisher is the broker operation the queue notifier needs.
type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte, attrs map[string]string) (string, error)
}

// Envelope is the payload the notification worker consumes.
type Envelope struct {
	NotifyBy []string          `json:"notifyBy"`
	Email    string            `json:"email"`
	Subject  string            `json:"subject"`
	Data     map[string]string `json:"data"`
	Template string            `json:"template"`
}

// QueueNotifier hands welcome messages to a broker queue for the mailer.
type QueueNotifier struct {
	publisher Publisher
	queue     string
}

func NewQueueNotifier(publisher Publisher, queue string) *QueueNotifier {
	return &QueueNotifier{publisher: publisher, queue: queue}
}

func (n *QueueNotifier) SendWelcome(ctx context.Context, msg WelcomeMessage) (string, error) {
	if strings.TrimSpace(msg.Email) == "" {
		return "", errors.New("welcome message has no recipient")
	}

	body, err := json.Marshal(Envelope{
		NotifyBy: []string{"email"},
		Email:    msg.Email,
		Subject:  WelcomeSubject,
		Data:     map[string]string{"name": msg.Name},
		Template: WelcomeTemplate,
	})
	if err != nil {
		return "", fmt.Errorf("encode welcome message: %w", err)
	}

	id, err := n.publisher.Publish(ctx, n.queue, body, map[string]string{"type": "email"})
	if err != nil {
		return "", fmt.Errorf("publish welcome message: %w", err)
	}
	return id, nil
}
