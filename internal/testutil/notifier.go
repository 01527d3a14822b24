package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/clientdesk/backend/internal/notify"
)

var errMismatch = errors.New("password mismatch")

// Notifier records welcome messages and publishes each one on Sent so tests
// can wait for the asynchronous dispatch.
type Notifier struct {
	mu       sync.Mutex
	messages []notify.WelcomeMessage
	Err      error
	Sent     chan notify.WelcomeMessage
}

func NewNotifier() *Notifier {
	return &Notifier{Sent: make(chan notify.WelcomeMessage, 16)}
}

func (n *Notifier) SendWelcome(_ context.Context, msg notify.WelcomeMessage) (string, error) {
	n.mu.Lock()
	n.messages = append(n.messages, msg)
	err := n.Err
	n.mu.Unlock()

	n.Sent <- msg
	if err != nil {
		return "", err
	}
	return "msg-1", nil
}

func (n *Notifier) Messages() []notify.WelcomeMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.WelcomeMessage, len(n.messages))
	copy(out, n.messages)
	return out
}
