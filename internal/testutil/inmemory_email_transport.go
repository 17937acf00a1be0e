package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/netspire/billing/internal/email"
	ierr "github.com/netspire/billing/internal/errors"
)

var _ email.Transport = (*InMemoryEmailTransport)(nil)

// InMemoryEmailTransport implements email.Transport and records every sent
// message. Set Err to simulate a delivery failure.
type InMemoryEmailTransport struct {
	mu   sync.Mutex
	sent []*email.Message

	Err error
}

func NewInMemoryEmailTransport() *InMemoryEmailTransport {
	return &InMemoryEmailTransport{}
}

func (t *InMemoryEmailTransport) IsEnabled() bool {
	return true
}

func (t *InMemoryEmailTransport) FromAddress() string {
	return "billing@test.example.com"
}

func (t *InMemoryEmailTransport) ReplyTo() string {
	return "accounts@test.example.com"
}

func (t *InMemoryEmailTransport) Send(ctx context.Context, msg *email.Message) (*email.SendResult, error) {
	if t.Err != nil {
		return nil, ierr.WithError(t.Err).
			WithHint("Failed to send email").
			Mark(ierr.ErrDispatch)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	clone := *msg
	t.sent = append(t.sent, &clone)

	return &email.SendResult{
		MessageID: fmt.Sprintf("msg_test_%d", len(t.sent)),
	}, nil
}

// Sent returns the messages delivered so far
func (t *InMemoryEmailTransport) Sent() []*email.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*email.Message{}, t.sent...)
}

// Clear drops all recorded messages
func (t *InMemoryEmailTransport) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = nil
}
