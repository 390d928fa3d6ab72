package email

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NoopSender logs sends without delivering them. It keeps the last request
// for inspection in tests.
type NoopSender struct {
	mu   sync.Mutex
	last SendRequest
	sent int
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the email but does not deliver it.
// PRE: req is a valid SendRequest
// POST: Returns a noop result without actual delivery
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	slog.Info("noop_email_send", "to", req.To, "subject", req.Subject)
	s.mu.Lock()
	s.last = req
	s.sent++
	s.mu.Unlock()
	return SendResult{
		MessageID: "noop-" + uuid.NewString(),
		SentAt:    time.Now(),
	}, nil
}

// Last returns the most recent request and the number of sends so far.
func (s *NoopSender) Last() (SendRequest, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.sent
}
