package email

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// NoopSender stands in when no Resend key is configured. Announcements
// still complete; each message is logged instead of delivered.
type NoopSender struct {
	sent atomic.Int64
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the message and reports it accepted.
func (s *NoopSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	res, _ := s.SendBatch(ctx, []SendRequest{req})
	return res[0], nil
}

// SendBatch logs each message and reports them all accepted.
func (s *NoopSender) SendBatch(_ context.Context, reqs []SendRequest) ([]SendResult, error) {
	now := time.Now()
	results := make([]SendResult, len(reqs))
	for i, req := range reqs {
		results[i] = SendResult{MessageID: "noop-" + uuid.NewString(), SentAt: now}
		slog.Info("email_event", "event", "noop_send", "to_count", len(req.To), "subject", req.Subject, "tags", req.Tags)
	}
	s.sent.Add(int64(len(reqs)))
	return results, nil
}

// Sent is how many messages were swallowed since start.
func (s *NoopSender) Sent() int64 {
	return s.sent.Load()
}
