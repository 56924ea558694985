package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Syncer drains the pending-order queue against the server's payment
// endpoint.  Three triggers invoke it: once at startup, on every
// connectivity-regained signal, and on a periodic tick while connectivity
// reports up.  Triggers can fire close together; passes are serialized so
// an entry removed by one pass can never be re-submitted by another.
type Syncer struct {
	Queue *Queue
	Log   *zap.Logger

	// Token supplies the current bearer token, looked up per submission
	// so a re-login between passes takes effect immediately.
	Token func() string

	// Online gates the periodic trigger; nil means always online.
	Online func() bool

	// Interval between periodic passes; zero defaults to one minute.
	Interval time.Duration

	http *resty.Client
	mu   sync.Mutex
}

// submitTimeout bounds a single order submission.  The browser original
// had no timeout at all; without one a dead connection would pin the
// pass forever.
const submitTimeout = 10 * time.Second

func NewSyncer(baseURL string, q *Queue, log *zap.Logger) *Syncer {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(submitTimeout).
		SetHeader("Content-Type", "application/json")
	return &Syncer{Queue: q, Log: log, http: httpClient}
}

// TrySync runs one replay pass over the queue, front to back:
//
//   - accepted (2xx): the entry is removed and the shortened queue is
//     persisted immediately, so a crash mid-pass cannot re-submit an
//     already-accepted order;
//   - rejected (non-2xx response): the entry stays in place with its
//     rejection recorded, and the pass moves on — later orders may still
//     be independently valid;
//   - transport failure (no response): the pass aborts at once, leaving
//     the failed entry and everything behind it untouched for the next
//     trigger.
//
// The returned error is the transport failure that aborted the pass, if
// any; rejections are not errors.
func (s *Syncer) TrySync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.Queue.Load()
	if err != nil {
		// A corrupt queue cannot be replayed; leave it for inspection.
		s.Log.Error("pending-order queue unreadable", zap.Error(err))
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	for i := 0; i < len(entries); {
		entry := &entries[i]
		entry.State = OrderSubmitting

		resp, err := s.submit(ctx, entry)
		if err != nil {
			entry.State = OrderPending
			s.Log.Warn("sync pass aborted on transport failure",
				zap.String("order", entry.LocalID),
				zap.Int("remaining", len(entries)-i),
				zap.Error(err))
			return err
		}

		if resp.IsSuccess() {
			entries = append(entries[:i], entries[i+1:]...)
			if err := s.Queue.Replace(entries); err != nil {
				s.Log.Error("queue persist failed after acceptance", zap.Error(err))
			}
			s.Log.Info("pending order accepted", zap.String("order", entry.LocalID))
			continue // same index now holds the next entry
		}

		entry.State = OrderRejected
		entry.LastError = fmt.Sprintf("status %d: %s", resp.StatusCode(), resp.String())
		if err := s.Queue.Replace(entries); err != nil {
			s.Log.Error("queue persist failed after rejection", zap.Error(err))
		}
		s.Log.Warn("pending order rejected by server",
			zap.String("order", entry.LocalID),
			zap.Int("status", resp.StatusCode()))
		i++
	}
	return nil
}

func (s *Syncer) submit(ctx context.Context, entry *QueuedOrder) (*resty.Response, error) {
	req := s.http.R().SetContext(ctx).SetBody(entry.Order)
	if s.Token != nil {
		if t := s.Token(); t != "" {
			req.SetAuthToken(t)
		}
	}
	return req.Post("/api/payment")
}

// Run blocks, executing the three trigger sources until ctx is done.
// online delivers connectivity-regained signals; a nil channel disables
// that trigger.
func (s *Syncer) Run(ctx context.Context, online <-chan struct{}) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	_ = s.TrySync(ctx) // startup pass

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-online:
			_ = s.TrySync(ctx)
		case <-ticker.C:
			if s.Online == nil || s.Online() {
				_ = s.TrySync(ctx)
			}
		}
	}
}
