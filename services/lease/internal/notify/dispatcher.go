// Package notify pushes registry events to configured subscriber URLs,
// signed with the same HMAC scheme the inbound wallet webhooks use.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/happypapa636/RentChain/pkg/registry"
	"github.com/happypapa636/RentChain/pkg/webhooks"
	"github.com/happypapa636/RentChain/services/lease/internal/config"
)

const deliveryTimeout = 10 * time.Second

type Dispatcher struct {
	subscribers []config.Subscriber
	http        *http.Client
	log         *slog.Logger
}

func NewDispatcher(subscribers []config.Subscriber, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		subscribers: subscribers,
		http:        &http.Client{Timeout: deliveryTimeout},
		log:         log,
	}
}

// Run consumes events until the channel closes or ctx is cancelled.
// Delivery is best effort: a failed POST is logged and dropped, matching
// the bus's at-least-once-to-current-subscribers guarantee.
func (d *Dispatcher) Run(ctx context.Context, events <-chan registry.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			d.deliver(ctx, ev)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev registry.Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		d.log.Error("marshal event", "event_id", ev.ID, "error", err)
		return
	}
	for _, sub := range d.subscribers {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(body))
		if err != nil {
			d.log.Error("build delivery request", "url", sub.URL, "error", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(webhooks.SignatureHeader, webhooks.SignHex(sub.Secret, body))
		req.Header.Set(webhooks.EventIDHeader, ev.ID)
		req.Header.Set(webhooks.EventTypeHeader, string(ev.Type))

		resp, err := d.http.Do(req)
		if err != nil {
			d.log.Warn("event delivery failed", "url", sub.URL, "event_id", ev.ID, "error", err)
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			d.log.Warn("subscriber rejected event", "url", sub.URL, "event_id", ev.ID, "status", resp.StatusCode)
		}
	}
}
