package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/happypapa636/RentChain/pkg/registry"
	"github.com/happypapa636/RentChain/pkg/webhooks"
	"github.com/happypapa636/RentChain/services/lease/internal/config"
)

func TestDispatcherSignsAndDelivers(t *testing.T) {
	received := make(chan *http.Request, 1)
	bodies := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies <- body
		received <- r
	}))
	defer srv.Close()

	d := NewDispatcher([]config.Subscriber{{URL: srv.URL, Secret: "subsecret"}}, nil)
	events := make(chan registry.Event, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx, events)

	ev := registry.Event{ID: "evt_1", Type: registry.EventLeaseCreated, LeaseID: "lse_1", Landlord: "acct_alice", DocumentRef: "QmA"}
	events <- ev

	select {
	case r := <-received:
		body := <-bodies
		v := webhooks.NewGenericHMACVerifier("rentchain")
		res, err := v.Verify(r.Header, body, time.Now(), "subsecret")
		if err != nil || !res.Valid {
			t.Fatalf("expected valid signature, got %+v err=%v", res, err)
		}
		if res.ProviderEventID != "evt_1" || res.EventType != string(registry.EventLeaseCreated) {
			t.Fatalf("unexpected event headers: %+v", res)
		}
		var got registry.Event
		if err := json.Unmarshal(body, &got); err != nil || got.LeaseID != "lse_1" {
			t.Fatalf("unexpected body %s err=%v", body, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery")
	}
}

func TestDispatcherStopsOnClosedChannel(t *testing.T) {
	d := NewDispatcher(nil, nil)
	events := make(chan registry.Event)
	close(events)
	done := make(chan struct{})
	go func() {
		d.Run(context.Background(), events)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected Run to return on closed channel")
	}
}
