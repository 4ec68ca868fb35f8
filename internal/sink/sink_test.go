package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hazyhaar/beewatch/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStdoutWritesJSONLines(t *testing.T) {
	// WHAT: Each event becomes one JSON line on the writer.
	// WHY: Line-oriented output is what shell consumers parse.
	var buf bytes.Buffer
	s := NewStdout(&buf)

	ev := NewEvent(EventNewProfile)
	ev.Profile = &store.Profile{ID: "1", Name: "Ana", DisplayName: "Ana"}
	if err := s.Send(context.Background(), ev); err != nil {
		t.Fatalf("send: %v", err)
	}

	var got Event
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output not JSON: %v", err)
	}
	if got.Type != EventNewProfile || got.Profile == nil || got.Profile.ID != "1" {
		t.Errorf("got %+v", got)
	}
}

func TestRouterFanOut(t *testing.T) {
	// WHAT: The router delivers to every sink and returns the first
	// error without skipping later sinks.
	// WHY: One broken backend must not silence the others.
	var a, b atomic.Int32
	failing := NewCallback(func(context.Context, Event) error {
		a.Add(1)
		return errors.New("boom")
	})
	working := NewCallback(func(context.Context, Event) error {
		b.Add(1)
		return nil
	})

	r := NewRouter(discardLogger(), failing, working)
	err := r.Send(context.Background(), NewEvent(EventRunStatus))
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("error: %v", err)
	}
	if a.Load() != 1 || b.Load() != 1 {
		t.Errorf("deliveries: %d, %d", a.Load(), b.Load())
	}
}

func TestWebhookRetriesThenSucceeds(t *testing.T) {
	// WHAT: A webhook that fails once is retried and ultimately delivers.
	// WHY: Transient dashboard-backend hiccups must not lose events.
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("body not an event: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, WithWebhookLogger(discardLogger()))
	if err := w.Send(context.Background(), NewEvent(EventStatsChanged)); err != nil {
		t.Fatalf("send: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls: got %d, want 2", calls.Load())
	}
}

func TestWebhookExhaustsRetries(t *testing.T) {
	// WHAT: A persistently failing endpoint yields an error after the
	// configured attempts.
	// WHY: The router logs delivery failures; they must surface.
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL,
		WithWebhookRetries(2),
		WithWebhookLogger(discardLogger()))
	if err := w.Send(context.Background(), NewEvent(EventWarning)); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 2 {
		t.Errorf("calls: got %d, want 2", calls.Load())
	}
}

func TestHubBroadcast(t *testing.T) {
	// WHAT: An event sent to the hub reaches a connected websocket client.
	// WHY: The hub is the live-dashboard transport.
	hub := NewHub(discardLogger())
	defer hub.Close()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Registration races the first Send; wait for the client to appear.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ev := NewEvent(EventNewProfile)
	ev.Profile = &store.Profile{ID: "9", Name: "Mia", DisplayName: "Mia"}
	if err := hub.Send(context.Background(), ev); err != nil {
		t.Fatalf("send: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Event
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != EventNewProfile || got.Profile == nil || got.Profile.ID != "9" {
		t.Errorf("got %+v", got)
	}
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	// WHAT: Closing the hub ends client connections and later sends are
	// delivered to nobody without error.
	// WHY: Shutdown must not leak connections or panic on late events.
	hub := NewHub(discardLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := hub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("clients after close: %d", hub.ClientCount())
	}
	if err := hub.Send(context.Background(), NewEvent(EventRunStatus)); err != nil {
		t.Errorf("send after close: %v", err)
	}
}
