package beewatch

import (
	"io"
	"log/slog"

	"github.com/hazyhaar/beewatch/internal/sink"
)

// Sink is the output interface for monitor events.
type Sink = sink.Sink

// Event is one discrete notification delivered to sinks.
type Event = sink.Event

// EventFunc is called for each event by a callback sink.
type EventFunc = sink.EventFunc

// Event types delivered to sinks.
const (
	EventNewProfile   = sink.EventNewProfile
	EventStatsChanged = sink.EventStatsChanged
	EventRunStatus    = sink.EventRunStatus
	EventActivity     = sink.EventActivity
	EventWarning      = sink.EventWarning
)

// NewStdoutSink creates a stdout JSON-lines sink.
func NewStdoutSink(w io.Writer) Sink {
	return sink.NewStdout(w)
}

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, logger *slog.Logger) Sink {
	return sink.NewWebhook(url, sink.WithWebhookLogger(logger))
}

// NewCallbackSink creates an in-process callback sink.
func NewCallbackSink(fn EventFunc) Sink {
	return sink.NewCallback(fn)
}

// Hub is a websocket broadcast sink that doubles as an http.Handler.
type Hub = sink.Hub

// NewHubSink creates a websocket hub for live dashboard clients.
func NewHubSink(logger *slog.Logger) *Hub {
	return sink.NewHub(logger)
}

// SinksFromConfig builds the configured output backends.
func SinksFromConfig(cfgs []SinkConfig, logger *slog.Logger) []Sink {
	var sinks []Sink
	for _, c := range cfgs {
		switch c.Type {
		case "stdout":
			sinks = append(sinks, NewStdoutSink(nil))
		case "webhook":
			sinks = append(sinks, NewWebhookSink(c.URL, logger))
		}
	}
	return sinks
}
