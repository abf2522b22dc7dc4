// Package events carries extraction progress out of the pipeline without the
// pipeline knowing who listens. The web layer plugs a websocket-backed sink in
// here; everything else gets the no-op sink.
package events

import "epextract/pkg/models"

// Sink receives progress events published by the extractor
type Sink interface {
	Publish(log models.ExtractLog)
}

// NopSink discards every event
type NopSink struct{}

func (NopSink) Publish(models.ExtractLog) {}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(models.ExtractLog)

func (f SinkFunc) Publish(log models.ExtractLog) { f(log) }
