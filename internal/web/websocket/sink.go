package websocket

import (
	"encoding/json"

	"epextract/internal/common/events"
	"epextract/pkg/models"

	"github.com/sirupsen/logrus"
)

// NewSink wraps a hub into an events.Sink: every extraction progress event is
// marshaled into a typed envelope and broadcast to all dashboard clients
func NewSink(hub *Hub, log *logrus.Logger) events.Sink {
	return events.SinkFunc(func(l models.ExtractLog) {
		message, err := json.Marshal(map[string]any{
			"type":   "extract_log",
			"status": l.Status,
			"error":  l.Error,
			"data":   l.Data,
			"stats":  l.Stats,
		})
		if err != nil {
			log.WithError(err).Error("Failed to marshal WebSocket message")
			return
		}
		hub.Broadcast(message)
	})
}
