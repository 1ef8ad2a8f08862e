package analytics

import (
	"encoding/json"
	"log"

	"watchlog/internal/database"
)

// maxPayloadBytes bounds the stored payload document. Oversized payloads
// are replaced with a truncation marker carrying a snippet.
const maxPayloadBytes = 5000

type eventInserter interface {
	Insert(event *database.Event) error
}

var _ eventInserter = (*database.EventRepository)(nil)

// Service records product events. Tracking is best effort: failures are
// logged and never surfaced to the request that triggered them.
type Service struct {
	events eventInserter
}

func NewService(events eventInserter) *Service {
	return &Service{events: events}
}

// Track stores one event. The userId and userAgent payload keys, when
// present as strings, are lifted into their own columns.
func (s *Service) Track(name string, payload map[string]any) {
	if name == "" {
		return
	}

	event := database.Event{Name: name}

	if payload != nil {
		if v, ok := payload["userId"].(string); ok && v != "" {
			event.UserID = &v
		}
		if v, ok := payload["userAgent"].(string); ok && v != "" {
			event.UserAgent = &v
		}

		encoded, err := json.Marshal(payload)
		if err != nil {
			log.Printf("[analytics] encode payload for %s: %v", name, err)
			encoded = []byte("{}")
		}
		if len(encoded) > maxPayloadBytes {
			encoded = truncatePayload(encoded)
		}
		event.Payload = string(encoded)
	}

	if err := s.events.Insert(&event); err != nil {
		log.Printf("[analytics] store event %s: %v", name, err)
	}
}

func truncatePayload(encoded []byte) []byte {
	// Leave room for the wrapper so the stored document stays bounded.
	snippet := string(encoded[:maxPayloadBytes-200])
	replacement, err := json.Marshal(map[string]any{
		"truncated": true,
		"snippet":   snippet,
	})
	if err != nil {
		return []byte(`{"truncated":true}`)
	}
	return replacement
}

// Tracker is the producer-side surface handlers depend on.
type Tracker interface {
	Track(name string, payload map[string]any)
}

var _ Tracker = (*Service)(nil)

// NopTracker discards every event. Useful in tests.
type NopTracker struct{}

func (NopTracker) Track(string, map[string]any) {}

var _ Tracker = NopTracker{}

// WithRequestContext copies the standard request attribution keys into a
// payload map, creating it when nil.
func WithRequestContext(payload map[string]any, userID, userAgent string) map[string]any {
	if payload == nil {
		payload = make(map[string]any, 2)
	}
	if userID != "" {
		payload["userId"] = userID
	}
	if userAgent != "" {
		payload["userAgent"] = userAgent
	}
	return payload
}
