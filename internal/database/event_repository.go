package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Event is one analytics record. Payload is a JSON document.
type Event struct {
	ID        int64
	Name      string
	Payload   string
	UserID    *string
	UserAgent *string
	CreatedAt time.Time
}

// EventRepository persists analytics events.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert stores one event and fills in its generated id.
func (r *EventRepository) Insert(event *Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Payload == "" {
		event.Payload = "{}"
	}

	res, err := r.db.Exec(`INSERT INTO events (name, payload, user_id, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		event.Name, event.Payload, event.UserID, event.UserAgent, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted event id: %w", err)
	}
	event.ID = id
	return nil
}

// CountByName returns how many events with the given name are stored.
func (r *EventRepository) CountByName(name string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM events WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}
