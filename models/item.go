package models

import "time"

// ItemType classifies a watchlist entry by medium.
type ItemType string

const (
	TypeAnime ItemType = "anime"
	TypeMovie ItemType = "movie"
	TypeTV    ItemType = "tv"
	TypeGame  ItemType = "game"
	TypeBook  ItemType = "book"
)

// ItemTypes lists every valid item type.
var ItemTypes = []ItemType{TypeAnime, TypeMovie, TypeTV, TypeGame, TypeBook}

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	for _, known := range ItemTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ItemStatus tracks where an entry sits in the user's pipeline.
type ItemStatus string

const (
	StatusPlanned   ItemStatus = "planned"
	StatusWatching  ItemStatus = "watching"
	StatusPaused    ItemStatus = "paused"
	StatusCompleted ItemStatus = "completed"
	StatusDropped   ItemStatus = "dropped"
)

// ItemStatuses lists every valid item status.
var ItemStatuses = []ItemStatus{StatusPlanned, StatusWatching, StatusPaused, StatusCompleted, StatusDropped}

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	for _, known := range ItemStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Item is a single watchlist entry. Optional fields are pointers so that
// "unknown" is never conflated with a zero value when persisting or
// serializing.
type Item struct {
	ID     int64      `json:"id"`
	UserID string     `json:"userId"`
	Title  string     `json:"title"`
	Type   ItemType   `json:"type"`
	Status ItemStatus `json:"status"`
	Rating *int       `json:"rating,omitempty"` // 0..10
	Tags   string     `json:"tags,omitempty"`   // comma separated
	Notes  string     `json:"notes,omitempty"`

	// Enrichment fields, filled from the metadata resolver when available.
	ReleaseYear    *int   `json:"releaseYear,omitempty"`
	RuntimeMinutes *int   `json:"runtimeMinutes,omitempty"`
	PosterURL      string `json:"posterUrl,omitempty"`
	Synopsis       string `json:"synopsis,omitempty"`
	Cast           string `json:"cast,omitempty"`    // comma separated
	Genres         string `json:"genres,omitempty"`  // comma separated
	Studios        string `json:"studios,omitempty"` // comma separated
	IMDBID         string `json:"imdbId,omitempty"`
	TMDBID         *int64 `json:"tmdbId,omitempty"`
	MetadataSource string `json:"metadataSource,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemUpsert is the payload accepted by the create/update item endpoints.
type ItemUpsert struct {
	Title  string     `json:"title"`
	Type   ItemType   `json:"type"`
	Status ItemStatus `json:"status"`
	Rating *int       `json:"rating,omitempty"`
	Tags   string     `json:"tags,omitempty"`
	Notes  string     `json:"notes,omitempty"`
}
