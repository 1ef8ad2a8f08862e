package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"watchlog/api"
	"watchlog/models"
	"watchlog/services/accounts"
	"watchlog/services/analytics"
)

type accountSharing interface {
	GetByHandle(handle string) (models.Account, bool)
	EnableSharing(id string) (models.Account, error)
	DisableSharing(id string) (models.Account, error)
}

var _ accountSharing = (*accounts.Service)(nil)

// ShareHandler serves the public library view and the sharing toggle.
type ShareHandler struct {
	accounts  accountSharing
	items     itemLister
	analytics analytics.Tracker
}

func NewShareHandler(accountsSvc accountSharing, items itemLister, tracker analytics.Tracker) *ShareHandler {
	if tracker == nil {
		tracker = analytics.NopTracker{}
	}
	return &ShareHandler{accounts: accountsSvc, items: items, analytics: tracker}
}

// PublicItem is a library entry as exposed on the public view: the full
// card including ratings and notes, minus ownership and session fields.
type PublicItem struct {
	Title          string            `json:"title"`
	Type           models.ItemType   `json:"type"`
	Status         models.ItemStatus `json:"status"`
	Rating         *int              `json:"rating,omitempty"`
	Tags           string            `json:"tags,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	ReleaseYear    *int              `json:"releaseYear,omitempty"`
	RuntimeMinutes *int              `json:"runtimeMinutes,omitempty"`
	PosterURL      string            `json:"posterUrl,omitempty"`
	Synopsis       string            `json:"synopsis,omitempty"`
	Genres         string            `json:"genres,omitempty"`
}

// PublicLibraryResponse is the body of the public share view.
type PublicLibraryResponse struct {
	Username string       `json:"username"`
	Handle   string       `json:"handle"`
	Items    []PublicItem `json:"items"`
}

// ShareSettingsRequest toggles public sharing for an account.
type ShareSettingsRequest struct {
	Enabled bool `json:"enabled"`
}

// ShareSettingsResponse reports the sharing state after a toggle.
type ShareSettingsResponse struct {
	PublicHandle  string `json:"publicHandle,omitempty"`
	PublicEnabled bool   `json:"publicEnabled"`
}

// PublicView handles GET /api/share/{handle}. It requires no session and
// returns 404 both for unknown handles and for accounts that turned
// sharing off, so the two cases are indistinguishable from outside.
func (h *ShareHandler) PublicView(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]

	account, ok := h.accounts.GetByHandle(handle)
	if !ok {
		http.Error(w, `{"error": "library not found"}`, http.StatusNotFound)
		return
	}

	items, err := h.items.ListByUser(account.ID)
	if err != nil {
		log.Printf("[share] list items for %s: %v", account.ID, err)
		http.Error(w, `{"error": "failed to load library"}`, http.StatusInternalServerError)
		return
	}

	public := make([]PublicItem, 0, len(items))
	for _, item := range items {
		public = append(public, PublicItem{
			Title:          item.Title,
			Type:           item.Type,
			Status:         item.Status,
			Rating:         item.Rating,
			Tags:           item.Tags,
			Notes:          item.Notes,
			ReleaseYear:    item.ReleaseYear,
			RuntimeMinutes: item.RuntimeMinutes,
			PosterURL:      item.PosterURL,
			Synopsis:       item.Synopsis,
			Genres:         item.Genres,
		})
	}

	h.analytics.Track("share_viewed", map[string]any{
		"handle":    account.PublicHandle,
		"userAgent": r.Header.Get("User-Agent"),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PublicLibraryResponse{
		Username: account.Username,
		Handle:   account.PublicHandle,
		Items:    public,
	})
}

// UpdateSettings handles PUT /api/users/{userID}/share.
func (h *ShareHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID := api.GetAccountID(r)

	var req ShareSettingsRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	var account models.Account
	var err error
	if req.Enabled {
		account, err = h.accounts.EnableSharing(userID)
	} else {
		account, err = h.accounts.DisableSharing(userID)
	}
	if errors.Is(err, accounts.ErrAccountNotFound) {
		http.Error(w, `{"error": "account not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[share] toggle sharing for %s: %v", userID, err)
		http.Error(w, `{"error": "failed to update sharing"}`, http.StatusInternalServerError)
		return
	}

	h.analytics.Track("share_toggled", map[string]any{
		"userId":  userID,
		"enabled": req.Enabled,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ShareSettingsResponse{
		PublicHandle:  account.PublicHandle,
		PublicEnabled: account.PublicEnabled,
	})
}
