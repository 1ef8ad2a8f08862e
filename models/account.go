package models

import "time"

// Account represents a registered user who owns a watchlist.
// The password hash never leaves the process via the JSON API.
type Account struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	// PublicHandle is the URL slug for the read-only shared view.
	// Empty until sharing has been enabled at least once.
	PublicHandle  string    `json:"publicHandle,omitempty"`
	PublicEnabled bool      `json:"publicEnabled"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// AccountStorage is the on-disk representation, which unlike Account
// includes the password hash.
type AccountStorage struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"passwordHash"`
	PublicHandle  string    `json:"publicHandle,omitempty"`
	PublicEnabled bool      `json:"publicEnabled"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ToStorage converts an Account to its persistence form.
func (a Account) ToStorage() AccountStorage {
	return AccountStorage{
		ID:            a.ID,
		Username:      a.Username,
		PasswordHash:  a.PasswordHash,
		PublicHandle:  a.PublicHandle,
		PublicEnabled: a.PublicEnabled,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ToAccount converts a stored record back to an Account.
func (as AccountStorage) ToAccount() Account {
	return Account{
		ID:            as.ID,
		Username:      as.Username,
		PasswordHash:  as.PasswordHash,
		PublicHandle:  as.PublicHandle,
		PublicEnabled: as.PublicEnabled,
		CreatedAt:     as.CreatedAt,
		UpdatedAt:     as.UpdatedAt,
	}
}
