package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"watchlog/services/accounts"
	"watchlog/services/sessions"
)

type stubPurger struct {
	purged []string
}

func (s *stubPurger) DeleteAllForUser(userID string) (int64, error) {
	s.purged = append(s.purged, userID)
	return 0, nil
}

func newTestAuthHandler(t *testing.T) (*AuthHandler, *accounts.Service, *sessions.Service) {
	t.Helper()
	dir := t.TempDir()
	accountsSvc, err := accounts.NewService(dir)
	if err != nil {
		t.Fatalf("accounts service: %v", err)
	}
	sessionsSvc, err := sessions.NewService(dir, time.Hour)
	if err != nil {
		t.Fatalf("sessions service: %v", err)
	}
	return NewAuthHandler(accountsSvc, sessionsSvc, &stubPurger{}, nil), accountsSvc, sessionsSvc
}

func postJSON(h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodPost, target, strings.NewReader(body)))
	return rr
}

func TestRegister(t *testing.T) {
	h, accountsSvc, _ := newTestAuthHandler(t)

	rr := postJSON(h.Register, "/api/auth/register", `{"username": "newuser", "password": "secret123"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a session token with registration")
	}
	if resp.Username != "newuser" {
		t.Errorf("unexpected username %q", resp.Username)
	}
	if _, ok := accountsSvc.GetByUsername("newuser"); !ok {
		t.Error("expected account persisted")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	h, _, _ := newTestAuthHandler(t)

	postJSON(h.Register, "/api/auth/register", `{"username": "taken", "password": "secret123"}`)
	rr := postJSON(h.Register, "/api/auth/register", `{"username": "TAKEN", "password": "other456"}`)

	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate username, got %d", rr.Code)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	h, _, _ := newTestAuthHandler(t)

	for _, body := range []string{
		`{"username": "", "password": "secret123"}`,
		`{"username": "someone", "password": ""}`,
	} {
		rr := postJSON(h.Register, "/api/auth/register", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestLogin(t *testing.T) {
	h, _, sessionsSvc := newTestAuthHandler(t)
	postJSON(h.Register, "/api/auth/register", `{"username": "alex", "password": "secret123"}`)

	rr := postJSON(h.Login, "/api/auth/login", `{"username": "alex", "password": "secret123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	session, err := sessionsSvc.Validate(resp.Token)
	if err != nil {
		t.Fatalf("expected a valid session, got %v", err)
	}
	if session.AccountID != resp.AccountID {
		t.Errorf("session bound to %q, response says %q", session.AccountID, resp.AccountID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	h, _, _ := newTestAuthHandler(t)
	postJSON(h.Register, "/api/auth/register", `{"username": "alex", "password": "secret123"}`)

	rr := postJSON(h.Login, "/api/auth/login", `{"username": "alex", "password": "wrong"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}

	rr = postJSON(h.Login, "/api/auth/login", `{"username": "nobody", "password": "secret123"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown user, got %d", rr.Code)
	}
}

func TestLogin_RememberMeExtendsExpiry(t *testing.T) {
	h, _, _ := newTestAuthHandler(t)
	postJSON(h.Register, "/api/auth/register", `{"username": "alex", "password": "secret123"}`)

	rr := postJSON(h.Login, "/api/auth/login", `{"username": "alex", "password": "secret123", "rememberMe": true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp LoginResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	expires, err := time.Parse("2006-01-02T15:04:05Z", resp.ExpiresAt)
	if err != nil {
		t.Fatalf("parse expiry: %v", err)
	}
	if expires.Before(time.Now().Add(365 * 24 * time.Hour)) {
		t.Errorf("expected a long-lived session, expires %v", expires)
	}
}

func TestLogoutAndMe(t *testing.T) {
	h, _, _ := newTestAuthHandler(t)
	rr := postJSON(h.Register, "/api/auth/register", `{"username": "alex", "password": "secret123"}`)

	var resp LoginResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	me := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	me.Header.Set("Authorization", "Bearer "+resp.Token)
	rr = httptest.NewRecorder()
	h.Me(rr, me)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from me, got %d", rr.Code)
	}
	var account AccountResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &account); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if account.Username != "alex" || account.PublicEnabled {
		t.Errorf("unexpected account %+v", account)
	}

	logout := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	logout.Header.Set("Authorization", "Bearer "+resp.Token)
	rr = httptest.NewRecorder()
	h.Logout(rr, logout)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Me(rr, me)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rr.Code)
	}
}

func TestChangePassword(t *testing.T) {
	h, accountsSvc, _ := newTestAuthHandler(t)
	rr := postJSON(h.Register, "/api/auth/register", `{"username": "alex", "password": "oldpass1"}`)

	var resp LoginResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	change := httptest.NewRequest(http.MethodPut, "/api/auth/password",
		strings.NewReader(`{"currentPassword": "oldpass1", "newPassword": "newpass2"}`))
	change.Header.Set("Authorization", "Bearer "+resp.Token)
	rr = httptest.NewRecorder()
	h.ChangePassword(rr, change)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	if _, err := accountsSvc.Authenticate("alex", "newpass2"); err != nil {
		t.Errorf("expected new password to work, got %v", err)
	}
	if _, err := accountsSvc.Authenticate("alex", "oldpass1"); err == nil {
		t.Error("expected old password to be rejected")
	}
}

func TestDeleteAccount(t *testing.T) {
	h, accountsSvc, sessionsSvc := newTestAuthHandler(t)
	purger := &stubPurger{}
	h.items = purger
	rr := postJSON(h.Register, "/api/auth/register", `{"username": "alex", "password": "secret123"}`)

	var resp LoginResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	del := httptest.NewRequest(http.MethodDelete, "/api/auth/account",
		strings.NewReader(`{"password": "secret123"}`))
	del.Header.Set("Authorization", "Bearer "+resp.Token)
	rr = httptest.NewRecorder()
	h.DeleteAccount(rr, del)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	if _, ok := accountsSvc.GetByUsername("alex"); ok {
		t.Error("expected account removed")
	}
	if len(purger.purged) != 1 || purger.purged[0] != resp.AccountID {
		t.Errorf("expected items purged for %s, got %v", resp.AccountID, purger.purged)
	}
	if _, err := sessionsSvc.Validate(resp.Token); err == nil {
		t.Error("expected sessions revoked with the account")
	}
}

func TestDeleteAccount_WrongPassword(t *testing.T) {
	h, accountsSvc, _ := newTestAuthHandler(t)
	rr := postJSON(h.Register, "/api/auth/register", `{"username": "alex", "password": "secret123"}`)

	var resp LoginResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	del := httptest.NewRequest(http.MethodDelete, "/api/auth/account",
		strings.NewReader(`{"password": "wrong"}`))
	del.Header.Set("Authorization", "Bearer "+resp.Token)
	rr = httptest.NewRecorder()
	h.DeleteAccount(rr, del)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
	if _, ok := accountsSvc.GetByUsername("alex"); !ok {
		t.Error("expected account to survive a failed confirmation")
	}
}

func TestDeleteAccount_NoToken(t *testing.T) {
	h, _, _ := newTestAuthHandler(t)

	del := httptest.NewRequest(http.MethodDelete, "/api/auth/account",
		strings.NewReader(`{"password": "secret123"}`))
	rr := httptest.NewRecorder()
	h.DeleteAccount(rr, del)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	h, _, _ := newTestAuthHandler(t)
	rr := postJSON(h.Register, "/api/auth/register", `{"username": "alex", "password": "oldpass1"}`)

	var resp LoginResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	change := httptest.NewRequest(http.MethodPut, "/api/auth/password",
		strings.NewReader(`{"currentPassword": "nope", "newPassword": "newpass2"}`))
	change.Header.Set("Authorization", "Bearer "+resp.Token)
	rr = httptest.NewRecorder()
	h.ChangePassword(rr, change)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}
