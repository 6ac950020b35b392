package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type mockSessionStore struct {
	sessions map[string]*Session
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*Session)}
}

func (m *mockSessionStore) Create(_ context.Context, userID uuid.UUID, ttl time.Duration) (*Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		Status:    SessionActive,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}
	m.sessions[token] = sess
	return sess, nil
}

func (m *mockSessionStore) FindActive(_ context.Context, token string) (*Session, error) {
	sess, ok := m.sessions[token]
	if !ok || sess.Status != SessionActive || time.Now().After(sess.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (m *mockSessionStore) Expire(_ context.Context, token string) error {
	if sess, ok := m.sessions[token]; ok {
		sess.Status = SessionExpired
	}
	return nil
}

func (m *mockSessionStore) ExpireAllForUser(_ context.Context, userID uuid.UUID) error {
	for _, sess := range m.sessions {
		if sess.UserID == userID {
			sess.Status = SessionExpired
		}
	}
	return nil
}

func (m *mockSessionStore) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for token, sess := range m.sessions {
		if sess.ExpiresAt.Before(before) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

type mockCredentialStore struct {
	accounts map[uuid.UUID]*Account
}

func newMockCredentialStore(accounts ...*Account) *mockCredentialStore {
	m := &mockCredentialStore{accounts: make(map[uuid.UUID]*Account)}
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *mockCredentialStore) AccountByEmail(_ context.Context, email string) (*Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (m *mockCredentialStore) AccountByID(_ context.Context, id uuid.UUID) (*Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, ErrSessionNotFound
}

func activeAccount() *Account {
	return &Account{
		ID:     uuid.New(),
		Name:   "Dr. Maya Singh",
		Email:  "maya.singh@hospitalos.local",
		Role:   "Doctor",
		Status: "Active",
	}
}

func invokeAuth(t *testing.T, cfg MiddlewareConfig, authHeader string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Authenticate(cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, h(c)
}

func TestAuthenticate_SessionMode(t *testing.T) {
	account := activeAccount()
	sessions := newMockSessionStore()
	sess, _ := sessions.Create(context.Background(), account.ID, time.Hour)

	cfg := MiddlewareConfig{
		Mode:     ModeSession,
		Required: true,
		Sessions: sessions,
		Accounts: newMockCredentialStore(account),
	}

	c, err := invokeAuth(t, cfg, "Bearer "+sess.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id := IdentityFromContext(c.Request().Context())
	if id == nil {
		t.Fatal("expected identity on request context")
	}
	if id.UserID != account.ID {
		t.Errorf("expected user %s, got %s", account.ID, id.UserID)
	}
	if id.Role != "Doctor" {
		t.Errorf("expected role Doctor, got %s", id.Role)
	}
}

func TestAuthenticate_MissingHeaderRequired(t *testing.T) {
	cfg := MiddlewareConfig{
		Mode:     ModeSession,
		Required: true,
		Sessions: newMockSessionStore(),
		Accounts: newMockCredentialStore(),
	}

	_, err := invokeAuth(t, cfg, "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthenticate_MissingHeaderOptional(t *testing.T) {
	cfg := MiddlewareConfig{
		Mode:     ModeSession,
		Required: false,
		Sessions: newMockSessionStore(),
		Accounts: newMockCredentialStore(),
	}

	c, err := invokeAuth(t, cfg, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if IdentityFromContext(c.Request().Context()) != nil {
		t.Error("expected anonymous request to carry no identity")
	}
}

func TestAuthenticate_InvalidTokenRejectedEvenWhenOptional(t *testing.T) {
	cfg := MiddlewareConfig{
		Mode:     ModeSession,
		Required: false,
		Sessions: newMockSessionStore(),
		Accounts: newMockCredentialStore(),
	}

	_, err := invokeAuth(t, cfg, "Bearer bogus")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %v", err)
	}
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	account := activeAccount()
	sessions := newMockSessionStore()
	sess, _ := sessions.Create(context.Background(), account.ID, time.Hour)
	sessions.Expire(context.Background(), sess.Token)

	cfg := MiddlewareConfig{
		Mode:     ModeSession,
		Required: true,
		Sessions: sessions,
		Accounts: newMockCredentialStore(account),
	}

	_, err := invokeAuth(t, cfg, "Bearer "+sess.Token)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired session, got %v", err)
	}
}

func TestAuthenticate_InactiveAccount(t *testing.T) {
	account := activeAccount()
	account.Status = "Inactive"
	sessions := newMockSessionStore()
	sess, _ := sessions.Create(context.Background(), account.ID, time.Hour)

	cfg := MiddlewareConfig{
		Mode:     ModeSession,
		Required: true,
		Sessions: sessions,
		Accounts: newMockCredentialStore(account),
	}

	_, err := invokeAuth(t, cfg, "Bearer "+sess.Token)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for disabled account, got %v", err)
	}
}

func TestAuthenticate_JWTMode(t *testing.T) {
	secret := []byte("test-secret")
	account := activeAccount()
	token, err := IssueJWT(secret, account, time.Hour)
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}

	cfg := MiddlewareConfig{
		Mode:      ModeJWT,
		Required:  true,
		JWTSecret: secret,
		Accounts:  newMockCredentialStore(account),
	}

	c, err := invokeAuth(t, cfg, "Bearer "+token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := IdentityFromContext(c.Request().Context())
	if id == nil || id.UserID != account.ID {
		t.Fatalf("expected identity for %s, got %+v", account.ID, id)
	}
}

func TestAuthenticate_JWTWrongSecret(t *testing.T) {
	account := activeAccount()
	token, _ := IssueJWT([]byte("one-secret"), account, time.Hour)

	cfg := MiddlewareConfig{
		Mode:      ModeJWT,
		Required:  true,
		JWTSecret: []byte("another-secret"),
		Accounts:  newMockCredentialStore(account),
	}

	_, err := invokeAuth(t, cfg, "Bearer "+token)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong secret, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		identity *Identity
		roles    []string
		wantCode int
	}{
		{"matching role", &Identity{Role: "Doctor"}, []string{"Doctor"}, http.StatusOK},
		{"admin always passes", &Identity{Role: "Admin"}, []string{"Accountant"}, http.StatusOK},
		{"wrong role", &Identity{Role: "Nurse"}, []string{"Accountant"}, http.StatusForbidden},
		{"anonymous", nil, []string{"Doctor"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), tt.identity))
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := RequireRole(tt.roles...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			err := h(c)

			if tt.wantCode == http.StatusOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestNewToken_UniqueAndHex(t *testing.T) {
	a, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	b, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a == b {
		t.Error("expected distinct tokens")
	}
}
