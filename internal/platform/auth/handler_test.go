package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func newTestHandler(t *testing.T, mode string, accounts ...*Account) (*Handler, *mockSessionStore) {
	t.Helper()
	sessions := newMockSessionStore()
	cfg := HandlerConfig{
		Mode:       mode,
		JWTSecret:  []byte("test-secret"),
		SessionTTL: time.Hour,
	}
	return NewHandler(sessions, newMockCredentialStore(accounts...), cfg, zerolog.Nop()), sessions
}

func postLogin(t *testing.T, h *Handler, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, h.Login(c)
}

func TestLogin_Success(t *testing.T) {
	account := activeAccount()
	account.PasswordHash = hashPassword(t, "s3cret")
	h, _ := newTestHandler(t, ModeSession, account)

	rec, err := postLogin(t, h, `{"email":"maya.singh@hospitalos.local","password":"s3cret"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected token in response")
	}
	if resp.User.Email != account.Email {
		t.Errorf("expected user email %s, got %s", account.Email, resp.User.Email)
	}
	if resp.User.Role != "Doctor" {
		t.Errorf("expected role Doctor, got %s", resp.User.Role)
	}
}

func TestLogin_BareUsernameGetsDefaultDomain(t *testing.T) {
	account := activeAccount()
	account.Email = "admin@hospitalos.local"
	account.PasswordHash = hashPassword(t, "admin")
	h, _ := newTestHandler(t, ModeSession, account)

	rec, err := postLogin(t, h, `{"username":"admin","password":"admin"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	account := activeAccount()
	account.PasswordHash = hashPassword(t, "right")
	h, _ := newTestHandler(t, ModeSession, account)

	_, err := postLogin(t, h, `{"email":"maya.singh@hospitalos.local","password":"wrong"}`)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestLogin_UnknownUserSameErrorAsWrongPassword(t *testing.T) {
	account := activeAccount()
	account.PasswordHash = hashPassword(t, "right")
	h, _ := newTestHandler(t, ModeSession, account)

	_, errUnknown := postLogin(t, h, `{"email":"nobody@hospitalos.local","password":"x"}`)
	_, errWrongPw := postLogin(t, h, `{"email":"maya.singh@hospitalos.local","password":"x"}`)

	he1, ok1 := errUnknown.(*echo.HTTPError)
	he2, ok2 := errWrongPw.(*echo.HTTPError)
	if !ok1 || !ok2 {
		t.Fatalf("expected HTTP errors, got %v and %v", errUnknown, errWrongPw)
	}
	if he1.Code != he2.Code || he1.Message != he2.Message {
		t.Errorf("unknown-user and wrong-password responses must be identical: %v vs %v", he1, he2)
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	account := activeAccount()
	account.Status = "Inactive"
	account.PasswordHash = hashPassword(t, "s3cret")
	h, _ := newTestHandler(t, ModeSession, account)

	_, err := postLogin(t, h, `{"email":"maya.singh@hospitalos.local","password":"s3cret"}`)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for inactive account, got %v", err)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	h, _ := newTestHandler(t, ModeSession)

	_, err := postLogin(t, h, `{"password":"x"}`)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing username, got %v", err)
	}

	_, err = postLogin(t, h, `{"username":"admin"}`)
	httpErr, ok = err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %v", err)
	}
}

func TestLogin_JWTMode(t *testing.T) {
	account := activeAccount()
	account.PasswordHash = hashPassword(t, "s3cret")
	h, _ := newTestHandler(t, ModeJWT, account)

	rec, err := postLogin(t, h, `{"email":"maya.singh@hospitalos.local","password":"s3cret"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	claims, err := ParseJWT([]byte("test-secret"), resp.Token)
	if err != nil {
		t.Fatalf("expected valid JWT, got %v", err)
	}
	if claims.Subject != account.ID.String() {
		t.Errorf("expected subject %s, got %s", account.ID, claims.Subject)
	}
	if claims.Role != "Doctor" {
		t.Errorf("expected role claim Doctor, got %s", claims.Role)
	}
}

func TestLogout_ExpiresSession(t *testing.T) {
	account := activeAccount()
	account.PasswordHash = hashPassword(t, "s3cret")
	h, sessions := newTestHandler(t, ModeSession, account)

	rec, err := postLogin(t, h, `{"email":"maya.singh@hospitalos.local","password":"s3cret"}`)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	logoutRec := httptest.NewRecorder()
	c := e.NewContext(req, logoutRec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if logoutRec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", logoutRec.Code)
	}

	if _, err := sessions.FindActive(req.Context(), resp.Token); err == nil {
		t.Error("expected session to be expired after logout")
	}
}

func TestMe(t *testing.T) {
	h, _ := newTestHandler(t, ModeSession)
	account := activeAccount()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(WithIdentity(req.Context(), account.Identity()))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Me(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != account.ID.String() {
		t.Errorf("expected id %s, got %s", account.ID, resp.ID)
	}
}

func TestMe_Anonymous(t *testing.T) {
	h, _ := newTestHandler(t, ModeSession)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Me(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
