package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// DefaultEmailDomain is appended to bare usernames at login so operators can
// sign in as "admin" instead of the full address.
const DefaultEmailDomain = "hospitalos.local"

// HandlerConfig configures the login endpoints.
type HandlerConfig struct {
	Mode       string
	JWTSecret  []byte
	SessionTTL time.Duration
}

// Handler serves login, logout and the current-user endpoint.
type Handler struct {
	sessions SessionStore
	accounts CredentialStore
	cfg      HandlerConfig
	logger   zerolog.Logger
}

func NewHandler(sessions SessionStore, accounts CredentialStore, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	return &Handler{sessions: sessions, accounts: accounts, cfg: cfg, logger: logger}
}

// RegisterRoutes registers the auth endpoints on the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/auth/login", h.Login)
	g.POST("/auth/logout", h.Logout)
	g.GET("/auth/me", h.Me)
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	BranchID *string `json:"branch_id"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func accountToUser(a *Account) userResponse {
	resp := userResponse{
		ID:    a.ID.String(),
		Name:  a.Name,
		Email: a.Email,
		Role:  a.Role,
	}
	if a.BranchID != nil {
		s := a.BranchID.String()
		resp.BranchID = &s
	}
	return resp
}

// Login verifies credentials and issues a bearer token.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		username := strings.TrimSpace(strings.ToLower(req.Username))
		if username == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "username or email is required")
		}
		if strings.Contains(username, "@") {
			email = username
		} else {
			email = username + "@" + DefaultEmailDomain
		}
	}
	if req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password is required")
	}

	ctx := c.Request().Context()
	account, err := h.accounts.AccountByEmail(ctx, email)
	if err != nil {
		// Identical response for unknown user and bad password.
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if account.Status != "Active" {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	resp := loginResponse{User: accountToUser(account)}

	switch h.cfg.Mode {
	case ModeJWT:
		token, err := IssueJWT(h.cfg.JWTSecret, account, h.cfg.SessionTTL)
		if err != nil {
			h.logger.Error().Err(err).Msg("issue jwt")
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
		}
		resp.Token = token
		resp.ExpiresAt = time.Now().Add(h.cfg.SessionTTL)
	default:
		sess, err := h.sessions.Create(ctx, account.ID, h.cfg.SessionTTL)
		if err != nil {
			h.logger.Error().Err(err).Msg("create session")
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to create session")
		}
		resp.Token = sess.Token
		resp.ExpiresAt = sess.ExpiresAt
	}

	h.logger.Info().Str("user_id", account.ID.String()).Str("email", account.Email).Msg("login")

	return c.JSON(http.StatusOK, resp)
}

// Logout expires the presented session token. JWTs cannot be revoked
// server-side; logout for JWT clients is a no-op acknowledged with 200.
func (h *Handler) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	if h.cfg.Mode != ModeJWT {
		if err := h.sessions.Expire(c.Request().Context(), parts[1]); err != nil {
			h.logger.Error().Err(err).Msg("expire session")
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to log out")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the authenticated user.
func (h *Handler) Me(c echo.Context) error {
	id := IdentityFromContext(c.Request().Context())
	if id == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	resp := userResponse{
		ID:    id.UserID.String(),
		Name:  id.Name,
		Email: id.Email,
		Role:  id.Role,
	}
	if id.BranchID != nil {
		s := id.BranchID.String()
		resp.BranchID = &s
	}

	return c.JSON(http.StatusOK, resp)
}
