package service

import (
	"log/slog"
	"net/http"

	"github.com/huddleapp/backend/internal/apperr"
	"github.com/huddleapp/backend/internal/auth"
	"github.com/huddleapp/backend/internal/middleware"
	"github.com/huddleapp/backend/internal/models"
	"github.com/huddleapp/backend/internal/storage"
)

// AuthService is the session resolver and user directory surface: register,
// login, logout, and current-user lookup. The core treats it as a
// collaborator; it never participates in cross-store composition.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
	}
}

type registerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type userResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new user account and starts a session.
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Username == "" {
		writeError(w, apperr.InvalidInput("username", "must not be empty"))
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	slog.Info("Register request", "username", req.Username)

	user, err := s.authenticator.Register(r.Context(), req.Username, req.DisplayName, req.Password)
	if err != nil {
		slog.Warn("Registration failed", "username", req.Username, "error", err)
		writeError(w, err)
		return
	}

	s.startSession(w, user, http.StatusCreated)
	slog.Info("User registered", "user_id", user.ID, "username", user.Username)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user and starts a session.
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, auth.ErrInvalidCredentials)
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		slog.Warn("Login failed", "username", req.Username, "error", err)
		writeError(w, err)
		return
	}

	s.startSession(w, user, http.StatusOK)
	slog.Info("User logged in", "user_id", user.ID, "username", user.Username)
}

// Logout ends the session by expiring the cookie. The token itself stays
// valid until its TTL; there is no server-side blacklist.
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, nil)
}

// Me returns the currently authenticated user.
func (s *AuthService) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := s.users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		writeError(w, apperr.NotFound("user", userID))
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	})
}

// startSession issues a token as both a cookie and a response field.
func (s *AuthService) startSession(w http.ResponseWriter, user *models.User, status int) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", user.ID, "error", err)
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.jwtManager.TokenTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, status, sessionResponse{
		User: userResponse{
			ID:          user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
			CreatedAt:   user.CreatedAt,
		},
		Token: token,
	})
}
