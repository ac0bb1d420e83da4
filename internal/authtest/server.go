// Package authtest runs an in-process fake of the shop backend's auth API.
// It issues signed JWT access tokens and single-use refresh tokens, and
// counts calls per endpoint so tests can assert on refresh coalescing.
package authtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/posclient/internal/client/models"
	"github.com/phoneshop/posclient/internal/common"
)

// Account is a user the fake backend accepts.
type Account struct {
	Identifier string
	Secret     string
	User       models.APIUser
}

type Server struct {
	*httptest.Server

	secret    []byte
	accessTTL time.Duration
	mux       *http.ServeMux

	mu         sync.Mutex
	accounts   map[string]Account
	refresh    map[string]string // refresh token -> user id
	generation int

	logins    atomic.Int64
	refreshes atomic.Int64
	logouts   atomic.Int64
	mes       atomic.Int64
}

type Option func(*Server)

func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

func WithAccount(a Account) Option {
	return func(s *Server) { s.accounts[a.Identifier] = a }
}

// NewServer starts the fake backend with a fresh signing secret. Close it
// when done.
func NewServer(opts ...Option) *Server {
	secret, err := common.MakeRandHexString(32)
	if err != nil {
		panic(fmt.Sprintf("authtest: generate secret: %v", err))
	}

	s := &Server{
		secret:    []byte(secret),
		accessTTL: 15 * time.Minute,
		mux:       http.NewServeMux(),
		accounts:  make(map[string]Account),
		refresh:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("POST /auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /auth/refresh", s.handleRefresh)
	s.mux.HandleFunc("POST /auth/logout", s.handleLogout)
	s.mux.Handle("GET /auth/me", s.RequireAuth(http.HandlerFunc(s.handleMe)))

	s.Server = httptest.NewServer(s.mux)
	return s
}

// Handle mounts an extra route behind bearer authentication.
func (s *Server) Handle(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.RequireAuth(h))
}

// ExpireAccessTokens invalidates every access token issued so far, as if
// they had all reached their exp.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// RevokeRefreshTokens forgets every outstanding refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	clear(s.refresh)
	s.mu.Unlock()
}

func (s *Server) Logins() int    { return int(s.logins.Load()) }
func (s *Server) Refreshes() int { return int(s.refreshes.Load()) }
func (s *Server) Logouts() int   { return int(s.logouts.Load()) }
func (s *Server) Mes() int       { return int(s.mes.Load()) }

type ctxKey struct{}

// UserID returns the authenticated user id set by RequireAuth.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

func withUserID(r *http.Request, id string) context.Context {
	return context.WithValue(r.Context(), ctxKey{}, id)
}

// RequireAuth rejects requests without a current, valid bearer token.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		claims, err := ParseToken(strings.TrimPrefix(header, common.BearerPrefix), s.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		s.mu.Lock()
		stale := claims.Generation != s.generation
		s.mu.Unlock()
		if stale {
			writeError(w, http.StatusUnauthorized, ErrTokenExpired.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r, claims.Subject)))
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.logins.Add(1)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Identifier]
	s.mu.Unlock()
	if !ok || acc.Secret != req.Secret {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	pair, err := s.issue(string(acc.User.ID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	user := acc.User
	writeJSON(w, http.StatusOK, models.AuthResponse{Auth: &pair, User: &user})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshes.Add(1)

	var req models.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token required")
		return
	}

	s.mu.Lock()
	userID, ok := s.refresh[req.RefreshToken]
	delete(s.refresh, req.RefreshToken)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown refresh token")
		return
	}

	pair, err := s.issue(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.logouts.Add(1)

	var req models.LogoutRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.RefreshToken != "" {
		s.mu.Lock()
		delete(s.refresh, req.RefreshToken)
		s.mu.Unlock()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mes.Add(1)

	user, err := s.userByID(UserID(r))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{User: &user})
}

func (s *Server) issue(userID string) (models.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	access, err := GenerateToken(userID, s.generation, s.secret, s.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh := uuid.NewString()
	s.refresh[refresh] = userID
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Server) userByID(id string) (models.APIUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if string(acc.User.ID) == id {
			return acc.User, nil
		}
	}
	return models.APIUser{}, errors.New("user not found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
