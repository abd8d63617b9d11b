// Package integration exercises the full auth client against a fake Codex
// backend: real HTTP, real OAuth redirect legs against a fake identity
// provider, and a shared session store standing in for browser storage.
package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

// Seeded credentials every test can sign in with.
const (
	SeedEmail    = "user@example.com"
	SeedPassword = "correct-horse-battery"
)

type userRecord struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// FakeBackend implements the Codex backend's auth surface plus a fake
// identity provider for the OAuth legs.
type FakeBackend struct {
	server   *httptest.Server
	idp      *httptest.Server
	jwtKey   []byte
	oauthCfg oauth2.Config

	mu     sync.Mutex
	users  map[string]*userRecord
	states map[string]bool

	// LoginGate, when set, makes /auth/login signal LoginStarted and then
	// block until the gate closes. Lets tests hold a request in flight.
	LoginGate    chan struct{}
	LoginStarted chan struct{}
}

// NewFakeBackend starts the fake backend and its fake identity provider,
// seeded with one user.
func NewFakeBackend() *FakeBackend {
	b := &FakeBackend{
		jwtKey: []byte("integration-test-signing-key"),
		users:  make(map[string]*userRecord),
		states: make(map[string]bool),
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	b.users[SeedEmail] = &userRecord{
		ID:           uuid.NewString(),
		Email:        SeedEmail,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	idpMux := http.NewServeMux()
	idpMux.HandleFunc("/auth", b.handleProviderAuthorize)
	idpMux.HandleFunc("/token", b.handleProviderToken)
	b.idp = httptest.NewServer(idpMux)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.handleLogin)
	mux.HandleFunc("POST /auth/register", b.handleRegister)
	mux.HandleFunc("GET /auth/oauth/{provider}/url", b.handleOAuthURL)
	mux.HandleFunc("GET /oauth/{provider}/callback", b.handleCallback)
	mux.HandleFunc("POST /auth/refresh", b.handleRefresh)
	mux.HandleFunc("POST /auth/logout", b.handleLogout)
	mux.HandleFunc("GET /user", b.handleCurrentUser)
	b.server = httptest.NewServer(mux)

	b.oauthCfg = oauth2.Config{
		ClientID:     "codex-web",
		ClientSecret: "codex-web-secret",
		RedirectURL:  "http://localhost:3000/oauth/google/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  b.idp.URL + "/auth",
			TokenURL: b.idp.URL + "/token",
		},
	}

	return b
}

// URL is the backend base URL to point the API gateway at.
func (b *FakeBackend) URL() string {
	return b.server.URL
}

// Close tears down both servers.
func (b *FakeBackend) Close() {
	b.server.Close()
	b.idp.Close()
}

func (b *FakeBackend) mintToken(user *userRecord) string {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.jwtKey)
	if err != nil {
		panic(err)
	}
	return signed
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": message})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, messages map[string][]string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, map[string]any{
		"error":    "Validation failed",
		"messages": messages,
	})
}

func (b *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	if b.LoginGate != nil {
		if b.LoginStarted != nil {
			b.LoginStarted <- struct{}{}
		}
		<-b.LoginGate
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed request body")
		return
	}

	messages := map[string][]string{}
	if req.Email == "" {
		messages["email"] = append(messages["email"], "Email is required")
	}
	if req.Password == "" {
		messages["password"] = append(messages["password"], "Password is required")
	}
	if len(messages) > 0 {
		writeValidationError(w, r, messages)
		return
	}

	b.mu.Lock()
	user := b.users[req.Email]
	b.mu.Unlock()

	if user == nil || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	b.issueSession(w, r, user)
}

func (b *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed request body")
		return
	}

	messages := map[string][]string{}
	if req.Email == "" {
		messages["email"] = append(messages["email"], "Email is required")
	}
	if len(req.Password) < 8 {
		messages["password"] = append(messages["password"], "Password must be at least 8 characters")
	}
	if req.Password != req.PasswordConfirmation {
		messages["password_confirmation"] = append(messages["password_confirmation"], "Passwords do not match")
	}
	if len(messages) > 0 {
		writeValidationError(w, r, messages)
		return
	}

	b.mu.Lock()
	if _, exists := b.users[req.Email]; exists {
		b.mu.Unlock()
		writeError(w, r, http.StatusUnprocessableEntity, "Email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		b.mu.Unlock()
		writeError(w, r, http.StatusInternalServerError, "Hashing failed")
		return
	}
	user := &userRecord{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	b.users[req.Email] = user
	b.mu.Unlock()

	b.issueSession(w, r, user)
}

func (b *FakeBackend) handleOAuthURL(w http.ResponseWriter, r *http.Request) {
	if p := r.PathValue("provider"); p != "google" && p != "github" {
		writeError(w, r, http.StatusBadRequest, "Unknown provider")
		return
	}

	state := uuid.NewString()
	b.mu.Lock()
	b.states[state] = true
	b.mu.Unlock()

	render.JSON(w, r, map[string]string{
		"redirect_url": b.oauthCfg.AuthCodeURL(state),
	})
}

func (b *FakeBackend) handleCallback(w http.ResponseWriter, r *http.Request) {
	if p := r.PathValue("provider"); p != "google" && p != "github" {
		writeError(w, r, http.StatusBadRequest, "Unknown provider")
		return
	}

	state := r.URL.Query().Get("state")
	b.mu.Lock()
	known := b.states[state]
	delete(b.states, state)
	b.mu.Unlock()
	if !known {
		writeError(w, r, http.StatusBadRequest, "invalid state parameter")
		return
	}

	code := r.URL.Query().Get("code")
	if _, err := b.oauthCfg.Exchange(context.Background(), code); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid authorization code")
		return
	}

	// Identity comes back from the provider; the seeded user stands in.
	b.mu.Lock()
	user := b.users[SeedEmail]
	b.mu.Unlock()

	b.issueSession(w, r, user)
}

func (b *FakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil || cookie.Value == "" {
		writeError(w, r, http.StatusUnauthorized, "Missing refresh token")
		return
	}

	b.mu.Lock()
	user := b.users[SeedEmail]
	b.mu.Unlock()

	render.JSON(w, r, map[string]string{"access_token": b.mintToken(user)})
}

func (b *FakeBackend) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "", Path: "/", MaxAge: -1})
	render.JSON(w, r, map[string]string{"message": "Logged out"})
}

func (b *FakeBackend) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		writeError(w, r, http.StatusUnauthorized, "Missing access token")
		return
	}

	token, err := jwt.Parse(auth[len(prefix):], func(t *jwt.Token) (any, error) {
		return b.jwtKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		writeError(w, r, http.StatusUnauthorized, "Invalid access token")
		return
	}

	email, _ := token.Claims.(jwt.MapClaims)["email"].(string)
	b.mu.Lock()
	user := b.users[email]
	b.mu.Unlock()
	if user == nil {
		writeError(w, r, http.StatusUnauthorized, "Unknown user")
		return
	}

	render.JSON(w, r, map[string]any{
		"id":         user.ID,
		"email":      user.Email,
		"created_at": user.CreatedAt.Format(time.RFC3339),
	})
}

func (b *FakeBackend) issueSession(w http.ResponseWriter, r *http.Request, user *userRecord) {
	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: uuid.NewString(), Path: "/", HttpOnly: true})
	render.JSON(w, r, map[string]string{"access_token": b.mintToken(user)})
}

// fake identity provider

func (b *FakeBackend) handleProviderAuthorize(w http.ResponseWriter, r *http.Request) {
	redirectURI := r.URL.Query().Get("redirect_uri")
	state := r.URL.Query().Get("state")
	http.Redirect(w, r, redirectURI+"?code=fake-auth-code&state="+state, http.StatusFound)
}

func (b *FakeBackend) handleProviderToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if r.FormValue("code") != "fake-auth-code" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{
			"error":             "invalid_grant",
			"error_description": "Invalid authorization code",
		})
		return
	}

	render.JSON(w, r, map[string]any{
		"access_token": "provider-access-token",
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}
