// Package flow is the authentication flow controller: the state machine that
// turns credential submits, provider-redirect initiations, and provider
// callbacks into a consistent session result. It owns the transient
// loading/error state of one page instance and drives the gateway, the
// session store, and the validation mapper; everything around it is
// presentation.
package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/codex-web/auth-front/internal/api"
	"github.com/codex-web/auth-front/internal/log"
	"github.com/codex-web/auth-front/internal/provider"
	"github.com/codex-web/auth-front/internal/session"
	"github.com/codex-web/auth-front/internal/validate"
)

// Gateway is the slice of the API client the flows need. Canned
// implementations stand in for it in tests.
type Gateway interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	OAuthURL(ctx context.Context, p provider.Provider) (*api.OAuthURLResponse, error)
	ExchangeCallback(ctx context.Context, p provider.Provider, code, state string) (*api.AuthResponse, error)
	Logout(ctx context.Context) (*api.MessageResponse, error)
}

var _ Gateway = (*api.Client)(nil)

// State names one position in a flow's lifecycle.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateRequestingRedirect
	// StateRedirectingOut is terminal for the page instance: control has left
	// for the external provider and only the session store survives.
	StateRedirectingOut
	StateCallbackProcessing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateRequestingRedirect:
		return "requesting-redirect-url"
	case StateRedirectingOut:
		return "redirecting-out"
	case StateCallbackProcessing:
		return "callback-processing"
	default:
		return "unknown"
	}
}

// Outcome is a navigation request: the successful flow asks its caller to go
// to Destination.
type Outcome struct {
	Destination string
}

// Redirect asks the caller to leave the application for the provider's
// authorization URL.
type Redirect struct {
	URL string
}

// Controller orchestrates the credential and OAuth flows for one page
// instance. The two flows hold independent states but share the busy guard,
// so a control surface disabled during one is disabled during the other and
// the session store never sees two concurrent writers.
type Controller struct {
	gateway  Gateway
	sessions *session.Session

	mu         sync.Mutex
	credential State
	oauth      State
}

// New creates a controller over the given gateway and session store.
func New(gateway Gateway, sessions *session.Session) *Controller {
	return &Controller{gateway: gateway, sessions: sessions}
}

// Busy reports whether either flow has a request in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.credential != StateIdle || c.oauth != StateIdle
}

// CredentialState exposes the credential flow's position for display code.
func (c *Controller) CredentialState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.credential
}

// OAuthState exposes the OAuth flow's position for display code.
func (c *Controller) OAuthState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.oauth
}

// enterCredential latches the credential flow. ErrBusy when any flow is
// already loading.
func (c *Controller) enterCredential() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.credential != StateIdle || c.oauth != StateIdle {
		return ErrBusy
	}
	c.credential = StateSubmitting
	return nil
}

func (c *Controller) exitCredential() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = StateIdle
}

// enterOAuth latches the OAuth flow into next.
func (c *Controller) enterOAuth(next State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.credential != StateIdle || c.oauth != StateIdle {
		return ErrBusy
	}
	c.oauth = next
	return nil
}

func (c *Controller) setOAuth(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.oauth = s
}

// Login runs the credential flow for an existing account. On success the
// access token is stored and the returned Outcome asks the caller to navigate
// to destination ("/" when empty).
func (c *Controller) Login(ctx context.Context, req api.LoginRequest, destination string) (*Outcome, error) {
	if err := c.enterCredential(); err != nil {
		return nil, err
	}
	defer c.exitCredential()

	if fields := validate.Check(req); fields != nil {
		return nil, &Error{Kind: FailureClientSide, Fields: fields}
	}

	resp, err := c.gateway.Login(ctx, req)
	if err != nil {
		return nil, classifyCredential(err, bannerLoginGeneric, loginRules)
	}

	return c.finishAuth(ctx, resp.AccessToken, destination, "login")
}

// Register runs the credential flow for a new account. The password
// confirmation is checked locally; a mismatch never reaches the network.
func (c *Controller) Register(ctx context.Context, req api.RegisterRequest, destination string) (*Outcome, error) {
	if err := c.enterCredential(); err != nil {
		return nil, err
	}
	defer c.exitCredential()

	if fields := validate.Check(req); fields != nil {
		return nil, &Error{Kind: FailureClientSide, Fields: fields}
	}

	resp, err := c.gateway.Register(ctx, req)
	if err != nil {
		return nil, classifyCredential(err, bannerRegisterGeneric, registerRules)
	}

	return c.finishAuth(ctx, resp.AccessToken, destination, "register")
}

// Logout clears the local session after telling the backend. The backend call
// is best effort: the local token is cleared even when it fails, so the user
// is never stuck signed in.
func (c *Controller) Logout(ctx context.Context) error {
	if _, err := c.gateway.Logout(ctx); err != nil {
		log.LogWarnWithFields("flow", "Backend logout failed, clearing local session anyway", map[string]any{
			"error": err.Error(),
		})
	}
	if err := c.sessions.ClearToken(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// finishAuth writes the complete token record in one store write, then emits
// the navigation request.
func (c *Controller) finishAuth(ctx context.Context, accessToken, destination, op string) (*Outcome, error) {
	if err := c.sessions.SetToken(ctx, accessToken); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}
	if destination == "" {
		destination = session.DefaultDestination
	}

	log.LogInfoWithFields("flow", "Authentication succeeded", map[string]any{
		"operation":   op,
		"destination": destination,
	})
	return &Outcome{Destination: destination}, nil
}

// classification rules that differ per credential endpoint
type credentialRules struct {
	// fixedStatus maps a status code to a fixed banner that wins over
	// whatever the body says.
	fixedStatus map[int]*Error
}

var loginRules = credentialRules{
	fixedStatus: map[int]*Error{
		401: {Kind: FailureAuthentication, Banner: bannerBadCredentials},
	},
}

var registerRules = credentialRules{
	fixedStatus: map[int]*Error{
		422: {Kind: FailureConflict, Banner: bannerRegisterTaken},
	},
}

// classifyCredential turns a gateway failure into a displayable flow error,
// following the per-endpoint rules from the product's error contract.
func classifyCredential(err error, generic string, rules credentialRules) *Error {
	apiErr, ok := api.AsError(err)
	if !ok {
		return &Error{Kind: FailureServer, Banner: generic}
	}

	switch apiErr.Kind {
	case api.KindNetwork:
		return &Error{Kind: FailureNetwork, Banner: bannerNetwork}
	case api.KindParse:
		return &Error{Kind: FailureParse, Banner: bannerNetwork}
	}

	if apiErr.Status == 400 && apiErr.Body.HasFieldErrors() {
		banner, fields := validate.MapServerError(apiErr.Status, apiErr.Body)
		return &Error{Kind: FailureValidation, Banner: banner, Fields: fields}
	}

	if fixed, ok := rules.fixedStatus[apiErr.Status]; ok {
		return &Error{Kind: fixed.Kind, Banner: fixed.Banner}
	}

	banner := generic
	if apiErr.Body != nil && apiErr.Body.Error != "" {
		banner = apiErr.Body.Error
	}
	return &Error{Kind: FailureServer, Banner: banner}
}
