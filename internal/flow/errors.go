package flow

import (
	"errors"

	"github.com/codex-web/auth-front/internal/validate"
)

// ErrBusy is returned when a submit arrives while another request is already
// in flight. Callers treat it as a no-op: the first request's terminal state
// is what the user observes.
var ErrBusy = errors.New("another auth request is already in flight")

// FailureKind places a flow failure in the error taxonomy.
type FailureKind int

const (
	// FailureNetwork: the transport could not complete.
	FailureNetwork FailureKind = iota
	// FailureParse: the backend answered with something that was not JSON.
	FailureParse
	// FailureValidation: per-field problems, local or server-reported.
	FailureValidation
	// FailureAuthentication: bad credentials. The message stays generic so a
	// login attempt never reveals whether the email exists.
	FailureAuthentication
	// FailureConflict: registration collision (422).
	FailureConflict
	// FailureServer: any other non-2xx answer.
	FailureServer
	// FailureClientSide: detected locally without any round trip.
	FailureClientSide
)

// Error is a classified flow failure, ready for display: a banner, optional
// per-field messages, and whether the flow can be retried in place.
type Error struct {
	Kind   FailureKind
	Banner string
	Fields validate.FieldErrors

	// Terminal marks the failed-OAuth-callback case: the authorization code is
	// single-use, so the only recovery is returning to the credential flow.
	Terminal bool
}

func (e *Error) Error() string {
	if e.Banner != "" {
		return e.Banner
	}
	for _, msgs := range e.Fields {
		if len(msgs) > 0 {
			return msgs[0]
		}
	}
	return "authentication failed"
}

// AsFlowError unwraps err into a classified flow failure.
func AsFlowError(err error) (*Error, bool) {
	var flowErr *Error
	if errors.As(err, &flowErr) {
		return flowErr, true
	}
	return nil, false
}

// Fixed banners. The wording is part of the product contract; display code
// shows these verbatim.
const (
	bannerNetwork         = "Network error. Please try again."
	bannerBadCredentials  = "Invalid email or password"
	bannerRegisterTaken   = "Email already exists or validation failed"
	bannerLoginGeneric    = "An error occurred during login"
	bannerRegisterGeneric = "An error occurred during registration"
	bannerCallbackFailed  = "OAuth authentication failed"
	bannerAuthFailed      = "Authentication failed"
	bannerMissingCode     = "Authorization code not found"
)
