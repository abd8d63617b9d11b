package flow

import (
	"context"
	"fmt"

	"github.com/codex-web/auth-front/internal/api"
	"github.com/codex-web/auth-front/internal/log"
	"github.com/codex-web/auth-front/internal/provider"
)

// CompleteOAuth is the callback leg of the OAuth round trip, invoked when the
// application comes back up on the provider's return URL. The state token is
// forwarded to the backend untouched; CSRF validation happens there.
//
// Every failure here is terminal: the authorization code is single-use and
// already consumed or invalid, so the only recovery is the credential flow's
// entry point, never an in-place retry.
func (c *Controller) CompleteOAuth(ctx context.Context, p provider.Provider, code, state string) (*Outcome, error) {
	if err := c.enterOAuth(StateCallbackProcessing); err != nil {
		return nil, err
	}
	defer c.setOAuth(StateIdle)

	if code == "" {
		return nil, &Error{Kind: FailureClientSide, Banner: bannerMissingCode, Terminal: true}
	}

	resp, err := c.gateway.ExchangeCallback(ctx, p, code, state)
	if err != nil {
		return nil, classifyCallback(err)
	}

	if err := c.sessions.SetToken(ctx, resp.AccessToken); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	destination, err := c.sessions.TakeRedirect(ctx)
	if err != nil {
		return nil, fmt.Errorf("consuming pending redirect: %w", err)
	}

	log.LogInfoWithFields("flow", "Authentication succeeded", map[string]any{
		"operation":   "oauth-callback",
		"provider":    p.String(),
		"destination": destination,
	})
	return &Outcome{Destination: destination}, nil
}

func classifyCallback(err error) *Error {
	apiErr, ok := api.AsError(err)
	if !ok {
		return &Error{Kind: FailureServer, Banner: bannerAuthFailed, Terminal: true}
	}

	switch apiErr.Kind {
	case api.KindNetwork:
		return &Error{Kind: FailureNetwork, Banner: bannerAuthFailed, Terminal: true}
	case api.KindParse:
		return &Error{Kind: FailureParse, Banner: bannerAuthFailed, Terminal: true}
	}

	banner := bannerCallbackFailed
	if apiErr.Body != nil && apiErr.Body.Error != "" {
		banner = apiErr.Body.Error
	}
	return &Error{Kind: FailureServer, Banner: banner, Terminal: true}
}
