package flow

import (
	"context"
	"fmt"

	"github.com/codex-web/auth-front/internal/api"
	"github.com/codex-web/auth-front/internal/log"
	"github.com/codex-web/auth-front/internal/provider"
)

// BeginOAuth starts the initiation leg of the OAuth round trip: fetch the
// provider's authorization URL, stash the post-auth destination, and hand the
// URL back so the caller can leave the application. Success is terminal for
// this page instance; only the session store carries state into the callback
// leg.
func (c *Controller) BeginOAuth(ctx context.Context, p provider.Provider, destination string) (*Redirect, error) {
	if err := c.enterOAuth(StateRequestingRedirect); err != nil {
		return nil, err
	}

	resp, err := c.gateway.OAuthURL(ctx, p)
	if err != nil {
		c.setOAuth(StateIdle)
		return nil, classifyOAuthInit(err, p)
	}

	if destination == "" {
		destination = "/"
	}
	if err := c.sessions.StashRedirect(ctx, destination); err != nil {
		c.setOAuth(StateIdle)
		return nil, fmt.Errorf("stashing redirect destination: %w", err)
	}

	// The page instance is done; nothing after this write survives the
	// navigation to the provider.
	c.setOAuth(StateRedirectingOut)

	log.LogInfoWithFields("flow", "Leaving for identity provider", map[string]any{
		"provider":    p.String(),
		"destination": destination,
	})
	return &Redirect{URL: resp.RedirectURL}, nil
}

func classifyOAuthInit(err error, p provider.Provider) *Error {
	apiErr, ok := api.AsError(err)
	if !ok {
		return &Error{Kind: FailureServer, Banner: fmt.Sprintf("Failed to initiate %s login", p)}
	}

	switch apiErr.Kind {
	case api.KindNetwork:
		return &Error{Kind: FailureNetwork, Banner: bannerNetwork}
	case api.KindParse:
		return &Error{Kind: FailureParse, Banner: bannerNetwork}
	}

	banner := fmt.Sprintf("Failed to initiate %s login", p)
	if apiErr.Body != nil && apiErr.Body.Error != "" {
		banner = apiErr.Body.Error
	}
	return &Error{Kind: FailureServer, Banner: banner}
}
