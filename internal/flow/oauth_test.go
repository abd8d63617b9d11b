package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-web/auth-front/internal/api"
	"github.com/codex-web/auth-front/internal/provider"
)

func TestBeginOAuth_Success(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{urlResp: &api.OAuthURLResponse{RedirectURL: "https://accounts.google.com/o/oauth2/auth?state=s"}}
	c, sessions := newTestController(gw)

	redirect, err := c.BeginOAuth(ctx, provider.Google, "/dashboard")
	require.NoError(t, err)
	assert.Contains(t, redirect.URL, "accounts.google.com")

	// The destination is stashed before control leaves the application.
	dest, err := sessions.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", dest)

	// Redirecting out is terminal for this page instance.
	assert.Equal(t, StateRedirectingOut, c.OAuthState())
	assert.True(t, c.Busy())
}

func TestBeginOAuth_DefaultDestination(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{urlResp: &api.OAuthURLResponse{RedirectURL: "https://github.com/login/oauth/authorize"}}
	c, sessions := newTestController(gw)

	_, err := c.BeginOAuth(ctx, provider.GitHub, "")
	require.NoError(t, err)

	dest, err := sessions.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/", dest)
}

func TestBeginOAuth_HTTPFailure(t *testing.T) {
	t.Run("backend banner wins", func(t *testing.T) {
		gw := &fakeGateway{urlErr: httpErr(500, &api.ErrorBody{Error: "OAuth is disabled"})}
		c, _ := newTestController(gw)

		_, err := c.BeginOAuth(context.Background(), provider.Google, "/")
		flowErr, ok := AsFlowError(err)
		require.True(t, ok)
		assert.Equal(t, "OAuth is disabled", flowErr.Banner)
		assert.Equal(t, StateIdle, c.OAuthState(), "loading cleared on failure")
	})

	t.Run("empty body names the provider", func(t *testing.T) {
		gw := &fakeGateway{urlErr: httpErr(500, &api.ErrorBody{})}
		c, _ := newTestController(gw)

		_, err := c.BeginOAuth(context.Background(), provider.GitHub, "/")
		flowErr, ok := AsFlowError(err)
		require.True(t, ok)
		assert.Equal(t, "Failed to initiate github login", flowErr.Banner)
	})

	t.Run("network failure", func(t *testing.T) {
		gw := &fakeGateway{urlErr: &api.Error{Kind: api.KindNetwork}}
		c, _ := newTestController(gw)

		_, err := c.BeginOAuth(context.Background(), provider.Google, "/")
		flowErr, ok := AsFlowError(err)
		require.True(t, ok)
		assert.Equal(t, FailureNetwork, flowErr.Kind)
		assert.Equal(t, "Network error. Please try again.", flowErr.Banner)
	})
}

func TestBeginOAuth_FailureLeavesNoStash(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{urlErr: &api.Error{Kind: api.KindNetwork}}
	c, sessions := newTestController(gw)

	_, err := c.BeginOAuth(ctx, provider.Google, "/dashboard")
	require.Error(t, err)

	dest, err := sessions.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/", dest, "no destination stashed when initiation fails")
}

func TestCompleteOAuth_MissingCode(t *testing.T) {
	gw := &fakeGateway{}
	c, _ := newTestController(gw)

	_, err := c.CompleteOAuth(context.Background(), provider.Google, "", "some-state")

	flowErr, ok := AsFlowError(err)
	require.True(t, ok)
	assert.Equal(t, FailureClientSide, flowErr.Kind)
	assert.Equal(t, "Authorization code not found", flowErr.Banner)
	assert.True(t, flowErr.Terminal)

	_, _, _, exchange := gw.calls()
	assert.Zero(t, exchange, "gateway untouched when the code is absent")
}

func TestCompleteOAuth_Success(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{exchangeResp: &api.AuthResponse{AccessToken: "cb-token"}}
	c, sessions := newTestController(gw)

	require.NoError(t, sessions.StashRedirect(ctx, "/dashboard"))

	outcome, err := c.CompleteOAuth(ctx, provider.GitHub, "auth-code", "state-1")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", outcome.Destination)

	token, err := sessions.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cb-token", token)

	// The pending redirect was consumed.
	dest, err := sessions.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/", dest)
}

func TestCompleteOAuth_SuccessWithoutStash(t *testing.T) {
	gw := &fakeGateway{exchangeResp: &api.AuthResponse{AccessToken: "cb-token"}}
	c, _ := newTestController(gw)

	outcome, err := c.CompleteOAuth(context.Background(), provider.Google, "auth-code", "")
	require.NoError(t, err)
	assert.Equal(t, "/", outcome.Destination)
}

func TestCompleteOAuth_FailureIsTerminal(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantBanner string
	}{
		{
			name:       "backend banner",
			err:        httpErr(400, &api.ErrorBody{Error: "invalid authorization code"}),
			wantBanner: "invalid authorization code",
		},
		{
			name:       "empty body",
			err:        httpErr(500, &api.ErrorBody{}),
			wantBanner: "OAuth authentication failed",
		},
		{
			name:       "network",
			err:        &api.Error{Kind: api.KindNetwork},
			wantBanner: "Authentication failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{exchangeErr: tt.err}
			c, _ := newTestController(gw)

			_, err := c.CompleteOAuth(context.Background(), provider.Google, "auth-code", "s")
			flowErr, ok := AsFlowError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantBanner, flowErr.Banner)
			assert.True(t, flowErr.Terminal)
			assert.Equal(t, StateIdle, c.OAuthState())
		})
	}
}
