// Package provider enumerates the identity providers the Codex backend can
// delegate to. The set is closed: adding a provider means adding a constant
// here plus the matching endpoint pair on the backend, nothing else.
package provider

import "fmt"

// Provider identifies an external identity provider.
type Provider string

const (
	Google Provider = "google"
	GitHub Provider = "github"
)

// All lists every supported provider, in display order.
func All() []Provider {
	return []Provider{Google, GitHub}
}

// Parse validates a provider identifier from user input or a callback URL.
func Parse(s string) (Provider, error) {
	switch Provider(s) {
	case Google, GitHub:
		return Provider(s), nil
	default:
		return "", fmt.Errorf("unknown provider type: %s", s)
	}
}

// URLPath returns the backend endpoint that issues this provider's
// authorization redirect URL.
func (p Provider) URLPath() string {
	return fmt.Sprintf("/auth/oauth/%s/url", p)
}

// CallbackPath returns the backend endpoint that exchanges this provider's
// authorization code for a session.
func (p Provider) CallbackPath() string {
	return fmt.Sprintf("/oauth/%s/callback", p)
}

func (p Provider) String() string {
	return string(p)
}
