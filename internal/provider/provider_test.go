package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Provider
		wantErr bool
	}{
		{input: "google", want: Google},
		{input: "github", want: GitHub},
		{input: "gitlab", wantErr: true},
		{input: "", wantErr: true},
		{input: "Google", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEndpointPaths(t *testing.T) {
	assert.Equal(t, "/auth/oauth/google/url", Google.URLPath())
	assert.Equal(t, "/oauth/github/callback", GitHub.CallbackPath())
}

func TestAll(t *testing.T) {
	assert.Equal(t, []Provider{Google, GitHub}, All())
}
