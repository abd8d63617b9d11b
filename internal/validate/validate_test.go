package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-web/auth-front/internal/api"
)

func TestCheck_Login(t *testing.T) {
	tests := []struct {
		name      string
		req       api.LoginRequest
		wantField string
		wantMsg   string
	}{
		{
			name: "valid",
			req:  api.LoginRequest{Email: "user@example.com", Password: "abcdefgh"},
		},
		{
			name:      "missing email",
			req:       api.LoginRequest{Password: "abcdefgh"},
			wantField: "email",
			wantMsg:   "Email is required",
		},
		{
			name:      "malformed email",
			req:       api.LoginRequest{Email: "not-an-address", Password: "abcdefgh"},
			wantField: "email",
			wantMsg:   "Please enter a valid email address",
		},
		{
			name:      "short password",
			req:       api.LoginRequest{Email: "user@example.com", Password: "short"},
			wantField: "password",
			wantMsg:   "Password must be at least 8 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := Check(tt.req)
			if tt.wantField == "" {
				assert.Nil(t, fields)
				return
			}
			require.True(t, fields.Has(tt.wantField))
			assert.Equal(t, tt.wantMsg, fields.First(tt.wantField))
		})
	}
}

func TestCheck_Register_ConfirmationMismatch(t *testing.T) {
	fields := Check(api.RegisterRequest{
		Email:                "user@example.com",
		Password:             "abcdefgh",
		PasswordConfirmation: "abcdefgi",
	})

	require.True(t, fields.Has("password_confirmation"))
	assert.Equal(t, "Passwords do not match", fields.First("password_confirmation"))
	assert.False(t, fields.Has("password"))
}

func TestMapServerError_FieldErrors(t *testing.T) {
	body := &api.ErrorBody{
		Error: "Validation failed",
		Messages: map[string][]string{
			"email":    {"Email is already taken", "Email domain is blocked"},
			"password": {"Password is too weak"},
			"unknown":  {"ignored by display, kept in the map"},
		},
	}

	banner, fields := MapServerError(400, body)

	assert.Equal(t, "Validation failed", banner)
	assert.Equal(t, "Email is already taken", fields.First("email"))
	assert.Equal(t, "Password is too weak", fields.First("password"))
	// Unknown keys must not vanish; field-level display just never asks for them.
	assert.True(t, fields.Has("unknown"))
}

func TestMapServerError_PlainMessage(t *testing.T) {
	banner, fields := MapServerError(500, &api.ErrorBody{Error: "something broke"})
	assert.Equal(t, "something broke", banner)
	assert.Nil(t, fields)
}

func TestMapServerError_GenericFallback(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{status: 400, want: "Invalid request"},
		{status: 422, want: "Validation failed"},
		{status: 503, want: "Request failed with status 503"},
	}

	for _, tt := range tests {
		banner, fields := MapServerError(tt.status, &api.ErrorBody{})
		assert.Equal(t, tt.want, banner)
		assert.Nil(t, fields)
	}
}

func TestMapServerError_Idempotent(t *testing.T) {
	body := &api.ErrorBody{
		Error:    "Validation failed",
		Messages: map[string][]string{"email": {"Email is required"}},
	}

	banner1, fields1 := MapServerError(400, body)
	banner2, fields2 := MapServerError(400, body)

	assert.Equal(t, banner1, banner2)
	assert.Equal(t, fields1, fields2)
}

func TestFieldErrors_First(t *testing.T) {
	fields := FieldErrors{"email": {"first", "second"}}
	assert.Equal(t, "first", fields.First("email"))
	assert.Equal(t, "", fields.First("password"))
}
