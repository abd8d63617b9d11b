package validate

import (
	"fmt"

	"github.com/codex-web/auth-front/internal/api"
)

// MapServerError converts a backend error payload into a banner string and
// per-field messages. Pure: same input, same output, no side effects. Field
// maps pass through unchanged so the server's ordering and any unknown field
// names survive intact; display code simply ignores keys it has no input for.
func MapServerError(status int, body *api.ErrorBody) (banner string, fields FieldErrors) {
	if body.HasFieldErrors() {
		banner = body.Error
		if banner == "" {
			banner = genericBanner(status)
		}
		return banner, FieldErrors(body.Messages)
	}

	if body != nil && body.Error != "" {
		return body.Error, nil
	}
	return genericBanner(status), nil
}

func genericBanner(status int) string {
	switch status {
	case 400:
		return "Invalid request"
	case 422:
		return "Validation failed"
	default:
		return fmt.Sprintf("Request failed with status %d", status)
	}
}
