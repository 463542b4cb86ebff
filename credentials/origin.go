package credentials

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-client/internal/errors"
)

// Origin returns scheme://host[:port] of rawURL. Stores are scoped to this value.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidBaseURL, "%s: %v", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.Wrapf(errors.ErrInvalidBaseURL, "%s: missing scheme or host", rawURL)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}
