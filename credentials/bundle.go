package credentials

import (
	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Persisted key names. All three are written and cleared together.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserInfo     = "user_info"
)

// Bundle is the credential set held for one origin.
type Bundle struct {
	AccessToken  string `json:"access_token,omitempty"`  // short-lived bearer credential
	RefreshToken string `json:"refresh_token,omitempty"` // long-lived credential used to mint access tokens
	UserInfo     string `json:"user_info,omitempty"`     // serialized profile record
}

// IsAuthenticated reports whether an access token is present. The other two keys do
// not count.
func (b Bundle) IsAuthenticated() bool {
	return b.AccessToken != ""
}

// IsEmpty reports whether no key is set
func (b Bundle) IsEmpty() bool {
	return b.AccessToken == "" && b.RefreshToken == "" && b.UserInfo == ""
}

// Merge returns b with every non-empty field of update applied
func (b Bundle) Merge(update Bundle) Bundle {
	if update.AccessToken != "" {
		b.AccessToken = update.AccessToken
	}
	if update.RefreshToken != "" {
		b.RefreshToken = update.RefreshToken
	}
	if update.UserInfo != "" {
		b.UserInfo = update.UserInfo
	}
	return b
}

// Fields returns the non-empty values keyed by their persisted names
func (b Bundle) Fields() map[string]string {
	fields := make(map[string]string, 3)
	if b.AccessToken != "" {
		fields[KeyAccessToken] = b.AccessToken
	}
	if b.RefreshToken != "" {
		fields[KeyRefreshToken] = b.RefreshToken
	}
	if b.UserInfo != "" {
		fields[KeyUserInfo] = b.UserInfo
	}
	return fields
}

// BundleFromFields is the inverse of Fields. Unknown keys are ignored.
func BundleFromFields(fields map[string]string) Bundle {
	return Bundle{
		AccessToken:  fields[KeyAccessToken],
		RefreshToken: fields[KeyRefreshToken],
		UserInfo:     fields[KeyUserInfo],
	}
}

// Subject returns the unverified "sub" claim of a JWT access token, or "" when the
// token is absent or opaque. Only used as log context.
func (b Bundle) Subject() string {
	if b.AccessToken == "" {
		return ""
	}
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(b.AccessToken, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
