package oauth2

import "github.com/jrsteele09/go-auth-client/internal/utils"

// TokenResponse represents the response from the login and refresh endpoints.
// Both return the same shape; only the login endpoint sets TokenType.
type TokenResponse struct {
	// AccessToken is the short-lived credential sent with each authorized request.
	// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
	// Usage: Include in Authorization header: "Bearer <access_token>"
	// Lifespan: Short-lived (30 minutes by default on the auth service)
	AccessToken *string `json:"access_token,omitempty"`

	// RefreshToken is the long-lived credential used to mint a new access token.
	// Usage: Send to /auth/refresh as {"refresh_token": "..."}
	// Lifespan: Long-lived (7 days by default on the auth service)
	// Security: Rotates on each refresh; the old value should be discarded
	RefreshToken *string `json:"refresh_token,omitempty"`

	// TokenType indicates how to use the access token (always "bearer").
	TokenType string `json:"token_type,omitempty"`
}

// Complete reports whether both tokens are present and non-empty
func (r TokenResponse) Complete() bool {
	return utils.Value(r.AccessToken) != "" && utils.Value(r.RefreshToken) != ""
}

// RefreshTokenRequest is the JSON body of POST /auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}
