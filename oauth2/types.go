package oauth2

// GrantType names the grant sent to the login endpoint.
type GrantType string

const (
	// PasswordGrantType exchanges a username and password for a token pair.
	// Used in: POST /auth/login (form encoded)
	// Example: grant_type=password&username=alice&password=...
	PasswordGrantType GrantType = "password"
)

// TokenType indicates how an access token is presented.
type TokenType string

const (
	// BearerTokenType is the only token type issued by the auth service.
	// Usage: Authorization: Bearer <access_token>
	BearerTokenType TokenType = "bearer"
)
