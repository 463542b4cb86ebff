package credentials

import "context"

// Store persists the credential bundle for a single origin.
//
// Save and Clear are atomic across all three keys so a concurrent Load never observes
// a new access token paired with an old refresh token.
type Store interface {
	// Load returns a consistent snapshot. Missing keys are empty strings.
	Load(ctx context.Context) (Bundle, error)
	// Save writes every non-empty field of b in one update. Empty fields keep their
	// stored values.
	Save(ctx context.Context, b Bundle) error
	// Replace stores exactly b in one update: empty fields are removed.
	Replace(ctx context.Context, b Bundle) error
	// Clear removes all three keys in one update.
	Clear(ctx context.Context) error
}
