package guard

import (
	"context"
	"slices"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/navigation"
	"github.com/rs/zerolog/log"
)

// Guard runs once when a page is opened and sends visitors without an access token
// to the login page.
type Guard struct {
	store     credentials.Store
	navigator navigation.Navigator
	config    config.GuardConfig
}

func New(store credentials.Store, navigator navigation.Navigator, cfg config.GuardConfig) *Guard {
	return &Guard{
		store:     store,
		navigator: navigator,
		config:    cfg,
	}
}

// IsPublic reports whether path is served without credentials. Matching is exact.
func (g *Guard) IsPublic(path string) bool {
	return slices.Contains(g.config.GetPublicPages(), path)
}

// Check reports whether the page at path may be shown. Public pages are always
// allowed and the store is not consulted. Otherwise the presence of an access token
// decides; without one Check navigates to the login page and returns false.
// The token is not validated.
func (g *Guard) Check(ctx context.Context, path string) (bool, error) {
	if g.IsPublic(path) {
		return true, nil
	}

	bundle, err := g.store.Load(ctx)
	if err != nil {
		return false, err
	}
	if bundle.IsAuthenticated() {
		return true, nil
	}

	log.Debug().Str("path", path).Str("target", g.config.GetLoginPath()).Msg("No access token, redirecting")
	g.navigator.Navigate(g.config.GetLoginPath())
	return false, nil
}
