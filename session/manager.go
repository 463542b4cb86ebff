package session

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/interceptor"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/navigation"
	"github.com/rs/zerolog/log"
)

// Manager owns the credential lifecycle for one origin: it hands out the intercepted
// client and performs login, refresh and logout against the auth service.
type Manager struct {
	baseURL   string
	base      http.RoundTripper
	store     credentials.Store
	navigator navigation.Navigator
	config    config.ClientConfig
	client    *http.Client
}

// New builds a Manager whose Client sends requests through an interceptor wrapping base.
// A nil base uses http.DefaultTransport.
func New(base http.RoundTripper, store credentials.Store, navigator navigation.Navigator, cfg config.ClientConfig) *Manager {
	if base == nil {
		base = http.DefaultTransport
	}
	transport := interceptor.New(base, store, navigator, cfg)
	return &Manager{
		baseURL:   cfg.GetBaseURL(),
		base:      base,
		store:     store,
		navigator: navigator,
		config:    cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.GetHTTPTimeout(),
		},
	}
}

// Client returns the intercepted client. Callers that want bearer injection and
// 401 handling must send their requests through it.
func (m *Manager) Client() *http.Client {
	return m.client
}

// URL resolves path against the auth service origin
func (m *Manager) URL(path string) string {
	return m.baseURL + path
}

// Logout clears the stored credentials and navigates to the login page. It cannot
// fail; a store error is logged and navigation still happens.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		log.Err(err).Msg("Logout: failed to clear credentials")
	}
	log.Info().Str("target", m.config.GetLoginPath()).Msg("Logged out")
	m.navigator.Navigate(m.config.GetLoginPath())
}

// CurrentUser returns the cached profile, or nil when none is stored. A stored value
// that does not decode is reported as an error wrapping ErrMalformedUserInfo.
func (m *Manager) CurrentUser(ctx context.Context) (credentials.UserInfo, error) {
	bundle, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if bundle.UserInfo == "" {
		return nil, nil
	}
	return credentials.ParseUserInfo(bundle.UserInfo)
}
