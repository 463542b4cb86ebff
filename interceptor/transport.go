package interceptor

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/navigation"
	"github.com/rs/zerolog/log"
)

const (
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
)

var _ http.RoundTripper = (*Transport)(nil)

// Transport decorates a base RoundTripper. Requests bound for the API or auth service
// carry the stored access token (redirect hops only when they stay on the origin of the
// first request), and a 401 response ends the session: the credential
// bundle is cleared and the navigator is sent to the login page.
//
// Transport holds no per-request state and is safe for concurrent use.
type Transport struct {
	base      http.RoundTripper
	store     credentials.Store
	navigator navigation.Navigator
	markers   []string
	loginPath string
	anyPath   bool
}

// New wraps base. A nil base uses http.DefaultTransport.
func New(base http.RoundTripper, store credentials.Store, navigator navigation.Navigator, cfg config.InterceptorConfig) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		base:      base,
		store:     store,
		navigator: navigator,
		markers:   cfg.GetProtectedPathMarkers(),
		loginPath: cfg.GetLoginPath(),
		anyPath:   cfg.GetLogoutOnAnyUnauthorized(),
	}
}

// Client returns an http.Client that sends every request through t
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// Matches reports whether rawURL is bound for the API or auth service
func (t *Transport) Matches(rawURL string) bool {
	for _, marker := range t.markers {
		if strings.Contains(rawURL, marker) {
			return true
		}
	}
	return false
}

// CloseIdleConnections closes idle connections of the base transport when it supports it
func (t *Transport) CloseIdleConnections() {
	type closeIdler interface {
		CloseIdleConnections()
	}
	if tr, ok := t.base.(closeIdler); ok {
		tr.CloseIdleConnections()
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	matched := t.Matches(req.URL.String())

	if matched && !sameOrigin(req.URL, initialRequest(req).URL) {
		log.Debug().Str("host", req.URL.Host).Str("path", req.URL.Path).Msg("Redirected to another origin, not attaching bearer token")
	} else if matched {
		authorised, err := t.authorise(req)
		if err != nil {
			closeBody(req)
			return nil, err
		}
		req = authorised
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && (matched || t.anyPath) {
		t.endSession(req)
	}
	return resp, nil
}

// authorise returns a copy of req carrying the stored access token. req itself is
// never modified; with no stored token it is returned as is.
func (t *Transport) authorise(req *http.Request) (*http.Request, error) {
	bundle, err := t.store.Load(req.Context())
	if err != nil {
		return nil, errors.Wrapf(err, "interceptor: load credentials for %s", req.URL.Path)
	}
	if !bundle.IsAuthenticated() {
		return req, nil
	}

	authorised := req.Clone(req.Context())
	authorised.Header.Set(headerAuthorization, bearerPrefix+bundle.AccessToken)
	log.Debug().Str("method", req.Method).Str("path", req.URL.Path).Str("sub", bundle.Subject()).Msg("Attached bearer token")
	return authorised, nil
}

// endSession clears the stored credentials and navigates to the login page. Navigation
// happens even if the store could not be cleared.
func (t *Transport) endSession(req *http.Request) {
	log.Info().Str("method", req.Method).Str("path", req.URL.Path).Msg("Unauthorized response, ending session")
	if err := t.store.Clear(req.Context()); err != nil {
		log.Err(err).Str("path", req.URL.Path).Msg("Failed to clear credentials")
	}
	t.navigator.Navigate(t.loginPath)
}

// initialRequest follows a redirect chain back to the request the caller sent
func initialRequest(req *http.Request) *http.Request {
	for req.Response != nil && req.Response.Request != nil {
		req = req.Response.Request
	}
	return req
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}

// closeBody honours the RoundTripper contract of closing the request body on error
func closeBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}
