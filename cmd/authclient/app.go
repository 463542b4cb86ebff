package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/filestore"
	"github.com/jrsteele09/go-auth-client/credentials/redisstore"
	"github.com/jrsteele09/go-auth-client/guard"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/internal/ui"
	"github.com/jrsteele09/go-auth-client/navigation"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const requestIDHeader = "X-Request-ID"

// app is everything one command invocation works with. Navigation cancels ctx, so a
// command stops as soon as its session ends.
type app struct {
	ctx       context.Context
	config    config.Config
	store     credentials.Store
	manager   *session.Manager
	guard     *guard.Guard
	canceller *navigation.Canceller
	close     func() error
}

func newApp(ctx context.Context, overrides config.Overrides) (*app, error) {
	c := config.NewWithOverrides(overrides)

	store, closeStore, err := openStore(ctx, c, c.GetBaseURL())
	if err != nil {
		return nil, err
	}

	canceller, pageCtx := navigation.NewCanceller(ctx)
	navigator := navigation.Func(func(path string) {
		fmt.Fprintf(os.Stderr, "Redirecting to %s\n", path)
		canceller.Navigate(path)
	})

	return &app{
		ctx:       pageCtx,
		config:    c,
		store:     store,
		manager:   session.New(baseTransport(c), store, navigator, c),
		guard:     guard.New(store, navigator, c),
		canceller: canceller,
		close: func() error {
			canceller.Stop()
			return closeStore()
		},
	}, nil
}

// sessionEnded turns a cancellation caused by navigation into a readable error
func (a *app) sessionEnded(err error) error {
	if target, ok := navigation.NavigatedTo(a.ctx); ok {
		return fmt.Errorf("session ended, redirected to %s: %w", target, errors.ErrSessionNavigation)
	}
	return err
}

// openStore selects the credential store for origin of baseURL
func openStore(ctx context.Context, c config.StorageConfig, baseURL string) (credentials.Store, func() error, error) {
	origin, err := credentials.Origin(baseURL)
	if err != nil {
		return nil, nil, err
	}

	switch c.GetStoreType() {
	case config.StoreFile:
		store := filestore.New(c.GetStoreDir(), origin)
		log.Debug().Str("path", store.Path()).Msg("Using file credential store")
		return store, func() error { return nil }, nil
	case config.StoreRedis:
		store, err := redisstore.New(ctx, c.GetRedisURL(), c.GetRedisKeyPrefix(), origin)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("key", store.Key()).Msg("Using redis credential store")
		return store, store.Close, nil
	default:
		return nil, nil, errors.Wrapf(errors.ErrUnsupportedStore, "store %q", c.GetStoreType())
	}
}

func baseTransport(c config.EnvConfig) http.RoundTripper {
	var transport http.RoundTripper = http.DefaultTransport
	if c.GetTracingEnabled() {
		transport = otelhttp.NewTransport(transport)
	}
	return &requestLogTransport{
		next:    transport,
		verbose: c.GetEnv() == "DEV",
	}
}

// requestLogTransport tags each request with an id and, in DEV, prints a coloured
// request line for it
type requestLogTransport struct {
	next    http.RoundTripper
	verbose bool
}

func (t *requestLogTransport) CloseIdleConnections() {
	if tr, ok := t.next.(interface{ CloseIdleConnections() }); ok {
		tr.CloseIdleConnections()
	}
}

func (t *requestLogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(requestIDHeader) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(requestIDHeader, uuid.New().String())
	}

	resp, err := t.next.RoundTrip(req)
	if t.verbose {
		if err != nil {
			fmt.Fprintln(os.Stderr, ui.ErrorLine(req.Method, req.URL.String(), err))
		} else {
			fmt.Fprintln(os.Stderr, ui.RequestLine(req.Method, req.URL.String(), resp.StatusCode))
		}
	}
	log.Debug().Str("request_id", req.Header.Get(requestIDHeader)).Str("path", req.URL.Path).Msg("Request sent")
	return resp, err
}
