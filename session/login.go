package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/rs/zerolog/log"
	xoauth2 "golang.org/x/oauth2"
)

// Login exchanges username and password for a token pair with a password grant,
// fetches the profile with the new access token and stores all three keys in one
// update, replacing whatever was stored before.
//
// If the profile cannot be fetched the token pair is still stored and a nil profile is
// returned. Rejected credentials return ErrInvalidCredentials; Login never navigates.
func (m *Manager) Login(ctx context.Context, username, password string) (credentials.UserInfo, error) {
	oauthConfig := m.oauthConfig()
	ctx = context.WithValue(ctx, xoauth2.HTTPClient, &http.Client{
		Transport: m.base,
		Timeout:   m.config.GetHTTPTimeout(),
	})

	token, err := oauthConfig.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return nil, loginError(err)
	}
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %w", errors.ErrLoginFailed, errors.ErrIncompleteTokens)
	}

	bundle := credentials.Bundle{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}

	info, err := m.fetchUserInfo(ctx, oauthConfig.Client(ctx, token))
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("Login: failed to fetch user info")
		info = nil
	} else {
		encoded, err := info.Encode()
		if err != nil {
			return nil, err
		}
		bundle.UserInfo = encoded
	}

	if err := m.store.Replace(ctx, bundle); err != nil {
		return nil, errors.Wrapf(err, "Login: store credentials")
	}

	log.Info().Str("username", username).Str("sub", bundle.Subject()).Msg("Logged in")
	return info, nil
}

// FetchCurrentUser loads the profile from the auth service through the intercepted
// client and caches it as user_info. A 401 here ends the session like any other.
func (m *Manager) FetchCurrentUser(ctx context.Context) (credentials.UserInfo, error) {
	info, err := m.fetchUserInfo(ctx, m.client)
	if err != nil {
		return nil, err
	}

	encoded, err := info.Encode()
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, credentials.Bundle{UserInfo: encoded}); err != nil {
		return nil, errors.Wrapf(err, "FetchCurrentUser: store user info")
	}
	return info, nil
}

func (m *Manager) fetchUserInfo(ctx context.Context, client *http.Client) (credentials.UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.URL(m.config.GetUserInfoPath()), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create user info request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "execute user info request")
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var info credentials.UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedUserInfo, err)
	}
	if info == nil {
		return nil, fmt.Errorf("%w: empty profile", errors.ErrMalformedUserInfo)
	}
	return info, nil
}

func (m *Manager) oauthConfig() *xoauth2.Config {
	return &xoauth2.Config{
		Endpoint: xoauth2.Endpoint{
			TokenURL:  m.URL(m.config.GetTokenPath()),
			AuthStyle: xoauth2.AuthStyleInParams,
		},
	}
}

func loginError(err error) error {
	var retrieveErr *xoauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		if retrieveErr.Response.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %w", errors.ErrInvalidCredentials, err)
		}
		return fmt.Errorf("%w: %w", errors.ErrLoginFailed, &errors.StatusError{
			StatusCode: retrieveErr.Response.StatusCode,
			Body:       string(retrieveErr.Body),
		})
	}
	return fmt.Errorf("%w: %w", errors.ErrLoginFailed, err)
}
