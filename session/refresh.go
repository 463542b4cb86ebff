package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/rs/zerolog/log"
)

const maxErrorBody = 4 << 10

// Refresh exchanges the stored refresh token for a new token pair and returns the new
// access token.
//
// Every failure ends the session: with no stored refresh token (no request is made),
// a non-2xx answer, a transport error or an unusable body, Refresh logs out and
// returns "" with an error. Concurrent calls are not coalesced; each one reaches the
// refresh endpoint.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	bundle, err := m.store.Load(ctx)
	if err != nil {
		return "", m.refreshFailed(ctx, err)
	}
	if bundle.RefreshToken == "" {
		log.Info().Msg("Refresh: no refresh token stored")
		m.Logout(ctx)
		return "", errors.ErrNoRefreshToken
	}

	tokens, err := m.exchangeRefreshToken(ctx, bundle.RefreshToken)
	if err != nil {
		return "", m.refreshFailed(ctx, err)
	}

	accessToken := utils.Value(tokens.AccessToken)
	if err := m.store.Save(ctx, credentials.Bundle{
		AccessToken:  accessToken,
		RefreshToken: utils.Value(tokens.RefreshToken),
	}); err != nil {
		return "", m.refreshFailed(ctx, err)
	}

	log.Debug().Str("sub", credentials.Bundle{AccessToken: accessToken}.Subject()).Msg("Refreshed access token")
	return accessToken, nil
}

func (m *Manager) refreshFailed(ctx context.Context, err error) error {
	log.Err(err).Msg("Token refresh error")
	m.Logout(ctx)
	return fmt.Errorf("%w: %w", errors.ErrRefreshFailed, err)
}

func (m *Manager) exchangeRefreshToken(ctx context.Context, refreshToken string) (oauth2.TokenResponse, error) {
	body, err := json.Marshal(oauth2.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return oauth2.TokenResponse{}, errors.Wrapf(err, "encode refresh request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL(m.config.GetRefreshPath()), bytes.NewReader(body))
	if err != nil {
		return oauth2.TokenResponse{}, errors.Wrapf(err, "create refresh request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return oauth2.TokenResponse{}, errors.Wrapf(err, "execute refresh request")
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return oauth2.TokenResponse{}, err
	}

	var tokens oauth2.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return oauth2.TokenResponse{}, errors.Wrapf(err, "decode refresh response")
	}
	if !tokens.Complete() {
		return oauth2.TokenResponse{}, errors.ErrIncompleteTokens
	}
	return tokens, nil
}

// checkStatus turns a non-2xx response into a StatusError carrying the start of the body
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &errors.StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
}
