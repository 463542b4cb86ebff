package authserverfake

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/oauth2"
)

const (
	accessTokenExpiry  = 30 * time.Minute
	refreshTokenExpiry = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// IssuePair mints an access/refresh pair for username without going through login
func (s *Server) IssuePair(username string) (oauth2.TokenResponse, error) {
	s.lock.RLock()
	generation := s.generation
	s.lock.RUnlock()

	accessToken, err := s.sign(jwtlib.MapClaims{
		"sub":  username,
		"type": tokenTypeAccess,
		"gen":  generation,
		"iat":  NowTimeFunc().Unix(),
		"exp":  NowTimeFunc().Add(accessTokenExpiry).Unix(),
		"jti":  uuid.New().String(),
	})
	if err != nil {
		return oauth2.TokenResponse{}, err
	}

	refreshToken, err := s.sign(jwtlib.MapClaims{
		"sub":  username,
		"type": tokenTypeRefresh,
		"iat":  NowTimeFunc().Unix(),
		"exp":  NowTimeFunc().Add(refreshTokenExpiry).Unix(),
		"jti":  uuid.New().String(),
	})
	if err != nil {
		return oauth2.TokenResponse{}, err
	}

	return oauth2.TokenResponse{
		AccessToken:  utils.Ptr(accessToken),
		RefreshToken: utils.Ptr(refreshToken),
		TokenType:    string(oauth2.BearerTokenType),
	}, nil
}

func (s *Server) sign(claims jwtlib.MapClaims) (string, error) {
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// decode validates signature and expiry and checks the token type
func (s *Server) decode(token, wantType string) (jwtlib.MapClaims, error) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(*jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(NowTimeFunc))
	if err != nil {
		return nil, err
	}
	if claims["type"] != wantType {
		return nil, fmt.Errorf("token type %v, want %s", claims["type"], wantType)
	}
	if wantType == tokenTypeAccess {
		gen, _ := claims["gen"].(float64)
		s.lock.RLock()
		current := s.generation
		s.lock.RUnlock()
		if int(gen) != current {
			return nil, fmt.Errorf("access token expired")
		}
	}
	return claims, nil
}
