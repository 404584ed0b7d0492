// Package auth issues and validates access tokens for the HTTP layer. The
// ledger engine never sees tokens; it receives already-authorized user and
// account ids.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/atlas-bank/atlas_bank/internal/config"
	"github.com/atlas-bank/atlas_bank/internal/identity"
)

// ErrInvalidToken is returned for malformed, forged or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Service signs and verifies access tokens.
type Service struct {
	cfg config.Config
}

// NewService builds a token service.
func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

// Token is the response payload for a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Issue signs an access token for the user. The subject claim carries the
// user id.
func (s *Service) Issue(user identity.User) (Token, error) {
	now := time.Now()
	exp := now.Add(s.cfg.AccessTokenTTL)
	claims := map[string]any{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := SignHS256(claims, []byte(s.cfg.JWTSecret))
	if err != nil {
		return Token{}, err
	}
	return Token{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int64(exp.Sub(now).Seconds()),
	}, nil
}

// Verify checks the token and returns the authenticated user id.
func (s *Service) Verify(token string) (int64, error) {
	claims, err := ParseAndVerifyHS256(token, []byte(s.cfg.JWTSecret))
	if err != nil {
		return 0, ErrInvalidToken
	}
	if exp, ok := claims["exp"].(float64); !ok || time.Now().Unix() >= int64(exp) {
		return 0, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
