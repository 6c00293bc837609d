// Package auth issues and verifies the HS256 JWTs used as access and refresh
// tokens. Verification is purely cryptographic and never touches storage, so
// the gateway uses the same code for its fallback path.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the typ claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the JWT payload: the credential id plus the registered claims
// (exp, iat and, for refresh tokens, jti).
type Claims struct {
	UserID int64  `json:"id"`
	Type   string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies tokens with a single shared secret.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService creates a service whose refresh tokens live
// refreshMultiplier times longer than access tokens.
func NewTokenService(secret string, accessTTL time.Duration, refreshMultiplier int) *TokenService {
	if refreshMultiplier <= 0 {
		refreshMultiplier = 7
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: time.Duration(refreshMultiplier) * accessTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// AccessTTL returns the access token lifetime.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the refresh token lifetime.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken mints a stateless access token for userID.
func (s *TokenService) IssueAccessToken(userID int64) (string, error) {
	token, _, err := s.sign(userID, TypeAccess, "", s.accessTTL)
	return token, err
}

// IssueRefreshToken mints a refresh token and returns its expiry so the
// caller can persist it. Each token carries a random jti, so two tokens for
// the same user issued within the same second still differ.
func (s *TokenService) IssueRefreshToken(userID int64) (string, time.Time, error) {
	return s.sign(userID, TypeRefresh, uuid.NewString(), s.refreshTTL)
}

func (s *TokenService) sign(userID int64, typ, jti string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm and expiry. It returns
// common.ErrTokenExpired for a well-formed token past its exp and
// common.ErrInvalidToken for everything else that fails.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.WrapError(common.KindInvalidToken, common.ErrInvalidToken.Message, err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// VerifyAccess is Verify that additionally rejects refresh tokens.
func (s *TokenService) VerifyAccess(tokenString string) (*Claims, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type == TypeRefresh {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
