package jwtinfra

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/learnhub-api/internal/config"
)

// Token kinds carried in the token_kind claim. Access tokens authorize API
// calls; refresh tokens may only be exchanged for a new access token.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

var (
	// ErrTokenExpired means the signature checked out but the token is past
	// its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers malformed tokens, bad signatures and wrong
	// signing methods.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the JWT payload: subject, role and kind on top of the
// registered claim set.
type Claims struct {
	Role      string `json:"role"`
	TokenKind string `json:"token_kind"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with a shared secret.
// Tokens are stateless bearer credentials: there is no server-side session
// or revocation store, so a refresh token stays valid until its expiry.
type Provider struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return &Provider{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// AccessTTL exposes the configured access-token lifetime for expires_in
// style response fields.
func (p *Provider) AccessTTL() time.Duration { return p.accessTTL }

// AccessClaims builds claims for a short-lived access token. Pure: no I/O,
// expiry is now+TTL, subject and role are copied verbatim.
func (p *Provider) AccessClaims(subject, role string) Claims {
	return p.newClaims(subject, role, KindAccess, p.accessTTL)
}

// RefreshClaims builds claims for a long-lived refresh token.
func (p *Provider) RefreshClaims(subject, role string) Claims {
	return p.newClaims(subject, role, KindRefresh, p.refreshTTL)
}

func (p *Provider) newClaims(subject, role, kind string, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		Role:      role,
		TokenKind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// Sign returns the compact serialization of the claims.
func (p *Provider) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Verify parses and validates a compact JWT. It returns ErrTokenExpired for
// a well-signed but stale token and ErrTokenInvalid for everything else.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
