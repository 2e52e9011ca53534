package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"ecommerce-api/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingSecret = errors.New("jwt secret is empty")

// Claims holds the bearer token payload
type Claims struct {
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenProvider signs and verifies HS256 tokens
type TokenProvider struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenProvider creates a provider from the auth configuration
func NewTokenProvider(cfg config.AuthConfig) (*TokenProvider, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	return &TokenProvider{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}, nil
}

// Sign issues a token for the user and role
func (p *TokenProvider) Sign(userID uint, role string) (string, error) {
	now := p.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Verify parses tokenStr. Failures carry the jwt sentinel errors (jwt.ErrTokenExpired and so on).
func (p *TokenProvider) Verify(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", jwt.ErrTokenInvalidClaims)
	}
	return claims, nil
}

// Principal returns the authenticated caller described by the claims
func (c *Claims) Principal() Principal {
	return Principal{UserID: c.UserID, Role: c.Role}
}
