package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"expense-tracker/pkg/auth"
)

// Token types carried in the token_type claim; only access tokens grant
// resource access, only refresh tokens may be exchanged for a new pair.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var errNotRefreshToken = errors.New("not a refresh token")

// Generator issues HS256 access/refresh token pairs.
type Generator struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewGenerator(secret, issuer string, accessTTL, refreshTTL time.Duration) *Generator {
	return &Generator{secret: []byte(secret), issuer: issuer, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Claims adds the token_type discriminator to the registered claim set.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

func (g *Generator) GeneratePair(ctx context.Context, user auth.User) (auth.TokenPair, error) {
	access, err := g.sign(user, TypeAccess, g.accessTTL)
	if err != nil {
		return auth.TokenPair{}, err
	}
	refresh, err := g.sign(user, TypeRefresh, g.refreshTTL)
	if err != nil {
		return auth.TokenPair{}, err
	}
	return auth.TokenPair{Access: access, Refresh: refresh}, nil
}

// ParseRefresh validates a refresh token and returns its subject. Access
// tokens are rejected so a leaked short-lived token cannot be upgraded.
func (g *Generator) ParseRefresh(ctx context.Context, tokenStr string) (uuid.UUID, error) {
	claims, err := parseClaims(tokenStr, g.secret, g.issuer)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.TokenType != TypeRefresh {
		return uuid.Nil, errNotRefreshToken
	}
	return uuid.Parse(claims.Subject)
}

func (g *Generator) sign(user auth.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

func parseClaims(tokenStr string, secret []byte, expectedIssuer string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if expectedIssuer != "" && claims.Issuer != expectedIssuer {
		return nil, jwt.ErrTokenInvalidIssuer
	}
	return claims, nil
}
