package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lfca/church-admin-be/internal/models"
	"github.com/lfca/church-admin-be/internal/session"
)

// TokenManager issues and verifies signed JWTs for authenticated users.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Generate issues a signed JWT carrying the user's profile claims.
func (t *TokenManager) Generate(user models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":       t.issuer,
		"sub":       user.ID,
		"email":     user.Email,
		"full_name": user.FullName,
		"role":      string(user.Role),
		"iat":       now.Unix(),
		"nbf":       now.Unix(),
		"exp":       now.Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses and validates a token string and returns the embedded
// identity. Role interpretation is left to the session layer.
func (t *TokenManager) Verify(tokenString string) (*session.Identity, error) {
	token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	identity := &session.Identity{Metadata: map[string]string{}}
	if sub, ok := claims["sub"].(string); ok {
		identity.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := claims["full_name"].(string); ok {
		identity.Metadata["full_name"] = name
	}
	if role, ok := claims["role"].(string); ok {
		identity.Metadata["role"] = role
	}
	if identity.ID == "" {
		return nil, errors.New("token missing subject")
	}
	return identity, nil
}
