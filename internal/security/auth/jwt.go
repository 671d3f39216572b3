package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/biokuam/portal/internal/domain"
)

// Claims identify an authenticated user. The subject is the user ID, so the
// Authorization header keeps its original Bearer shape while the token itself
// is signed and expires.
type Claims struct {
	Nombre string `json:"nombre,omitempty"`
	Correo string `json:"correo,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the authenticated user's identifier.
func (c *Claims) UserID() string { return c.Subject }

// TokenManager issues and validates HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a token manager. An empty secret gets a development
// fallback; set JWT_SECRET in any real deployment.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if secret == "" {
		secret = "change-me-in-production"
	}
	if issuer == "" {
		issuer = "biokuam"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration { return tm.ttl }

// Generate issues a token for user, valid for the configured TTL.
func (tm *TokenManager) Generate(user *domain.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", fmt.Errorf("user id required")
	}
	now := time.Now()
	claims := Claims{
		Nombre: user.Nombre,
		Correo: user.Correo,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Validate parses and verifies a bearer token string.
func (tm *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// ExtractBearer pulls the credential out of an Authorization header value.
func ExtractBearer(header string) (string, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
