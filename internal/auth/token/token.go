// Package token issues and verifies the JWT pairs used for API access.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"courseportal_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrTokenInvalid = errors.New("token invalid")

// Claims is the identity payload embedded in both access and refresh tokens.
type Claims struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// Pair holds a freshly issued access and refresh token.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer signs access and refresh tokens with their respective secrets.
// The access token is long-lived (7 days by default) and the refresh token
// extends the session to 15 days.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer creates an Issuer from auth service configuration.
func NewIssuer(cfg config.AuthServiceConfig) *Issuer {
	return &Issuer{
		accessSecret:  []byte(cfg.GetJWTAccessSecret()),
		refreshSecret: []byte(cfg.GetJWTRefreshSecret()),
		accessTTL:     cfg.GetAccessTokenTTL(),
		refreshTTL:    cfg.GetRefreshTokenTTL(),
	}
}

// Issue signs a new access/refresh token pair for the given identity.
func (i *Issuer) Issue(claims Claims) (Pair, error) {
	access, err := i.sign(claims, i.accessSecret, i.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.sign(claims, i.refreshSecret, i.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// ParseRefresh verifies a refresh token and returns its identity claims.
func (i *Issuer) ParseRefresh(tokenString string) (Claims, error) {
	return parse(tokenString, i.refreshSecret)
}

func (i *Issuer) sign(claims Claims, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    claims.ID.String(),
		"email": claims.Email,
		"role":  claims.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	return tok.SignedString(secret)
}

func parse(tokenString string, secret []byte) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}

	rawID, _ := mapClaims["id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return Claims{}, ErrTokenInvalid
	}
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)

	return Claims{ID: userID, Email: email, Role: role}, nil
}

// GenerateRandomToken returns a URL-safe random token of the given byte size.
// Used for email verification links; only the SHA-256 hash is persisted.
func GenerateRandomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashSHA256 returns the hex-encoded SHA-256 digest of a token.
func HashSHA256(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
