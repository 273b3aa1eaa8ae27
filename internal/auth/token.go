package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ticketly/internal/models"
)

// ExtractTokenFromRequest extracts a JWT token from an HTTP request's Authorization header
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	// Bearer token format: "Bearer {token}"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}

	return parts[1], nil
}

// HMACVerifier validates tokens signed with a shared secret. Claims carry
// the user id in "sub" and the role in "role".
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(_ context.Context, rawToken string) (models.Actor, error) {
	if rawToken == "" {
		return models.Actor{}, errors.New("empty token")
	}

	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return models.Actor{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Actor{}, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return models.Actor{}, errors.New("subject claim not found in token")
	}

	role := models.RoleUser
	if raw, ok := claims["role"].(string); ok && raw == string(models.RoleAdmin) {
		role = models.RoleAdmin
	}

	return models.Actor{ID: sub, Role: role}, nil
}

// SignToken issues an HMAC token for the given actor. Used by tests and
// local tooling; production tokens come from the identity provider.
func SignToken(secret string, actor models.Actor, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  actor.ID,
		"role": string(actor.Role),
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
