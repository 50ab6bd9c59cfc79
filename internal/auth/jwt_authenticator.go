package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JwtAuthenticator validates HS256 bearer tokens issued by the identity
// provider and resolves the person id from the subject claim.
type JwtAuthenticator struct {
	signingKey []byte
}

func NewJwtAuthenticator(signingKey string) (*JwtAuthenticator, error) {
	if signingKey == "" {
		return nil, errors.New("jwt authentication requires a signing key")
	}
	return &JwtAuthenticator{signingKey: []byte(signingKey)}, nil
}

func (j *JwtAuthenticator) Authenticate(rawToken string) (Actor, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.signingKey, nil
	})
	if err != nil {
		return Actor{}, fmt.Errorf("failed to parse token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return Actor{}, fmt.Errorf("failed to read subject claim: %w", err)
	}

	personID, err := uuid.Parse(subject)
	if err != nil {
		return Actor{}, fmt.Errorf("subject claim is not a person id: %w", err)
	}

	return Actor{PersonID: personID, Token: token}, nil
}

func (j *JwtAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		rawToken, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		actor, err := j.Authenticate(rawToken)
		if err != nil {
			zap.S().Named("auth").Debugw("token rejected", "error", err)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := NewActorContext(r.Context(), actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
