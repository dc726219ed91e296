package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/squeakroad/case-service/internal/domain"
)

type Claims struct {
	UID   int64 `json:"uid"`
	Admin bool  `json:"admin"`
	jwt.RegisteredClaims
}

type partyKey struct{}

// BuildToken signs a bearer token for party. The service itself only
// verifies tokens; issuing lives with the account service.
func BuildToken(secret string, party domain.Party, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UID:   party.ID,
		Admin: party.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (domain.Party, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return domain.Party{}, fmt.Errorf("token error: %w", err)
	}
	if !token.Valid || claims.UID <= 0 {
		return domain.Party{}, errors.New("token is not valid")
	}
	return domain.Party{ID: claims.UID, IsAdmin: claims.Admin}, nil
}

// Authenticate rejects requests without a valid bearer token and puts the
// caller's Party into the request context.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				unauthorized(w, "missing bearer token")
				return
			}
			party, err := ParseToken(secret, raw)
			if err != nil {
				unauthorized(w, "invalid bearer token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithParty(r.Context(), party)))
		})
	}
}

func WithParty(ctx context.Context, party domain.Party) context.Context {
	return context.WithValue(ctx, partyKey{}, party)
}

func PartyFromContext(ctx context.Context) (domain.Party, bool) {
	party, ok := ctx.Value(partyKey{}).(domain.Party)
	return party, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
