package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"fundledger/domain/apperrors"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

// Claims are the bearer token claims the ledger reads. The subject is the acting user.
type Claims struct {
	TeamID string `json:"teamId"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller of a request
type Identity struct {
	UserID string
	TeamID string
}

type contextKey string

const identityKey contextKey = "httpapi.identity"

// WithIdentity stores the caller identity in the context
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the caller identity stored by the auth middleware
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// ParseJWT validates an HS256 token and returns its claims
func ParseJWT(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("auth: empty token")
	}
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("auth: missing subject")
	}
	if claims.TeamID == "" {
		return nil, errors.New("auth: missing teamId")
	}
	return claims, nil
}

// AuthMiddleware rejects requests without a valid bearer token and stores the identity
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ParseJWT(extractBearer(r), secret)
			if err != nil {
				log.WithFields(log.Fields{
					"path":  r.URL.Path,
					"error": err,
				}).Debug("Rejected unauthenticated request")
				writeError(w, apperrors.ErrUnauthorized)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: claims.Subject, TeamID: claims.TeamID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
