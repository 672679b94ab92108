package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/vijayg-dev/warehouse-listing-backend/api/responses"
	pkgAuth "github.com/vijayg-dev/warehouse-listing-backend/pkg/auth"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/config"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db/models"
	pkgerrors "github.com/vijayg-dev/warehouse-listing-backend/pkg/errors"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/logger"
)

// AccountChecker confirms the token's subject still maps to a live account.
type AccountChecker interface {
	FindActiveByID(ctx context.Context, id string) (*models.User, error)
}

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, accounts AccountChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			role := claims.Role
			if accounts != nil {
				account, err := accounts.FindActiveByID(r.Context(), claims.UserID.String())
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account unavailable"))
						return
					}
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate account"))
					return
				}
				// The database role wins over a stale token claim.
				role = account.Role
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxRole, string(role))

			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
				ctx = logg.WithActorRole(ctx, string(role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
