// Package middleware provides HTTP middlewares for authentication, logging and metrics.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/GophReport/internal/auth"
	"github.com/atinyakov/GophReport/internal/token"
)

const bearerPrefix = "Bearer "

// Authentication outcomes recorded in logs and metrics.
const (
	OutcomeAnonymous        = "anonymous"
	OutcomeAuthenticated    = "authenticated"
	OutcomePreauthenticated = "preauthenticated"
	OutcomeMalformed        = "malformed"
	OutcomeSignature        = "signature"
	OutcomeExpired          = "expired"
	OutcomeNotFound         = "not_found"
	OutcomeStoreError       = "store_error"
	OutcomeDisabled         = "disabled"
)

// TokenVerifier checks a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (token.Assertion, error)
}

// PrincipalLoader resolves the principal named by a token subject.
type PrincipalLoader interface {
	Load(ctx context.Context, subject string) (auth.Principal, error)
}

// Authenticator turns a bearer token into a trust context on the request.
type Authenticator struct {
	tokens     TokenVerifier
	principals PrincipalLoader
	log        *zap.Logger
	metrics    *Metrics
}

// NewAuthenticator constructs an Authenticator. log and metrics may be nil.
func NewAuthenticator(tokens TokenVerifier, principals PrincipalLoader, log *zap.Logger, metrics *Metrics) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{
		tokens:     tokens,
		principals: principals,
		log:        log,
		metrics:    metrics,
	}
}

// Middleware authenticates each request before it reaches next.
//
// Requests without a "Bearer " Authorization header pass through anonymously.
// A present token that fails verification, names an unknown principal or a
// disabled account is answered with 401 and next is not called. On success
// the principal is installed in the request context, unless one is already
// installed, in which case it is left untouched.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			a.metrics.AuthOutcome(OutcomeAnonymous)
			next.ServeHTTP(w, r)
			return
		}

		assertion, err := a.tokens.Verify(raw)
		if err != nil {
			outcome, reason := verifyFailure(err)
			a.log.Info("bearer token rejected", zap.String("outcome", outcome), zap.Error(err))
			a.reject(w, outcome, reason)
			return
		}

		if auth.HasPrincipal(r.Context()) {
			a.metrics.AuthOutcome(OutcomePreauthenticated)
			next.ServeHTTP(w, r)
			return
		}

		principal, err := a.principals.Load(r.Context(), assertion.Subject)
		switch {
		case errors.Is(err, auth.ErrPrincipalNotFound):
			a.log.Info("token subject has no account", zap.String("subject", assertion.Subject))
			a.reject(w, OutcomeNotFound, "unable to resolve principal")
			return
		case err != nil:
			// Answered like a missing principal; the log keeps them apart.
			a.log.Error("principal lookup failed", zap.String("subject", assertion.Subject), zap.Error(err))
			a.reject(w, OutcomeStoreError, "unable to resolve principal")
			return
		case !principal.Enabled():
			a.log.Info("disabled account presented a token", zap.String("subject", assertion.Subject))
			a.reject(w, OutcomeDisabled, "account disabled")
			return
		}

		a.metrics.AuthOutcome(OutcomeAuthenticated)
		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, outcome, reason string) {
	a.metrics.AuthOutcome(outcome)
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	http.Error(w, reason, http.StatusUnauthorized)
}

// RequireAuthenticated answers 401 for requests without a trust context.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.HasPrincipal(r.Context()) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 401 without a trust context and 403 for non-admins.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, _ := auth.PrincipalFromContext(r.Context())
		if !principal.IsAdmin() {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// bearerToken extracts the token from an Authorization header value. The
// scheme prefix is matched case-sensitively.
func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(bearerPrefix):]), true
}

func verifyFailure(err error) (outcome, reason string) {
	switch {
	case errors.Is(err, token.ErrExpired):
		return OutcomeExpired, "token expired"
	case errors.Is(err, token.ErrSignature):
		return OutcomeSignature, "invalid token signature"
	default:
		return OutcomeMalformed, "malformed token"
	}
}
