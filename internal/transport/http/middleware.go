// Copyright 2026 The Mizan Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mizanhq/mizan/internal/audit"
	"github.com/mizanhq/mizan/internal/authz"
	"github.com/mizanhq/mizan/internal/observability/logger"
)

// Tenant Context Principles:
// 1. The tenant selector (X-Tenant-ID) is untrusted client input; it
//    only ever narrows access, because authorization comes from the
//    membership row the resolver loads for that exact tenant.
// 2. No tenant represents the platform. Platform operators are marked
//    by a token claim, never by a magic tenant ID.
// 3. Handlers read the resolved authz.Context; they never consult raw
//    headers or re-derive authorization.

const (
	tenantHeader      = "X-Tenant-ID"
	impersonateHeader = "X-Impersonate-User"
)

// accessClaims is the subset of the upstream identity service's token
// we care about.
type accessClaims struct {
	PlatformOperator bool `json:"platform_operator,omitempty"`
	jwt.RegisteredClaims
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.InfoContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// AuthMiddleware verifies the Bearer token issued by the upstream
// identity service and stores the resulting principal. It does NOT
// decide access; an authenticated principal with no membership is a
// perfectly valid state here.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			respondError(w, http.StatusUnauthorized, authz.CodeUnauthenticated, "missing bearer token")
			return
		}

		var claims accessClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(h.tokenSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(h.tokenIssuer))
		if err != nil || claims.Subject == "" {
			respondError(w, http.StatusUnauthorized, authz.CodeUnauthenticated, "invalid or expired token")
			return
		}

		principal := authz.Principal{
			UserID:            claims.Subject,
			PlatformOperator:  claims.PlatformOperator,
			ImpersonateUserID: r.Header.Get(impersonateHeader),
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

// ContextMiddleware resolves the per-request authorization context from
// the principal and the X-Tenant-ID header and attaches it. Runs after
// AuthMiddleware. A failing membership lookup ends the request here;
// absence of membership does not.
func (h *Handler) ContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := GetPrincipal(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, authz.CodeUnauthenticated, "not authenticated")
			return
		}

		tenantID := r.Header.Get(tenantHeader)
		reqCtx, err := h.resolver.Resolve(r.Context(), principal, tenantID)
		if err != nil {
			respondAuthzError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withAuthzContext(r.Context(), reqCtx)))
	})
}

// Require gates a route with the given chain. The chain's order is
// fixed by authz.NewChain; the first failure wins and is mapped to
// 401 or 403. Denials are audited and counted.
func (h *Handler) Require(opts ...authz.ChainOption) func(next http.Handler) http.Handler {
	chain := authz.NewChain(opts...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqCtx, ok := GetAuthzContext(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, authz.CodeUnauthenticated, "not authenticated")
				return
			}

			if err := h.gate.Evaluate(reqCtx, chain); err != nil {
				outcome := authz.CodeForbidden
				if authz.ErrUnauthenticated(err) {
					outcome = authz.CodeUnauthenticated
				}
				h.authzMetrics.RecordDecision(r.Context(), outcome)
				h.auditLogger.Log(r.Context(), audit.Event{
					Type:      audit.TypeAccessDenied,
					TenantID:  reqCtx.TenantID,
					ActorID:   reqCtx.UserID,
					Resource:  r.Method + " " + r.URL.Path,
					IPAddress: getIPAddress(r),
					Metadata: map[string]any{
						audit.AttrReason:         err.Error(),
						audit.AttrRole:           reqCtx.Role().String(),
						audit.AttrImpersonatorID: reqCtx.ImpersonatorID,
					},
				})
				respondAuthzError(w, err)
				return
			}

			h.authzMetrics.RecordDecision(r.Context(), "allowed")
			next.ServeHTTP(w, r)
		})
	}
}

// QuotaMiddleware blocks a metered route when the tenant is over its
// plan limit for metric. The quota gate fails open, so only a definite
// over-limit answer produces a 429.
func (h *Handler) QuotaMiddleware(metric string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqCtx, ok := GetAuthzContext(r.Context())
			if !ok || reqCtx.TenantID == "" {
				next.ServeHTTP(w, r)
				return
			}

			result := h.quotaGate.Allow(r.Context(), reqCtx.TenantID, metric)
			if !result.Allowed {
				respondError(w, http.StatusTooManyRequests, codeRateLimited,
					fmt.Sprintf("monthly %s limit reached (%d of %d used)", metric, result.Used, result.Limit))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return auth[len(prefix):]
}
