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
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mizanhq/mizan/internal/audit"
	"github.com/mizanhq/mizan/internal/authz"
	"github.com/mizanhq/mizan/internal/invoice"
	"github.com/mizanhq/mizan/internal/membership"
	"github.com/mizanhq/mizan/internal/observability/metrics"
	"github.com/mizanhq/mizan/internal/quota"
	"github.com/mizanhq/mizan/internal/rbac"
	"github.com/mizanhq/mizan/internal/tenant"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// UsageRecorder bumps the monthly counter for a metered metric after
// the metered action succeeded.
type UsageRecorder interface {
	Record(ctx context.Context, tenantID, metric string) error
}

// Handler holds HTTP handlers and dependencies
type Handler struct {
	tenantService  *tenant.Service
	memberService  *membership.Service
	invoiceService *invoice.Service
	resolver       *authz.Resolver
	gate           *authz.Gate
	quotaGate      *quota.Gate
	usage          UsageRecorder
	auditLogger    audit.Logger
	authzMetrics   *metrics.AuthzMetrics

	tokenSecret string
	tokenIssuer string
}

// HandlerConfig holds the token verification settings the handler needs.
type HandlerConfig struct {
	TokenSecret string
	TokenIssuer string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	tenantService *tenant.Service,
	memberService *membership.Service,
	invoiceService *invoice.Service,
	resolver *authz.Resolver,
	gate *authz.Gate,
	quotaGate *quota.Gate,
	usage UsageRecorder,
	auditLogger audit.Logger,
	authzMetrics *metrics.AuthzMetrics,
	cfg HandlerConfig,
) *Handler {
	return &Handler{
		tenantService:  tenantService,
		memberService:  memberService,
		invoiceService: invoiceService,
		resolver:       resolver,
		gate:           gate,
		quotaGate:      quotaGate,
		usage:          usage,
		auditLogger:    auditLogger,
		authzMetrics:   authzMetrics,
		tokenSecret:    cfg.TokenSecret,
		tokenIssuer:    cfg.TokenIssuer,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// API routes. Every route below is authenticated; what varies per
	// route is the gate chain.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Use(h.ContextMiddleware)

		r.Route("/tenants", func(r chi.Router) {
			// Creating the first tenant is the one operation a user
			// with no membership anywhere must be able to perform.
			r.With(h.Require(authz.TenantOptional())).Post("/", h.CreateTenant)
			r.With(h.Require(authz.TenantOptional())).Get("/", h.ListTenants)
			r.With(h.Require()).Get("/current", h.GetCurrentTenant)
		})

		r.Route("/members", func(r chi.Router) {
			r.With(h.Require(authz.WithAllPermissions(rbac.CapMembersRead))).
				Get("/", h.ListMembers)
			r.With(h.Require(authz.WithAllPermissions(rbac.CapMembersInvite))).
				Post("/", h.InviteMember)
			// Accepting an invite happens before the membership is
			// active, so there is no membership to require yet.
			r.With(h.Require(authz.TenantOptional())).
				Post("/accept", h.AcceptInvite)
			r.With(h.Require(authz.WithAllPermissions(rbac.CapMembersManage))).
				Put("/{userID}/role", h.ChangeMemberRole)
			r.With(h.Require(authz.WithAllPermissions(rbac.CapMembersManage))).
				Post("/{userID}/suspend", h.SuspendMember)
			r.With(h.Require(authz.WithAllPermissions(rbac.CapMembersManage))).
				Post("/{userID}/reinstate", h.ReinstateMember)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.With(h.Require(authz.WithAllPermissions(rbac.CapInvoicesRead))).
				Get("/", h.ListInvoices)
			r.With(
				h.Require(authz.WithAllPermissions(rbac.CapInvoicesCreate)),
				h.QuotaMiddleware(quota.MetricInvoices),
			).Post("/", h.CreateInvoice)
			r.With(h.Require(authz.WithAllPermissions(rbac.CapInvoicesRead))).
				Get("/{invoiceID}", h.GetInvoice)
			r.With(h.Require(authz.WithAllPermissions(rbac.CapInvoicesDelete))).
				Delete("/{invoiceID}", h.DeleteInvoice)
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "mizan",
	})
}
