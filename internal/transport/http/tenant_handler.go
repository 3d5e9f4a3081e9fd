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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mizanhq/mizan/internal/authz"
	"github.com/mizanhq/mizan/internal/observability/logger"
	"github.com/mizanhq/mizan/internal/tenant"
)

// CreateTenantRequest represents tenant creation data
type CreateTenantRequest struct {
	Name string `json:"name"`
	Plan string `json:"plan,omitempty"`
}

// CreateTenant creates a tenant with the caller as its founding owner.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	reqCtx, _ := GetAuthzContext(r.Context())

	var req CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body")
		return
	}

	t, err := h.tenantService.CreateTenant(r.Context(), req.Name, req.Plan, reqCtx.UserID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantAlreadyExists) {
			respondError(w, http.StatusConflict, codeConflict, "tenant name already taken")
			return
		}
		slog.ErrorContext(r.Context(), "failed to create tenant",
			logger.Error(err), logger.UserID(reqCtx.UserID))
		respondError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, t)
}

// GetCurrentTenant returns the tenant the request is scoped to.
func (h *Handler) GetCurrentTenant(w http.ResponseWriter, r *http.Request) {
	reqCtx, _ := GetAuthzContext(r.Context())

	t, err := h.tenantService.GetTenant(r.Context(), reqCtx.TenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, codeNotFound, "tenant not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get tenant",
			logger.Error(err), logger.TenantID(reqCtx.TenantID))
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// ListTenants lists all tenants. Platform operators only; there is no
// tenant role that spans tenants.
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	principal, _ := GetPrincipal(r.Context())
	if !principal.PlatformOperator {
		respondError(w, http.StatusForbidden, authz.CodeForbidden, "platform operator required")
		return
	}

	limit, offset := paginationParams(r, 50)
	tenants, err := h.tenantService.ListTenants(r.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list tenants", logger.Error(err))
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"tenants": tenants})
}

func paginationParams(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
