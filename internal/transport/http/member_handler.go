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

	"github.com/go-chi/chi/v5"
	"github.com/mizanhq/mizan/internal/membership"
	"github.com/mizanhq/mizan/internal/observability/logger"
	"github.com/mizanhq/mizan/internal/rbac"
)

// ListMembers lists all memberships in the current tenant.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	reqCtx, _ := GetAuthzContext(r.Context())

	members, err := h.memberService.ListMembers(r.Context(), reqCtx.TenantID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list members",
			logger.Error(err), logger.TenantID(reqCtx.TenantID))
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"members": members})
}

// InviteMemberRequest represents an invitation
type InviteMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// InviteMember creates an invited membership and returns the one-time
// invite token. The token appears in this response and nowhere else.
func (h *Handler) InviteMember(w http.ResponseWriter, r *http.Request) {
	reqCtx, _ := GetAuthzContext(r.Context())

	var req InviteMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "user_id is required")
		return
	}

	m, token, err := h.memberService.Invite(r.Context(), reqCtx.TenantID, req.UserID, rbac.Role(req.Role), reqCtx.UserID)
	if err != nil {
		switch {
		case errors.Is(err, membership.ErrInvalidRole):
			respondError(w, http.StatusBadRequest, codeInvalidRequest, "unknown role: "+req.Role)
		case errors.Is(err, membership.ErrMembershipExists):
			respondError(w, http.StatusConflict, codeConflict, "user already has a membership in this tenant")
		default:
			slog.ErrorContext(r.Context(), "failed to invite member",
				logger.Error(err), logger.TenantID(reqCtx.TenantID))
			respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"membership":   m,
		"invite_token": token,
	})
}

// AcceptInviteRequest carries the one-time invite token
type AcceptInviteRequest struct {
	Token string `json:"token"`
}

// AcceptInvite activates the caller's invited membership in the tenant
// named by X-Tenant-ID. The caller has no active membership yet, which
// is why this route is tenant-optional at the gate.
func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	reqCtx, _ := GetAuthzContext(r.Context())
	if reqCtx.TenantID == "" {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "X-Tenant-ID header is required")
		return
	}

	var req AcceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "invite token is required")
		return
	}

	m, err := h.memberService.AcceptInvite(r.Context(), reqCtx.UserID, reqCtx.TenantID, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, membership.ErrMembershipNotFound),
			errors.Is(err, membership.ErrInviteNotFound):
			respondError(w, http.StatusNotFound, codeNotFound, "no pending invite found")
		case errors.Is(err, membership.ErrInvalidToken):
			respondError(w, http.StatusBadRequest, codeInvalidRequest, "invalid invite token")
		case errors.Is(err, membership.ErrInvalidTransition):
			respondError(w, http.StatusConflict, codeConflict, "membership is not pending an invite")
		default:
			slog.ErrorContext(r.Context(), "failed to accept invite",
				logger.Error(err), logger.TenantID(reqCtx.TenantID))
			respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, m)
}

// ChangeMemberRoleRequest represents a role change
type ChangeMemberRoleRequest struct {
	Role string `json:"role"`
}

// ChangeMemberRole updates the role of a member in the current tenant.
func (h *Handler) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	reqCtx, _ := GetAuthzContext(r.Context())
	userID := chi.URLParam(r, "userID")

	var req ChangeMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body")
		return
	}

	m, err := h.memberService.ChangeRole(r.Context(), reqCtx.TenantID, userID, rbac.Role(req.Role), reqCtx.UserID)
	if err != nil {
		h.respondMemberError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, m)
}

// SuspendMember suspends an active membership. The row is kept; access
// revocation is a status change, not a delete.
func (h *Handler) SuspendMember(w http.ResponseWriter, r *http.Request) {
	reqCtx, _ := GetAuthzContext(r.Context())
	userID := chi.URLParam(r, "userID")

	m, err := h.memberService.Suspend(r.Context(), reqCtx.TenantID, userID, reqCtx.UserID)
	if err != nil {
		h.respondMemberError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, m)
}

// ReinstateMember reactivates a suspended membership.
func (h *Handler) ReinstateMember(w http.ResponseWriter, r *http.Request) {
	reqCtx, _ := GetAuthzContext(r.Context())
	userID := chi.URLParam(r, "userID")

	m, err := h.memberService.Reinstate(r.Context(), reqCtx.TenantID, userID, reqCtx.UserID)
	if err != nil {
		h.respondMemberError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) respondMemberError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, membership.ErrMembershipNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, "membership not found")
	case errors.Is(err, membership.ErrInvalidRole):
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "unknown role")
	case errors.Is(err, membership.ErrInvalidTransition):
		respondError(w, http.StatusConflict, codeConflict, "invalid membership status transition")
	default:
		slog.ErrorContext(r.Context(), "membership operation failed", logger.Error(err))
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
