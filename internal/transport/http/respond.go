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
	"net/http"

	"github.com/mizanhq/mizan/internal/authz"
)

// Stable machine codes carried in error bodies. Clients branch on the
// code, never on the message.
const (
	codeInvalidRequest = "invalid_request"
	codeNotFound       = "not_found"
	codeConflict       = "conflict"
	codeRateLimited    = "rate_limited"
	codeInternal       = "internal"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}

// respondAuthzError maps a gate or resolver failure to its wire shape.
// AuthenticationError is 401, AuthorizationError is 403; anything else
// is a 500 that deliberately carries no detail.
func respondAuthzError(w http.ResponseWriter, err error) {
	switch {
	case authz.ErrUnauthenticated(err):
		respondError(w, http.StatusUnauthorized, authz.CodeUnauthenticated, err.Error())
	case authz.ErrForbidden(err):
		respondError(w, http.StatusForbidden, authz.CodeForbidden, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func getIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
