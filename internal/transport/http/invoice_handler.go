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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mizanhq/mizan/internal/invoice"
	"github.com/mizanhq/mizan/internal/observability/logger"
	"github.com/mizanhq/mizan/internal/quota"
)

// ListInvoices lists the current tenant's invoices.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	reqCtx, _ := GetAuthzContext(r.Context())

	limit, offset := paginationParams(r, 50)
	invoices, err := h.invoiceService.List(r.Context(), reqCtx.TenantID, limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list invoices",
			logger.Error(err), logger.TenantID(reqCtx.TenantID))
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

// CreateInvoiceRequest represents invoice creation data
type CreateInvoiceRequest struct {
	Number       string    `json:"number"`
	Counterparty string    `json:"counterparty,omitempty"`
	AmountKurus  int64     `json:"amount_kurus"`
	Currency     string    `json:"currency,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
}

// CreateInvoice records a new invoice. The quota middleware has already
// let the request through; usage is recorded only after the insert
// succeeds.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	reqCtx, _ := GetAuthzContext(r.Context())

	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body")
		return
	}
	if req.IssuedAt.IsZero() {
		req.IssuedAt = time.Now()
	}

	inv, err := h.invoiceService.Create(r.Context(), reqCtx.TenantID, reqCtx.UserID,
		req.Number, req.Counterparty, req.Currency, req.AmountKurus, req.IssuedAt)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	if err := h.usage.Record(r.Context(), reqCtx.TenantID, quota.MetricInvoices); err != nil {
		// Usage accounting is best effort, like the quota check itself.
		slog.WarnContext(r.Context(), "failed to record invoice usage",
			logger.Error(err), logger.TenantID(reqCtx.TenantID))
	}

	respondJSON(w, http.StatusCreated, inv)
}

// GetInvoice returns one invoice scoped to the current tenant.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	reqCtx, _ := GetAuthzContext(r.Context())
	invoiceID := chi.URLParam(r, "invoiceID")

	inv, err := h.invoiceService.Get(r.Context(), reqCtx.TenantID, invoiceID)
	if err != nil {
		if errors.Is(err, invoice.ErrInvoiceNotFound) {
			respondError(w, http.StatusNotFound, codeNotFound, "invoice not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get invoice",
			logger.Error(err), logger.TenantID(reqCtx.TenantID))
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, inv)
}

// DeleteInvoice removes an invoice scoped to the current tenant.
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	reqCtx, _ := GetAuthzContext(r.Context())
	invoiceID := chi.URLParam(r, "invoiceID")

	if err := h.invoiceService.Delete(r.Context(), reqCtx.TenantID, invoiceID); err != nil {
		if errors.Is(err, invoice.ErrInvoiceNotFound) {
			respondError(w, http.StatusNotFound, codeNotFound, "invoice not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to delete invoice",
			logger.Error(err), logger.TenantID(reqCtx.TenantID))
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "invoice deleted"})
}
