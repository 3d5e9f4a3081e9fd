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

package quota

import (
	"context"
	"log/slog"

	"github.com/mizanhq/mizan/internal/audit"
	"github.com/mizanhq/mizan/internal/observability/logger"
)

// FailOpenCounter counts quota checks that degraded to fail-open.
// *metrics.AuthzMetrics satisfies it.
type FailOpenCounter interface {
	RecordQuotaFailOpen(ctx context.Context, metric string)
}

// Gate is the best-effort plan-limit check applied before metered
// actions. Unlike the authorization gate it FAILS OPEN: a broken or
// unreachable billing collaborator must not take core functionality
// down with it. Only a definitive "over limit" answer blocks.
type Gate struct {
	checker     Checker
	auditLogger audit.Logger
	failOpens   FailOpenCounter
}

// NewGate creates a quota gate over the given checker. failOpens may
// be nil when metrics are disabled.
func NewGate(checker Checker, auditLogger audit.Logger, failOpens FailOpenCounter) *Gate {
	return &Gate{checker: checker, auditLogger: auditLogger, failOpens: failOpens}
}

// Allow returns the quota decision for (tenantID, metric). Checker
// errors and panics degrade to allowed, logged as a warning and
// audited; they are never surfaced to the caller.
func (g *Gate) Allow(ctx context.Context, tenantID, metric string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			g.failOpen(ctx, tenantID, metric, "panic in quota checker")
			result = Result{Allowed: true}
		}
	}()

	result, err := g.checker.Check(ctx, tenantID, metric)
	if err != nil {
		g.failOpen(ctx, tenantID, metric, err.Error())
		return Result{Allowed: true}
	}
	return result
}

func (g *Gate) failOpen(ctx context.Context, tenantID, metric, reason string) {
	slog.WarnContext(ctx, "quota check failed, allowing request",
		logger.TenantID(tenantID),
		logger.String("metric", metric),
		logger.String("reason", reason),
	)
	g.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeQuotaCheckFailed,
		TenantID: tenantID,
		Resource: metric,
		Metadata: map[string]any{audit.AttrReason: reason, audit.AttrMetric: metric},
	})
	if g.failOpens != nil {
		g.failOpens.RecordQuotaFailOpen(ctx, metric)
	}
}
