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

import "context"

// Metered metrics. Metrics are monthly counters scoped per tenant plan.
const (
	MetricInvoices = "invoices"
	MetricReports  = "reports"
	MetricAnalyses = "analyses"
)

// Result is the outcome of a quota check.
type Result struct {
	Allowed bool `json:"allowed"`
	Limit   int  `json:"limit"`
	Used    int  `json:"used"`
}

// Checker is the billing collaborator: is tenantID within its plan
// limit for metric? Implementations may fail; the Gate decides what a
// failure means, not the checker.
type Checker interface {
	Check(ctx context.Context, tenantID, metric string) (Result, error)
}
