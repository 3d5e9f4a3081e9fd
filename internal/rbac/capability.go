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

package rbac

// Capability is an atomic named permission of the form resource:action.
// Capabilities carry no hierarchy between them; any relationship between
// capability sets is encoded explicitly in the catalog data.
type Capability string

const (
	CapInvoicesRead   Capability = "invoices:read"
	CapInvoicesCreate Capability = "invoices:create"
	CapInvoicesUpdate Capability = "invoices:update"
	CapInvoicesDelete Capability = "invoices:delete"

	CapLedgerRead  Capability = "ledger:read"
	CapLedgerWrite Capability = "ledger:write"

	CapDocumentsRead   Capability = "documents:read"
	CapDocumentsUpload Capability = "documents:upload"
	CapDocumentsDelete Capability = "documents:delete"

	CapReportsRead     Capability = "reports:read"
	CapReportsGenerate Capability = "reports:generate"

	CapRiskRead Capability = "risk:read"

	CapMembersRead   Capability = "members:read"
	CapMembersInvite Capability = "members:invite"
	CapMembersManage Capability = "members:manage"

	CapSettingsManage  Capability = "settings:manage"
	CapSettingsBilling Capability = "settings:billing"
)

// AllCapabilities lists every defined capability. NewCatalog uses it to
// reject grants of capabilities that were never declared here.
var AllCapabilities = []Capability{
	CapInvoicesRead, CapInvoicesCreate, CapInvoicesUpdate, CapInvoicesDelete,
	CapLedgerRead, CapLedgerWrite,
	CapDocumentsRead, CapDocumentsUpload, CapDocumentsDelete,
	CapReportsRead, CapReportsGenerate,
	CapRiskRead,
	CapMembersRead, CapMembersInvite, CapMembersManage,
	CapSettingsManage, CapSettingsBilling,
}

func (c Capability) String() string {
	return string(c)
}
