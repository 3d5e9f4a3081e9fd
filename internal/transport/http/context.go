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

	"github.com/mizanhq/mizan/internal/authz"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	authzCtxKey  contextKey = "authz_context"
)

// GetPrincipal retrieves the verified principal from context.
func GetPrincipal(ctx context.Context) (authz.Principal, bool) {
	val, ok := ctx.Value(principalKey).(authz.Principal)
	return val, ok
}

// GetAuthzContext retrieves the resolved authorization context. The
// second return is false when no context middleware ran on this route.
func GetAuthzContext(ctx context.Context) (authz.Context, bool) {
	val, ok := ctx.Value(authzCtxKey).(authz.Context)
	return val, ok
}

func withPrincipal(ctx context.Context, p authz.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func withAuthzContext(ctx context.Context, ac authz.Context) context.Context {
	return context.WithValue(ctx, authzCtxKey, ac)
}
