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

package authz

import "errors"

// Stable machine codes clients branch on. The boundary maps
// CodeUnauthenticated to HTTP 401 and CodeForbidden to HTTP 403; neither
// outcome is ever retried, since re-evaluating the same decision without
// new input cannot succeed.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeForbidden       = "forbidden"
)

// AuthenticationError means no verified principal was present. Terminal
// for the request.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "not authenticated"
	}
	return e.Message
}

// AuthorizationError means the principal is known but tenant, role or
// permission requirements are not met. The message may enumerate the
// acceptable roles or capabilities (the caller already knows their own
// role) but must not confirm the existence of other tenants' data.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	if e.Message == "" {
		return "access denied"
	}
	return e.Message
}

// ErrUnauthenticated reports whether err is an authentication failure.
func ErrUnauthenticated(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// ErrForbidden reports whether err is an authorization failure.
func ErrForbidden(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}
