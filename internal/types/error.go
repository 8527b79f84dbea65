// error.go
//
// Restaurant menu management data and authorization service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of sharmers-menus.
// sharmers-menus is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// sharmers-menus is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with sharmers-menus.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package types

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies every failure surfaced by the menu services.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotAuthenticated
	KindNotAuthorized
	KindNotFound
	KindValidationFailed
	KindBackendUnavailable
	KindOrphanedWrite
	KindConflict
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown",
	KindNotAuthenticated:   "not_authenticated",
	KindNotAuthorized:      "not_authorized",
	KindNotFound:           "not_found",
	KindValidationFailed:   "validation_failed",
	KindBackendUnavailable: "backend_unavailable",
	KindOrphanedWrite:      "orphaned_write",
	KindConflict:           "conflict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// HTTPStatus maps a kind to its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotAuthenticated:
		return http.StatusUnauthorized
	case KindNotAuthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindBackendUnavailable:
		return http.StatusServiceUnavailable
	case KindOrphanedWrite, KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error. Fields carries per-field validation messages,
// RestaurantID is set only for orphaned writes.
type Error struct {
	Kind         Kind
	Op           string
	Message      string
	Fields       map[string]string
	RestaurantID uint64
	Err          error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrNotAuthenticated   = &Error{Kind: KindNotAuthenticated}
	ErrNotAuthorized      = &Error{Kind: KindNotAuthorized}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrValidationFailed   = &Error{Kind: KindValidationFailed}
	ErrBackendUnavailable = &Error{Kind: KindBackendUnavailable}
	ErrOrphanedWrite      = &Error{Kind: KindOrphanedWrite}
	ErrConflict           = &Error{Kind: KindConflict}
)

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, e.Fields[k]))
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in the chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// NewError builds a domain error.
func NewError(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// NotFound builds a NotFound error for an entity and id.
func NotFound(op, entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf("%s %v not found", entity, id)}
}

// Validation builds a ValidationFailed error with per-field messages.
func Validation(op string, fields map[string]string) *Error {
	return &Error{Kind: KindValidationFailed, Op: op, Message: "invalid input", Fields: fields}
}

// Backend wraps an infrastructure failure. gorm.ErrRecordNotFound is
// reported as NotFound, and domain errors pass through unchanged.
func Backend(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Op: op, Message: "record not found", Err: err}
	}
	return &Error{Kind: KindBackendUnavailable, Op: op, Message: "backend unavailable", Err: err}
}

// Orphaned reports a restaurant that was created but could not be linked to its owner.
func Orphaned(op string, restaurantID uint64, err error) *Error {
	return &Error{
		Kind:         KindOrphanedWrite,
		Op:           op,
		Message:      fmt.Sprintf("restaurant %d was created but is not linked to its owner", restaurantID),
		RestaurantID: restaurantID,
		Err:          err,
	}
}
