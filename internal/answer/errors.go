// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// Kind categorizes answering failures.
type Kind int

const (
	// KindNone is returned by KindOf for a nil error.
	KindNone Kind = iota
	// KindTransport covers connection, DNS, timeout and cancellation failures.
	KindTransport
	// KindServer is a non-2xx response status.
	KindServer
	// KindDecode is a 2xx response whose body is not {"answer": "..."}.
	KindDecode
)

// String returns the lower-case kind name used in logs and on failure turns.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "none"
	}
}

// Error represents a failed answering call.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status code for KindServer, 0 otherwise.
	Status int
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf reports the failure kind of err. Errors that did not come from this
// package are treated as transport failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool { return err != nil && KindOf(err) == KindTransport }

// IsServer reports whether err is a non-success status.
func IsServer(err error) bool { return KindOf(err) == KindServer }

// IsDecode reports whether err is a malformed response.
func IsDecode(err error) bool { return KindOf(err) == KindDecode }
