// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import "context"

// Answerer maps a query to an answer. Implementations must be safe for
// concurrent use.
type Answerer interface {
	Answer(ctx context.Context, query string) (string, error)
}

// AnswererFunc adapts a function to Answerer.
type AnswererFunc func(ctx context.Context, query string) (string, error)

// Answer calls f.
func (f AnswererFunc) Answer(ctx context.Context, query string) (string, error) {
	return f(ctx, query)
}

// Request is the body sent to the answering service.
type Request struct {
	Query string `json:"query"`
}

// Response is the body returned on success. Answer is a pointer so a missing
// field can be told apart from an empty string.
type Response struct {
	Answer *string `json:"answer"`
}
