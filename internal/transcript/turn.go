// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced a turn.
type Speaker int

const (
	User Speaker = iota
	Assistant
)

// String returns "user" or "assistant".
func (s Speaker) String() string {
	if s == Assistant {
		return "assistant"
	}
	return "user"
}

// Turn is one message in the conversation. Turns are values; a Turn handed
// out by a Store is a copy.
type Turn struct {
	ID      uuid.UUID
	Speaker Speaker
	Text    string
	At      time.Time

	// Failure is the failure kind ("transport", "server", "decode") when this
	// assistant turn stands in for a failed request. Empty otherwise.
	Failure string
}

// NewUserTurn creates a user turn with the text exactly as typed.
func NewUserTurn(text string) Turn {
	return Turn{ID: uuid.New(), Speaker: User, Text: text, At: time.Now()}
}

// NewAssistantTurn creates an assistant turn carrying an answer.
func NewAssistantTurn(text string) Turn {
	return Turn{ID: uuid.New(), Speaker: Assistant, Text: text, At: time.Now()}
}

// NewFailureTurn creates the assistant turn shown in place of an answer.
func NewFailureTurn(text, kind string) Turn {
	t := NewAssistantTurn(text)
	t.Failure = kind
	return t
}

// IsUser reports whether the user wrote this turn.
func (t Turn) IsUser() bool { return t.Speaker == User }

// Failed reports whether this turn stands in for a failed request.
func (t Turn) Failed() bool { return t.Failure != "" }
