// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript holds the conversation: an append-only list of turns
// plus the phase that says whether a request is outstanding.
//
// A Store is the single source of truth for rendering. Turns are never
// edited or removed. The phase is Idle or Awaiting(requestID); Pending
// reports whether it is Awaiting.
//
// # Usage
//
//	store := transcript.NewStore()
//	store.Append(transcript.NewUserTurn("안녕"))
//	store.Await(uuid.New())
//	...
//	store.Append(transcript.NewAssistantTurn("안녕하세요"))
//	store.Settle()
//
//	for _, turn := range store.Transcript() {
//	    fmt.Println(turn.Speaker, turn.Text)
//	}
package transcript
