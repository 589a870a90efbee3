// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session is the surface front ends talk to.
//
// A Session owns one transcript, one dispatcher and the draft string.
// Front ends read Transcript and Pending, edit the draft through
// SetDraft/Draft, and call Submit. An accepted Submit clears the draft;
// a rejected or blank one leaves it alone.
//
// # Key Types
//
//   - Session: transcript, dispatcher and draft for one conversation
//   - Config: busy policy, failure text, timeout and logger
//
// # Usage
//
//	s := session.New(answer.NewClient(), session.Config{})
//	s.SetDraft("도서관 운영시간 알려줘")
//	call, err := s.Submit(s.Draft())
//	if call != nil {
//	    s.Resolve(call.Run(ctx))
//	}
package session
