// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen chat view.
//
// The Model is a bubbletea model over a session.Session. The text input is
// the draft; Enter submits it. The answering call runs in a tea.Cmd and its
// outcome comes back to Update as an answerMsg, where the session resolves
// it. Everything on screen is rendered from the session's transcript.
//
// # Layout
//
//	header     title and endpoint
//	viewport   transcript, loading indicator while pending
//	input      the draft
//	status     phase, counters, transient notices, help
package chat
