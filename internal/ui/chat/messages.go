// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/pnuchat/internal/dispatch"
)

// answerMsg carries a finished call back into Update.
type answerMsg struct {
	outcome dispatch.Outcome
}

// copyMsg reports the result of writing to the clipboard.
type copyMsg struct {
	err error
}

// noticeExpiredMsg clears the status notice if it is still notice seq.
type noticeExpiredMsg struct {
	seq int
}

// ReloadMsg applies edited display settings to a running view. Empty
// fields keep their current value. A non-nil Err is shown as a notice and
// nothing changes.
type ReloadMsg struct {
	Title       string
	Placeholder string
	LoadingText string
	Err         error
}

// noticeTTL is how long a status notice stays up.
const noticeTTL = 3 * time.Second

// runCall runs call off the update goroutine.
func runCall(ctx context.Context, call *dispatch.Call) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{outcome: call.Run(ctx)}
	}
}

// copyCmd writes text with write off the update goroutine.
func copyCmd(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return copyMsg{err: write(text)}
	}
}

func expireNotice(seq int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
