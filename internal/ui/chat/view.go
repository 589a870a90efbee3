// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/pnuchat/internal/transcript"
	"github.com/jeranaias/pnuchat/internal/util"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderChat stacks header, transcript, input and status line.
func (m Model) renderChat() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	width := m.contentWidth()
	title := m.theme.HeaderTitle.Render(m.opts.Title)
	if m.opts.Subtitle != "" {
		sub := util.TruncateWidth(m.opts.Subtitle, max(width-lipgloss.Width(title)-7, 0))
		if sub != "" {
			title += m.theme.HeaderSubtitle.Render("  " + sub)
		}
	}
	return m.theme.Header.Width(width).Render(title)
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(max(m.contentWidth()-2, 1)).Render(m.input.View())
}

// renderStatusBar shows the phase and counters on the left and either the
// current notice or the key help on the right.
func (m Model) renderStatusBar() string {
	width := m.contentWidth()

	phase := "● 대기"
	if m.session.Pending() {
		phase = m.spinner.View() + " " + m.opts.LoadingText
	}

	stats := m.session.Stats()
	left := fmt.Sprintf("%s  %s %s  %s %s  %s %s",
		phase,
		"대화", m.theme.StatusValue.Render(fmt.Sprint(stats.Exchanges)),
		"실패", m.theme.StatusValue.Render(fmt.Sprint(stats.Failures)),
		"응답", m.theme.StatusValue.Render(lastLatency(stats.LastLatency)),
	)
	if stats.Queued > 0 {
		left += fmt.Sprintf("  대기열 %d", stats.Queued)
	}

	var right string
	if m.notice != "" {
		right = m.theme.StatusNotice.Render(util.TruncateWidth(m.notice, max(width/2, 10)))
	} else {
		right = m.help.View(m.keys)
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return m.theme.Status.Render(left)
	}
	return m.theme.Status.Render(left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders every turn and, while pending, the loading line.
func (m Model) renderTranscript() string {
	turns := m.session.Transcript()
	if len(turns) == 0 && !m.session.Pending() {
		return m.theme.Empty.Render(m.opts.Title + "에게 무엇이든 물어보세요.")
	}

	blocks := make([]string, 0, len(turns)+1)
	for _, turn := range turns {
		blocks = append(blocks, m.renderTurn(turn))
	}
	if m.session.Pending() {
		blocks = append(blocks, m.theme.Loading.Render(m.spinner.View()+" "+m.opts.LoadingText))
	}
	return strings.Join(blocks, "\n")
}

func (m Model) renderTurn(turn transcript.Turn) string {
	stamp := m.theme.Timestamp.Render(turn.At.Format("15:04"))
	bubbleWidth := m.theme.BubbleWidth()

	switch {
	case turn.IsUser():
		// bubble width includes padding but not the border
		textWidth := min(lipgloss.Width(turn.Text)+2, max(bubbleWidth-2, 4))
		bubble := m.theme.UserBubble.Width(textWidth).Render(turn.Text)
		block := lipgloss.JoinVertical(lipgloss.Right, bubble, stamp)
		return lipgloss.PlaceHorizontal(m.contentWidth(), lipgloss.Right, block)

	case turn.Failed():
		bubble := m.theme.FailureBubble.Render(turn.Text)
		return lipgloss.JoinVertical(lipgloss.Left, bubble, "  "+stamp)

	default:
		body := m.markdown.Render(turn.Text)
		bubble := m.theme.AssistantBubble.MaxWidth(bubbleWidth + 2).Render(body)
		return lipgloss.JoinVertical(lipgloss.Left, bubble, "  "+stamp)
	}
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}
