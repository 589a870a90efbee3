// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the chat view.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	FailureBubble   lipgloss.Style
	Timestamp       lipgloss.Style
	Empty           lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	Placeholder    lipgloss.Style
	Spinner        lipgloss.Style
	Loading        lipgloss.Style
	Status         lipgloss.Style
	StatusValue    lipgloss.Style
	StatusNotice   lipgloss.Style
	Help           lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto"; auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	var isDark bool
	switch mode {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// MarkdownStyle returns the glamour style name matching the background.
func (t *Theme) MarkdownStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(PNUGreen).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(PNUGreen)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(PNUGreen).
		Italic(true)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(PNUGreenDeep).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(PNUGreen).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1).
		MarginLeft(2)

	t.FailureBubble = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1).
		MarginLeft(2)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Empty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)

	// Input and status
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(PNUGreen).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(PNUGreen).
		Bold(true)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(PNUBlue)

	t.Loading = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		MarginLeft(2)

	t.Status = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.StatusValue = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.StatusNotice = lipgloss.NewStyle().
		Foreground(Amber)

	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// BubbleWidth is the widest a message bubble may be.
func (t *Theme) BubbleWidth() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		return max(t.Width-4, 10)
	case LayoutMedium:
		return t.Width * 4 / 5
	default:
		return t.Width * 2 / 3
	}
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)
