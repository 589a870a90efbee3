// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// Renderer maps text to display output. It never fails.
type Renderer interface {
	Render(text string) string
}

// Plain returns text unchanged.
type Plain struct{}

// Render implements Renderer.
func (Plain) Render(text string) string { return text }

// Style names accepted by NewMarkdown. Anything else means auto.
const (
	StyleAuto  = "auto"
	StyleDark  = styles.DarkStyle
	StyleLight = styles.LightStyle
	StyleNoTTY = styles.NoTTYStyle
)

// Markdown renders with glamour at a fixed word-wrap width.
type Markdown struct {
	style string
	width int

	mu   sync.Mutex
	term *glamour.TermRenderer
}

// NewMarkdown builds a markdown renderer. If glamour cannot be built the
// renderer behaves like Plain.
func NewMarkdown(style string, width int) *Markdown {
	if width <= 0 {
		width = 80
	}
	m := &Markdown{style: style, width: width}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch style {
	case StyleDark, StyleLight, StyleNoTTY:
		opts = append(opts, glamour.WithStandardStyle(style))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}
	if term, err := glamour.NewTermRenderer(opts...); err == nil {
		m.term = term
	}
	return m
}

// Width returns the word-wrap width.
func (m *Markdown) Width() int { return m.width }

// WithWidth returns a renderer for a new width, or m if unchanged.
func (m *Markdown) WithWidth(width int) *Markdown {
	if width == m.width {
		return m
	}
	return NewMarkdown(m.style, width)
}

// Render implements Renderer. Leading and trailing blank lines that glamour
// adds around blocks are trimmed.
func (m *Markdown) Render(text string) string {
	if m.term == nil {
		return text
	}
	// TermRenderer reuses internal buffers.
	m.mu.Lock()
	out, err := m.term.Render(text)
	m.mu.Unlock()
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
