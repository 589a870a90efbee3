// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"
)

func TestNewTheme_ForcedModes(t *testing.T) {
	dark := NewTheme("dark")
	if !dark.IsDark {
		t.Error("NewTheme(dark) should be dark")
	}
	if got := dark.MarkdownStyle(); got != "dark" {
		t.Errorf("MarkdownStyle() = %q, want dark", got)
	}

	light := NewTheme("light")
	if light.IsDark {
		t.Error("NewTheme(light) should be light")
	}
	if got := light.MarkdownStyle(); got != "light" {
		t.Errorf("MarkdownStyle() = %q, want light", got)
	}
}

func TestThemeStylesRender(t *testing.T) {
	theme := NewTheme("dark")

	for name, out := range map[string]string{
		"header":    theme.Header.Render("PNU AI Assistant"),
		"user":      theme.UserBubble.Render("안녕"),
		"assistant": theme.AssistantBubble.Render("안녕하세요"),
		"failure":   theme.FailureBubble.Render("서버 연결 실패"),
		"status":    theme.Status.Render("ready"),
	} {
		if out == "" {
			t.Errorf("%s style rendered empty output", name)
		}
	}
}

func TestGetLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	theme := NewTheme("dark")
	for _, tc := range tests {
		theme.SetSize(tc.width, 40)
		if got := theme.GetLayoutMode(); got != tc.want {
			t.Errorf("width %d: GetLayoutMode() = %v, want %v", tc.width, got, tc.want)
		}
	}
}

func TestBubbleWidth(t *testing.T) {
	theme := NewTheme("light")

	tests := []struct {
		width int
		want  int
	}{
		{12, 10},
		{40, 36},
		{80, 64},
		{120, 80},
	}
	for _, tc := range tests {
		theme.SetSize(tc.width, 30)
		if got := theme.BubbleWidth(); got != tc.want {
			t.Errorf("width %d: BubbleWidth() = %d, want %d", tc.width, got, tc.want)
		}
	}
}
