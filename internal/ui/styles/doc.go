// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for the pnuchat TUI.
//
// Colors are lipgloss.AdaptiveColor values built around the PNU green
// accent, so they follow the terminal background. A Theme bundles the
// styles the chat view uses and records the detected color profile.
//
// # Usage
//
//	theme := styles.NewTheme("auto")
//	theme.SetSize(width, height)
//	header := theme.Header.Width(width).Render(title)
package styles
