// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// PNUGreen - Brand accent, header, user bubbles
var PNUGreen = lipgloss.AdaptiveColor{Light: "#00573D", Dark: "#2FA57A"}

// PNUGreenDeep - Darker green for bubble backgrounds
var PNUGreenDeep = lipgloss.AdaptiveColor{Light: "#E3F1EB", Dark: "#0B3B2A"}

// PNUBlue - Secondary accent, spinner and links
var PNUBlue = lipgloss.AdaptiveColor{Light: "#005BAC", Dark: "#5FA8E8"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Failure turns and errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Busy notices and warnings
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

// Overlay - Borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#D4D4D4", Dark: "#45475A"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextMuted - Hints, timestamps, status labels
var TextMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#7F849C"}

// TextInverse - Text on the accent color
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#11111B"}
