// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns answer text into terminal output.
//
// Markdown renders with glamour and falls back to the plain text whenever
// glamour cannot be built or fails on an input. Plain passes text through.
package render
