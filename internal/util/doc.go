// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across pnuchat packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: display-width truncation (wide Hangul/CJK aware)
//   - OneLine: collapse whitespace for log fields and previews
//
// File Operations:
//   - AtomicWriteFile: replace a file in one rename, private parent dirs
//
// # Usage
//
//	status := util.TruncateWidth(line, width)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
