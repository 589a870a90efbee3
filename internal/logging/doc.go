// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog logger shared by pnuchat components.
//
// The TUI owns the terminal, so log output goes to a file
// (~/.pnuchat/pnuchat.log unless log.file says otherwise). Components take a
// zerolog.Logger value; the zero value writes nowhere.
package logging
