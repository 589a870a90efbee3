// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the pnuchat command line.
//
// Commands:
//
//	pnuchat                      full-screen chat (default)
//	pnuchat chat                 line-mode chat with history
//	pnuchat ask <question...>    ask once and print the answer
//	pnuchat stub                 run the stand-in answering service
//	pnuchat config init|show|path
//	pnuchat version
//
// Every command shares --config, --url and --log-level. Configuration is
// loaded once per invocation; logs go to the configured log file except for
// `stub`, which logs to stderr.
package cli
