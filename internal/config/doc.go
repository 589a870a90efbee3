// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for pnuchat.
//
// Supports TOML and YAML configuration files, with built-in defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - AnswerConfig: Answering service endpoint and failure handling
//   - DispatchConfig: What a submit does while a request is outstanding
//   - UIConfig: Terminal presentation settings
//   - StubConfig: Local stand-in answering service
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command line flags (applied by the cli package)
//   - Environment variables (PNUCHAT_*)
//   - ~/.pnuchat/config.toml
//   - ~/.pnuchat/config.yaml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Answer.URL, cfg.Dispatch.BusyPolicy)
package config
