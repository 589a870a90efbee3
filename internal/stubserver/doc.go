// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stubserver is a stand-in for the PNU AI Assistant answering
// service, for local development and end-to-end tests.
//
// It serves POST /chat with the same contract as the real backend and
// GET /healthz. The Mode picks the behavior:
//
//   - echo: answer with the query
//   - canned: answer with a fixed text (the backend's "no data" reply by default)
//   - fail: respond 500
//   - malformed: respond 200 with a body that has no answer field
//
// A Delay holds every /chat response, which makes the loading indicator
// and busy policies easy to observe.
package stubserver
