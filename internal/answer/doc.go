// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package answer provides the HTTP client for the PNU AI Assistant answering
// service.
//
// The contract is a single call: POST a JSON body {"query": "..."} and
// receive {"answer": "..."}. Every failure is returned as an *Error whose
// Kind is KindTransport, KindServer or KindDecode.
//
// # Usage
//
//	client := answer.NewClientWithConfig(&answer.ClientConfig{
//	    URL: "http://localhost:8000/chat",
//	})
//	text, err := client.Answer(ctx, "수강신청 기간이 언제야?")
//	if answer.IsServer(err) {
//	    ...
//	}
package answer
