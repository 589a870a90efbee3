// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch turns submitted input into transcript turns.
//
// A submission runs in three steps so that front ends with an event loop
// (bubbletea) can keep the network call off their update goroutine:
//
//	call, err := d.Submit(input)   // validate, append user turn, await
//	out := call.Run(ctx)           // one answering call, blocking
//	res := d.Resolve(out)          // append answer or failure, settle
//
// Resolve discards outcomes whose request ID is not the one being awaited.
// Dispatch runs all three steps for line-mode callers.
//
// While a request is outstanding, PolicyReject refuses new input with
// ErrBusy and PolicyQueue appends the user turn at once and runs its call
// after the outstanding one resolves.
package dispatch
