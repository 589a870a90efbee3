// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads the config file at path after it changes and passes the
// result to onChange. Changes closer together than debounce are reported
// once. The parent directory is watched so editors that save by renaming
// a temp file over path are seen too.
//
// Watch returns once watching has started; it stops when ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(*Config, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "resolve config path")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		w.Close()
		return errors.Wrapf(err, "watch %s", filepath.Dir(target))
	}

	go func() {
		defer w.Close()

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		reload := func() { onChange(LoadFromPath(target)) }

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.AfterFunc(debounce, reload)
				} else {
					timer.Reset(debounce)
				}

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				onChange(nil, errors.Wrap(err, "watch config"))
			}
		}
	}()
	return nil
}
