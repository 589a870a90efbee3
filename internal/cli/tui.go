// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/pnuchat/internal/config"
	"github.com/jeranaias/pnuchat/internal/ui/chat"
	"github.com/jeranaias/pnuchat/internal/ui/styles"
)

// runTUI opens the full-screen chat.
func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	if err := a.setup(); err != nil {
		return err
	}
	sess, err := a.newSession()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	theme := styles.NewTheme(a.cfg.UI.Theme)
	model := chat.New(sess, theme, chat.Options{
		Title:       a.cfg.UI.Title,
		Subtitle:    a.cfg.Answer.URL,
		Placeholder: a.cfg.UI.Placeholder,
		LoadingText: a.cfg.UI.LoadingText,
		Context:     ctx,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	a.log.Info().Str("url", a.cfg.Answer.URL).Msg("tui started")

	if path := a.watchPath(); path != "" {
		err := config.Watch(ctx, path, config.DefaultDebounce, func(cfg *config.Config, err error) {
			if err != nil {
				a.log.Warn().Err(err).Str("path", path).Msg("config reload failed")
				p.Send(chat.ReloadMsg{Err: err})
				return
			}
			a.log.Info().Str("path", path).Msg("config reloaded")
			p.Send(a.applyReload(cfg))
		})
		if err != nil {
			a.log.Warn().Err(err).Msg("config watch disabled")
		}
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "run chat")
	}

	stats := sess.Stats()
	a.log.Info().Int("exchanges", stats.Exchanges).Int("failures", stats.Failures).Msg("tui stopped")
	return nil
}

// watchPath is the config file to follow for live display changes.
func (a *app) watchPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.Locate()
}

// applyReload publishes a reloaded config and returns the display update
// for the running chat.
func (a *app) applyReload(cfg *config.Config) chat.ReloadMsg {
	config.SetGlobal(cfg)
	return reloadMsg(config.Global())
}

// reloadMsg carries the display settings that apply without a restart.
// Answering and dispatch settings take effect on the next start.
func reloadMsg(cfg *config.Config) chat.ReloadMsg {
	return chat.ReloadMsg{
		Title:       cfg.UI.Title,
		Placeholder: cfg.UI.Placeholder,
		LoadingText: cfg.UI.LoadingText,
	}
}
