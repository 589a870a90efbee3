// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/pnuchat/internal/config"
	"github.com/jeranaias/pnuchat/internal/render"
	"github.com/jeranaias/pnuchat/internal/session"
	"github.com/jeranaias/pnuchat/internal/transcript"
	"github.com/jeranaias/pnuchat/internal/ui/styles"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(styles.PNUGreen).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(styles.TextMuted)
)

// =============================================================================
// LINE EDITOR
// =============================================================================

// prompter reads one line of input.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// lineEditor wraps liner with a history file.
type lineEditor struct {
	*liner.State
	historyPath string
}

func newLineEditor(historyPath string) *lineEditor {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	ed := &lineEditor{State: line, historyPath: historyPath}
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	return ed
}

// Close saves history with 0600 permissions and restores the terminal.
func (e *lineEditor) Close() error {
	if err := os.MkdirAll(filepath.Dir(e.historyPath), 0700); err == nil {
		if f, err := os.OpenFile(e.historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			e.WriteHistory(f)
			f.Close()
		}
	}
	return e.State.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

func (a *app) chatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat line by line in the current terminal",
		Long: `Line-mode chat with input history (arrow keys).

Commands during chat:
  /stats   show request counters
  /quit    exit (Ctrl+C and Ctrl+D also exit)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			sess, err := a.newSession()
			if err != nil {
				return err
			}
			historyPath, err := config.HistoryPath()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()

			ed := newLineEditor(historyPath)
			defer ed.Close()

			return a.repl(ctx, sess, ed, cmd.OutOrStdout())
		},
	}
}

// repl reads questions from in until it is aborted or sees /quit. Turns are
// printed from a transcript observer, so output follows the store.
func (a *app) repl(ctx context.Context, sess *session.Session, in prompter, out io.Writer) error {
	renderer := a.renderer(out)
	loading := a.cfg.UI.LoadingText

	unsubscribe := sess.Subscribe(func(ev transcript.Event) {
		switch ev.Kind {
		case transcript.PhaseChanged:
			if ev.Phase.Pending() {
				fmt.Fprintln(out, mutedStyle.Render(loading))
			}
		case transcript.TurnAppended:
			if ev.Turn.IsUser() {
				return
			}
			if ev.Turn.Failed() {
				fmt.Fprintln(out, failureStyle.Render(ev.Turn.Text))
			} else {
				fmt.Fprintln(out, renderer.Render(ev.Turn.Text))
			}
			fmt.Fprintln(out)
		}
	})
	defer unsubscribe()

	fmt.Fprintf(out, "%s  %s\n\n", promptStyle.Render(a.cfg.UI.Title), mutedStyle.Render(a.cfg.Answer.URL))

	for {
		input, err := in.Prompt("질문> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return errors.Wrap(err, "read input")
		}

		switch strings.TrimSpace(input) {
		case "":
			continue
		case "/quit", "/q":
			return nil
		case "/stats":
			st := sess.Stats()
			fmt.Fprintf(out, "대화 %d · 실패 %d · 응답 %s · 시작 %s\n\n",
				st.Exchanges, st.Failures, st.LastLatency.Round(1e6), sess.StartedAt().Format("15:04"))
			continue
		}

		in.AppendHistory(input)
		sess.SetDraft(input)
		if _, err := sess.Ask(ctx, input); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// renderer picks markdown for terminals and plain text otherwise.
func (a *app) renderer(out io.Writer) render.Renderer {
	if !a.isTTY(out) {
		return render.Plain{}
	}
	style := render.StyleAuto
	switch a.cfg.UI.Theme {
	case "dark":
		style = render.StyleDark
	case "light":
		style = render.StyleLight
	}
	return render.NewMarkdown(style, a.cfg.UI.WordWrap)
}
