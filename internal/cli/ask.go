// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) askCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask one question and print the answer",
		Long: `Ask sends one question, waits for the answer and prints it.
Answers are rendered as markdown when stdout is a terminal.

The exit status is 1 when the service could not answer.`,
		Example: `  pnuchat ask 수강신청 기간이 언제야?
  pnuchat ask --url http://10.0.0.5:8000/chat "도서관 운영 시간"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			sess, err := a.newSession()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			question := strings.Join(args, " ")
			if strings.TrimSpace(question) == "" {
				return errors.New("question is empty")
			}
			turn, err := sess.Ask(ctx, question)
			if err != nil {
				return err
			}
			if turn == nil {
				return errors.New("question was queued behind another request")
			}

			out := cmd.OutOrStdout()
			if turn.Failed() {
				fmt.Fprintln(out, turn.Text)
				return &ExitError{Code: 1}
			}
			fmt.Fprintln(out, a.renderer(out).Render(turn.Text))
			return nil
		},
	}
}
