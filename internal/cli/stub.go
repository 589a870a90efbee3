// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/pnuchat/internal/logging"
	"github.com/jeranaias/pnuchat/internal/stubserver"
)

func (a *app) stubCommand() *cobra.Command {
	var (
		addr      string
		mode      string
		delay     time.Duration
		rateLimit float64
	)

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run a stand-in answering service",
		Long: `Stub serves POST /chat with the same contract as the answering service,
for trying pnuchat without the real backend.

Modes:
  echo       answer with the question
  canned     answer with a fixed text
  fail       respond 500
  malformed  respond 200 without an answer field`,
		Example: `  pnuchat stub --mode canned
  pnuchat stub --delay 2s --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			cfg := a.cfg.Clone()
			sc := &cfg.Stub
			if addr != "" {
				sc.Addr = addr
			}
			if mode != "" {
				sc.Mode = mode
			}
			if cmd.Flags().Changed("delay") {
				sc.Delay.Duration = delay
			}
			if cmd.Flags().Changed("rate") {
				sc.RateLimit = rateLimit
			}
			if err := cfg.Validate(); err != nil {
				return errors.Wrap(err, "invalid flags")
			}

			m, err := stubserver.ParseMode(sc.Mode)
			if err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
			if err != nil {
				return err
			}

			srv := stubserver.New(stubserver.Config{
				Addr:         sc.Addr,
				Mode:         m,
				Delay:        sc.Delay.Duration,
				CannedAnswer: sc.CannedAnswer,
				RateLimit:    sc.RateLimit,
				Logger:       logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "stub answering service on http://%s/chat (mode %s)\n", sc.Addr, m)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8000)")
	cmd.Flags().StringVar(&mode, "mode", "", "echo, canned, fail or malformed")
	cmd.Flags().DurationVar(&delay, "delay", 0, "hold every answer this long")
	cmd.Flags().Float64Var(&rateLimit, "rate", 0, "max /chat requests per second, 429 beyond (0 = unlimited)")
	return cmd
}
