// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jeranaias/pnuchat/internal/answer"
	"github.com/jeranaias/pnuchat/internal/config"
	"github.com/jeranaias/pnuchat/internal/dispatch"
	"github.com/jeranaias/pnuchat/internal/logging"
	"github.com/jeranaias/pnuchat/internal/session"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// EXIT CODES
// =============================================================================

// ExitError carries a process exit status out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// exitCode maps a command error onto a process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}

// =============================================================================
// APP
// =============================================================================

// app holds state shared by the commands of one invocation.
type app struct {
	configPath string
	url        string
	logLevel   string

	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer

	// isTTY reports whether w is an interactive terminal.
	isTTY func(w io.Writer) bool
}

func newApp() *app {
	return &app{
		log:   zerolog.Nop(),
		isTTY: isTerminal,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// loadConfig reads the config file and applies flag overrides.
func (a *app) loadConfig() error {
	if a.cfg != nil {
		return nil
	}

	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if a.url != "" {
		cfg.Answer.URL = a.url
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid flags")
	}

	config.SetGlobal(cfg)
	a.cfg = cfg
	return nil
}

// openLog points the logger at the configured log file.
func (a *app) openLog() error {
	path, err := a.cfg.LogPath()
	if err != nil {
		return err
	}
	logger, closer, err := logging.Open(path, a.cfg.Log.Level)
	if err != nil {
		return err
	}
	a.log = logger.With().Str("version", Version).Logger()
	a.closer = closer
	return nil
}

// setup loads config and opens the log file.
func (a *app) setup() error {
	if err := a.loadConfig(); err != nil {
		return err
	}
	if a.closer != nil {
		return nil
	}
	return a.openLog()
}

func (a *app) close() {
	if a.closer != nil {
		a.closer.Close()
		a.closer = nil
	}
}

// newSession builds a session that asks the configured answering service.
func (a *app) newSession() (*session.Session, error) {
	policy, err := dispatch.ParsePolicy(a.cfg.Dispatch.BusyPolicy)
	if err != nil {
		return nil, err
	}
	client := answer.NewClientWithConfig(&answer.ClientConfig{
		URL:            a.cfg.Answer.URL,
		EmptyIsFailure: a.cfg.Answer.EmptyIsFailure,
	})
	return session.New(client, session.Config{
		Policy:      policy,
		FailureText: a.cfg.Answer.FailureText,
		Timeout:     a.cfg.Answer.Timeout.Duration,
		Logger:      a.log,
	}), nil
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pnuchat",
		Short: "Terminal client for the PNU AI Assistant",
		Long: `pnuchat talks to the PNU AI Assistant answering service.

Run without arguments to open the full-screen chat. Each question is sent
as POST {"query": ...} to the configured URL and the answer is shown below
it. If the service cannot be reached the answer reads "서버 연결 실패".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runTUI,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.pnuchat/config.toml)")
	flags.StringVar(&a.url, "url", "", "answering service endpoint (default "+config.DefaultURL+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		a.chatCommand(),
		a.askCommand(),
		a.stubCommand(),
		a.configCommand(),
		versionCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit status.
func Execute() int {
	a := newApp()
	defer a.close()

	root := a.rootCommand()
	err := root.Execute()
	if err != nil {
		var ee *ExitError
		if !errors.As(err, &ee) || ee.Err != nil {
			fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		}
	}
	return exitCode(err)
}
