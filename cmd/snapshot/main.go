// ====================================
// File: cmd/snapshot/main.go
// ====================================
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hydra-snapshot/internal/app"
	"github.com/rovshanmuradov/hydra-snapshot/internal/config"
	"github.com/rovshanmuradov/hydra-snapshot/internal/logger"
)

const usageMessage = "please specify a block number after the command (e.g. snapshot run 4700000)"

const (
	exitOK      = 0
	exitUsage   = 1
	exitFailure = 2
)

// usageError is reported with the usage message and exit status 1
type usageError struct {
	err error
}

func (e usageError) Error() string {
	if e.err == nil {
		return usageMessage
	}
	return e.err.Error()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr, nil)
	cancel()
	os.Exit(code)
}

// execute runs the CLI and returns the process exit status. A nil dial connects to the node.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer, dial app.Dialer) int {
	root := newRootCmd(stdout, dial)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var uerr usageError
	if errors.As(err, &uerr) {
		fmt.Fprintln(stdout, usageMessage)
		return exitUsage
	}
	fmt.Fprintf(stderr, "snapshot failed: %+v\n", err)
	return exitFailure
}

func newRootCmd(stdout io.Writer, dial app.Dialer) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "snapshot",
		Short:         "HydraDX DOT/vDOT snapshot reporter",
		Long:          "Reads HydraDX state at one block and writes DCA, holder and omnipool position reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageError{}
		},
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (json, yaml or toml)")
	flags.String("endpoint", "", "node RPC endpoint (ws, wss, http or https)")
	flags.String("out", "", "output directory")
	flags.Bool("parallel", false, "build the reports concurrently")
	flags.Bool("debug", false, "enable debug logging")
	flags.StringSlice("format", nil, "output formats: json, csv")

	root.AddCommand(newRunCmd(stdout, &configPath, dial))
	return root
}

func newRunCmd(stdout io.Writer, configPath *string, dial app.Dialer) *cobra.Command {
	return &cobra.Command{
		Use:   "run <blockHeight>",
		Short: "Write every report for the given block",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageError{}
			}
			// Validate before any config or connection work
			height, err := app.ParseHeight(args[0])
			if err != nil {
				return usageError{err: err}
			}

			cfg, err := config.Load(*configPath, cmd.Flags())
			if err != nil {
				return errors.Wrap(err, "load config")
			}

			log, closeLog, err := logger.New(cfg.DebugLogging, cfg.LogFile)
			if err != nil {
				return errors.Wrap(err, "create logger")
			}
			defer func() {
				_ = logger.Sync(log)
				if err := closeLog(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "failed to close log file: %v\n", err)
				}
			}()
			log.Info("📸 Fetching holders", zap.Uint64("block", height))

			summary, err := app.NewRunner(cfg, log, dial).Run(cmd.Context(), height)
			if err != nil {
				log.Error("Snapshot failed", zap.Error(err))
				return err
			}

			fmt.Fprintln(stdout, renderSummary(summary))
			return nil
		},
	}
}
