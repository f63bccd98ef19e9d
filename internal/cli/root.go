// Package cli owns flag parsing, logging setup, exit-code mapping, and
// table/progress rendering for cmd/subx; it depends on the pkg/* core, never
// the reverse. Grounded on the teacher's cmd/root.go command-tree shape,
// generalized from langkit's single media pipeline to SubX's seven verbs.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/subx-cli/subx/pkg/config"
)

// appContext is the dependency bundle every verb's RunE closes over. Built
// once in the root command's PersistentPreRunE, after flags are parsed, so
// every subcommand sees the same resolved configuration.
type appContext struct {
	log zerolog.Logger
	svc config.Service
	cfg config.Config
}

var (
	flagConfigPath string
	flagVerbose    bool
	app            appContext
)

// NewRootCmd builds the subx command tree. Exposed (rather than a bare
// Execute()) so tests can exercise individual verbs without going through
// os.Args.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "subx <command>",
		Short:         "Match, convert, and synchronize subtitle files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.log = NewLogger(flagVerbose)
			svc, err := config.Load(flagConfigPath, nil)
			if err != nil {
				return err
			}
			app.svc = svc
			app.cfg = svc.GetConfig()
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", "", "path to config.toml (default: OS config dir)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug-level logging")

	root.AddCommand(
		newMatchCmd(),
		newConvertCmd(),
		newSyncCmd(),
		newDetectEncodingCmd(),
		newConfigCmd(),
		newCacheCmd(),
		newCompletionCmd(),
	)
	return root
}

// Execute runs the command tree against args and returns the process exit
// code spec.md §6 specifies, handling SIGINT as 130 rather than letting
// cobra's default error path turn it into an ordinary failure.
func Execute(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if ctx.Err() == context.Canceled {
		fmt.Fprintln(os.Stderr, "subx: interrupted")
		return ExitInterrupted
	}
	if err != nil {
		if code, ok := asExitCode(err); ok {
			if code != ExitSuccess {
				fmt.Fprintln(os.Stderr, "Error:", err)
			}
			return code
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return ExitFailure
	}
	return ExitSuccess
}
