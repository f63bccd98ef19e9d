package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/subx-cli/subx/pkg/match"
)

func newMatchCmd() *cobra.Command {
	var (
		inputs      []string
		recursive   bool
		dryRun      bool
		confidence  float64
		backup      bool
		copyMode    bool
		moveMode    bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Pair videos with subtitles and rename/copy/move them into place",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(inputs) == 0 {
				return withExitCode(ExitFailure, fmt.Errorf("at least one --input is required"))
			}
			if copyMode && moveMode {
				return withExitCode(ExitFailure, fmt.Errorf("--copy and --move are mutually exclusive"))
			}

			mode := match.ModeRenameInPlace
			switch {
			case copyMode:
				mode = match.ModeCopyToVideo
			case moveMode:
				mode = match.ModeMoveToVideo
			}

			cfg := app.cfg
			cache := buildMatchCache(app.log)
			engine := match.NewEngine(extensionSets(cfg), cache, buildOracle(cfg), app.log)

			req := match.Request{
				Inputs:               inputs,
				Recursive:            recursive,
				ConfidenceThreshold:  confidence,
				Mode:                 mode,
				Backup:               backup,
				DryRun:               dryRun,
				MaxConcurrentJobs:    cfg.General.MaxConcurrentJobs,
				EnableTaskPriorities: cfg.Parallel.EnableTaskPriorities,
				OverflowStrategy:     overflowStrategy(cfg.Parallel.OverflowStrategy),
				ConfigHash:           app.svc.ConfigHash(),
				OnProgress:           progressReporter(cfg.General.EnableProgressBar, "matching"),
			}

			ops, err := engine.Run(cmd.Context(), req)
			if err != nil {
				return withExitCode(ExitFailure, err)
			}
			if len(ops) == 0 {
				return withExitCode(ExitFailure, fmt.Errorf("no video/subtitle pairs met the confidence threshold"))
			}

			rows := make([][]string, 0, len(ops))
			succeeded, failed := 0, 0
			for _, op := range ops {
				failedOp := op.Action == match.ActionFailed
				if failedOp {
					failed++
				} else {
					succeeded++
				}
				detail := op.ProposedNewName
				if op.Err != nil {
					detail = op.Err.Error()
				}
				rows = append(rows, []string{
					op.SubtitlePath,
					actionColor(string(op.Action), failedOp),
					detail,
				})
			}
			renderTable([]string{"Subtitle", "Action", "Detail"}, rows)
			printSummary(succeeded, failed)

			if dryRun {
				return nil
			}
			return withExitCode(batchExitCode(succeeded, failed), errIfNonZero(failed))
		},
	}

	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "input file or directory (repeatable)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "recurse into subdirectories")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and cache pairings without touching the filesystem")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.5, "minimum oracle confidence to accept a pairing")
	cmd.Flags().BoolVar(&backup, "backup", false, "back up a conflicting destination as <name>.bak instead of numbering the new file")
	cmd.Flags().BoolVar(&copyMode, "copy", false, "copy the subtitle next to its matched video instead of renaming in place")
	cmd.Flags().BoolVar(&moveMode, "move", false, "move the subtitle next to its matched video instead of renaming in place")

	return cmd
}

// errIfNonZero turns a failure count into a sentinel error for
// withExitCode, which treats a nil error as "no error to report" even when
// the exit code itself is non-zero.
func errIfNonZero(failed int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d operation(s) failed", failed)
}
