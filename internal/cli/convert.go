package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/subx-cli/subx/pkg/convert"
	"github.com/subx-cli/subx/pkg/subfmt"
)

func newConvertCmd() *cobra.Command {
	var (
		inputs      []string
		recursive   bool
		format      string
		output      string
		keepOrig    bool
		encoding    string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert subtitle files between SRT, ASS, VTT, and SUB",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(inputs) == 0 {
				return withExitCode(ExitFailure, fmt.Errorf("at least one --input is required"))
			}
			if format == "" {
				format = string(app.cfg.Formats.DefaultOutput)
			}
			target := subfmt.Format(format)
			switch target {
			case subfmt.FormatSRT, subfmt.FormatASS, subfmt.FormatVTT, subfmt.FormatSUB:
			default:
				return withExitCode(ExitFailure, fmt.Errorf("unsupported --format %q", format))
			}

			enc := encoding
			if enc == "" {
				enc = app.cfg.Formats.DefaultEncoding
			}

			converter := convert.NewConverter(app.log)
			opts := convert.Options{
				OutputFormat:       target,
				DefaultEncoding:    enc,
				EncodingConfidence: app.cfg.Formats.EncodingDetectionConfidence,
				PreserveStyling:    app.cfg.Formats.PreserveStyling,
				KeepOriginal:       keepOrig,
				DryRun:             dryRun,
			}

			var results []convert.Result
			if output != "" && len(inputs) == 1 {
				results = []convert.Result{converter.ConvertFile(inputs[0], output, opts)}
			} else {
				onProgress := progressReporter(app.cfg.General.EnableProgressBar, "converting")
				results = converter.ConvertBatch(inputs, recursive, output, opts, extensionSets(app.cfg), onProgress)
			}
			if len(results) == 0 {
				return withExitCode(ExitFailure, fmt.Errorf("no subtitle files found to convert"))
			}

			rows := make([][]string, 0, len(results))
			succeeded, failed := 0, 0
			for _, r := range results {
				failedRes := r.Err != nil
				if failedRes {
					failed++
				} else {
					succeeded++
				}
				detail := r.Warning
				if r.Err != nil {
					detail = r.Err.Error()
				} else if dryRun {
					detail = summarizeDiff(r.Diff)
				}
				action := "converted"
				if dryRun {
					action = "dry-run"
				}
				if failedRes {
					action = "failed"
				} else if r.Warning != "" {
					action = "converted-with-warning"
				}
				rows = append(rows, []string{r.InputPath, actionColor(action, failedRes), detail})
			}
			renderTable([]string{"Input", "Result", "Detail"}, rows)
			printSummary(succeeded, failed)

			return withExitCode(batchExitCode(succeeded, failed), errIfNonZero(failed))
		},
	}

	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "input file or directory (repeatable)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "recurse into subdirectories")
	cmd.Flags().StringVar(&format, "format", "", "target format: srt|ass|vtt|sub (default: formats.default_output)")
	cmd.Flags().StringVar(&output, "output", "", "output file (single input) or directory (batch)")
	cmd.Flags().BoolVar(&keepOrig, "keep-original", false, "keep the source file instead of removing it after conversion")
	cmd.Flags().StringVar(&encoding, "encoding", "", "assume this source encoding when autodetection is inconclusive")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what a conversion would change without writing any files")

	return cmd
}

// summarizeDiff reports the entry-level changes a dry-run conversion found,
// per subfmt.Diff's EntryDiff.Kind classification.
func summarizeDiff(diffs []subfmt.EntryDiff) string {
	counts := map[string]int{}
	for _, d := range diffs {
		counts[d.Kind]++
	}
	if counts["unchanged"] == len(diffs) {
		return fmt.Sprintf("%d entries unchanged", len(diffs))
	}
	parts := make([]string, 0, len(counts))
	for _, kind := range []string{"retimed", "retext", "retimed+retext", "added", "removed", "unchanged"} {
		if n := counts[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, kind))
		}
	}
	return strings.Join(parts, ", ")
}
