package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/subx-cli/subx/pkg/discover"
	"github.com/subx-cli/subx/pkg/subfmt"
)

func newDetectEncodingCmd() *cobra.Command {
	var (
		inputs    []string
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "detect-encoding",
		Short: "Report the detected text encoding of one or more subtitle files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(inputs) == 0 {
				return withExitCode(ExitFailure, fmt.Errorf("at least one --input is required"))
			}
			cfg := app.cfg
			all, err := discover.Scan(inputs, recursive, extensionSets(cfg))
			if err != nil {
				return withExitCode(ExitFailure, err)
			}
			var files []discover.MediaFile
			for _, f := range all {
				if f.Role == discover.RoleSubtitle {
					files = append(files, f)
				}
			}
			if len(files) == 0 {
				return withExitCode(ExitFailure, fmt.Errorf("no subtitle files found"))
			}

			rows := make([][]string, 0, len(files))
			succeeded, failed := 0, 0
			for _, f := range files {
				size := humanize.Bytes(uint64(f.Size))
				raw, rerr := os.ReadFile(f.AbsPath)
				if rerr != nil {
					failed++
					rows = append(rows, []string{f.RelPath, size, actionColor("failed", true), rerr.Error()})
					continue
				}
				enc, derr := subfmt.DetectEncoding(raw, cfg.Formats.DefaultEncoding, cfg.Formats.EncodingDetectionConfidence)
				if derr != nil {
					failed++
					rows = append(rows, []string{f.RelPath, size, actionColor("failed", true), derr.Error()})
					continue
				}
				succeeded++
				rows = append(rows, []string{f.RelPath, size, actionColor("detected", false), fmt.Sprintf("%s (confidence=%.2f)", enc.Name, enc.Confidence)})
			}
			renderTable([]string{"File", "Size", "Status", "Encoding"}, rows)
			printSummary(succeeded, failed)
			return withExitCode(batchExitCode(succeeded, failed), errIfNonZero(failed))
		},
	}

	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "input file or directory (repeatable)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "recurse into subdirectories")

	return cmd
}
