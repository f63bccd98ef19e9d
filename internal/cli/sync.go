package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/subx-cli/subx/pkg/audio"
	"github.com/subx-cli/subx/pkg/config"
	"github.com/subx-cli/subx/pkg/discover"
	"github.com/subx-cli/subx/pkg/subfmt"
	"github.com/subx-cli/subx/pkg/syncengine"
)

func newSyncCmd() *cobra.Command {
	var (
		inputs        []string
		recursive     bool
		dryRun        bool
		batch         bool
		offsetStr     string
		method        string
		vadSensitivity float64
		vadChunkSize  int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Shift subtitle timing manually or align it to detected speech",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(inputs) == 0 {
				return withExitCode(ExitFailure, fmt.Errorf("at least one --input is required"))
			}
			cfg := app.cfg
			exts := extensionSets(cfg)
			maxOffset := float64(cfg.Sync.MaxOffsetSeconds)

			useVAD := method == "vad" || ((method == "" || method == "auto") && cfg.Sync.Vad.Enabled && offsetStr == "")
			if method == "manual" {
				useVAD = false
			}

			videos, subtitles, err := syncengine.DiscoverPairs(inputs, recursive, exts)
			if err != nil {
				return withExitCode(ExitFailure, err)
			}
			if !batch && len(subtitles) > 1 {
				subtitles = subtitles[:1]
			}
			if len(subtitles) == 0 {
				return withExitCode(ExitFailure, fmt.Errorf("no subtitle files found"))
			}

			succeeded, failed := 0, 0
			rows := make([][]string, 0, len(subtitles))
			onProgress := progressReporter(cfg.General.EnableProgressBar, "syncing")

			for i, sub := range subtitles {
				var res syncengine.Result
				var werr error
				var doc *subfmt.Document

				if useVAD {
					sensitivity := vadSensitivity
					if !cmd.Flags().Changed("vad-sensitivity") {
						sensitivity = cfg.Sync.Vad.Sensitivity
					}
					chunkSize := vadChunkSize
					if !cmd.Flags().Changed("vad-chunk-size") {
						chunkSize = cfg.Sync.Vad.ChunkSize
					}

					video, ok := bestVideoMatch(sub, videos)
					if !ok {
						werr = fmt.Errorf("no matching video found for %s", sub.Name)
					} else {
						doc, werr = readDocument(sub, cfg)
						if werr == nil {
							loader := audio.NewLoader(app.log)
							engine := syncengine.NewEngine(loader, app.log)
							res, werr = engine.RunVAD(cmd.Context(), video.AbsPath, doc, syncengine.VadParams{
								ModelSampleRate:     cfg.Sync.Vad.SampleRate,
								ChunkSize:           chunkSize,
								Sensitivity:         sensitivity,
								PaddingChunks:       cfg.Sync.Vad.PaddingChunks,
								MinSpeechDurationMs: cfg.Sync.Vad.MinSpeechDurationMs,
							}, maxOffset)
						}
					}
				} else {
					offset, perr := parseOffset(offsetStr)
					if perr != nil {
						werr = perr
					} else {
						doc, werr = readDocument(sub, cfg)
						if werr == nil {
							res, werr = syncengine.ApplyOffset(doc, offset, maxOffset)
						}
					}
				}

				if werr == nil && !dryRun && doc != nil {
					werr = writeDocument(sub, doc, cfg)
				}

				failedRow := werr != nil
				if failedRow {
					failed++
				} else {
					succeeded++
				}
				detail := fmt.Sprintf("offset=%.3fs confidence=%.2f", res.AppliedOffsetSeconds, res.Confidence)
				if res.Warning != "" {
					detail += " (" + res.Warning + ")"
				}
				if werr != nil {
					detail = werr.Error()
				}
				action := "synced"
				if dryRun {
					action = "planned"
				}
				rows = append(rows, []string{sub.RelPath, actionColor(action, failedRow), detail})
				onProgress(i+1, len(subtitles))
			}

			renderTable([]string{"Subtitle", "Action", "Detail"}, rows)
			printSummary(succeeded, failed)
			return withExitCode(batchExitCode(succeeded, failed), errIfNonZero(failed))
		},
	}

	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "input file or directory (repeatable)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "recurse into subdirectories")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute the offset without rewriting the subtitle file")
	cmd.Flags().BoolVar(&batch, "batch", false, "sync every discovered subtitle instead of only the first")
	cmd.Flags().StringVar(&offsetStr, "offset", "", "fixed offset in seconds (manual mode), e.g. 1.5 or -0.75")
	cmd.Flags().StringVar(&method, "method", "", "auto|vad|manual (default: vad when sync.vad.enabled and no --offset)")
	cmd.Flags().Float64Var(&vadSensitivity, "vad-sensitivity", 0, "override sync.vad.sensitivity")
	cmd.Flags().IntVar(&vadChunkSize, "vad-chunk-size", 0, "override sync.vad.chunk_size")

	return cmd
}

func parseOffset(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("manual sync requires --offset")
	}
	var f float64
	if _, err := fmt.Sscanf(s, "%g", &f); err != nil {
		return 0, fmt.Errorf("invalid --offset %q", s)
	}
	return f, nil
}

func readDocument(f discover.MediaFile, cfg config.Config) (*subfmt.Document, error) {
	raw, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return nil, err
	}
	return subfmt.Parse(f.Name, raw, subfmt.ParseOptions{
		DefaultEncoding:    cfg.Formats.DefaultEncoding,
		EncodingConfidence: cfg.Formats.EncodingDetectionConfidence,
		PreserveStyling:    cfg.Formats.PreserveStyling,
	})
}

func writeDocument(f discover.MediaFile, doc *subfmt.Document, cfg config.Config) error {
	// Document.Metadata does not track which .sub dialect was parsed, so a
	// round trip through a MicroDVD/SubViewer source defaults to MicroDVD on
	// the way back out; irrelevant for every other format.
	out, err := subfmt.Write(doc, doc.Metadata.OriginFormat, subfmt.SubVariantMicroDVD)
	if err != nil {
		return err
	}
	return os.WriteFile(f.AbsPath, []byte(out), 0o644)
}

// bestVideoMatch pairs a subtitle with the video sharing the longest common
// lower-cased basename-stem prefix — the same deterministic pairing
// pkg/oracle's Heuristic backend uses for video/subtitle matching, reused
// here so `sync` never needs a network oracle to find its counterpart video.
func bestVideoMatch(sub discover.MediaFile, videos []discover.MediaFile) (discover.MediaFile, bool) {
	subStem := stemOf(sub.Name)
	bestIdx, bestScore := -1, -1
	for i, v := range videos {
		score := commonPrefix(subStem, stemOf(v.Name))
		if score > bestScore {
			bestScore, bestIdx = score, i
		}
	}
	if bestIdx < 0 || bestScore == 0 {
		return discover.MediaFile{}, false
	}
	return videos[bestIdx], true
}

func stemOf(name string) string {
	ext := filepath.Ext(name)
	return strings.ToLower(strings.TrimSuffix(name, ext))
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
