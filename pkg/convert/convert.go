// Package convert implements the format conversion engine (spec.md §4.7):
// parse a subtitle with autodetection, optionally override the detected
// format, serialize to a target format, and — in batch mode — mirror an
// input directory's relative layout into an output directory. Grounded on
// the teacher's internal/core batch-processing shape (one result per input,
// a failure in one never aborting the rest).
package convert

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/subx-cli/subx/pkg/discover"
	"github.com/subx-cli/subx/pkg/subfmt"
)

// Options parameterizes one conversion.
type Options struct {
	ExplicitInputFormat subfmt.Format
	OutputFormat        subfmt.Format
	OutputVariant       subfmt.SubVariant
	DefaultEncoding     string
	EncodingConfidence  float64
	FrameRate           float64
	PreserveStyling     bool
	KeepOriginal        bool
	// DryRun computes and reports what the conversion would change without
	// writing the output file or removing the original.
	DryRun bool
}

// Result is the outcome of converting a single file.
type Result struct {
	InputPath  string
	OutputPath string
	Warning    string
	Err        error
	// Diff is populated only under Options.DryRun: the entry-level changes
	// converting InputPath to OutputFormat would make, per subfmt.Diff.
	Diff []subfmt.EntryDiff
}

// Converter runs single-file and batch conversions.
type Converter struct {
	log zerolog.Logger
}

func NewConverter(log zerolog.Logger) *Converter {
	return &Converter{log: log.With().Str("component", "convert").Logger()}
}

// ConvertFile parses inputPath, serializes to opts.OutputFormat, and writes
// the result to outputPath (computed by the caller for single-file mode, or
// by ConvertBatch for batch mode). When preserve_styling is requested but
// the target format cannot express a style, the styling is flattened and a
// warning is returned rather than failing the conversion.
func (c *Converter) ConvertFile(inputPath, outputPath string, opts Options) Result {
	res := Result{InputPath: inputPath, OutputPath: outputPath}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		res.Err = err
		return res
	}

	parseOpts := subfmt.ParseOptions{
		ExplicitFormat:     opts.ExplicitInputFormat,
		DefaultEncoding:    opts.DefaultEncoding,
		EncodingConfidence: opts.EncodingConfidence,
		FrameRate:          opts.FrameRate,
		PreserveStyling:    opts.PreserveStyling,
	}
	doc, err := subfmt.Parse(filepath.Base(inputPath), raw, parseOpts)
	if err != nil {
		res.Err = err
		return res
	}

	if opts.PreserveStyling && !formatExpressesStyling(opts.OutputFormat) {
		doc.DropStyling()
		res.Warning = "target format cannot express per-entry styling; styling was flattened to plain text"
	}

	out, err := subfmt.Write(doc, opts.OutputFormat, opts.OutputVariant)
	if err != nil {
		res.Err = err
		return res
	}

	if opts.DryRun {
		after, err := subfmt.Parse(filepath.Base(outputPath), []byte(out), subfmt.ParseOptions{
			ExplicitFormat:     opts.OutputFormat,
			DefaultEncoding:    opts.DefaultEncoding,
			EncodingConfidence: opts.EncodingConfidence,
			FrameRate:          opts.FrameRate,
			PreserveStyling:    opts.PreserveStyling,
		})
		if err != nil {
			res.Err = err
			return res
		}
		res.Diff = subfmt.Diff(doc, after)
		return res
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		res.Err = err
		return res
	}
	if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
		res.Err = err
		return res
	}

	if !opts.KeepOriginal && inputPath != outputPath {
		if err := os.Remove(inputPath); err != nil {
			c.log.Warn().Err(err).Str("path", inputPath).Msg("failed to remove original after conversion")
		}
	}

	return res
}

// formatExpressesStyling reports whether a target format can carry
// per-entry inline styling at all; ASS and SRT (basic <b>/<i>/<u>) can, VTT
// partially can via the same inline tags, MicroDVD/SubViewer cannot.
func formatExpressesStyling(f subfmt.Format) bool {
	switch f {
	case subfmt.FormatASS, subfmt.FormatSRT, subfmt.FormatVTT:
		return true
	default:
		return false
	}
}

// ConvertBatch enumerates inputs via C3 (subtitle role only), converting
// each independently; a failure on one input is recorded in its Result and
// never aborts the rest. When outputDir is non-empty, each output mirrors
// the input's path relative to the scan root; otherwise outputs land
// alongside their inputs. onProgress, when non-nil, is called once after
// each conversion with the number done and the batch total, letting the
// caller drive a progress indicator without ConvertBatch knowing about one.
func (c *Converter) ConvertBatch(inputs []string, recursive bool, outputDir string, opts Options, exts discover.ExtensionSets, onProgress func(done, total int)) []Result {
	files, err := discover.Scan(inputs, recursive, exts)
	if err != nil {
		return []Result{{Err: err}}
	}

	var subFiles []discover.MediaFile
	for _, f := range files {
		if f.Role == discover.RoleSubtitle {
			subFiles = append(subFiles, f)
		}
	}

	results := make([]Result, 0, len(subFiles))
	for i, f := range subFiles {
		outPath := computeOutputPath(f, outputDir, opts.OutputFormat)
		results = append(results, c.ConvertFile(f.AbsPath, outPath, opts))
		if onProgress != nil {
			onProgress(i+1, len(subFiles))
		}
	}
	return results
}

func computeOutputPath(f discover.MediaFile, outputDir string, target subfmt.Format) string {
	newName := swapExtension(f.Name, target)
	if outputDir == "" {
		return filepath.Join(filepath.Dir(f.AbsPath), newName)
	}
	relDir := filepath.Dir(f.RelPath)
	if relDir == "." {
		return filepath.Join(outputDir, newName)
	}
	return filepath.Join(outputDir, relDir, newName)
}

func swapExtension(name string, target subfmt.Format) string {
	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	return stem + "." + string(target)
}
