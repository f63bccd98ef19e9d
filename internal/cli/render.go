package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
)

// renderTable prints a bordered, left-aligned table to stdout — the same
// tablewriter options the teacher's crash report uses, minus the border
// suppression (here the table IS the primary output, not an aside).
func renderTable(headers []string, rows [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}

// actionColor tints a match/convert/sync action label the way the teacher's
// directory listing tints video vs. subtitle filenames.
func actionColor(action string, failed bool) string {
	switch {
	case failed:
		return color.Red.Sprint(action)
	case action == "skipped-identical" || action == "planned":
		return color.Yellow.Sprint(action)
	default:
		return color.Green.Sprint(action)
	}
}

// newItemBar builds a determinate progress bar for a batch of n items,
// shaped after the teacher's mkItemBar (count shown, cleared on finish).
func newItemBar(n int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(31),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetWriter(os.Stderr),
	)
}

// progressReporter adapts newItemBar to the (done, total int) shape the
// match/convert/sync batch drivers call once per completed item, gated on
// general.enable_progress_bar. When enabled is false it returns a no-op, so
// call sites never need to branch on the config flag themselves. The bar is
// built lazily on the first call, once total is known; match's driver calls
// this concurrently from multiple worker goroutines, so construction is
// guarded by a sync.Once.
func progressReporter(enabled bool, description string) func(done, total int) {
	if !enabled {
		return func(done, total int) {}
	}
	var once sync.Once
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		once.Do(func() { bar = newItemBar(total, description) })
		bar.Set(done)
	}
}

func printSummary(succeeded, failed int) {
	if failed == 0 {
		fmt.Fprintf(os.Stdout, "%s: %d succeeded\n", color.Green.Sprint("done"), succeeded)
		return
	}
	fmt.Fprintf(os.Stdout, "%s: %d succeeded, %d failed\n", color.Yellow.Sprint("done"), succeeded, failed)
}
