// Command subx is the entrypoint for SubX's CLI: matching, converting, and
// synchronizing subtitle files. All real logic lives in internal/cli; this
// file only translates argv into an exit code.
package main

import (
	"os"

	"github.com/subx-cli/subx/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
