package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "generate-completion <bash|zsh|fish|powershell>",
		Short:     "Generate a shell completion script",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return withExitCode(ExitFailure, root.GenBashCompletion(os.Stdout))
			case "zsh":
				return withExitCode(ExitFailure, root.GenZshCompletion(os.Stdout))
			case "fish":
				return withExitCode(ExitFailure, root.GenFishCompletion(os.Stdout, true))
			case "powershell":
				return withExitCode(ExitFailure, root.GenPowerShellCompletionWithDesc(os.Stdout))
			default:
				return withExitCode(ExitFailure, fmt.Errorf("unsupported shell %q", args[0]))
			}
		},
	}
}
