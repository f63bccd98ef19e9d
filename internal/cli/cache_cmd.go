package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the dry-run match cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete match_cache.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := buildMatchCache(app.log)
			if err := cache.Clear(); err != nil {
				return withExitCode(ExitFailure, err)
			}
			fmt.Println("cache cleared")
			return nil
		},
	})
	return cmd
}
