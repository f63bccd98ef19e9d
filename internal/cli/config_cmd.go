package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configGetters mirrors config.applyOverride's path set: the small, explicit
// list of dotted paths the CLI is allowed to read or write, kept narrow on
// purpose rather than reflecting over the whole Config struct.
var configGetters = map[string]func() string{
	"ai.provider":             func() string { return string(app.cfg.AI.Provider) },
	"ai.model":                func() string { return app.cfg.AI.Model },
	"formats.default_output":  func() string { return string(app.cfg.Formats.DefaultOutput) },
	"formats.preserve_styling": func() string { return fmt.Sprintf("%t", app.cfg.Formats.PreserveStyling) },
	"formats.default_encoding": func() string { return app.cfg.Formats.DefaultEncoding },
	"sync.max_offset_seconds": func() string { return fmt.Sprintf("%g", app.cfg.Sync.MaxOffsetSeconds) },
	"sync.vad.sensitivity":    func() string { return fmt.Sprintf("%g", app.cfg.Sync.Vad.Sensitivity) },
	"sync.vad.chunk_size":     func() string { return fmt.Sprintf("%d", app.cfg.Sync.Vad.ChunkSize) },
	"general.backup_enabled":  func() string { return fmt.Sprintf("%t", app.cfg.General.BackupEnabled) },
	"general.max_concurrent_jobs": func() string { return fmt.Sprintf("%d", app.cfg.General.MaxConcurrentJobs) },
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the resolved configuration",
	}
	cmd.AddCommand(newConfigGetCmd(), newConfigSetCmd(), newConfigListCmd(), newConfigResetCmd())
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the resolved value of one configuration key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			get, ok := configGetters[args[0]]
			if !ok {
				return withExitCode(ExitFailure, fmt.Errorf("unknown configuration key %q", args[0]))
			}
			fmt.Println(get())
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a configuration value to config.toml",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := configGetters[args[0]]; !ok {
				return withExitCode(ExitFailure, fmt.Errorf("unknown configuration key %q", args[0]))
			}
			path := filepath.Join(configDir(), "config.toml")
			v := viper.New()
			v.SetConfigFile(path)
			v.SetConfigType("toml")
			if err := v.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
					return withExitCode(ExitFailure, err)
				}
			}
			v.Set(args[0], args[1])
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return withExitCode(ExitFailure, err)
			}
			if err := v.WriteConfigAs(path); err != nil {
				return withExitCode(ExitFailure, err)
			}
			fmt.Printf("set %s = %s (in %s)\n", args[0], args[1], path)
			return nil
		},
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Pretty-print the fully resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			pp.Println(app.cfg)
			return nil
		},
	}
}

func newConfigResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete config.toml, reverting to compiled defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(configDir(), "config.toml")
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return withExitCode(ExitFailure, err)
			}
			fmt.Println("removed", path)
			return nil
		},
	}
}
