package cmd

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"domainadmin/internal/config"
)

var configInit, configForce bool

var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"inspect"},
	Short:   "Print the effective configuration (defaults merged with the config file)",
	Long: `Print the configuration domainadmin actually runs with: the embedded defaults,
overlaid with the config file and command line flags.

With --init the default config file is written to the user config directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if configInit {
			path, err := config.EnsureConfig(configForce)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Config written to: %s\n", path)
			return nil
		}

		fmt.Fprintf(out, "%s%s=== Effective configuration ===%s\n", bold, cyan, reset)
		cfgData, err := toml.Marshal(cfg)
		if err != nil {
			return err
		}

		for _, line := range strings.Split(string(cfgData), "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				fmt.Fprintln(out)
				continue
			}
			if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
				fmt.Fprintf(out, "%s%s%s\n", yellow, line, reset)
			} else if idx := strings.Index(line, "="); idx != -1 {
				key := line[:idx]
				val := line[idx+1:]
				fmt.Fprintf(out, "%s%s%s=%s%s%s\n", green, key, reset, cyan, val, reset)
			} else {
				fmt.Fprintln(out, line)
			}
		}
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "write the default config file")
	configCmd.Flags().BoolVar(&configForce, "force", false, "with --init, overwrite an existing file")
	RootCmd.AddCommand(configCmd)
}
