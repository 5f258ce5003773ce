package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediascrub/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration utilities",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a sample configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var target string
		if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
			expanded, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			target = expanded
		} else {
			defaultPath, err := config.DefaultConfigPath()
			if err != nil {
				return fmt.Errorf("determine default config path: %w", err)
			}
			target = defaultPath
		}

		if err := config.CreateSample(target, configInitForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing configuration file")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
