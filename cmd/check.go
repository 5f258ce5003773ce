package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediascrub/internal/config"
	"mediascrub/internal/deps"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Report whether ffmpeg and the target directory are usable",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		statuses := deps.CheckBinaries(cmd.Context(), []deps.Requirement{deps.FFmpeg(cfg.FFmpeg.Binary)})
		if len(args) == 1 {
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
			}
			statuses = append(statuses, deps.CheckDirectoryAccess("Directory", dir))
		}

		if checkJSON {
			if err := writeJSON(cmd, statuses); err != nil {
				return err
			}
		} else {
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := "ok"
				if !s.Available {
					state = "missing"
				}
				detail := s.Detail
				if s.Version != "" {
					detail = s.Version
				}
				rows = append(rows, []string{s.Name, state, s.Command, detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Dependency", "Status", "Command", "Detail"}, rows))
		}

		for _, s := range statuses {
			if !s.Available {
				return errIncomplete
			}
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(checkCmd)
}
