package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a default gapfill.yaml configuration file",
		Long: `Create a gapfill.yaml in the current working directory populated with the
current defaults (layout, mainline, provider order, coverage and gap settings)
so it can be edited manually. API keys are never written; they are read from
the environment or a .env file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			if err := viper.SafeWriteConfigAs(targetPath); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cmd.Printf("Wrote %s\n", targetPath)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}
