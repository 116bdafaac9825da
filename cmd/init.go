package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vizlab/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize vizlab configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the AI provider, quality tier and diagram renderer, and writes a .vizlab.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
