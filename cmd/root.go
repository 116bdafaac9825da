package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vizlab/internal/config"
)

var (
	cfgFile string
	verbose bool
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "vizlab",
	Short: "Mermaid diagram editor with live rendering and AI assistance",
	Long: `vizlab is a Mermaid diagram editor. It renders your diagram as you type,
can generate diagrams from a description, repair syntax errors and suggest
completions with an LLM, and exports the result to SVG or PNG.

The same flows are available from the command line and to AI agents over MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return err
		}
		// The one-shot commands keep stderr for their own output unless
		// asked for more.
		if !verbose && cmd.Name() != "serve" {
			log.SetOutput(io.Discard)
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with provider API keys")
}

// loadEnvFile reads provider keys from a dotenv file. A missing file is not
// an error; variables already set in the environment win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
