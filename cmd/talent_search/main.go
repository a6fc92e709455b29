// Package main provides the talent search CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logJSON    bool
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "talent_search",
	Short: "Recruiter talent search over stored resumes",
	Long: `talent_search answers natural-language recruiter queries such as
"Senior Java developer in Pune with 5+ years" over a store of candidate resumes.
Queries are parsed into structured constraints, strictly filtered, ranked by
semantic similarity, and fused into a single scored list.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yml (defaults plus TALENT_* env when empty)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit JSON logs")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
