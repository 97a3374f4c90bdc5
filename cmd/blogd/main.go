package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var configDir string

	rootCmd := &cobra.Command{
		Use:           "blogd",
		Short:         "Blog content server",
		Long:          `blogd serves blog posts, comments and tag suggestions over HTTP.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "", "directory containing config.yaml")

	serveCmd := NewServeCommand(&configDir)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(NewMigrateCommand(&configDir))
	rootCmd.AddCommand(NewSeedCommand(&configDir))

	// 无子命令时等同 serve
	rootCmd.RunE = serveCmd.RunE
	return rootCmd
}
