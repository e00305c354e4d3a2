package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pyqs-uploader",
	Short: "Web form that turns uploaded question papers into pull requests",
	Long: `pyqs-uploader serves an upload form for previous year question papers.
Each submitted PDF is committed to a new branch of the configured repository
through a GitHub App and proposed as a pull request for review.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}
