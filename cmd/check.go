package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify app credentials and the base branch",
		Long: `Mint an installation token and resolve the base branch of the target
repository without changing anything. Use it to validate a deployment.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer func() { _ = c.logger.Sync() }()
			if err := c.cfg.ValidateForUploads(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), c.cfg.UploadTimeout)
			defer cancel()
			result, err := c.checkOrchestrator().Execute(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Repository:\t%s/%s\n", c.cfg.RepoOwner, c.cfg.RepoName)
			fmt.Fprintf(out, "Token expires:\t%s\n", result.TokenExpiresAt.Format(time.RFC3339))
			fmt.Fprintf(out, "Base branch:\t%s @ %s\n", result.BaseBranch, result.BaseSHA)
			return nil
		},
	}
}
