package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/grantdex/cmd/grantctl/ui"
	grantdex "github.com/kailas-cloud/grantdex/pkg/sdk"
)

var grantCmd = &cobra.Command{
	Use:   "grant <id>",
	Short: "Show one grant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(_ context.Context, c *grantdex.Client) error {
			g, err := c.Grant(args[0])
			if err != nil {
				return err
			}
			printGrant(cmd, g)
			return nil
		})
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the grant source and corpus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, c *grantdex.Client) error {
			h := c.Health(ctx)
			w := cmd.OutOrStdout()
			for name, status := range h.Checks {
				ui.Field(w, name, status)
			}
			if h.Status != "ok" {
				return fmt.Errorf("status %s (%d grants)", h.Status, h.Grants)
			}
			ui.Success(w, "ok, %d grants", h.Grants)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(grantCmd, healthCmd)
}

func printGrant(cmd *cobra.Command, g grantdex.Grant) {
	w := cmd.OutOrStdout()
	ui.Heading(w, "%s", g.Title)
	ui.Field(w, "ID", g.ID)
	ui.Field(w, "Organization", g.Organization)
	ui.Field(w, "Funding", g.FundingAmount)
	ui.Field(w, "Deadline", deadlineText(g.Deadline))
	ui.Field(w, "Opens", g.OpensAt)
	ui.Field(w, "Sectors", strings.Join(g.Sectors, ", "))
	ui.Field(w, "Tags", strings.Join(g.Tags, ", "))
	ui.Field(w, "Applicants", strings.Join(g.ApplicantTypes, ", "))
	ui.Field(w, "Geography", strings.Join(g.GeographicScope, ", "))
	if g.CofinancingRequired {
		ui.Field(w, "Cofinancing", fmt.Sprintf("required (%.0f%%)", g.CofinancingLevel))
	}
	ui.Field(w, "URL", g.URL)
	if g.Description != "" {
		fmt.Fprintf(w, "\n%s\n", g.Description)
	}
	if g.Qualifications != "" {
		ui.Heading(w, "\nQualifications")
		fmt.Fprintln(w, g.Qualifications)
	}
}
