package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/grantdex/cmd/grantctl/ui"
	grantdex "github.com/kailas-cloud/grantdex/pkg/sdk"
)

var (
	matchSectors []string
	briefAttach  []string
)

var sectorsCmd = &cobra.Command{
	Use:   "sectors <query...>",
	Short: "Classify a query into industry sectors",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *grantdex.Client) error {
			m, err := c.MatchSectors(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if m.Degraded {
				ui.Warning(w, "degraded: the AI classifier failed")
			}
			ui.Field(w, "Source", m.Source)
			ui.Field(w, "Explanation", m.Explanation)
			for _, s := range m.Sectors {
				fmt.Fprintln(w, "  "+ui.Accent(s))
			}
			if len(m.Sectors) == 0 {
				ui.Warning(w, "no matching sectors")
			}
			return nil
		})
	},
}

var matchCmd = &cobra.Command{
	Use:   "match <query...>",
	Short: "Rank grants against a query with the AI matcher",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *grantdex.Client) error {
			r, err := c.MatchGrants(ctx, strings.Join(args, " "), matchSectors...)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if r.Degraded {
				ui.Warning(w, "degraded: neutral ranking")
			}
			ui.Field(w, "Sectors", strings.Join(r.Sectors, ", "))
			ui.Field(w, "Explanation", r.Explanation)

			rows := make([][]string, len(r.Grants))
			for i, g := range r.Grants {
				rows[i] = []string{ui.Accent(g.GrantID), ui.Score(g.Score), strings.Join(g.Reasons, "; ")}
			}
			ui.Table(w, []string{"ID", "SCORE", "REASONS"}, rows)
			ui.Verbosef(w, "AI tokens: %d", r.AITokens)
			return nil
		})
	},
}

var briefCmd = &cobra.Command{
	Use:   "brief <description...>",
	Short: "Bucket every grant against a project description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		attachments := make([]string, 0, len(briefAttach))
		for _, path := range briefAttach {
			b, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read attachment: %w", err)
			}
			attachments = append(attachments, string(b))
		}

		return withClient(cmd, func(ctx context.Context, c *grantdex.Client) error {
			br, err := c.MatchBrief(ctx, strings.Join(args, " "), attachments...)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if br.Degraded {
				ui.Warning(w, "degraded: every grant scored neutral")
			}
			ui.Field(w, "Explanation", br.Explanation)
			printBucket(w, "High match", br.High)
			printBucket(w, "Medium match", br.Medium)
			if verbose {
				printBucket(w, "Low match", br.Low)
			} else {
				fmt.Fprintf(w, "%d low matches (use --verbose to list)\n", len(br.Low))
			}
			return nil
		})
	},
}

func init() {
	matchCmd.Flags().StringSliceVar(&matchSectors, "sector", nil, "sectors to match within; classified from the query when empty")
	briefCmd.Flags().StringSliceVarP(&briefAttach, "attach", "a", nil, "text file appended to the brief (repeatable)")
	rootCmd.AddCommand(sectorsCmd, matchCmd, briefCmd)
}

func printBucket(w io.Writer, title string, items []grantdex.BriefMatch) {
	ui.Heading(w, "%s (%d)", title, len(items))
	rows := make([][]string, len(items))
	for i, m := range items {
		rows[i] = []string{ui.Accent(m.GrantID), ui.Truncate(m.Name, 56), ui.Score(m.Score)}
	}
	ui.Table(w, []string{"ID", "NAME", "SCORE"}, rows)
}
