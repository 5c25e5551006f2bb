package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/grantdex/cmd/grantctl/ui"
	grantdex "github.com/kailas-cloud/grantdex/pkg/sdk"
)

var (
	searchMode    string
	searchSort    string
	searchLimit   int
	searchPage    int
	searchOrgs    []string
	searchSectors []string
	searchTags    []string
	searchPreset  string
	searchStatus  string
	searchMin     float64
	searchMax     float64
	suggestLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search grants by free text and filters",
	Example: `  grantctl search solceller --sort relevance
  grantctl search --org Vinnova --preset 3months --sort deadline-asc
  grantctl search "havsbaserad vindkraft" --mode ai`,
	RunE: runSearch,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <prefix>",
	Short: "Complete a prefix from grant titles, organizations and tags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(_ context.Context, c *grantdex.Client) error {
			for _, s := range c.Suggestions(strings.Join(args, " "), suggestLimit) {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		})
	},
}

var orgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "List grant-giving organizations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(_ context.Context, c *grantdex.Client) error {
			for _, o := range c.Organizations() {
				fmt.Fprintln(cmd.OutOrStdout(), o)
			}
			return nil
		})
	},
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchMode, "mode", "m", "local", "search mode: local, remote or ai")
	f.StringVarP(&searchSort, "sort", "s", "default", "sort: default, deadline-asc, deadline-desc, amount-asc, amount-desc, created-desc, relevance, matching")
	f.IntVarP(&searchLimit, "limit", "n", 15, "results per page")
	f.IntVarP(&searchPage, "page", "p", 1, "page number")
	f.StringSliceVar(&searchOrgs, "org", nil, "organization filter (repeatable)")
	f.StringSliceVar(&searchSectors, "sector", nil, "sector filter (repeatable)")
	f.StringSliceVar(&searchTags, "tag", nil, "tag filter (repeatable)")
	f.StringVar(&searchPreset, "preset", "", "deadline preset: urgent, 2weeks, 1month, 3months, 6months, 1year")
	f.StringVar(&searchStatus, "status", "", "status: open or upcoming")
	f.Float64Var(&searchMin, "min-amount", 0, "minimum funding amount")
	f.Float64Var(&searchMax, "max-amount", 0, "maximum funding amount")

	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 5, "maximum suggestions")

	rootCmd.AddCommand(searchCmd, suggestCmd, orgsCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	q := grantdex.Query{
		Text:  strings.Join(args, " "),
		Mode:  grantdex.Mode(searchMode),
		Sort:  grantdex.SortKey(searchSort),
		Page:  searchPage,
		Limit: searchLimit,
		Filters: grantdex.Filters{
			Organizations:  searchOrgs,
			Sectors:        searchSectors,
			Tags:           searchTags,
			DeadlinePreset: searchPreset,
			Status:         searchStatus,
		},
	}
	if cmd.Flags().Changed("min-amount") {
		q.Filters.FundingMin = &searchMin
	}
	if cmd.Flags().Changed("max-amount") {
		q.Filters.FundingMax = &searchMax
	}

	return withClient(cmd, func(ctx context.Context, c *grantdex.Client) error {
		page, err := c.Search(ctx, q)
		if err != nil {
			return err
		}
		printPage(cmd, page)
		return nil
	})
}

func printPage(cmd *cobra.Command, page grantdex.Page) {
	w := cmd.OutOrStdout()
	if page.Degraded {
		ui.Warning(w, "degraded: a fallback produced these results")
	}
	if len(page.Sectors) > 0 {
		ui.Field(w, "Sectors", strings.Join(page.Sectors, ", "))
	}
	ui.Field(w, "Explanation", page.Explanation)

	rows := make([][]string, len(page.Hits))
	for i, h := range page.Hits {
		score := "-"
		if h.Scored {
			score = ui.Score(h.Score)
		}
		rows[i] = []string{
			ui.Accent(h.Grant.ID),
			ui.Truncate(h.Grant.Title, 48),
			h.Grant.Organization,
			h.Grant.FundingAmount,
			deadlineText(h.Grant.Deadline),
			score,
		}
	}
	ui.Table(w, []string{"ID", "TITLE", "ORGANIZATION", "FUNDING", "DEADLINE", "SCORE"}, rows)

	more := ""
	if page.HasMore {
		more = fmt.Sprintf(", next: --page %d", page.Page+1)
	}
	ui.Success(w, "page %d/%d, %d grants (%s%s)", page.Page, max(page.TotalPages, 1), page.Total, page.Mode, more)
	if page.CacheHit {
		ui.Verbosef(w, "served from cache")
	}
	if page.AITokens > 0 {
		ui.Verbosef(w, "AI tokens: %d", page.AITokens)
	}
}

func deadlineText(d string) string {
	if d == "" {
		return "not specified"
	}
	return d
}
