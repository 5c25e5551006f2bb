package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/grantdex/cmd/grantctl/ui"
	grantdex "github.com/kailas-cloud/grantdex/pkg/sdk"
)

var (
	grantsFile    string
	redisAddr     string
	redisPassword string
	sqlDriver     string
	sqlDSN        string
	remoteURL     string
	remoteKey     string
	aiProvider    string
	aiKey         string
	aiModel       string
	timeout       time.Duration
	verbose       bool
	noColor       bool
)

var rootCmd = &cobra.Command{
	Use:   "grantctl",
	Short: "Search and match funding opportunities from the command line",
	Long: `grantctl runs the grantdex search pipeline against a grant corpus loaded from
a YAML/JSON file, Redis or a SQL database. AI sector classification and grant
matching are enabled when an API key is available.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		ui.InitUI(noColor, verbose)
		return nil
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&grantsFile, "grants", "g", "", "grant corpus file (env GRANTS_FILE)")
	f.StringVar(&redisAddr, "redis", "", "Redis address of the grant corpus (env VALKEY_ADDR)")
	f.StringVar(&redisPassword, "redis-password", "", "Redis password (env VALKEY_PASSWORD)")
	f.StringVar(&sqlDriver, "sql-driver", "postgres", "SQL driver: postgres or sqlite3")
	f.StringVar(&sqlDSN, "sql", "", "SQL DSN of the grant corpus (env GRANTS_DSN)")
	f.StringVar(&remoteURL, "remote", "", "filtered-grants-search endpoint for remote mode (env REMOTE_SEARCH_URL)")
	f.StringVar(&remoteKey, "remote-key", "", "API key of the remote endpoint (env REMOTE_SEARCH_KEY)")
	f.StringVar(&aiProvider, "ai-provider", "", "AI provider: openai or gemini (env AI_PROVIDER)")
	f.StringVar(&aiKey, "ai-key", "", "AI API key (env OPENAI_API_KEY or GEMINI_API_KEY)")
	f.StringVar(&aiModel, "ai-model", "", "AI model (env AI_MODEL)")
	f.DurationVar(&timeout, "timeout", 2*time.Minute, "overall command timeout")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	f.BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openClient builds an SDK client from flags, falling back to the environment.
func openClient(ctx context.Context) (*grantdex.Client, error) {
	var opts []grantdex.Option

	switch {
	case sqlDSN != "" || (grantsFile == "" && redisAddr == "" && os.Getenv("GRANTS_DSN") != ""):
		opts = append(opts, grantdex.WithSQL(sqlDriver, orEnv(sqlDSN, "GRANTS_DSN")))
	case redisAddr != "" || (grantsFile == "" && os.Getenv("VALKEY_ADDR") != ""):
		opts = append(opts, grantdex.WithRedis(orEnv(redisAddr, "VALKEY_ADDR"), orEnv(redisPassword, "VALKEY_PASSWORD")))
	default:
		path := orEnv(grantsFile, "GRANTS_FILE")
		if path == "" {
			path = "data/grants.yaml"
		}
		opts = append(opts, grantdex.WithGrantsFile(path))
	}

	if u := orEnv(remoteURL, "REMOTE_SEARCH_URL"); u != "" {
		opts = append(opts, grantdex.WithRemote(u, orEnv(remoteKey, "REMOTE_SEARCH_KEY")))
	}

	comp, err := buildCompleter(ctx)
	if err != nil {
		return nil, err
	}
	if comp != nil {
		opts = append(opts, grantdex.WithCompleter(providerName(), comp))
	}

	if verbose {
		opts = append(opts, grantdex.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	}

	client, err := grantdex.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("open grant corpus: %w", err)
	}
	ui.Verbosef(os.Stderr, "loaded %d grants", client.Len())
	return client, nil
}

// withClient runs fn with a connected client under the command timeout.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *grantdex.Client) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	c, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}

func orEnv(v, key string) string {
	if v != "" {
		return v
	}
	return os.Getenv(key)
}
