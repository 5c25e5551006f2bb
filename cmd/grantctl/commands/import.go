package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/cmd/grantctl/ui"
	dbRedis "github.com/kailas-cloud/grantdex/internal/db/redis"
	"github.com/kailas-cloud/grantdex/internal/repository/grants"
)

var (
	importPrefix string
	importPrune  bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Copy a YAML/JSON grant corpus into Redis",
	Long: `import loads a grant corpus file and writes every grant as a JSON document
under <prefix><id> in the Redis instance given by --redis. Existing documents with
the same id are overwritten; --prune also deletes documents whose id is not
in the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importPrefix, "prefix", "", `key prefix (default "grantdex:grant:")`)
	importCmd.Flags().BoolVar(&importPrune, "prune", false, "delete stored grants missing from the file")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	addr := orEnv(redisAddr, "VALKEY_ADDR")
	if addr == "" {
		return errors.New("import needs --redis or VALKEY_ADDR")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	logger := zap.NewNop()
	corpus, err := grants.NewFileSource(args[0], logger).Load(ctx)
	if err != nil {
		return err
	}
	if len(corpus) == 0 {
		return fmt.Errorf("no grants in %s", args[0])
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    []string{addr},
		Password: orEnv(redisPassword, "VALKEY_PASSWORD"),
	})
	if err != nil {
		return fmt.Errorf("create redis store: %w", err)
	}
	defer store.Close()
	if err := store.WaitForReady(ctx, timeout); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	src := grants.NewRedisSource(store, importPrefix, logger)
	if err := src.Put(ctx, corpus); err != nil {
		return err
	}
	ui.Success(cmd.OutOrStdout(), "imported %d grants into %s", len(corpus), addr)

	if importPrune {
		n, err := src.Prune(ctx, corpus)
		if err != nil {
			return err
		}
		ui.Success(cmd.OutOrStdout(), "pruned %d stale grants", n)
	}
	return nil
}
