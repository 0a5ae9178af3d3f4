package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the result cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached result page",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired pages and evict beyond the size cap",
	Long: `Runs the cache sweep once: expired pages are deleted and, when more
than cache.max_entries pages remain, the oldest are evicted.`,
	Args: cobra.NoArgs,
	RunE: runCachePrune,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count cached pages and show the last sweep",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if resultCache == nil {
		return errCacheNotConfigured
	}

	resultCache.InvalidateAll(cmd.Context())
	cmd.Println("Result cache cleared.")
	return nil
}

func runCachePrune(cmd *cobra.Command, _ []string) error {
	if resultCache == nil {
		return errCacheNotConfigured
	}

	res := resultCache.Prune(cmd.Context())
	cmd.Printf("Pruned %d pages (%d expired, %d evicted).\n", res.Total(), res.Expired, res.Evicted)
	return nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	if resultCache == nil {
		return errCacheNotConfigured
	}

	stats := resultCache.Stats(cmd.Context())
	cmd.Printf("Cached pages: %d\n", stats.Entries)
	cmd.Printf("Expired:      %d\n", stats.Expired)

	if scheduler == nil {
		return nil
	}
	last, err := scheduler.LastRun(cmd.Context(), domain.TaskIDCacheSweep)
	switch {
	case err != nil:
		cmd.Printf("Last sweep:   unknown (%v)\n", err)
	case last == nil:
		cmd.Println("Last sweep:   never")
	case !last.OK():
		cmd.Printf("Last sweep:   %s, failed: %s\n", last.EndedAt.Local().Format(time.DateTime), last.Error)
	default:
		cmd.Printf("Last sweep:   %s, removed %d\n", last.EndedAt.Local().Format(time.DateTime), last.Removed)
	}
	return nil
}
