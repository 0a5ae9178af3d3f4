package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recent searches",
	Long: `Lists, removes and clears recent searches. Entries older than the
configured history TTL are dropped when the list is read.`,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent searches, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove [query]",
	Short: "Remove one recent search",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRemove,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all recent searches",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyRemoveCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if searchHistory == nil {
		return errHistoryNotConfigured
	}

	entries := searchHistory.List(cmd.Context())
	if wantJSON(cmd, historyJSON) {
		if entries == nil {
			entries = []domain.RecentSearchEntry{}
		}
		return outputJSON(cmd, entries)
	}

	if len(entries) == 0 {
		cmd.Println("No recent searches.")
		return nil
	}
	for i, e := range entries {
		cmd.Printf("  [%d] %s  (%d results, %s)\n",
			i+1, e.Query, e.ResultCount, e.LastSearchedAt.Local().Format(time.DateTime))
	}
	return nil
}

func runHistoryRemove(cmd *cobra.Command, args []string) error {
	if searchHistory == nil {
		return errHistoryNotConfigured
	}

	searchHistory.Remove(cmd.Context(), args[0])
	cmd.Printf("Removed %q from recent searches.\n", args[0])
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if searchHistory == nil {
		return errHistoryNotConfigured
	}

	searchHistory.Clear(cmd.Context())
	cmd.Println("Recent searches cleared.")
	return nil
}
