package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive search surface",
	Long: `Launch the interactive terminal search surface.

Suggestions appear as you type, recent searches are shown while the
query is empty and results are marked cached or live.

Controls:
  type       - Query (suggestions after a short pause)
  Enter      - Search / Select
  ↓/↑, j/k   - Move between input, panels and results
  d          - Remove the highlighted recent search
  ctrl+x     - Clear recent searches
  /, Esc     - Back to the input
  ?          - Toggle help
  ctrl+c     - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(surfaces))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// The TUI is long-running, so it carries the background sweep.
	stop := startScheduler(cmd)
	defer stop()

	if err := app.Run(cmd.Context()); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
