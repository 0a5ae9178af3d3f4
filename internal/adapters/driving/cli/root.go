// Package cli provides the cobra command tree for the sercha client.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-client/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services bundles the driving ports the commands run against.
type Services struct {
	Surfaces        driving.SurfaceFactory
	Cache           driving.ResultCache
	History         driving.SearchHistory
	Settings        driving.SettingsService
	Scheduler       driving.Scheduler
	SchedulerConfig domain.SchedulerConfig
}

var (
	surfaces        driving.SurfaceFactory
	resultCache     driving.ResultCache
	searchHistory   driving.SearchHistory
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
	schedulerConfig domain.SchedulerConfig
)

var (
	errSurfacesNotConfigured = errors.New("search surfaces not configured")
	errCacheNotConfigured    = errors.New("result cache not configured")
	errHistoryNotConfigured  = errors.New("search history not configured")
	errSettingsNotConfigured = errors.New("settings service not configured")
)

var (
	verbose bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "sercha",
	Short: "Search client with result caching and recent-search history",
	Long: `sercha queries a remote search API, caches result pages locally and
keeps a short list of recent searches.

Run 'sercha tui' for the interactive search surface.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetJSON(logJSON)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON lines")
}

// SetServices injects the services built by the composition root.
func SetServices(s Services) {
	surfaces = s.Surfaces
	resultCache = s.Cache
	searchHistory = s.History
	settingsService = s.Settings
	scheduler = s.Scheduler
	schedulerConfig = s.SchedulerConfig
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Command output goes to stdout.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

// startScheduler runs the background sweep for long-running commands.
// The returned function stops it.
func startScheduler(cmd *cobra.Command) func() {
	if scheduler == nil || !schedulerConfig.Enabled {
		return func() {}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			// Scheduler errors never block the foreground command.
			logger.Warn("scheduler stopped: %v", err)
		}
	}()

	return func() {
		if err := scheduler.Stop(); err != nil {
			logger.Warn("scheduler stop error: %v", err)
		}
		cancel()
		<-done
	}
}
