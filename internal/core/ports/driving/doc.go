// Package driving holds the ports the CLI, TUI and MCP adapters call into:
// the result cache, the recent-search history, search surfaces, settings
// and the maintenance scheduler. The core services implement them.
package driving
