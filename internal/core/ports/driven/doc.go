// Package driven declares what the core needs from the outside world.
//
// Storage, the remote API, configuration and time are reached only through
// these interfaces. Adapters under internal/adapters/driven implement them
// and cmd/sercha picks one implementation of each.
//
// KeyValueStore, SearchAPI and ConfigStore are required. The rest may be
// nil: without a SuggestionAPI no suggestions are shown, without a
// SchedulerStore entries expire only when read, and a nil Clock means
// wall-clock time.
//
// Nothing here may import an adapter package.
package driven
