package driving

import "github.com/custodia-labs/sercha-client/internal/core/domain"

// SettingsService reads and writes the client configuration.
type SettingsService interface {
	// Get returns the stored settings with defaults for unset keys.
	Get() (*domain.AppSettings, error)

	// Save writes every field of settings.
	Save(settings *domain.AppSettings) error

	// Validate reports the first setting the client cannot run with.
	Validate() error

	GetDefaults() domain.AppSettings

	// ConfigPath is where Save writes.
	ConfigPath() string
}
