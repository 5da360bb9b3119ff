package driving

import "github.com/udigitrentals/github-kb/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings with defaults applied.
	Get() (*domain.Settings, error)

	// Set stores one configuration key after validating its value.
	Set(key, value string) error

	// Validate checks that the configured backend can be used.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
