package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/model"
	"github.com/Veraticus/hscode/internal/quota"
	"github.com/Veraticus/hscode/internal/report"
	"github.com/spf13/viper"
)

// SetDefaults registers default values for every configuration key.
func SetDefaults() {
	viper.SetDefault("llm.provider", "gemini")
	viper.SetDefault("llm.max_retries", 3)
	viper.SetDefault("llm.retry_delay", "1s")
	viper.SetDefault("llm.cache_ttl", "1h")
	viper.SetDefault("llm.rate_limit", 30)
	viper.SetDefault("llm.timeout", "90s")
	viper.SetDefault("database.path", DefaultDatabasePath())
	viper.SetDefault("quota.guest", quota.DefaultGuestCeiling)
	viper.SetDefault("quota.authenticated", quota.DefaultAuthenticatedCeiling)
	viper.SetDefault("quota.timezone", "Local")
	viper.SetDefault("export.dir", ".")
	viper.SetDefault("export.page_size", "A4")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// DatabasePath returns the expanded database path.
func DatabasePath() string {
	path := viper.GetString("database.path")
	if path == "" {
		path = DefaultDatabasePath()
	}
	return ExpandPath(path)
}

// LoadQuotaConfig builds the quota tracker configuration.
func LoadQuotaConfig() (quota.Config, error) {
	cfg := quota.DefaultConfig()

	if viper.IsSet("quota.guest") {
		cfg.Ceilings[model.IdentityGuest] = viper.GetInt("quota.guest")
	}
	if viper.IsSet("quota.authenticated") {
		cfg.Ceilings[model.IdentityAuthenticated] = viper.GetInt("quota.authenticated")
	}
	for class, ceiling := range cfg.Ceilings {
		if ceiling < 0 {
			return quota.Config{}, fmt.Errorf("%w: quota.%s must not be negative", common.ErrInvalidConfig, class)
		}
	}

	if tz := viper.GetString("quota.timezone"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return quota.Config{}, fmt.Errorf("%w: quota.timezone: %w", common.ErrInvalidConfig, err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

// LoadExportOptions reads PDF export settings.
func LoadExportOptions() report.Options {
	return report.Options{
		FontPath: ExpandPath(viper.GetString("export.font")),
		PageSize: viper.GetString("export.page_size"),
	}
}

// ExportDir returns the expanded default directory for exported files.
func ExportDir() string {
	dir := viper.GetString("export.dir")
	if dir == "" {
		dir = "."
	}
	return ExpandPath(dir)
}
