package scheduler

import (
	"time"
	// Embedded zone database for images without /usr/share/zoneinfo.
	_ "time/tzdata"

	"github.com/smallbiznis/salesinvoice/internal/config"
	"go.uber.org/zap"
)

// Config controls the closing scheduler.
type Config struct {
	Enabled     bool
	RunInterval time.Duration
	JobTimeout  time.Duration
	Location    *time.Location
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Hour,
		JobTimeout:  10 * time.Minute,
		Location:    time.UTC,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.Location == nil {
		c.Location = defaults.Location
	}
	return c
}

func ProvideConfig(cfg config.Config, log *zap.Logger) Config {
	out := Config{
		Enabled:     cfg.AutoClose,
		RunInterval: time.Duration(cfg.AutoCloseIntervalMinutes) * time.Minute,
	}
	loc, err := time.LoadLocation(cfg.BusinessTimeZone)
	if err != nil {
		log.Named("scheduler").Warn("unknown business time zone, using UTC",
			zap.String("time_zone", cfg.BusinessTimeZone),
			zap.Error(err),
		)
		loc = time.UTC
	}
	out.Location = loc
	return out.withDefaults()
}
