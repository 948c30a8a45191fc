package workpool

import "github.com/kelseyhightower/envconfig"

// Config sizes the pool. LoadConfig reads it from WMATA_POOL_* variables,
// e.g. WMATA_POOL_WORKERS=32 WMATA_POOL_MAX_PENDING=4096.
type Config struct {
	Workers    int `envconfig:"WORKERS"     default:"16"`   // jobs running at once
	MaxPending int `envconfig:"MAX_PENDING" default:"1024"` // accepted but unfinished before Submit fails

	// ErrorHandler, when set, sees every job error and recovered panic.
	ErrorHandler func(error) `envconfig:"-"`
}

// LoadConfig returns the defaults overridden by WMATA_POOL_* variables.
func LoadConfig() (Config, error) {
	var c Config
	err := envconfig.Process("WMATA_POOL", &c)
	return c, err
}
