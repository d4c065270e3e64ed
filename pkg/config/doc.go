// Package config holds the settings snapshot the log pipeline re-reads on apply.
//
// Example:
//
//	_ = config.LoadDotEnv()
//	cfg, err := config.Load("scrollback.toml")
//	if err != nil {
//	    cfg = config.Default()
//	}
//	config.FromEnv(&cfg)
//	provider := config.NewProvider(cfg)
package config
