package app

import (
	"time"

	"github.com/spf13/pflag"
)

// CLIArgs holds all command-line arguments passed to the demo.
type CLIArgs struct {
	ConfigPath  string
	EnvFile     string
	LogDir      string
	Verbose     bool
	Producers   int
	Rate        int
	MetricsAddr string
	TickEvery   time.Duration
}

// BindFlags registers the demo flags on fs and returns the struct they fill.
func BindFlags(fs *pflag.FlagSet) *CLIArgs {
	args := &CLIArgs{}

	fs.StringVarP(&args.ConfigPath, "config", "c", "", "Path to a .json5 or .toml settings file.")
	fs.StringVar(&args.EnvFile, "env-file", ".env", "Optional dotenv file with SCROLLBACK_* overrides.")
	fs.StringVar(&args.LogDir, "log-dir", ".", "Specifies the directory to store log files.")
	fs.BoolVarP(&args.Verbose, "verbose", "v", false, "Enable verbose (debug) logging.")
	fs.IntVar(&args.Producers, "producers", 4, "Number of goroutines generating log traffic.")
	fs.IntVar(&args.Rate, "rate", 20, "Messages per second per producer.")
	fs.StringVar(&args.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090.")
	fs.DurationVar(&args.TickEvery, "tick", 50*time.Millisecond, "Background tick interval for the render scheduler.")

	return args
}

// Normalize replaces unusable values with the defaults.
func (a *CLIArgs) Normalize() {
	if a.Producers < 0 {
		a.Producers = 0
	}
	if a.Rate < 1 {
		a.Rate = 1
	}
	if a.TickEvery <= 0 {
		a.TickEvery = 50 * time.Millisecond
	}
	if a.LogDir == "" {
		a.LogDir = "."
	}
}
