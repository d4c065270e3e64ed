package app

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	args := BindFlags(fs)
	if err := fs.Parse([]string{"-c", "s.toml", "--producers=2", "--rate", "0", "-v", "--tick=-1s"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	args.Normalize()

	if args.ConfigPath != "s.toml" || args.Producers != 2 || !args.Verbose {
		t.Errorf("Unexpected args: %+v", args)
	}
	if args.Rate != 1 || args.TickEvery != 50*time.Millisecond {
		t.Errorf("Normalize must fix rate and tick, got %+v", args)
	}
	if args.LogDir != "." || args.EnvFile != ".env" {
		t.Errorf("Unexpected defaults: %+v", args)
	}
}
