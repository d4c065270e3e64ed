package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/internal/diag"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/app"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/config"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/console"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
	"github.com/spf13/cobra"
)

func main() {
	var cliArgs *app.CLIArgs

	rootCmd := &cobra.Command{
		Use:           "scrollback-demo",
		Short:         "Interactive demo of the scrollback log console",
		Long:          "Runs several log producers against a bounded in-memory store and renders it in a terminal UI.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliArgs.Normalize()
			return run(cliArgs)
		},
	}
	cliArgs = app.BindFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cliArgs *app.CLIArgs) error {
	// 1. Load settings. A broken config file is reported but not fatal.
	if err := config.LoadDotEnv(cliArgs.EnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "Ignoring env file: %v\n", err)
	}
	cfg, err := app.LoadSettings(cliArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Using default settings: %v\n", err)
		cfg = config.Default()
		config.FromEnv(&cfg)
		cfg = cfg.Normalize()
	}

	// 2. Setup the log file.
	if err := os.MkdirAll(cliArgs.LogDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	stamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(cliArgs.LogDir, fmt.Sprintf("scrollback-demo-%s.log", stamp))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	// 3. Internal diagnostics go to their own file, never into the store.
	env := "production"
	if cliArgs.Verbose {
		env = "development"
	}
	fallback, err := diag.New(env, filepath.Join(cliArgs.LogDir, fmt.Sprintf("scrollback-diag-%s.log", stamp)))
	if err != nil {
		return fmt.Errorf("failed to create diagnostics log: %w", err)
	}
	defer fallback.Sync()

	// 4. Create the App and make its logger the default.
	a := app.NewApp(cfg, cliArgs, fallback)
	mainLogger := a.Console().Logger()
	mainLogger.SetWriter(logFile)
	logging.SetDefault(mainLogger)
	console.SetDefault(a.Console())

	if cliArgs.Verbose {
		mainLogger.SetDebug(true)
		logging.Infof("Main: Verbose logging enabled.")
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				logging.Infof("Main: Build Revision: %s", setting.Value)
			}
		}
	}

	// 5. Setup OS signal trapping
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		a.Stop()
	}()

	// 6. Run the application
	logging.Infof("Main: Application starting up.")
	if err := a.Run(); err != nil {
		logging.Errorf("Main: Application exited with error: %v", err)
		return err
	}
	logging.Infof("Main: Application exited gracefully.")
	return nil
}
