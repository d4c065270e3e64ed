package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/internal/diag"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/config"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/console"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/metrics"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/monitor"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/render"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/ui"
)

// App orchestrates the TUI demo, managing the lifecycle and background services.
type App struct {
	*tview.Application
	layoutManager *ui.LayoutManager
	console       *console.Console
	fallback      *diag.Channel
	monitor       *monitor.Monitor
	settings      *config.Provider
	args          *CLIArgs

	tickQueued atomic.Bool
	metricsSrv *http.Server

	appCtx    context.Context
	cancelApp context.CancelFunc

	shutdownWg sync.WaitGroup
}

// NewApp creates the application and its console. The console's logger is not yet the
// process default; the caller decides where it writes.
func NewApp(cfg config.Settings, args *CLIArgs, fallback *diag.Channel) *App {
	appCtx, cancelApp := context.WithCancel(context.Background())

	a := &App{
		Application: tview.NewApplication(),
		fallback:    fallback,
		args:        args,
		appCtx:      appCtx,
		cancelApp:   cancelApp,
	}

	a.layoutManager = ui.NewLayoutManager(a)
	a.console = console.New(cfg, a.layoutManager.LogView(),
		console.WithFallback(fallback),
		console.WithSchedulerOptions(render.WithWake(a.requestTick)))
	a.settings = config.NewProvider(a.console.Settings())
	a.settings.OnChange(a.console.Apply)
	a.monitor = monitor.FromSettings(a.console, a.console.Settings().Memory,
		monitor.WithNotify(func(level logging.Pressure, heap uint64, trimmed int) {
			logging.Warnf("Monitor: %s memory pressure at %d MiB, trimmed %d records.", level, heap>>20, trimmed)
		}))

	a.SetRoot(a.layoutManager.RootPrimitive(), true)
	a.layoutManager.SetFooter([]ui.ActionPrompt{
		{Input: "Ctrl+C", Action: "Quit"},
		{Input: "Ctrl+K", Action: "Clear"},
		{Input: "F5", Action: "Flush"},
		{Input: "F6/F7", Action: "Soft/Hard pressure"},
		{Input: "Ctrl+R", Action: "Reload config"},
		{Input: "f", Action: "Follow"},
	})
	a.setupGlobalInputCapture()

	return a
}

// Console returns the console rendering into the log view.
func (a *App) Console() *console.Console {
	return a.console
}

// Settings returns the provider the console re-reads on reload.
func (a *App) Settings() *config.Provider {
	return a.settings
}

// Layout returns the layout manager.
func (a *App) Layout() *ui.LayoutManager {
	return a.layoutManager
}

// requestTick is the scheduler wake hook. It runs on producer goroutines and queues at
// most one tick on the event loop at a time.
func (a *App) requestTick() {
	if a.tickQueued.CompareAndSwap(false, true) {
		go a.QueueUpdateDraw(a.tick)
	}
}

// tick runs on the event loop.
func (a *App) tick() {
	a.tickQueued.Store(false)
	a.console.Tick()
	a.layoutManager.Refresh()
}

func (a *App) setupGlobalInputCapture() {
	a.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			logging.Info("App: Quitting.")
			go a.Stop()
			return nil
		case tcell.KeyCtrlK:
			a.console.Clear()
			a.layoutManager.Refresh()
			return nil
		case tcell.KeyF5:
			a.console.Scheduler().ForceFlush()
			return nil
		case tcell.KeyF6:
			n := a.console.OnMemoryPressure(logging.PressureSoft)
			logging.Infof("App: Simulated soft pressure trimmed %d records.", n)
			return nil
		case tcell.KeyF7:
			n := a.console.OnMemoryPressure(logging.PressureHard)
			logging.Infof("App: Simulated hard pressure trimmed %d records.", n)
			return nil
		case tcell.KeyCtrlR:
			a.reloadConfig()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'f' {
				view := a.layoutManager.LogView()
				view.SetFollow(!view.Following())
				a.layoutManager.Refresh()
				return nil
			}
		}
		return event
	})
}

// reloadConfig re-reads the settings file and environment. Runs on the event loop.
func (a *App) reloadConfig() {
	cfg, err := LoadSettings(a.args)
	if err != nil {
		logging.Errorf("App: Failed to reload config: %v", err)
		return
	}
	a.settings.Update(cfg)
	a.layoutManager.SetStatusText("[green]Config reloaded[-]")
	logging.Infof("App: Config reloaded (capacity %d, strategy %s).", cfg.Capacity, cfg.Strategy)
}

// LoadSettings builds settings from the config file in args and SCROLLBACK_* variables.
func LoadSettings(args *CLIArgs) (config.Settings, error) {
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return config.Settings{}, err
	}
	config.FromEnv(&cfg)
	return cfg.Normalize(), nil
}

func (a *App) startBackground() {
	a.shutdownWg.Add(1)
	go func() {
		defer a.shutdownWg.Done()
		ticker := time.NewTicker(a.args.TickEvery)
		defer ticker.Stop()
		for {
			select {
			case <-a.appCtx.Done():
				return
			case <-ticker.C:
				a.requestTick()
			}
		}
	}()

	a.shutdownWg.Add(1)
	go func() {
		defer a.shutdownWg.Done()
		a.layoutManager.StartPolling(a.appCtx, 250*time.Millisecond)
	}()

	if a.monitor.Enabled() {
		a.shutdownWg.Add(1)
		go func() {
			defer a.shutdownWg.Done()
			a.monitor.Run(a.appCtx)
		}()
	}

	for i, emit := range emitters(a.console.Store(), a.console.Logger()) {
		if i >= a.args.Producers {
			break
		}
		a.shutdownWg.Add(1)
		go func(id int, emit emitter) {
			defer a.shutdownWg.Done()
			runProducer(a.appCtx, id, a.args.Rate, emit)
		}(i, emit)
	}

	if a.args.MetricsAddr != "" {
		a.startMetrics()
	}
}

func (a *App) startMetrics() {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector(a.console.Store(), a.console.Scheduler()))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	a.metricsSrv = &http.Server{Addr: a.args.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.fallback.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	logging.Infof("App: Serving metrics on %s.", a.args.MetricsAddr)
}

// Run starts the background services and the tview event loop.
func (a *App) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err = screen.Init(); err != nil {
		return err
	}
	screen.SetTitle("Scrollback Demo") // tview doesn't expose this
	a.EnableMouse(true)
	a.SetScreen(screen)

	a.startBackground()
	a.layoutManager.SetStatusText("[darkcyan]Running[-]")
	return a.Application.Run()
}

// Stop gracefully stops the application.
func (a *App) Stop() {
	a.cancelApp()
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = a.metricsSrv.Shutdown(ctx)
	}
	a.shutdownWg.Wait()
	a.console.Close()
	a.Application.Stop()
}
