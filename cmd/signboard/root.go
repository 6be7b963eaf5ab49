package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kostyay/signboard/internal/client"
	"github.com/kostyay/signboard/internal/config"
	"github.com/kostyay/signboard/internal/discovery"
	"github.com/kostyay/signboard/internal/eventloop"
	"github.com/kostyay/signboard/internal/logging"
	"github.com/kostyay/signboard/internal/model"
	"github.com/kostyay/signboard/internal/output"
	"github.com/kostyay/signboard/internal/protocol"
	"github.com/kostyay/signboard/internal/transport"
	"github.com/kostyay/signboard/internal/ui"
)

var (
	configPath  string
	jsonOutput  bool
	metricsAddr string
	jsonTimeout time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default $XDG_CONFIG_HOME/signboard/settings.yaml)")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print one board snapshot as JSON and exit (for scripting/agent consumption)")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9300")
	rootCmd.Flags().DurationVar(&jsonTimeout, "timeout", 15*time.Second, "How long --json waits for images and weather")
}

var rootCmd = &cobra.Command{
	Use:   "signboard",
	Short: "Signage board - duty rosters, weather and a clock from a live backend",
	Long: `signboard is a full-screen display client for a digital signage board.

It discovers the backend's WebSocket address, keeps a connection open and
rotates the duty-roster images it receives next to a weather summary and a
clock. When stdout is not a terminal it runs headless and logs what it shows.

  signboard                 # full-screen board
  signboard --json          # one snapshot of the board state as JSON
  signboard config init     # write the default settings file`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		if metricsAddr != "" {
			settings.MetricsAddr = metricsAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if jsonOutput {
			logging.InitLogger(settings.Log.Level, settings.Log.Format, os.Stderr)
			return runJSONMode(ctx, settings, os.Stdout)
		}

		headless := !term.IsTerminal(int(os.Stdout.Fd()))
		closeLog, err := initBoardLogging(settings, headless)
		if err != nil {
			return err
		}
		defer closeLog()

		return runBoard(ctx, settings, headless)
	},
}

// loadSettings reads the settings file, applies .env and SIGNBOARD_*
// overrides, then validates.
func loadSettings() (*config.Settings, error) {
	config.LoadDotEnv()

	var (
		settings *config.Settings
		err      error
	)
	if configPath != "" {
		settings, err = config.LoadSettingsFrom(configPath)
	} else {
		settings, err = config.LoadSettings()
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if err := config.ApplyEnv(settings); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

// initBoardLogging sends logs to stdout when headless. In TUI mode the
// renderer owns stdout, so logs go to the configured file or nowhere.
func initBoardLogging(settings *config.Settings, headless bool) (func(), error) {
	if headless {
		logging.InitLogger(settings.Log.Level, settings.Log.Format, os.Stdout)
		return func() {}, nil
	}
	if settings.Log.File == "" {
		logging.Discard()
		return func() {}, nil
	}

	// #nosec G304 - log path comes from the user's own settings
	f, err := os.OpenFile(settings.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logging.InitLogger(settings.Log.Level, settings.Log.Format, f)
	return func() { _ = f.Close() }, nil
}

// displaySink receives everything the network side produces.
type displaySink interface {
	protocol.Display
	ShowStatus(model.ConnectionStatus)
}

// startClient runs the event loop and the connection manager until ctx is
// done. The returned manager must be closed by the caller.
func startClient(ctx context.Context, settings *config.Settings, sink displaySink) *client.Manager {
	loop := eventloop.New(clockwork.NewRealClock())
	go loop.Run(ctx)

	handler := protocol.NewHandler(loop, sink, len(settings.Items))
	mgr := client.New(client.Config{
		Scheduler:      loop,
		Resolver:       discovery.NewResolver(settings.DiscoveryURL()),
		Dialer:         transport.NewDialer(settings.Timing.HandshakeTimeout),
		ReconnectDelay: settings.Timing.ReconnectDelay,
		DiscoveryPoll:  settings.Timing.DiscoveryPoll,
		OnMessage:      handler.Handle,
		OnStatus:       sink.ShowStatus,
	})
	mgr.Start(ctx)

	slog.Info("signboard.started",
		"component", "main",
		"discovery", settings.DiscoveryURL(),
		"items", len(settings.Items),
	)
	return mgr
}

func runBoard(ctx context.Context, settings *config.Settings, headless bool) error {
	if err := config.InitTheme(); err != nil {
		slog.Warn("signboard.theme_failed", "component", "main", "error", err)
	}
	stopMetrics := startMetrics(settings.MetricsAddr)
	defer stopMetrics()

	m, err := ui.NewModel(ui.Config{
		Items:         settings.ContentItems(),
		WeatherTiming: settings.WeatherTiming(),
		ClockInterval: settings.Timing.Clock,
		Animations:    settings.Animations,
		Headless:      headless,
	})
	if err != nil {
		return err
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if headless {
		opts = []tea.ProgramOption{tea.WithoutRenderer(), tea.WithInput(nil)}
	}
	p := tea.NewProgram(m, opts...)

	netCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	mgr := startClient(netCtx, settings, ui.NewProgramDisplay(p))
	defer mgr.Close()

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run board: %w", err)
	}
	return nil
}

func runJSONMode(ctx context.Context, settings *config.Settings, w io.Writer) error {
	collector := output.NewCollector(settings.ContentItems())

	netCtx, cancel := context.WithTimeout(ctx, jsonTimeout)
	defer cancel()
	mgr := startClient(netCtx, settings, collector)
	defer mgr.Close()

	select {
	case <-collector.Ready():
	case <-netCtx.Done():
	}

	out := collector.Output(time.Now())
	if err := output.RenderJSON(w, out); err != nil {
		return fmt.Errorf("render JSON: %w", err)
	}
	if !out.Complete {
		return errors.New("timed out waiting for images and weather")
	}
	return nil
}

// startMetrics serves /metrics when addr is set. The returned func shuts
// the server down.
func startMetrics(addr string) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics.serve_failed", "component", "metrics", "addr", addr, "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
