package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/titulos-monitor/titulos-monitor/internal/checker"
	"github.com/titulos-monitor/titulos-monitor/internal/config"
	"github.com/titulos-monitor/titulos-monitor/internal/logger"
	"github.com/titulos-monitor/titulos-monitor/internal/metrics"
	"github.com/titulos-monitor/titulos-monitor/internal/monitor"
	"github.com/titulos-monitor/titulos-monitor/internal/notifier"
	"github.com/titulos-monitor/titulos-monitor/internal/scheduler"
	"github.com/titulos-monitor/titulos-monitor/internal/server"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// ShutdownTimeout bounds the stop sequence, including the final Telegram message
const ShutdownTimeout = 10 * time.Second

type options struct {
	envFile    string
	dryRun     bool
	checkMode  string
	interval   string
	logLevel   string
	logFormat  string
	statusAddr string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "titulos-monitor",
		Short: "Watch the títulos validation page and report availability on Telegram",
		Long: `Periodically checks whether the títulos validation appointment page is reachable
and sends Telegram notifications when its availability changes.

Configuration is read from the environment (and a .env file when present).
Flags override the matching environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if err := setupLogger(cfg); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts.dryRun)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "Env file to load before reading the environment")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print messages instead of sending them")
	cmd.Flags().StringVar(&opts.checkMode, "check-mode", "", "Check mode: browser or http (env: CHECK_MODE)")
	cmd.Flags().StringVar(&opts.interval, "interval", "", "Polling interval in minutes (env: INTERVALO_MINUTOS)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: DEBUG, INFO, WARN or ERROR (env: LOG_LEVEL)")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json (env: LOG_FORMAT)")
	cmd.Flags().StringVar(&opts.statusAddr, "status-addr", "", "Listen address of the status endpoint, e.g. :9090 (env: STATUS_ADDR)")

	return cmd
}

// loadConfig reads the environment, applies flags that were set explicitly and validates the result
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	flags := cmd.Flags()

	if err := config.LoadDotEnv(opts.envFile, flags.Changed("env-file")); err != nil {
		return nil, err
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	if flags.Changed("check-mode") {
		cfg.CheckMode = opts.checkMode
	}
	if flags.Changed("interval") {
		interval, err := config.ParseIntervalMinutes(opts.interval)
		if err != nil {
			return nil, fmt.Errorf("--interval: %w", err)
		}
		cfg.Interval = interval
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if flags.Changed("status-addr") {
		cfg.StatusAddr = opts.statusAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(cfg *config.Config) error {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, format, os.Stdout))
	return nil
}

func newChecker(cfg *config.Config) checker.Checker {
	if cfg.CheckMode == config.ModeHTTP {
		return checker.NewHTTPChecker(cfg.TargetURL, cfg.BlockedMarker, cfg.NavigationTimeout)
	}
	return checker.NewBrowserChecker(
		checker.ChromeLauncher(cfg.ChromePath),
		cfg.TargetURL,
		cfg.BlockedMarker,
		checker.WithNavigationTimeout(cfg.NavigationTimeout),
		checker.WithSettleDelay(cfg.SettleDelay),
	)
}

func newNotifier(cfg *config.Config, dryRun bool) (notifier.Notifier, error) {
	if dryRun {
		return notifier.NewDryRunNotifier(), nil
	}

	tg, err := notifier.NewTelegramNotifier(cfg.BotToken, cfg.PrivateChatID, cfg.BroadcastChatID)
	if err != nil {
		return nil, fmt.Errorf("creating telegram notifier: %w", err)
	}
	if !cfg.Twitter.Enabled() {
		return tg, nil
	}

	tw, err := notifier.NewTwitterNotifier(
		cfg.Twitter.APIKey,
		cfg.Twitter.APISecret,
		cfg.Twitter.AccessToken,
		cfg.Twitter.AccessSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("creating twitter notifier: %w", err)
	}
	logger.Info("Twitter mirror enabled", nil)
	return notifier.Multi{tg, tw}, nil
}

func run(parent context.Context, cfg *config.Config, dryRun bool) error {
	if parent == nil {
		parent = context.Background()
	}

	n, err := newNotifier(cfg, dryRun)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mon := monitor.New(newChecker(cfg), n, monitor.Options{
		TargetURL: cfg.TargetURL,
		Interval:  cfg.Interval,
		Metrics:   metrics.New(reg),
	})

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *server.Server
	if cfg.StatusAddr != "" {
		srv = server.New(cfg.StatusAddr, mon, reg)
		go func() {
			if err := srv.Run(); err != nil {
				logger.Error("Status endpoint stopped", logger.Fields{"addr": cfg.StatusAddr}, err)
			}
		}()
	}

	logger.Info("Monitor starting", logger.Fields{
		"target":   cfg.TargetURL,
		"mode":     cfg.CheckMode,
		"interval": cfg.Interval.String(),
		"dry_run":  dryRun,
	})

	sched := scheduler.New(cfg.Interval, mon.RunOnce)
	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	sched.Stop(shutdownCtx)
	mon.NotifyStopped(shutdownCtx)

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Status endpoint shutdown failed", logger.Fields{"error": err.Error()})
		}
	}

	logger.Info("Monitor stopped", logger.Fields{"attempts": mon.Snapshot().Attempts})
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
