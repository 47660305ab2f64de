package run

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wenzapen/tagcrawl/collect"
	"github.com/wenzapen/tagcrawl/config"
	"github.com/wenzapen/tagcrawl/display"
	"github.com/wenzapen/tagcrawl/engine"
	"github.com/wenzapen/tagcrawl/log"
	"github.com/wenzapen/tagcrawl/metrics"
	"github.com/wenzapen/tagcrawl/proxy"
	"github.com/wenzapen/tagcrawl/spider"
	"github.com/wenzapen/tagcrawl/storage"
	"github.com/wenzapen/tagcrawl/storage/sqlstorage"
)

type flags struct {
	cfgFile     string
	logLevel    string
	logFile     string
	preview     int
	metricsAddr string
}

// NewCmd returns the run command with its own flag set.
func NewCmd() *cobra.Command {
	var f flags
	runCmd := &cobra.Command{
		Use:   "run <markup-file>",
		Short: "run a crawl described by a markup file",
		Long:  "build the crawl tree from a markup file, fetch and extract every request it describes and run its exports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return crawl(cmd, f, args[0])
		},
	}
	runCmd.Flags().StringVar(&f.cfgFile, "config", config.DefaultPath, "set config file")
	runCmd.Flags().StringVar(&f.logLevel, "log-level", "", "set log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&f.logFile, "log-file", "", "also write logs to this file")
	runCmd.Flags().IntVar(&f.preview, "preview", 0, "entries shown per result, 0 disables previews")
	runCmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	return runCmd
}

// settings merges the config file with the flags given on the command line.
func settings(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if cmd.Flags().Changed("preview") {
		cfg.Display.Preview = f.preview
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	plugin := log.NewStderrPlugin(level)
	closer := func() {}
	if cfg.LogFile != "" {
		file, c := log.NewFilePlugin(cfg.LogFile, level)
		plugin = log.Tee(plugin, file)
		closer = func() { _ = c.Close() }
	}
	return log.NewLogger(plugin), closer, nil
}

func newFetcher(cfg config.Fetcher, logger *zap.Logger) (*collect.BrowserFetch, error) {
	header := collect.DefaultHeaders()
	if cfg.UserAgent != "" {
		header.Set("User-Agent", cfg.UserAgent)
	}
	for k, v := range cfg.Headers {
		header.Set(k, v)
	}
	f := &collect.BrowserFetch{
		Timeout: cfg.TimeoutDuration(),
		Header:  header,
		Logger:  logger,
	}
	if len(cfg.Proxy) > 0 {
		p, err := proxy.RoundRobinSwitcher(cfg.Proxy...)
		if err != nil {
			return nil, fmt.Errorf("proxy: %w", err)
		}
		f.Proxy = p
	}
	return f, nil
}

func serveMetrics(addr string, m *metrics.Metrics, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}

func crawl(cmd *cobra.Command, f flags, markup string) error {
	cfg, err := settings(cmd, f)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	defer func() { _ = logger.Sync() }()

	tree, err := spider.BuildFile(markup, nil)
	if err != nil {
		return fmt.Errorf("build %s: %w", markup, err)
	}
	logger.Debug("tree built", zap.Int("nodes", tree.Len()), zap.Int("seeds", len(tree.Seeds())), zap.Int("exports", len(tree.Exports())))

	fetcher, err := newFetcher(cfg.Fetcher, logger)
	if err != nil {
		return err
	}

	sinks := storage.NewRegistry()
	sqlite := sqlstorage.New(sqlstorage.WithLogger(logger))
	defer func() {
		if err := sqlite.Close(); err != nil {
			logger.Error("close sqlite sinks", zap.Error(err))
		}
	}()
	sinks.Register("sqlite", sqlite)

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithFetcher(fetcher),
		engine.WithSinks(sinks),
	}
	if f.metricsAddr != "" {
		m := metrics.New()
		srv := serveMetrics(f.metricsAddr, m, logger)
		defer srv.Close()
		opts = append(opts, engine.WithMetrics(m))
	}
	out := cmd.OutOrStdout()
	if n := cfg.Display.Preview; n > 0 {
		opts = append(opts, engine.WithResultHandler(func(r engine.UnitResult) {
			title := r.URL
			if title == "" {
				title = r.Kind.String() + " " + r.ID[:8]
			}
			display.Preview(out, title, r.Result, n)
		}))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := engine.New(tree, opts...).Run(ctx)
	display.Summary(out, report)
	if errors.Is(report.Err, context.Canceled) {
		return context.Canceled
	}
	return nil
}
