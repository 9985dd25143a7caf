package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/llehouerou/sentence2songs/internal/app"
	"github.com/llehouerou/sentence2songs/internal/config"
	"github.com/llehouerou/sentence2songs/internal/errmsg"
	"github.com/llehouerou/sentence2songs/internal/logger"
	"github.com/llehouerou/sentence2songs/internal/render"
)

var (
	configPath string
	backend    string
	logLevel   string
	workers    int
	noCache    bool
	summary    bool

	rootCmd = &cobra.Command{
		Use:   "s2s",
		Short: "Spell sentences with song titles",
		Long: `s2s reads sentences from standard input, one per line, and writes each
one as a sequence of song titles found in a music catalog. Words that no
title covers are written as they are.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "additional config file (loaded last)")
	flags.StringVarP(&backend, "backend", "b", "", "catalog backend: musicbrainz or lastfm")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.IntVarP(&workers, "workers", "w", 0, "concurrent catalog queries (default 2 x CPUs)")
	flags.BoolVar(&noCache, "no-cache", false, "do not use the on-disk response cache")
	flags.BoolVar(&summary, "summary", true, "print match counts on exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if err := logger.SetLevel(level); err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	log := logger.New("s2s")

	a, err := app.Open(cfg, app.Options{
		Backend: backend,
		Workers: workers,
		NoCache: noCache,
	})
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpCatalogOpen, backend, err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, a)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	stats := process(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), a.Segmenter)
	if summary {
		fmt.Fprintln(cmd.ErrOrStderr(), render.Summary(stats))
	}
	return nil
}

func serveMetrics(addr string, a *app.App) *http.Server {
	log := logger.New("metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(errmsg.FormatWith(errmsg.OpMetricsServe, addr, err))
		}
	}()
	log.Info("serving metrics", "addr", addr)
	return srv
}
