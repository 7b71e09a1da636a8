package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/relaydag/flowdag"
	"github.com/relaydag/flowdag/internal/report"
	"github.com/relaydag/flowdag/internal/skipdb"
	"github.com/relaydag/flowdag/internal/taskfile"
	"github.com/relaydag/flowdag/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run [task-file.yaml]",
	Short: "Run the task graph described by a YAML task file.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(_ *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read task file: %w", err)
	}

	dag, err := taskfile.Load(raw)
	if err != nil {
		return fmt.Errorf("load task file: %w", err)
	}

	logLevel := slog.LevelInfo
	if !viper.GetBool("verbose") {
		logLevel = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	var provider metrics.Provider = metrics.NewNoopProvider()
	if addr := viper.GetString("metrics-addr"); addr != "" {
		promProvider := metrics.NewPrometheusProvider()
		provider = promProvider
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promProvider.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	var skip flowdag.SkipBackend
	if dbPath := viper.GetString("skipdb"); dbPath != "" && !viper.GetBool("dry-run") {
		store, err := skipdb.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open skip database: %w", err)
		}
		defer store.Close()
		skip = store
	}

	opts := []flowdag.RunContextOption{
		flowdag.WithReporter(report.New(logger)),
		flowdag.WithMetricsProvider(provider),
	}
	if skip != nil {
		opts = append(opts, flowdag.WithSkipBackend(skip))
	}
	if viper.GetBool("quit-early") {
		opts = append(opts, flowdag.WithQuitEarly())
	}

	rc := flowdag.NewRunContext(dag, opts...)

	var runner flowdag.Runner
	if viper.GetBool("dry-run") {
		runner = flowdag.NewDryRunner(os.Stdout)
	} else {
		runner = flowdag.Default(viper.GetInt("jobs"))
	}

	return runner.RunTasks(context.Background(), rc)
}
