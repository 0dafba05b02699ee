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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/born-ml/bornir/convert"
	"github.com/born-ml/bornir/internal/config"
	"github.com/born-ml/bornir/internal/ctxlog"
	"github.com/born-ml/bornir/internal/frontend"
)

type convertFlags struct {
	format      string
	config      string
	output      string
	outputs     []string
	strict      bool
	workers     int
	metricsAddr string
}

func newConvertCmd() *cobra.Command {
	var f convertFlags
	cmd := &cobra.Command{
		Use:   "convert <model>",
		Short: "Convert a model and print the conversion report",
		Long: `Convert a model file to the canonical IR graph.

The format is inferred from the file name (.onnx, .pb, -symbol.json) unless
--format is given. Nodes that cannot be translated are listed in the report;
with --strict the first one aborts the conversion.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}
			return runConvert(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], cfg, &f)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.format, "format", "", "model format: onnx, tf or mxnet")
	flags.StringVar(&f.config, "config", "", "path to a YAML config file")
	flags.StringVarP(&f.output, "output", "o", "", "write the graph as YAML to this file (- for stdout)")
	flags.StringSliceVar(&f.outputs, "outputs", nil, "graph outputs of a TensorFlow graph")
	flags.BoolVar(&f.strict, "strict", false, "abort at the first node that cannot be translated")
	flags.IntVar(&f.workers, "workers", 1, "goroutines extracting nodes")
	flags.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address until interrupted")
	return cmd
}

// loadConfig reads --config and lets explicitly set flags override it.
func loadConfig(cmd *cobra.Command, f *convertFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("strict") {
		cfg.Strict = f.strict
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	return cfg, cfg.Validate()
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func runConvert(ctx context.Context, stdout, stderr io.Writer, path string, cfg *config.Config, f *convertFlags) error {
	logger := newLogger(stderr, cfg)
	ctx = ctxlog.WithLogger(ctx, logger)

	if err := cfg.Apply(frontend.Default); err != nil {
		return err
	}

	opts := convert.Options{
		Format:  f.format,
		Strict:  cfg.Strict,
		Workers: cfg.Workers,
		Outputs: f.outputs,
	}
	reg := prometheus.NewRegistry()
	if cfg.MetricsAddr != "" {
		m, err := convert.NewMetrics(reg)
		if err != nil {
			return err
		}
		opts.Metrics = m
	}

	graph, report, err := convert.File(ctx, path, opts)
	if err != nil {
		return fmt.Errorf("convert %s: %w", path, err)
	}
	if _, err := report.WriteTo(stdout); err != nil {
		return err
	}
	if err := writeGraph(stdout, f.output, graph); err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		return serveMetrics(ctx, logger, cfg.MetricsAddr, reg)
	}
	return nil
}

//nolint:gosec // G304: Path is provided by user
func writeGraph(stdout io.Writer, path string, graph *convert.Graph) error {
	switch path {
	case "":
		return nil
	case "-":
		return graph.WriteYAML(stdout)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := graph.WriteYAML(out); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func serveMetrics(ctx context.Context, logger *slog.Logger, addr string, reg *prometheus.Registry) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
