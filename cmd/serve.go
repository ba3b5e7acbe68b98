package main

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/1F47E/nato-grid/pkg/api"
	"github.com/1F47E/nato-grid/pkg/bench"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort    int
	benchOp      string
	benchQueries int
	benchWorkers int
	benchSeed    int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the codec as a JSON HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		log.Info("places available", zap.Int64("count", registry.Count()))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := api.NewServer(codec, registry, api.Config{
			Port:      cfg.Server.Port,
			Timeout:   cfg.Server.Timeout,
			BaseURL:   cfg.Server.BaseURL,
			RateLimit: cfg.Server.RateLimit,
			Burst:     cfg.Server.RateBurst,
		}, log)
		return server.Run(ctx)
	},
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure codec throughput with concurrent workers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := bench.ParseOperation(benchOp)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		log.Info("running benchmark", zap.String("operation", benchOp),
			zap.Int("queries", benchQueries), zap.Int("workers", benchWorkers))
		result, err := bench.Run(ctx, codec, bench.Options{
			Operation: op,
			Queries:   benchQueries,
			Workers:   benchWorkers,
			Seed:      benchSeed,
		})
		if err != nil {
			return err
		}

		return out.emit(result, func() {
			out.title("Benchmark Results")
			out.field("operation", result.Operation)
			out.field("queries", result.TotalQueries)
			out.field("workers", result.Workers)
			out.field("total", result.TotalDuration)
			out.field("average", result.AvgDuration)
			out.field("min", result.MinDuration)
			out.field("max", result.MaxDuration)
			out.field("per sec", int64(result.QueriesPerSec))
			out.field("failures", result.Failures)
		})
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Override the configured port")

	benchCmd.Flags().StringVarP(&benchOp, "operation", "o", string(bench.OpRoundTrip), "Operation: encode, decode, roundtrip, parse")
	benchCmd.Flags().IntVarP(&benchQueries, "queries", "q", 100000, "Number of operations to run")
	benchCmd.Flags().IntVarP(&benchWorkers, "workers", "w", runtime.NumCPU(), "Number of worker goroutines")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 1, "Random seed for generated inputs")
}
