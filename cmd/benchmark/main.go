package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/1F47E/nato-grid/pkg/bench"
	"github.com/1F47E/nato-grid/pkg/config"
)

func main() {
	var (
		configFile = flag.String("config", "", "Config file path (default ./config.yaml)")
		queryType  = flag.String("t", "roundtrip", "Operation: encode, decode, roundtrip, parse, mixed")
		numQueries = flag.Int("n", 100000, "Number of operations to run")
		workers    = flag.Int("w", runtime.NumCPU(), "Number of concurrent workers")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	codec, err := cfg.Codec()
	if err != nil {
		log.Fatalf("Failed to build codec: %v", err)
	}

	ops := []bench.Operation{}
	if *queryType == "mixed" {
		ops = bench.Operations
	} else {
		op, err := bench.ParseOperation(*queryType)
		if err != nil {
			log.Fatal(err)
		}
		ops = append(ops, op)
	}

	log.Printf("Grid: %s, %d words\n", codec.Alphabet().Name(), codec.Length())
	log.Printf("Running %d %s operations with %d workers...\n", *numQueries, *queryType, *workers)

	results := make([]bench.Result, 0, len(ops))
	for _, op := range ops {
		queries := *numQueries / len(ops)
		result, err := bench.Run(context.Background(), codec, bench.Options{
			Operation: op,
			Queries:   queries,
			Workers:   *workers,
			Seed:      *seed,
		})
		if err != nil {
			log.Fatalf("Benchmark %s failed: %v", op, err)
		}
		results = append(results, result)
	}

	for _, result := range results {
		printResult(result)
	}
	fmt.Printf("CPU Cores: %d\n", runtime.NumCPU())
}

func printResult(result bench.Result) {
	fmt.Println("\n=== Benchmark Results ===")
	fmt.Printf("Operation: %s\n", result.Operation)
	fmt.Printf("Total Operations: %d\n", result.TotalQueries)
	fmt.Printf("Total Duration: %v\n", result.TotalDuration)
	fmt.Printf("Average Duration: %v\n", result.AvgDuration)
	fmt.Printf("Operations/Second: %.2f\n", result.QueriesPerSec)
	fmt.Printf("Min Duration: %v\n", result.MinDuration)
	fmt.Printf("Max Duration: %v\n", result.MaxDuration)
	fmt.Printf("Outside Source Cell: %d\n", result.Failures)
	fmt.Printf("Workers Used: %d\n", result.Workers)
}
