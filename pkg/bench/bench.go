// Package bench measures codec throughput with a pool of concurrent workers.
package bench

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1F47E/nato-grid/pkg/coordparse"
	"github.com/1F47E/nato-grid/pkg/gridcode"
	"github.com/1F47E/nato-grid/pkg/models"
	"golang.org/x/sync/errgroup"
)

type Operation string

const (
	OpEncode    Operation = "encode"
	OpDecode    Operation = "decode"
	OpRoundTrip Operation = "roundtrip"
	OpParse     Operation = "parse"
)

// Operations lists every supported operation.
var Operations = []Operation{OpEncode, OpDecode, OpRoundTrip, OpParse}

// ParseOperation validates an operation name.
func ParseOperation(name string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == name {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q, expected one of %v", name, Operations)
}

type Options struct {
	Operation Operation
	Queries   int
	Workers   int
	Seed      int64
}

type Result struct {
	Operation     Operation     `json:"operation"`
	TotalQueries  int           `json:"total_queries"`
	Workers       int           `json:"workers"`
	TotalDuration time.Duration `json:"total_duration"`
	AvgDuration   time.Duration `json:"avg_duration"`
	QueriesPerSec float64       `json:"queries_per_sec"`
	MinDuration   time.Duration `json:"min_duration"`
	MaxDuration   time.Duration `json:"max_duration"`
	// Failures counts round trips that landed outside the source cell.
	Failures int64 `json:"failures"`
}

type input struct {
	loc  models.Location
	code string
	text string
}

// Run executes opts.Queries operations of one kind against codec. Inputs are
// random points inside the codec's box, generated from opts.Seed.
func Run(ctx context.Context, codec *gridcode.Codec, opts Options) (Result, error) {
	if opts.Queries <= 0 {
		return Result{}, fmt.Errorf("queries must be positive, got %d", opts.Queries)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if _, err := ParseOperation(string(opts.Operation)); err != nil {
		return Result{}, err
	}

	inputs, err := generate(codec, opts)
	if err != nil {
		return Result{}, err
	}

	var (
		failures    atomic.Int64
		mu          sync.Mutex
		totalDur    time.Duration
		minDuration = time.Hour
		maxDuration time.Duration
	)

	g, ctx := errgroup.WithContext(ctx)
	queryCh := make(chan int)
	startTime := time.Now()

	g.Go(func() error {
		defer close(queryCh)
		for i := range inputs {
			select {
			case queryCh <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < opts.Workers; w++ {
		g.Go(func() error {
			var (
				local      time.Duration
				localMin   = time.Hour
				localMax   time.Duration
				localFails int64
			)
			for i := range queryCh {
				queryStart := time.Now()
				ok, err := execute(codec, opts.Operation, inputs[i])
				queryDuration := time.Since(queryStart)
				if err != nil {
					return err
				}
				if !ok {
					localFails++
				}

				local += queryDuration
				if queryDuration < localMin {
					localMin = queryDuration
				}
				if queryDuration > localMax {
					localMax = queryDuration
				}
			}

			failures.Add(localFails)
			mu.Lock()
			totalDur += local
			if localMin < minDuration {
				minDuration = localMin
			}
			if localMax > maxDuration {
				maxDuration = localMax
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	totalDuration := time.Since(startTime)

	return Result{
		Operation:     opts.Operation,
		TotalQueries:  len(inputs),
		Workers:       opts.Workers,
		TotalDuration: totalDuration,
		AvgDuration:   totalDur / time.Duration(len(inputs)),
		QueriesPerSec: float64(len(inputs)) / totalDuration.Seconds(),
		MinDuration:   minDuration,
		MaxDuration:   maxDuration,
		Failures:      failures.Load(),
	}, nil
}

func generate(codec *gridcode.Codec, opts Options) ([]input, error) {
	r := rand.New(rand.NewSource(opts.Seed))
	box := codec.Bounds()

	inputs := make([]input, opts.Queries)
	for i := range inputs {
		loc := models.Location{
			Lat: box.BottomLeft.Lat + r.Float64()*box.LatSpan(),
			Lon: box.BottomLeft.Lon + r.Float64()*box.LonSpan(),
		}
		in := input{loc: loc}

		switch opts.Operation {
		case OpDecode:
			code, err := codec.Encode(loc.Lat, loc.Lon)
			if err != nil {
				return nil, err
			}
			in.code = code.String()
		case OpParse:
			in.text = coordparse.Format(loc)
		}
		inputs[i] = in
	}
	return inputs, nil
}

// execute runs one operation; ok is false when a round trip misses its cell.
func execute(codec *gridcode.Codec, op Operation, in input) (bool, error) {
	switch op {
	case OpEncode:
		_, err := codec.Encode(in.loc.Lat, in.loc.Lon)
		return true, err

	case OpDecode:
		_, err := codec.Decode(in.code)
		return true, err

	case OpRoundTrip:
		code, err := codec.Encode(in.loc.Lat, in.loc.Lon)
		if err != nil {
			return false, err
		}
		decoded, err := codec.Decode(code.String())
		if err != nil {
			return false, err
		}
		latRes, lonRes := codec.Resolution()
		dLat, dLon := in.loc.Lat-decoded.Lat, in.loc.Lon-decoded.Lon
		return dLat > -1e-9 && dLat <= latRes+1e-9 && dLon > -1e-9 && dLon <= lonRes+1e-9, nil

	case OpParse:
		loc, err := coordparse.Parse(in.text)
		if err != nil {
			return false, err
		}
		_, err = codec.Encode(loc.Lat, loc.Lon)
		return math.Abs(loc.Lat-in.loc.Lat) < 1e-6, err
	}
	return false, fmt.Errorf("unknown operation %q", op)
}
