package bench

import (
	"context"
	"testing"

	"github.com/1F47E/nato-grid/pkg/gridcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	codec := gridcode.Default()

	for _, op := range Operations {
		t.Run(string(op), func(t *testing.T) {
			result, err := Run(context.Background(), codec, Options{
				Operation: op,
				Queries:   500,
				Workers:   4,
				Seed:      7,
			})
			require.NoError(t, err)
			assert.Equal(t, op, result.Operation)
			assert.Equal(t, 500, result.TotalQueries)
			assert.Equal(t, 4, result.Workers)
			assert.Zero(t, result.Failures)
			assert.Positive(t, result.QueriesPerSec)
			assert.LessOrEqual(t, result.MinDuration, result.MaxDuration)
		})
	}
}

func TestRunDefaultsWorkers(t *testing.T) {
	result, err := Run(context.Background(), gridcode.Default(), Options{Operation: OpEncode, Queries: 10})
	require.NoError(t, err)
	assert.Positive(t, result.Workers)
}

func TestRunRejects(t *testing.T) {
	codec := gridcode.Default()

	_, err := Run(context.Background(), codec, Options{Operation: OpEncode})
	assert.Error(t, err)

	_, err = Run(context.Background(), codec, Options{Operation: "teleport", Queries: 10})
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, gridcode.Default(), Options{Operation: OpEncode, Queries: 100000, Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("roundtrip")
	require.NoError(t, err)
	assert.Equal(t, OpRoundTrip, op)

	_, err = ParseOperation("Roundtrip")
	assert.Error(t, err)
}
