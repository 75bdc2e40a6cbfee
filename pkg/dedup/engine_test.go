package dedup_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/skusweep/pkg/catalog"
	"github.com/agentstation/skusweep/pkg/dedup"
	"github.com/agentstation/skusweep/pkg/errors"
	"github.com/agentstation/skusweep/pkg/logging"
)

func complete(id, sku string, state catalog.LifecycleState) catalog.Record {
	return catalog.Record{
		ID:              id,
		IdentifierValue: sku,
		Title:           "Product " + id,
		Description:     "About " + id,
		State:           state,
		VariantCount:    1,
	}
}

// hookFinder wraps a finder and runs a hook before each lookup.
type hookFinder struct {
	catalog.Finder
	before func(id catalog.Identifier)
}

func (f *hookFinder) FindByIdentifier(ctx context.Context, id catalog.Identifier) ([]catalog.Record, error) {
	if f.before != nil {
		f.before(id)
	}
	return f.Finder.FindByIdentifier(ctx, id)
}

func TestScenarioA(t *testing.T) {
	mem := catalog.NewMemory(
		complete("a1", "A", catalog.StateActive),
		complete("b1", "B", catalog.StateActive),
		complete("b2", "B", catalog.StateDraft),
	)
	engine := dedup.New(mem, dedup.WithWorkers(1))

	results, err := engine.Resolve(context.Background(), []catalog.Identifier{"A", "A", "B"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, catalog.Identifier("A"), results[0].Identifier)
	assert.Nil(t, results[0].Plan)
	assert.Equal(t, 1, results[0].Group.Size())

	b := results[1]
	require.NotNil(t, b.Plan)
	assert.Equal(t, "b1", b.Plan.Keep)
	assert.Equal(t, []string{"b2"}, b.Plan.Drop)
	assert.Equal(t, dedup.ReasonActiveComplete, b.Plan.Reason)

	assert.Equal(t, 1, mem.Lookups("A"))
	assert.Equal(t, 1, mem.Lookups("B"))
}

func TestScenarioCLookupFailure(t *testing.T) {
	mem := catalog.NewMemory(
		complete("e1", "E", catalog.StateActive),
		complete("e2", "E", catalog.StateActive),
	)
	mem.FailLookup("D", errors.NewAPIError("shopify", 502, "bad gateway"))

	results, err := dedup.New(mem).Resolve(context.Background(), []catalog.Identifier{"D", "E"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	var lookupErr *errors.LookupError
	require.True(t, errors.As(results[0].Err, &lookupErr))
	assert.Equal(t, "D", lookupErr.Identifier)
	assert.Nil(t, results[0].Plan)

	require.NotNil(t, results[1].Plan)
	assert.Equal(t, "e1", results[1].Plan.Keep)
}

func TestZeroRecordsIsAnomalyNotError(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	results, err := dedup.New(catalog.NewMemory()).Resolve(ctx, []catalog.Identifier{"GHOST"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Nil(t, results[0].Plan)
	tl.AssertContains(t, "matched no catalog records")
	tl.AssertContains(t, `"sku":"GHOST"`)
}

func TestEmptyInput(t *testing.T) {
	results, err := dedup.New(catalog.NewMemory()).Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSkipsEmptyIdentifiers(t *testing.T) {
	mem := catalog.NewMemory()
	results, err := dedup.New(mem).Resolve(context.Background(), []catalog.Identifier{"", "A", ""})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, mem.Lookups(""))
}

func TestConcurrentDedupAndOrder(t *testing.T) {
	var records []catalog.Record
	var input []catalog.Identifier
	distinct := []catalog.Identifier{"S0", "S1", "S2", "S3", "S4", "S5", "S6", "S7", "S8", "S9"}
	for i, id := range distinct {
		records = append(records,
			complete(string(id)+"-x", string(id), catalog.StateDraft),
			complete(string(id)+"-y", string(id), catalog.StateActive))
		// List each identifier several times, interleaved.
		for j := 0; j <= i%3; j++ {
			input = append(input, id)
		}
	}
	input = append(input, distinct...)

	mem := catalog.NewMemory(records...)
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(1))
	finder := &hookFinder{Finder: mem, before: func(catalog.Identifier) {
		mu.Lock()
		d := time.Duration(rng.Intn(3)) * time.Millisecond
		mu.Unlock()
		time.Sleep(d)
	}}

	results, err := dedup.New(finder, dedup.WithWorkers(8)).Resolve(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, results, len(distinct))

	for i, r := range results {
		assert.Equal(t, distinct[i], r.Identifier, "results keep first-occurrence order")
		assert.Equal(t, 1, mem.Lookups(r.Identifier), "looked up once: %s", r.Identifier)
		require.NotNil(t, r.Plan)
		assert.Equal(t, string(r.Identifier)+"-y", r.Plan.Keep)
	}
}

func TestGracefulStop(t *testing.T) {
	mem := catalog.NewMemory(
		complete("a1", "A", catalog.StateActive),
		complete("a2", "A", catalog.StateDraft),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	finder := &hookFinder{Finder: mem, before: func(id catalog.Identifier) {
		if id == "A" {
			cancel()
		}
	}}

	var got []dedup.Result
	err := dedup.New(finder, dedup.WithWorkers(1)).Stream(ctx, []catalog.Identifier{"A", "B", "C"}, func(r dedup.Result) {
		got = append(got, r)
	})

	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, got, 1, "in-flight identifier completes")
	require.NotNil(t, got[0].Plan)
	assert.Equal(t, "a1", got[0].Plan.Keep)
	assert.NoError(t, got[0].Err, "lookup is not cut short")
	assert.Equal(t, 0, mem.Lookups("B"))
	assert.Equal(t, 0, mem.Lookups("C"))
}

func TestWithWorkersBounds(t *testing.T) {
	assert.Equal(t, 1, dedup.New(nil, dedup.WithWorkers(0)).Workers())
	assert.Equal(t, 64, dedup.New(nil, dedup.WithWorkers(1000)).Workers())
	assert.Equal(t, 3, dedup.New(nil, dedup.WithWorkers(3)).Workers())
}
