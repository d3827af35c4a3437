package consensus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"pagecraft-backend/application/ports"
	pkgerrors "pagecraft-backend/pkg/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClient settles with fixed text or error after an optional delay,
// respecting context cancellation like a real network call
type fakeClient struct {
	id    string
	text  string
	err   error
	delay time.Duration
}

func (c *fakeClient) ID() string {
	return c.id
}

func (c *fakeClient) Invoke(ctx context.Context, prompt string) (string, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return c.text, c.err
}

func newTestDispatcher(t *testing.T, cfg Config, clients ...ports.ModelClient) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(clients, nil, cfg, zap.NewNop())
	require.NoError(t, err)
	return d
}

func TestDispatch_ConsensusIsDeterministic(t *testing.T) {
	d := newTestDispatcher(t, Config{Strategy: StrategyConsensus, ModelTimeout: time.Second},
		&fakeClient{id: "m1", text: "a,b,c"},
		&fakeClient{id: "m2", text: "a,b,c"},
		&fakeClient{id: "m3", text: "x,y,z"},
	)

	for i := 0; i < 10; i++ {
		selection, err := d.Dispatch(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, "a,b,c", selection.Text)
		assert.Equal(t, "m1", selection.ModelID, "rank order breaks the tie between identical responses")
		assert.Equal(t, 3, selection.SuccessCount)
		assert.Equal(t, 3, selection.TotalCount)
		assert.Greater(t, selection.Score, 0.4)
	}
}

func TestDispatch_FastestReturnsWithinTimeoutBound(t *testing.T) {
	d := newTestDispatcher(t, Config{Strategy: StrategyFastest, ModelTimeout: 500 * time.Millisecond},
		&fakeClient{id: "slow", text: "late", delay: time.Hour},
		&fakeClient{id: "fast", text: "quick", delay: 10 * time.Millisecond},
	)

	started := time.Now()
	selection, err := d.Dispatch(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "quick", selection.Text)
	assert.Equal(t, "fast", selection.ModelID)
	assert.Less(t, time.Since(started), 500*time.Millisecond)
}

func TestDispatch_BestPrefersRankOverArrival(t *testing.T) {
	d := newTestDispatcher(t, Config{Strategy: StrategyBest, ModelTimeout: time.Second},
		&fakeClient{id: "top", text: "ranked", delay: 50 * time.Millisecond},
		&fakeClient{id: "mid", text: "arrived first"},
	)

	selection, err := d.Dispatch(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "top", selection.ModelID)
	assert.Equal(t, "ranked", selection.Text)
}

func TestDispatch_BestSkipsFailedModels(t *testing.T) {
	d := newTestDispatcher(t, Config{Strategy: StrategyBest, ModelTimeout: time.Second},
		&fakeClient{id: "top", err: errors.New("boom")},
		&fakeClient{id: "mid", text: "fallback winner"},
	)

	selection, err := d.Dispatch(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "mid", selection.ModelID)
	assert.Equal(t, 1, selection.SuccessCount)
}

func TestDispatch_MajorityPicksLargestCluster(t *testing.T) {
	d := newTestDispatcher(t, Config{Strategy: StrategyMajority, ModelTimeout: time.Second},
		&fakeClient{id: "m1", text: "the outlier answer entirely"},
		&fakeClient{id: "m2", text: "button with blue style"},
		&fakeClient{id: "m3", text: "button with blue style"},
	)

	selection, err := d.Dispatch(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "button with blue style", selection.Text)
	assert.Equal(t, "m2", selection.ModelID)
}

func TestDispatch_StructurallyEqualJSONClustersTogether(t *testing.T) {
	d := newTestDispatcher(t, Config{Strategy: StrategyMajority, ModelTimeout: time.Second},
		&fakeClient{id: "m1", text: `some plain text answer that stands alone`},
		&fakeClient{id: "m2", text: `{"type":"button","props":{"a":1,"b":2}}`},
		&fakeClient{id: "m3", text: `{ "props": {"b":2, "a":1}, "type": "button" }`},
	)

	selection, err := d.Dispatch(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "m2", selection.ModelID, "key order and whitespace must not split a JSON cluster")
}

func TestDispatch_SlowModelNeverBlocksOthers(t *testing.T) {
	d := newTestDispatcher(t, Config{Strategy: StrategyConsensus, ModelTimeout: 100 * time.Millisecond},
		&fakeClient{id: "hung", text: "never", delay: time.Hour},
		&fakeClient{id: "ok1", text: "answer"},
		&fakeClient{id: "ok2", text: "answer"},
	)

	started := time.Now()
	selection, err := d.Dispatch(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "answer", selection.Text)
	assert.Equal(t, 2, selection.SuccessCount)
	assert.Equal(t, 3, selection.TotalCount)
	assert.Less(t, time.Since(started), time.Second)
}

func TestDispatch_DegradedFallbackUsesDefaultModel(t *testing.T) {
	failing := &fakeClient{id: "broken", err: errors.New("boom")}
	d, err := NewDispatcher(
		[]ports.ModelClient{failing},
		&fakeClient{id: "fallback", text: "rescued"},
		Config{Strategy: StrategyConsensus, ModelTimeout: time.Second},
		zap.NewNop(),
	)
	require.NoError(t, err)

	selection, err := d.Dispatch(context.Background(), "prompt")
	require.NoError(t, err)

	assert.True(t, selection.Degraded)
	assert.Equal(t, "fallback", selection.ModelID)
	assert.Equal(t, "rescued", selection.Text)
	assert.Equal(t, StateDegraded, d.State())
}

func TestDispatch_AllModelsFailed(t *testing.T) {
	d := newTestDispatcher(t, Config{Strategy: StrategyConsensus, ModelTimeout: time.Second},
		&fakeClient{id: "m1", err: errors.New("boom")},
		&fakeClient{id: "m2", err: errors.New("boom")},
	)

	_, err := d.Dispatch(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsAllModelsFailed(err))
}

func TestDispatch_ConcurrencyCapQueuesExcessCalls(t *testing.T) {
	clients := make([]ports.ModelClient, 0, 6)
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		clients = append(clients, &fakeClient{id: id, text: "same answer", delay: 10 * time.Millisecond})
	}

	d := newTestDispatcher(t, Config{Strategy: StrategyConsensus, ModelTimeout: time.Second, MaxWorkers: 2}, clients...)

	selection, err := d.Dispatch(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, 6, selection.SuccessCount)
	assert.GreaterOrEqual(t, selection.Elapsed, 30*time.Millisecond, "six 10ms calls through two workers take at least three rounds")
}

func TestParseStrategy(t *testing.T) {
	for name, want := range map[string]Strategy{
		"":          StrategyConsensus,
		"consensus": StrategyConsensus,
		"MAJORITY":  StrategyMajority,
		" best ":    StrategyBest,
		"fastest":   StrategyFastest,
	} {
		got, err := ParseStrategy(name)
		require.NoError(t, err, "name: %q", name)
		assert.Equal(t, want, got)
	}

	_, err := ParseStrategy("quorum")
	assert.Error(t, err)
}
