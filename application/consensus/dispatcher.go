package consensus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"pagecraft-backend/application/ports"
	pkgerrors "pagecraft-backend/pkg/errors"
)

// Config tunes a dispatcher instance
type Config struct {
	Strategy     Strategy
	ModelTimeout time.Duration
	MaxWorkers   int64
}

// Dispatcher fans one prompt out to every configured model client, bounded
// by a worker cap, and reduces the settled results with the configured
// strategy. Clients are held in static preference order; index is rank.
type Dispatcher struct {
	clients       []ports.ModelClient
	defaultClient ports.ModelClient
	cfg           Config
	logger        *zap.Logger

	mu    sync.Mutex
	state State
}

// NewDispatcher creates a dispatcher. defaultClient serves the degraded
// single-model fallback when every parallel call fails; it may also appear
// in clients.
func NewDispatcher(clients []ports.ModelClient, defaultClient ports.ModelClient, cfg Config, logger *zap.Logger) (*Dispatcher, error) {
	if len(clients) == 0 {
		return nil, pkgerrors.NewValidationError("at least one model client is required")
	}
	if defaultClient == nil {
		defaultClient = clients[0]
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 3
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = 30 * time.Second
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyConsensus
	}
	return &Dispatcher{
		clients:       clients,
		defaultClient: defaultClient,
		cfg:           cfg,
		logger:        logger,
		state:         StateIdle,
	}, nil
}

// State returns the dispatcher's current lifecycle state
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Dispatcher) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

// Dispatch queries every model concurrently and returns the strategy's
// winner. A single slow or failed model never blocks the others; only a
// total wipeout degrades to the synchronous default-model fallback.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) (*Selection, error) {
	return d.DispatchWithStrategy(ctx, prompt, d.cfg.Strategy)
}

// DispatchWithStrategy is Dispatch with a per-request strategy override
func (d *Dispatcher) DispatchWithStrategy(ctx context.Context, prompt string, strategy Strategy) (*Selection, error) {
	started := time.Now()
	d.setState(StateDispatching)

	settled, ok := d.collect(ctx, prompt, strategy)
	if ctx.Err() != nil {
		d.setState(StateIdle)
		return nil, pkgerrors.NewTimeoutError("consensus dispatch")
	}

	if !ok {
		return d.fallback(ctx, prompt, started, len(settled))
	}

	winner, score := reduce(strategy, settled)
	d.setState(StateResolved)

	selection := &Selection{
		Text:         winner.Text,
		ModelID:      winner.ModelID,
		Score:        score,
		SuccessCount: countSuccesses(settled),
		TotalCount:   len(d.clients),
		Elapsed:      time.Since(started),
	}

	d.logger.Info("Consensus resolved",
		zap.String("strategy", string(strategy)),
		zap.String("modelID", selection.ModelID),
		zap.Float64("score", selection.Score),
		zap.Int("successes", selection.SuccessCount),
		zap.Int("total", selection.TotalCount),
		zap.Duration("elapsed", selection.Elapsed),
	)

	return selection, nil
}

// collect runs the parallel fan-out and waits until every call settles, or,
// for the fastest strategy, until the first success arrives. The second
// return reports whether at least one call succeeded.
func (d *Dispatcher) collect(parent context.Context, prompt string, strategy Strategy) ([]PromptResult, bool) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sem := semaphore.NewWeighted(d.cfg.MaxWorkers)
	resultCh := make(chan PromptResult, len(d.clients))

	var wg sync.WaitGroup
	for rank, client := range d.clients {
		wg.Add(1)
		go func(rank int, client ports.ModelClient) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				resultCh <- PromptResult{ModelID: client.ID(), Rank: rank, Err: err}
				return
			}
			defer sem.Release(1)

			callCtx, callCancel := context.WithTimeout(ctx, d.cfg.ModelTimeout)
			defer callCancel()

			callStart := time.Now()
			text, err := client.Invoke(callCtx, prompt)
			resultCh <- PromptResult{
				ModelID: client.ID(),
				Rank:    rank,
				Text:    text,
				Err:     err,
				Latency: time.Since(callStart),
			}
		}(rank, client)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	d.setState(StateCollecting)

	var settled []PromptResult
	arrival := 0
	for result := range resultCh {
		result.Arrival = arrival
		arrival++
		if result.Err != nil {
			d.logger.Warn("Model call failed",
				zap.String("modelID", result.ModelID),
				zap.Error(result.Err),
			)
		}
		settled = append(settled, result)

		// fastest does not await the stragglers; cancelling the shared
		// context abandons them and the buffered channel lets their
		// goroutines exit
		if strategy == StrategyFastest && result.Succeeded() {
			cancel()
			return settled, true
		}
	}

	return settled, countSuccesses(settled) > 0
}

// fallback is the degraded path: one synchronous call against the default
// model before giving up entirely
func (d *Dispatcher) fallback(ctx context.Context, prompt string, started time.Time, attempted int) (*Selection, error) {
	d.setState(StateDegraded)
	d.logger.Warn("All models failed, falling back to default model",
		zap.String("modelID", d.defaultClient.ID()),
		zap.Int("attempted", attempted),
	)

	callCtx, cancel := context.WithTimeout(ctx, d.cfg.ModelTimeout)
	defer cancel()

	text, err := d.defaultClient.Invoke(callCtx, prompt)
	if err != nil {
		return nil, pkgerrors.NewAllModelsFailedError(attempted + 1)
	}

	return &Selection{
		Text:         text,
		ModelID:      d.defaultClient.ID(),
		SuccessCount: 1,
		TotalCount:   len(d.clients),
		Elapsed:      time.Since(started),
		Degraded:     true,
	}, nil
}

func countSuccesses(settled []PromptResult) int {
	count := 0
	for _, r := range settled {
		if r.Succeeded() {
			count++
		}
	}
	return count
}
