// Package consensus fans a prompt out to several model backends in parallel
// and reduces their responses to a single winner under a configurable
// selection strategy.
package consensus

import (
	"fmt"
	"strings"
	"time"
)

// State tracks one dispatch request's lifecycle
type State string

const (
	StateIdle        State = "IDLE"
	StateDispatching State = "DISPATCHING"
	StateCollecting  State = "COLLECTING"
	StateResolved    State = "RESOLVED"
	StateDegraded    State = "DEGRADED"
)

// Strategy names a selection rule for reducing model responses
type Strategy string

const (
	// StrategyConsensus picks the response most similar to all the others
	StrategyConsensus Strategy = "consensus"
	// StrategyMajority picks the representative of the largest similarity cluster
	StrategyMajority Strategy = "majority"
	// StrategyBest picks the highest-ranked model's successful response
	StrategyBest Strategy = "best"
	// StrategyFastest picks the first successful response by completion time
	StrategyFastest Strategy = "fastest"
)

// ParseStrategy parses a strategy name, defaulting to consensus
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(name))) {
	case StrategyConsensus, "":
		return StrategyConsensus, nil
	case StrategyMajority:
		return StrategyMajority, nil
	case StrategyBest:
		return StrategyBest, nil
	case StrategyFastest:
		return StrategyFastest, nil
	default:
		return "", fmt.Errorf("unknown consensus strategy %q", name)
	}
}

// PromptResult is one model's settled outcome. Rank is the model's position
// in the static preference order; Arrival is the completion sequence number
// across the whole dispatch.
type PromptResult struct {
	ModelID string
	Rank    int
	Arrival int
	Text    string
	Err     error
	Latency time.Duration
}

// Succeeded reports whether the model returned a usable response
func (r PromptResult) Succeeded() bool {
	return r.Err == nil
}

// Selection is the reduced outcome of a dispatch. Score is the consensus
// similarity score in [0,1] where the strategy computes one, zero otherwise.
type Selection struct {
	Text         string        `json:"text"`
	ModelID      string        `json:"modelId"`
	Score        float64       `json:"score"`
	SuccessCount int           `json:"successCount"`
	TotalCount   int           `json:"totalCount"`
	Elapsed      time.Duration `json:"elapsed"`
	Degraded     bool          `json:"degraded"`
}
