package consensus

import "sort"

// reduce applies the selection strategy to the settled results. The caller
// guarantees at least one success. Returned Score is zero for rank- and
// speed-based strategies, and the winner's average similarity for the
// similarity-based ones.
func reduce(strategy Strategy, settled []PromptResult) (PromptResult, float64) {
	successes := make([]PromptResult, 0, len(settled))
	for _, r := range settled {
		if r.Succeeded() {
			successes = append(successes, r)
		}
	}

	// Rank order is the canonical tie-break everywhere below
	sort.Slice(successes, func(i, j int) bool {
		return successes[i].Rank < successes[j].Rank
	})

	switch strategy {
	case StrategyFastest:
		return pickFastest(successes), 0
	case StrategyBest:
		return successes[0], 0
	case StrategyMajority:
		return pickMajority(successes)
	default:
		return pickConsensus(successes)
	}
}

// pickFastest returns the first success by completion order
func pickFastest(successes []PromptResult) PromptResult {
	winner := successes[0]
	for _, r := range successes[1:] {
		if r.Arrival < winner.Arrival {
			winner = r
		}
	}
	return winner
}

// pickMajority clusters the successes by similarity and returns the largest
// cluster's representative. Ties between equal-sized clusters go to the one
// whose representative came from the highest-ranked model; since clustering
// visits results in rank order, the earliest cluster wins a tie.
func pickMajority(successes []PromptResult) (PromptResult, float64) {
	clusters := cluster(successes)
	best := clusters[0]
	for _, c := range clusters[1:] {
		if len(c) > len(best) {
			best = c
		}
	}
	winner := best[0]
	return winner, averageSimilarity(winner, successes)
}

// pickConsensus scores every success by its average similarity to all other
// successes and returns the highest scorer. Ties break by rank order.
func pickConsensus(successes []PromptResult) (PromptResult, float64) {
	if len(successes) == 1 {
		return successes[0], 1.0
	}

	winner := successes[0]
	bestScore := averageSimilarity(winner, successes)
	for _, candidate := range successes[1:] {
		score := averageSimilarity(candidate, successes)
		if score > bestScore {
			winner = candidate
			bestScore = score
		}
	}
	return winner, bestScore
}

// averageSimilarity computes a result's mean similarity to every other
// success in the set
func averageSimilarity(r PromptResult, successes []PromptResult) float64 {
	if len(successes) <= 1 {
		return 1.0
	}
	total := 0.0
	for _, other := range successes {
		if other.ModelID == r.ModelID {
			continue
		}
		total += Similarity(r.Text, other.Text)
	}
	return total / float64(len(successes)-1)
}
