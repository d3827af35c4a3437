package consensus

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/google/go-cmp/cmp"
)

// clusterThreshold is the minimum pairwise similarity for two responses to
// land in the same cluster
const clusterThreshold = 0.8

// Similarity scores two responses in [0,1]. JSON-shaped output is compared
// structurally so formatting differences do not split a cluster; plain text
// falls back to token overlap.
func Similarity(a, b string) float64 {
	if av, ok := parseJSON(a); ok {
		if bv, ok := parseJSON(b); ok {
			if cmp.Equal(av, bv) {
				return 1.0
			}
			// Structurally different JSON still gets partial credit for
			// shared tokens, same as prose.
		}
	}
	return jaccard(tokenize(a), tokenize(b))
}

func parseJSON(s string) (interface{}, bool) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 {
		return nil, false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, false
	}
	var v interface{}
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, false
	}
	return v, true
}

func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// cluster groups successful results by pairwise similarity against each
// cluster's representative. Results are visited in rank order, so every
// representative is the highest-ranked member of its cluster.
func cluster(results []PromptResult) [][]PromptResult {
	var clusters [][]PromptResult
	for _, result := range results {
		placed := false
		for i, members := range clusters {
			if Similarity(result.Text, members[0].Text) >= clusterThreshold {
				clusters[i] = append(clusters[i], result)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []PromptResult{result})
		}
	}
	return clusters
}
