package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_EquivalentJSONIsExact(t *testing.T) {
	a := `{"type":"button","style":{"color":"blue","width":"100px"}}`
	b := `{"style":{"width":"100px","color":"blue"},"type":"button"}`

	assert.Equal(t, 1.0, Similarity(a, b))
}

func TestSimilarity_FallsBackToTokenOverlap(t *testing.T) {
	a := "add a blue button to the header"
	b := "add a red button to the header"

	score := Similarity(a, b)
	assert.Greater(t, score, 0.5)
	assert.Less(t, score, 1.0)
}

func TestSimilarity_DisjointTextScoresZero(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("alpha beta", "gamma delta"))
}

func TestSimilarity_EmptyInputs(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "something"))
	assert.Equal(t, 1.0, Similarity("", ""), "two empty responses are identical")
}

func TestCluster_GroupsAboveThreshold(t *testing.T) {
	results := []PromptResult{
		{ModelID: "m1", Rank: 0, Text: "a blue button with rounded corners"},
		{ModelID: "m2", Rank: 1, Text: "a blue button with rounded corners"},
		{ModelID: "m3", Rank: 2, Text: "completely unrelated output here"},
	}

	clusters := cluster(results)
	assert.Len(t, clusters, 2)
	assert.Len(t, clusters[0], 2)
	assert.Equal(t, "m1", clusters[0][0].ModelID, "the highest-ranked member leads its cluster")
	assert.Len(t, clusters[1], 1)
}
