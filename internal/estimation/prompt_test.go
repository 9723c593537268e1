package estimation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Su-informatics-lab/llm-drug-effect/internal/serving"
)

func TestBuildConversation_Shape(t *testing.T) {
	t.Parallel()
	conv := BuildConversation("Metformin", false)
	require.Len(t, conv, 2)
	assert.Equal(t, serving.RoleSystem, conv[0].Role)
	assert.Equal(t, serving.RoleUser, conv[1].Role)
	assert.Equal(t, systemPrompt, conv[0].Content)
	assert.Contains(t, conv[1].Content, "Given that a patient took Metformin,")
	assert.Contains(t, conv[1].Content, "'Estimated Probability: X'")
	assert.NotContains(t, conv[1].Content, "think aloud")
}

func TestBuildConversation_ReasoningVariant(t *testing.T) {
	t.Parallel()
	plain := BuildConversation("Metformin", false)
	cot := BuildConversation("Metformin", true)

	assert.Equal(t, plain[0].Content, cot[0].Content)
	assert.Contains(t, cot[1].Content, "You may think aloud and reason step-by-step.")
	assert.NotEqual(t, plain[1].Content, cot[1].Content)
}

func TestBuildConversation_VerbatimInterpolation(t *testing.T) {
	t.Parallel()
	conv := BuildConversation("acetylsalicylic acid 81 mg", false)
	assert.Contains(t, conv[1].Content, "took acetylsalicylic acid 81 mg,")

	// Empty and unusual names are accepted as-is, not rejected.
	empty := BuildConversation("", true)
	assert.Contains(t, empty[1].Content, "Given that a patient took ,")
}

func TestBuildConversation_DeterministicForSameInput(t *testing.T) {
	t.Parallel()
	assert.Equal(t, BuildConversation("insulin", true), BuildConversation("insulin", true))
}

//Personal.AI order the ending
