// Package estimation implements the drug → Type II diabetes probability
// pipeline: conversation templating, chunked submission to the serving
// client, marker-line parsing, and run bookkeeping.
package estimation

import (
	"fmt"

	"github.com/Su-informatics-lab/llm-drug-effect/internal/serving"
)

// systemPrompt is the fixed instruction sent as the first message of every
// conversation.  It pins the output contract: a final line starting with the
// marker so the parser can recover the estimate.
const systemPrompt = "You are a medical language model designed to estimate the probability that a patient has " +
	"Type II diabetes based on a specific medicine. Your goal is to provide the probability as a clear float. " +
	"Please keep your reasoning concise and avoid unnecessary explanations. Always output your final answer " +
	"as a float number on a new line starting with 'Estimated Probability:'."

// userPromptFormat is the question template without the reasoning invitation.
const userPromptFormat = "Given that a patient took %s, estimate the probability that they have Type II diabetes. " +
	"You should provide the final answer on a new line in the format: " +
	"'Estimated Probability: X', where X is the probability."

// userPromptReasoningFormat differs from userPromptFormat by exactly one
// clause: the explicit invitation to reason step-by-step before answering.
const userPromptReasoningFormat = "Given that a patient took %s, estimate the probability that they have Type II diabetes. " +
	"You may think aloud and reason step-by-step." +
	"You should provide the final answer on a new line in the format: " +
	"'Estimated Probability: X', where X is the probability."

// BuildConversation produces the two-message conversation for one drug name.
// The drug string is interpolated verbatim — any string is accepted,
// including the empty string; there is no error path.
func BuildConversation(drug string, reasoning bool) serving.Conversation {
	format := userPromptFormat
	if reasoning {
		format = userPromptReasoningFormat
	}
	return serving.Conversation{
		{Role: serving.RoleSystem, Content: systemPrompt},
		{Role: serving.RoleUser, Content: fmt.Sprintf(format, drug)},
	}
}

//Personal.AI order the ending
