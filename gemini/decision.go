package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/autosocial/modbot/model"
)

const noKnowledgeFallback = "No specific knowledge base provided. Be polite and professional."

func buildPrompt(comment string, knowledge string) string {
	if knowledge == "" {
		knowledge = noKnowledgeFallback
	}
	return fmt.Sprintf(`You are an expert Social Media Manager AI for a business.

### CONTEXT (Business Knowledge):
%s

### USER COMMENT:
"%s"

### INSTRUCTIONS:
1. Analyze the comment for toxicity, spam, abuse, or hate speech.
2. If it is ABUSIVE: Set "isAbusive" to true. Do NOT generate a reply.
3. If it is SAFE: Set "isAbusive" to false. Generate a polite, helpful reply based *strictly* on the Context provided. If the context doesn't have the answer, politely ask them to contact support.

### RESPONSE FORMAT:
You must return a valid JSON object. Do not include markdown formatting.

Format:
{
  "isAbusive": boolean,
  "reply": "string (or null if abusive)",
  "reason": "short explanation of your decision"
}`, knowledge, comment)
}

// Matches the JSON shape the prompt asks for. Reply is a pointer because the
// model is told to send null for abusive comments.
type rawDecision struct {
	IsAbusive bool    `json:"isAbusive"`
	Reply     *string `json:"reply"`
	Reason    string  `json:"reason"`
}

/*
ParseDecision extracts a Decision from raw model output. Models wrap their
JSON in markdown fences or chatty lead-ins often enough that we strip
everything outside the outermost braces before unmarshalling. Anything that
still isn't a valid decision is an error; the caller fails closed on it.
*/
func ParseDecision(raw string) (*model.Decision, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, errors.New("no JSON object in model output")
	}
	cleaned = cleaned[start : end+1]

	var parsed rawDecision
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, err
	}

	decision := &model.Decision{
		IsAbusive: parsed.IsAbusive,
		Reason:    parsed.Reason,
	}
	if parsed.Reply != nil {
		decision.Reply = *parsed.Reply
	}
	// Abusive comments never get a reply, whatever the model said.
	if decision.IsAbusive {
		decision.Reply = ""
	}
	if decision.Reason == "" {
		decision.Reason = "Processed successfully"
	}
	return decision, nil
}
