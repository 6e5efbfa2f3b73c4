package thinking

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voidcat-ai/reasoning-core/internal/context7"
	"github.com/voidcat-ai/reasoning-core/internal/llm"
)

var stageInstructions = map[Stage]string{
	StageAnalysis:   "Break the query into its component parts and identify what must be established before an answer is possible. Do not answer yet.",
	StageHypothesis: "Propose one or more candidate answers or explanations. If there is more than one plausible candidate, state each as a separate claim.",
	StageValidation: "Check the leading hypothesis against the provided context. State what supports it and what, if anything, contradicts it.",
	StageRevision:   "The prior validation found a gap. Revise the analysis or hypothesis to address it.",
	StageSynthesis:  "Produce the final answer. Cite the context source ids you relied on.",
}

// structuredReply is the JSON shape every thought-generation call is asked
// to return: stage, text, confidence, and an optional next_stage_hint.
type structuredReply struct {
	Stage         string   `json:"stage"`
	Text          string   `json:"text"`
	Confidence    float64  `json:"confidence"`
	Claims        []string `json:"claims,omitempty"`
	CitedIDs      []string `json:"cited_ids,omitempty"`
	NextStageHint string   `json:"next_stage_hint,omitempty"`
}

// buildPrompt assembles the message sequence for one thought-generation
// call: system instruction, a bounded window of prior thoughts on the
// branch, the context bundle, and the stage instruction.
func buildPrompt(query string, stage Stage, prior []Thought, bundle context7.Bundle, window int) []llm.Message {
	var sb strings.Builder
	sb.WriteString("You are a reasoning engine. Reply with a single JSON object ")
	sb.WriteString(`matching {"stage":string,"text":string,"confidence":number 0..1,"claims":[string],"cited_ids":[string],"next_stage_hint":string}. `)
	sb.WriteString("No prose outside the JSON object.")
	messages := []llm.Message{{Role: "system", Content: sb.String()}}

	messages = append(messages, llm.Message{Role: "user", Content: "Query: " + query})

	if len(prior) > 0 {
		start := 0
		if len(prior) > window {
			start = len(prior) - window
		}
		var tb strings.Builder
		tb.WriteString("Prior thoughts on this branch:\n")
		for _, t := range prior[start:] {
			fmt.Fprintf(&tb, "[%s, confidence=%.2f] %s\n", t.Stage, t.Confidence, t.Text)
		}
		messages = append(messages, llm.Message{Role: "user", Content: tb.String()})
	}

	if !bundle.Empty {
		var cb strings.Builder
		cb.WriteString("Context:\n")
		for _, c := range bundle.Candidates {
			fmt.Fprintf(&cb, "[%s] %s\n", c.SourceID, c.Snippet)
		}
		messages = append(messages, llm.Message{Role: "user", Content: cb.String()})
	}

	instruction := stageInstructions[stage]
	messages = append(messages, llm.Message{Role: "user", Content: fmt.Sprintf("Current stage: %s. %s", stage, instruction)})
	return messages
}

// parseReply extracts a structuredReply from raw LLM text, tolerating a
// fenced ```json code block since many providers wrap JSON that way even
// when told not to.
func parseReply(raw string) (*structuredReply, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var reply structuredReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return nil, fmt.Errorf("parse structured reply: %w", err)
	}
	if reply.Text == "" {
		return nil, fmt.Errorf("structured reply missing text")
	}
	if reply.Confidence < 0 || reply.Confidence > 1 {
		return nil, fmt.Errorf("structured reply confidence out of range: %v", reply.Confidence)
	}
	return &reply, nil
}
