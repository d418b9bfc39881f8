package ingest

import (
	"encoding/json"
	"log"
	"strings"
)

// envelopeKeys are the JSON fields that may carry the analysis text, in lookup order.
var envelopeKeys = []string{"analysis", "content", "text", "description", "result", "response"}

// ExtractText returns the analysis prose from an AI response. Responses
// wrapped in a markdown code fence or in a JSON envelope are unwrapped; any
// other input is returned trimmed. It never fails.
func ExtractText(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	inner := stripCodeFence(text)
	if !strings.HasPrefix(inner, "{") {
		return text
	}

	var envelope map[string]any
	if err := json.Unmarshal([]byte(inner), &envelope); err != nil {
		log.Printf("Response looks like JSON but did not parse, using it as text: %v", err)
		return text
	}
	if s, ok := envelopeText(envelope); ok {
		return strings.TrimSpace(s)
	}
	return text
}

// stripCodeFence removes a surrounding ``` fence, if the whole text is fenced.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	endIdx := len(lines)
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}
	if endIdx <= 1 {
		return text
	}
	return strings.TrimSpace(strings.Join(lines[1:endIdx], "\n"))
}

func envelopeText(m map[string]any) (string, bool) {
	for _, key := range envelopeKeys {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}

	// OpenAI style: choices[0].message.content
	choices, ok := m["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", false
	}
	first, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}
	msg, ok := first["message"].(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := msg["content"].(string)
	return s, ok && strings.TrimSpace(s) != ""
}
