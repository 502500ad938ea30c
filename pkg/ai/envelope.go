package ai

import (
	"encoding/json"
	"strings"
)

// ParseReply interprets raw model output. Output wrapped in a JSON envelope
// ({"response": ..., "create_event": ...}) is unpacked; anything else is
// treated as plain reply text. Models often wrap JSON in markdown fences, so
// those are stripped first.
func ParseReply(raw string) *ReplyResult {
	text := strings.TrimSpace(raw)

	candidate := text
	if strings.HasPrefix(candidate, "```json") {
		candidate = strings.TrimPrefix(candidate, "```json")
		candidate = strings.TrimSuffix(candidate, "```")
	} else if strings.HasPrefix(candidate, "```") {
		candidate = strings.TrimPrefix(candidate, "```")
		candidate = strings.TrimSuffix(candidate, "```")
	}
	candidate = strings.TrimSpace(candidate)

	if strings.HasPrefix(candidate, "{") {
		var result ReplyResult
		if err := json.Unmarshal([]byte(candidate), &result); err == nil && result.Response != "" {
			if result.CreateEvent != nil && (result.CreateEvent.Title == "" || result.CreateEvent.StartTime == "") {
				// Incomplete instruction: keep the reply, drop the event
				result.CreateEvent = nil
			}
			return &result
		}
	}

	return &ReplyResult{Response: text}
}
