package ai

import "context"

// Responder is the interface for AI reply generation.
// Implement this interface to add new AI providers (Gemini, Ollama, OpenAI, etc.)
type Responder interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)

// EventInstruction is an embedded calendar-event request the model may emit
// alongside its reply
type EventInstruction struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartTime   string `json:"start_time"` // RFC 3339
	EndTime     string `json:"end_time,omitempty"`
	Location    string `json:"location,omitempty"`
}

// ReplyResult is the parsed model output: the human-readable reply text that
// gets emailed, plus an optional event-creation instruction
type ReplyResult struct {
	Response    string            `json:"response"`
	CreateEvent *EventInstruction `json:"create_event,omitempty"`
}
