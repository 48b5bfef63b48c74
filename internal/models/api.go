package models

// Health is the body of GET /api/health.
type Health struct {
	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
	ArtifactsLoaded int    `json:"artifacts_loaded"`
	Store           string `json:"store,omitempty"`
	LLMEnabled      bool   `json:"llm_enabled"`
}

// ModelStatus is the body of GET /api/model/status. ComparisonSource is
// "llm" when a model is configured, else "template".
type ModelStatus struct {
	Model            string `json:"model"`
	EmbedModel       string `json:"embed_model"`
	BaseURL          string `json:"base_url"`
	Enabled          bool   `json:"enabled"`
	ComparisonSource string `json:"comparison_source"`
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AnswerInfo describes where an answer came from.
type AnswerInfo struct {
	Sources []string `json:"sources"`
	Source  string   `json:"source"`
}

// Answer is the body returned by POST /api/ask.
type Answer struct {
	Question string     `json:"question"`
	Answer   string     `json:"answer"`
	Info     AnswerInfo `json:"info"`
	Success  bool       `json:"success"`
}

// ExampleQuestions is the body of GET /api/example-questions.
type ExampleQuestions struct {
	Examples []string `json:"examples"`
}

// ClearCacheRequest is the optional body of POST /api/cache/clear. An empty
// ArtifactID clears every entry.
type ClearCacheRequest struct {
	ArtifactID string `json:"artifact_id,omitempty"`
}

// StreamChunk is one piece of a streamed answer. A chunk with Err set is the
// last one sent.
type StreamChunk struct {
	Content string
	Err     error
}
