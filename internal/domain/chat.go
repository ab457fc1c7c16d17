package domain

// ChatRequest is one free-text utterance from the calling boundary.
// TenantID is resolved upstream (JWT claim or dev header) — the core
// trusts it blindly.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ChatReply is the single reply object returned per utterance.
// Content may embed emphasis markers, pipe-delimited tables and fenced
// blocks with ascii charts; the caller renders it as rich text.
type ChatReply struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	Role           string `json:"role"` // always "ASSISTANT"
	Content        string `json:"content"`
}

// Tip is one entry of the fixed financial-education tip set.
type Tip struct {
	Title   string
	Content string
}

// AssistantMetrics is an aggregated operational snapshot served by the
// GET /v1/metrics/assistant endpoint.
type AssistantMetrics struct {
	TotalReplies int64   `json:"total_replies"`
	ErrorRate    float64 `json:"error_rate"`
	CacheHitRate float64 `json:"cache_hit_rate"`
	Period       string  `json:"period"`
}
