package models

import "fmt"

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message in a chat session. History is caller-supplied
// and read-only for the core.
type ConversationTurn struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ChatRequest is a chat question with optional session context.
type ChatRequest struct {
	Message          string             `json:"message"`
	SessionID        string             `json:"session_id,omitempty"`
	History          []ConversationTurn `json:"history,omitempty"`
	MaxContextChunks int                `json:"max_context_chunks,omitempty"`
	MinConfidence    float64            `json:"min_confidence,omitempty"`
}

// Validate ensures the request has a message and sets defaults.
func (r *ChatRequest) Validate() error {
	if r.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if r.MaxContextChunks <= 0 {
		r.MaxContextChunks = 5
	}
	if r.MaxContextChunks > 20 {
		r.MaxContextChunks = 20
	}
	if r.MinConfidence <= 0 {
		r.MinConfidence = 0.3
	}
	return nil
}

// ChatResponse is the answer returned for one chat request.
type ChatResponse struct {
	Response     string       `json:"response"`
	Confidence   float64      `json:"confidence"`
	Sources      []string     `json:"sources"`
	ResponseType ResponseType `json:"response_type"`
	SessionID    string       `json:"session_id"`
	Timestamp    string       `json:"timestamp"`
}

// SearchRequest is a raw retrieval request against the CV content.
type SearchRequest struct {
	Query         string  `json:"query"`
	MaxResults    int     `json:"max_results,omitempty"`
	MinConfidence float64 `json:"min_confidence,omitempty"`
}

// Validate ensures the query is non-empty and sets defaults.
func (r *SearchRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if r.MaxResults <= 0 {
		r.MaxResults = 5
	}
	if r.MaxResults > 50 {
		r.MaxResults = 50
	}
	if r.MinConfidence <= 0 {
		r.MinConfidence = 0.3
	}
	return nil
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query        string         `json:"query"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
	Timestamp    string         `json:"timestamp"`
}
