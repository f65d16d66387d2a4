package models

import "testing"

func TestChatRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     *ChatRequest
		wantErr bool
	}{
		{"empty message", &ChatRequest{Message: ""}, true},
		{"valid message", &ChatRequest{Message: "what languages does he speak?"}, false},
		{"sets defaults", &ChatRequest{Message: "hi"}, false},
		{"caps context chunks", &ChatRequest{Message: "hi", MaxContextChunks: 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.req.MaxContextChunks <= 0 || tt.req.MaxContextChunks > 20 {
				t.Errorf("MaxContextChunks not normalized: %d", tt.req.MaxContextChunks)
			}
			if tt.req.MinConfidence != 0.3 && tt.req.MinConfidence <= 0 {
				t.Errorf("MinConfidence not defaulted: %f", tt.req.MinConfidence)
			}
		})
	}
}

func TestSearchRequest_Validate(t *testing.T) {
	r := &SearchRequest{}
	if err := r.Validate(); err == nil {
		t.Error("expected error for empty query")
	}

	r = &SearchRequest{Query: "experience", MaxResults: 200}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.MaxResults != 50 {
		t.Errorf("expected max results capped at 50, got %d", r.MaxResults)
	}
	if r.MinConfidence != 0.3 {
		t.Errorf("expected default min confidence 0.3, got %f", r.MinConfidence)
	}
}
