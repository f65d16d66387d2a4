package compose

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pepperumo/peppegpt/internal/models"
)

type stubGenerator struct {
	text string
	err  error
	name string

	gotSystem string
	gotUser   string
	calls     int
}

func (s *stubGenerator) Generate(ctx context.Context, systemInstruction, userPrompt string) (string, error) {
	s.calls++
	s.gotSystem = systemInstruction
	s.gotUser = userPrompt
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func (s *stubGenerator) Name() string {
	if s.name == "" {
		return "stub"
	}
	return s.name
}

func sampleChunks() []models.SearchResult {
	return []models.SearchResult{
		{Content: "Position: AI Engineer at Alten. Period: 2023-2025.", Section: "experience_0", Source: models.SourceStructuredContent, Confidence: 0.91},
		{Content: "Programming: Python, SQL, C++", Section: "skills_programming", Source: models.SourceStructuredContent, Confidence: 0.84},
		{Content: "Language: Italian - Native", Section: "language_0", Source: models.SourceStructuredContent, Confidence: 0.61},
		{Content: "MSc Computational Engineering", Section: "education_0", Source: models.SourceStructuredContent, Confidence: 0.52},
	}
}

func TestBuildContextTopThree(t *testing.T) {
	got := BuildContext(sampleChunks())
	want := "experience_0: Position: AI Engineer at Alten. Period: 2023-2025.\n\n" +
		"skills_programming: Programming: Python, SQL, C++\n\n" +
		"language_0: Language: Italian - Native"
	if got != want {
		t.Errorf("BuildContext() = %q, want %q", got, want)
	}
	if strings.Contains(got, "education_0") {
		t.Error("BuildContext() included a chunk past the top three")
	}
}

func TestBuildContextEmpty(t *testing.T) {
	if got := BuildContext(nil); got != "" {
		t.Errorf("BuildContext(nil) = %q, want empty", got)
	}
}

func TestComposeTemplateWithChunks(t *testing.T) {
	c := NewComposer(nil, "Giuseppe", 0, nil)
	answer := c.Compose(context.Background(), "what did he do at Alten?", sampleChunks(), nil)

	if answer.Type != models.ResponseTemplate {
		t.Fatalf("Type = %q, want %q", answer.Type, models.ResponseTemplate)
	}
	if answer.Confidence != 0.6 {
		t.Errorf("Confidence = %v, want 0.6", answer.Confidence)
	}
	if !strings.HasPrefix(answer.Text, "Based on Giuseppe's CV: Position: AI Engineer at Alten") {
		t.Errorf("unexpected text %q", answer.Text)
	}
	if len(answer.Sources) != 1 || answer.Sources[0] != "experience_0" {
		t.Errorf("Sources = %v, want [experience_0]", answer.Sources)
	}
}

func TestComposeTemplateNoChunks(t *testing.T) {
	c := NewComposer(nil, "Giuseppe", 0, nil)
	answer := c.Compose(context.Background(), "what is the weather?", nil, nil)

	if answer.Type != models.ResponseOutOfScope {
		t.Fatalf("Type = %q, want %q", answer.Type, models.ResponseOutOfScope)
	}
	if answer.Confidence != 0.3 {
		t.Errorf("Confidence = %v, want 0.3", answer.Confidence)
	}
	if !strings.Contains(answer.Text, "I don't have specific information") {
		t.Errorf("unexpected text %q", answer.Text)
	}
	if len(answer.Sources) != 0 {
		t.Errorf("Sources = %v, want empty", answer.Sources)
	}
}

func TestComposeGenerated(t *testing.T) {
	gen := &stubGenerator{text: "He worked as an AI Engineer at Alten in Munich."}
	c := NewComposer(gen, "Giuseppe", 0, nil)
	answer := c.Compose(context.Background(), "tell me about Alten", sampleChunks(), nil)

	if answer.Type != models.ResponseOpenAIGenerated {
		t.Fatalf("Type = %q, want %q", answer.Type, models.ResponseOpenAIGenerated)
	}
	if answer.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", answer.Confidence)
	}
	wantSources := []string{"experience_0", "skills_programming", "language_0"}
	if len(answer.Sources) != len(wantSources) {
		t.Fatalf("Sources = %v, want %v", answer.Sources, wantSources)
	}
	for i, s := range wantSources {
		if answer.Sources[i] != s {
			t.Errorf("Sources[%d] = %q, want %q", i, answer.Sources[i], s)
		}
	}
	if !strings.Contains(gen.gotUser, "experience_0: Position: AI Engineer") {
		t.Error("prompt did not include retrieved context")
	}
}

func TestComposeGeneratedNoContext(t *testing.T) {
	gen := &stubGenerator{text: "Giuseppe is an AI engineer based in Berlin."}
	c := NewComposer(gen, "Giuseppe", 0, nil)
	answer := c.Compose(context.Background(), "who is Giuseppe?", nil, nil)

	if answer.Type != models.ResponseOpenAIFallback {
		t.Fatalf("Type = %q, want %q", answer.Type, models.ResponseOpenAIFallback)
	}
	if answer.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want 0.7", answer.Confidence)
	}
	if len(answer.Sources) != 1 || answer.Sources[0] != "general_info" {
		t.Errorf("Sources = %v, want [general_info]", answer.Sources)
	}
	// With no retrieved chunks the biography stands in as context.
	if !strings.Contains(gen.gotUser, "Data Scientist and ML Engineer") {
		t.Error("prompt did not include the fallback biography")
	}
}

func TestComposeGeneratorFailureDowngradesToTemplate(t *testing.T) {
	gen := &stubGenerator{err: errors.New("rate limited")}
	c := NewComposer(gen, "Giuseppe", 0, nil)
	answer := c.Compose(context.Background(), "skills?", sampleChunks(), nil)

	if gen.calls != 1 {
		t.Fatalf("generator calls = %d, want 1", gen.calls)
	}
	if answer.Type != models.ResponseTemplate {
		t.Fatalf("Type = %q, want %q", answer.Type, models.ResponseTemplate)
	}
	if answer.Confidence != 0.6 {
		t.Errorf("Confidence = %v, want 0.6", answer.Confidence)
	}
}

func TestComposeFormatsGeneratedText(t *testing.T) {
	gen := &stubGenerator{text: "Skills: Python, SQL - ML - NLP"}
	c := NewComposer(gen, "Giuseppe", 0, nil)
	answer := c.Compose(context.Background(), "skills?", sampleChunks(), nil)

	if strings.HasPrefix(answer.Text, "\n") {
		t.Error("formatted answer starts with a newline")
	}
	if !strings.Contains(answer.Text, "\n- ML") {
		t.Errorf("bullets not broken onto new lines: %q", answer.Text)
	}
}
