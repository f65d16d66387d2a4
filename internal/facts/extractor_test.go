package facts

import (
	"strings"
	"testing"

	"github.com/pepperumo/peppegpt/internal/models"
)

func languageChunks() []models.SearchResult {
	return []models.SearchResult{
		{Content: "Language: Italian - Native", Section: "language_0", Confidence: 0.8},
		{Content: "Language: English - Fluent", Section: "language_1", Confidence: 0.75},
	}
}

func TestExtract_SpokenLanguages(t *testing.T) {
	x := NewExtractor("Giuseppe")
	answer := x.Extract("What languages does he speak?", "", languageChunks())
	if answer == nil {
		t.Fatal("expected an answer")
	}
	if answer.Text != "Giuseppe speaks: Italian - Native, English - Fluent" {
		t.Errorf("text = %q", answer.Text)
	}
	if answer.Confidence != 0.95 {
		t.Errorf("confidence = %f, want 0.95", answer.Confidence)
	}
	if answer.Type != models.ResponseHighConfidence {
		t.Errorf("type = %q", answer.Type)
	}
	if len(answer.Sources) != 2 || answer.Sources[0] != "language_0" || answer.Sources[1] != "language_1" {
		t.Errorf("sources = %v", answer.Sources)
	}
}

func TestExtract_SpokenLanguagesPriorityOverProgramming(t *testing.T) {
	x := NewExtractor("Giuseppe")
	// Matches both the spoken-language and programming-language triggers;
	// must resolve via the spoken-language branch.
	chunks := languageChunks()
	answer := x.Extract("What languages does he speak, and which programming languages?", "Programming: Python", chunks)
	if answer == nil {
		t.Fatal("expected an answer")
	}
	if !strings.Contains(answer.Text, "speaks:") {
		t.Errorf("expected spoken-language answer, got %q", answer.Text)
	}
}

func TestExtract_SpokenLanguagesNoChunksDefers(t *testing.T) {
	x := NewExtractor("Giuseppe")
	chunks := []models.SearchResult{{Content: "Programming: Python", Section: "skills_programming"}}
	// The spoken-language trigger matched; with no language chunks the chain
	// ends with nil instead of falling through to the programming branch.
	if answer := x.Extract("what languages does he speak", "Programming: Python", chunks); answer != nil {
		t.Errorf("expected nil, got %+v", answer)
	}
}

func TestExtract_ProgrammingLanguages(t *testing.T) {
	x := NewExtractor("Giuseppe")
	chunks := []models.SearchResult{
		{Content: "Programming skills", Section: "skills_programming"},
		{Content: "other", Section: "profile"},
	}
	answer := x.Extract("Which programming languages does he know?", "Programming: Python, SQL, C++", chunks)
	if answer == nil {
		t.Fatal("expected an answer")
	}
	if answer.Text != "Giuseppe knows Python, SQL, C++." {
		t.Errorf("text = %q", answer.Text)
	}
	if answer.Confidence != 0.95 {
		t.Errorf("confidence = %f", answer.Confidence)
	}
	if len(answer.Sources) != 2 {
		t.Errorf("sources = %v", answer.Sources)
	}
}

func TestExtract_TechnicalQuestionsDefer(t *testing.T) {
	x := NewExtractor("Giuseppe")
	chunks := []models.SearchResult{{Content: "Project: object detection pipeline", Section: "project_0"}}
	for _, q := range []string{
		"Tell me about his computer vision work",
		"Does he know deep learning?",
		"machine learning experience?",
	} {
		if answer := x.Extract(q, "project_0: object detection pipeline", chunks); answer != nil {
			t.Errorf("question %q: expected deferral, got %+v", q, answer)
		}
	}
}

func TestExtract_Skills(t *testing.T) {
	x := NewExtractor("Giuseppe")
	context := "Programming: Python, SQL\nTools: Docker, Git\nunrelated line"
	chunks := []models.SearchResult{{Content: "x", Section: "skills_programming"}}
	answer := x.Extract("What skills does he have?", context, chunks)
	if answer == nil {
		t.Fatal("expected an answer")
	}
	if answer.Text != "Giuseppe's skills include Programming: Python, SQL. Tools: Docker, Git." {
		t.Errorf("text = %q", answer.Text)
	}
	if answer.Confidence != 0.9 {
		t.Errorf("confidence = %f, want 0.9", answer.Confidence)
	}
}

func TestExtract_Experience(t *testing.T) {
	x := NewExtractor("Giuseppe")
	chunks := []models.SearchResult{
		{Content: "Company: IMI\nTitle: Data Scientist and ML Engineer", Section: "experience_0"},
	}
	answer := x.Extract("What is his professional background?", "", chunks)
	if answer == nil {
		t.Fatal("expected an answer")
	}
	if answer.Text != "Giuseppe is a Data Scientist and ML Engineer" {
		t.Errorf("text = %q", answer.Text)
	}
	if answer.Confidence != 0.9 {
		t.Errorf("confidence = %f", answer.Confidence)
	}
}

func TestExtract_NoCategoryMatch(t *testing.T) {
	x := NewExtractor("Giuseppe")
	if answer := x.Extract("What is his favourite food?", "", nil); answer != nil {
		t.Errorf("expected nil for unmatched question, got %+v", answer)
	}
}

func TestExtract_MatchedCategoryWithoutContentDefers(t *testing.T) {
	x := NewExtractor("Giuseppe")
	chunks := []models.SearchResult{{Content: "no structured lines here", Section: "profile"}}
	if answer := x.Extract("what skills does he have", "no structured lines here", chunks); answer != nil {
		t.Errorf("expected nil, got %+v", answer)
	}
}
