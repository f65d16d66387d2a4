// Package facts answers well-known question shapes directly from matched
// chunks, bypassing generative synthesis. Direct lookup is both cheaper and
// more reliable than generation for these categories.
package facts

import (
	"fmt"
	"strings"

	"github.com/pepperumo/peppegpt/internal/models"
)

// handler produces an answer from the retrieved context, or nil to defer to
// the composer.
type handler func(x *Extractor, contextText string, chunks []models.SearchResult) *models.Answer

// rule pairs a trigger predicate with its handler. Rules are evaluated in
// order; the first matching rule wins and its nil result still ends the chain.
type rule struct {
	name    string
	matches func(question string) bool
	handle  handler
}

// Extractor pattern-matches questions against high-value categories.
type Extractor struct {
	subject string
	rules   []rule
}

// NewExtractor creates an extractor answering on behalf of subject
// (the CV owner's first name, used in answer templates).
func NewExtractor(subject string) *Extractor {
	x := &Extractor{subject: subject}
	x.rules = []rule{
		// Spoken languages take priority over programming languages: a
		// question matching both resolves here.
		{
			name:    "spoken_languages",
			matches: containsAny("what languages", "languages speak", "spoken languages", "languages does"),
			handle:  (*Extractor).spokenLanguages,
		},
		{
			name:    "programming_languages",
			matches: containsAny("programming languages", "programming language", "coding languages"),
			handle:  (*Extractor).programmingLanguages,
		},
		// Technical questions need synthesis, not lookup; defer to the
		// composer so the generation backend can work from the found context.
		{
			name:    "technical_skills",
			matches: containsAny("computer vision", "object detection", "image processing", "machine learning", "deep learning"),
			handle: func(*Extractor, string, []models.SearchResult) *models.Answer {
				return nil
			},
		},
		{
			name:    "skills",
			matches: containsAny("skills"),
			handle:  (*Extractor).skills,
		},
		{
			name:    "experience",
			matches: containsAny("experience", "background", "worked"),
			handle:  (*Extractor).experience,
		},
	}
	return x
}

// Extract returns a direct answer for the question, or nil when no category
// matches or the matched category finds no content.
func (x *Extractor) Extract(question, contextText string, chunks []models.SearchResult) *models.Answer {
	questionLower := strings.ToLower(question)
	for _, r := range x.rules {
		if r.matches(questionLower) {
			return r.handle(x, contextText, chunks)
		}
	}
	return nil
}

func (x *Extractor) spokenLanguages(_ string, chunks []models.SearchResult) *models.Answer {
	var languages []string
	var sources []string
	for _, chunk := range chunks {
		if strings.Contains(chunk.Section, "language_") {
			languages = append(languages, strings.Replace(chunk.Content, "Language: ", "", 1))
			sources = append(sources, chunk.Section)
		}
	}
	if len(languages) == 0 {
		return nil
	}
	return &models.Answer{
		Text:       fmt.Sprintf("%s speaks: %s", x.subject, strings.Join(languages, ", ")),
		Confidence: 0.95,
		Sources:    sources,
		Type:       models.ResponseHighConfidence,
	}
}

func (x *Extractor) programmingLanguages(contextText string, chunks []models.SearchResult) *models.Answer {
	for _, line := range strings.Split(contextText, "\n") {
		if !strings.Contains(strings.ToLower(line), "programming:") {
			continue
		}
		info := afterColon(line)
		if info == "" {
			continue
		}
		return &models.Answer{
			Text:       fmt.Sprintf("%s knows %s.", x.subject, info),
			Confidence: 0.95,
			Sources:    topSections(chunks, 3),
			Type:       models.ResponseHighConfidence,
		}
	}
	return nil
}

func (x *Extractor) skills(contextText string, chunks []models.SearchResult) *models.Answer {
	categories := []string{"programming:", "technical:", "tools:", "frameworks:"}
	var parts []string
	for _, line := range strings.Split(contextText, "\n") {
		lineLower := strings.ToLower(line)
		matched := false
		for _, c := range categories {
			if strings.Contains(lineLower, c) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		category := strings.TrimSpace(strings.SplitN(line, ":", 2)[0])
		skills := afterColon(line)
		if skills != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", category, skills))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return &models.Answer{
		Text:       fmt.Sprintf("%s's skills include %s.", x.subject, strings.Join(parts, ". ")),
		Confidence: 0.9,
		Sources:    topSections(chunks, 3),
		Type:       models.ResponseHighConfidence,
	}
}

func (x *Extractor) experience(_ string, chunks []models.SearchResult) *models.Answer {
	for _, chunk := range chunks {
		if !strings.Contains(strings.ToLower(chunk.Content), "title:") {
			continue
		}
		for _, line := range strings.Split(chunk.Content, "\n") {
			if !strings.Contains(strings.ToLower(line), "title:") {
				continue
			}
			info := afterColon(line)
			if info == "" {
				continue
			}
			return &models.Answer{
				Text:       fmt.Sprintf("%s is a %s", x.subject, info),
				Confidence: 0.9,
				Sources:    topSections(chunks, 3),
				Type:       models.ResponseHighConfidence,
			}
		}
	}
	return nil
}

func containsAny(triggers ...string) func(string) bool {
	return func(questionLower string) bool {
		for _, t := range triggers {
			if strings.Contains(questionLower, t) {
				return true
			}
		}
		return false
	}
}

// afterColon returns the trimmed text after the first colon, or "" when the
// line has no colon or nothing follows it.
func afterColon(line string) string {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// topSections returns the section labels of up to n leading chunks.
func topSections(chunks []models.SearchResult, n int) []string {
	if len(chunks) < n {
		n = len(chunks)
	}
	sections := make([]string, 0, n)
	for _, chunk := range chunks[:n] {
		sections = append(sections, chunk.Section)
	}
	return sections
}
