// Package content loads pre-extracted CV content and flattens it into
// retrievable chunks. Raw CV text parsing happens upstream; this package only
// consumes the extracted JSON files.
package content

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/pepperumo/peppegpt/internal/models"
)

// StructuredCV mirrors the structured CV content file.
type StructuredCV struct {
	Profile      string              `json:"profile,omitempty"`
	Contact      *Contact            `json:"contact,omitempty"`
	Experience   []Experience        `json:"experience,omitempty"`
	Projects     []Project           `json:"projects,omitempty"`
	Education    []Education         `json:"education,omitempty"`
	Skills       map[string][]string `json:"skills,omitempty"`
	Languages    []Language          `json:"languages,omitempty"`
	Certificates []string            `json:"certificates,omitempty"`
}

// Contact holds basic identity fields.
type Contact struct {
	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	Location string `json:"location,omitempty"`
}

// Experience is one professional position.
type Experience struct {
	Title            string   `json:"title,omitempty"`
	Company          string   `json:"company,omitempty"`
	Period           string   `json:"period,omitempty"`
	Location         string   `json:"location,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
}

// Project is one portfolio project.
type Project struct {
	Year        string `json:"year,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Education is one degree entry.
type Education struct {
	Degree      string   `json:"degree,omitempty"`
	Institution string   `json:"institution,omitempty"`
	Period      string   `json:"period,omitempty"`
	Details     []string `json:"details,omitempty"`
}

// Language is one spoken language with proficiency.
type Language struct {
	Language    string `json:"language,omitempty"`
	Proficiency string `json:"proficiency,omitempty"`
}

// Load reads CV content from disk, preferring the AI-ready file over the
// structured file. Returns the flattened chunks and the source they came from.
func Load(aiContentPath, structuredPath string) ([]models.ContentChunk, string, error) {
	if data, err := os.ReadFile(aiContentPath); err == nil {
		var sections map[string]string
		if err := json.Unmarshal(data, &sections); err != nil {
			return nil, "", fmt.Errorf("parse ai content: %w", err)
		}
		return FlattenAIContent(sections), models.SourceAIContent, nil
	}

	data, err := os.ReadFile(structuredPath)
	if err != nil {
		return nil, "", fmt.Errorf("no CV content files found: %w", err)
	}
	var cv StructuredCV
	if err := json.Unmarshal(data, &cv); err != nil {
		return nil, "", fmt.Errorf("parse structured content: %w", err)
	}
	return FlattenStructured(&cv), models.SourceStructuredContent, nil
}

// FlattenAIContent converts the flat section-to-text map into chunks.
// Sections are emitted in sorted key order so that chunk indices are stable
// across restarts.
func FlattenAIContent(sections map[string]string) []models.ContentChunk {
	keys := make([]string, 0, len(sections))
	for k := range sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	chunks := make([]models.ContentChunk, 0, len(keys))
	for _, section := range keys {
		text := strings.TrimSpace(sections[section])
		if text == "" {
			continue
		}
		chunks = append(chunks, models.ContentChunk{
			Content: sections[section],
			Section: section,
			Source:  models.SourceAIContent,
		})
	}
	return chunks
}

// FlattenStructured converts the rich CV record into chunks with the section
// labels the rest of the pipeline keys on (experience_0, skills_programming,
// language_1, ...).
func FlattenStructured(cv *StructuredCV) []models.ContentChunk {
	var chunks []models.ContentChunk
	add := func(content, section string) {
		chunks = append(chunks, models.ContentChunk{
			Content: content,
			Section: section,
			Source:  models.SourceStructuredContent,
		})
	}

	if cv.Profile != "" {
		add(cv.Profile, "profile")
	}
	if cv.Contact != nil {
		add(fmt.Sprintf("Name: %s, Title: %s, Location: %s",
			cv.Contact.Name, cv.Contact.Title, cv.Contact.Location), "contact")
	}
	for i, exp := range cv.Experience {
		text := fmt.Sprintf("Position: %s at %s. Period: %s. Location: %s. ",
			exp.Title, exp.Company, exp.Period, exp.Location)
		if len(exp.Responsibilities) > 0 {
			text += "Responsibilities: " + strings.Join(exp.Responsibilities, " ")
		}
		add(text, fmt.Sprintf("experience_%d", i))
	}
	for i, project := range cv.Projects {
		add(fmt.Sprintf("Project (%s): %s. Description: %s",
			project.Year, project.Title, project.Description), fmt.Sprintf("project_%d", i))
	}
	for i, edu := range cv.Education {
		text := fmt.Sprintf("Degree: %s from %s. Period: %s. ",
			edu.Degree, edu.Institution, edu.Period)
		if len(edu.Details) > 0 {
			text += "Details: " + strings.Join(edu.Details, " ")
		}
		add(text, fmt.Sprintf("education_%d", i))
	}
	for _, category := range sortedKeys(cv.Skills) {
		skills := cv.Skills[category]
		if len(skills) == 0 {
			continue
		}
		add(fmt.Sprintf("%s skills: %s", titleCase(category), strings.Join(skills, ", ")),
			"skills_"+category)
	}
	for i, lang := range cv.Languages {
		add(fmt.Sprintf("Language: %s - %s", lang.Language, lang.Proficiency),
			fmt.Sprintf("language_%d", i))
	}
	if len(cv.Certificates) > 0 {
		add("Certificates: "+strings.Join(cv.Certificates, ", "), "certificates")
	}
	return chunks
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
