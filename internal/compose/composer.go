package compose

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pepperumo/peppegpt/internal/models"
	"github.com/pepperumo/peppegpt/pkg/utils"
)

// DefaultTimeout bounds one generation call.
const DefaultTimeout = 30 * time.Second

// maxContextChunks is how many top-ranked chunks go into the prompt context.
const maxContextChunks = 3

// templateMaxChars is how much of the top chunk the template answer quotes.
const templateMaxChars = 200

// Composer builds the final answer when factual extraction deferred.
// Compose always returns a usable answer; generation failures degrade to the
// template path and are never propagated.
type Composer struct {
	generator Generator // nil when no backend is configured
	subject   string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewComposer creates a composer. generator may be nil, in which case every
// answer comes from the template path.
func NewComposer(generator Generator, subject string, timeout time.Duration, logger *zap.Logger) *Composer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{generator: generator, subject: subject, timeout: timeout, logger: logger}
}

// HasGenerator reports whether a generation backend is configured.
func (c *Composer) HasGenerator() bool {
	return c.generator != nil
}

// BuildContext renders up to the top three chunks as "section: content"
// blocks separated by blank lines. Returns "" for no chunks.
func BuildContext(chunks []models.SearchResult) string {
	if len(chunks) == 0 {
		return ""
	}
	n := len(chunks)
	if n > maxContextChunks {
		n = maxContextChunks
	}
	parts := make([]string, 0, n)
	for _, chunk := range chunks[:n] {
		parts = append(parts, fmt.Sprintf("%s: %s", chunk.Section, chunk.Content))
	}
	return strings.Join(parts, "\n\n")
}

// Compose produces the answer for question from the retrieved chunks. The
// history is accepted for future use; no ranking step consults it yet.
func (c *Composer) Compose(ctx context.Context, question string, chunks []models.SearchResult, history []models.ConversationTurn) models.Answer {
	_ = history

	if c.generator != nil {
		answer, err := c.generate(ctx, question, chunks)
		if err == nil {
			return answer
		}
		c.logger.Warn("generation backend failed, using template response",
			zap.String("backend", c.generator.Name()),
			zap.Error(err),
		)
	}
	return c.template(chunks)
}

func (c *Composer) generate(ctx context.Context, question string, chunks []models.SearchResult) (models.Answer, error) {
	contextText := BuildContext(chunks)
	if strings.TrimSpace(contextText) == "" {
		contextText = fallbackBiography(c.subject)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.generator.Generate(ctx, systemPrompt(c.subject), userPrompt(c.subject, contextText, question))
	if err != nil {
		return models.Answer{}, err
	}

	answer := models.Answer{
		Text: FormatResponse(text),
	}
	if len(chunks) > 0 {
		answer.Confidence = 0.9
		answer.Sources = sectionLabels(chunks, maxContextChunks)
		answer.Type = models.ResponseOpenAIGenerated
	} else {
		answer.Confidence = 0.7
		answer.Sources = []string{"general_info"}
		answer.Type = models.ResponseOpenAIFallback
	}
	return answer, nil
}

func (c *Composer) template(chunks []models.SearchResult) models.Answer {
	if len(chunks) == 0 {
		return models.Answer{
			Text: fmt.Sprintf("I don't have specific information to answer that question about %s's background. "+
				"You might want to ask about his experience, skills, or projects.", c.subject),
			Confidence: 0.3,
			Sources:    []string{},
			Type:       models.ResponseOutOfScope,
		}
	}
	best := chunks[0]
	return models.Answer{
		Text:       fmt.Sprintf("Based on %s's CV: %s", c.subject, utils.Truncate(best.Content, templateMaxChars)),
		Confidence: 0.6,
		Sources:    []string{best.Section},
		Type:       models.ResponseTemplate,
	}
}

func sectionLabels(chunks []models.SearchResult, n int) []string {
	if len(chunks) < n {
		n = len(chunks)
	}
	labels := make([]string, 0, n)
	for _, chunk := range chunks[:n] {
		labels = append(labels, chunk.Section)
	}
	return labels
}
