package models

// ResponseType classifies how an answer was produced and what quality tier it
// belongs to.
type ResponseType string

const (
	ResponseHighConfidence     ResponseType = "high_confidence"
	ResponseMediumConfidence   ResponseType = "medium_confidence"
	ResponseLowConfidence      ResponseType = "low_confidence"
	ResponseOpenAIGenerated    ResponseType = "openai_generated"
	ResponseOpenAIFallback     ResponseType = "openai_fallback"
	ResponseTemplate           ResponseType = "template"
	ResponseSemanticSearchOnly ResponseType = "semantic_search_only"
	ResponseOutOfScope         ResponseType = "out_of_scope"
	ResponseError              ResponseType = "error"
	ResponseErrorFallback      ResponseType = "error_fallback"
)

// Answer is the final composed response for one question.
// Sources lists the section labels of the chunks the answer is grounded on,
// at most three.
type Answer struct {
	Text       string       `json:"text"`
	Confidence float64      `json:"confidence"`
	Sources    []string     `json:"sources"`
	Type       ResponseType `json:"response_type"`
}
