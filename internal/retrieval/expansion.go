package retrieval

import "strings"

// expansion pairs a lower-cased trigger substring with the phrase appended to
// the query when the trigger matches. Tables are ordered slices, not maps:
// matching is evaluated in sequence and the order is part of the behavior.
type expansion struct {
	trigger string
	phrase  string
}

// Spoken-language context. Only the first matching trigger is applied, and a
// match suppresses the skill expansions below so that "what languages" is not
// also pulled towards programming content.
var languageExpansions = []expansion{
	{"spoken languages", "native speaker fluent advanced proficiency language skills"},
	{"languages speaks", "native speaker fluent advanced proficiency language skills"},
	{"what languages", "native speaker fluent advanced proficiency language skills"},
}

// Generic skill terms mapped to the vocabulary actually present in the CV
// chunks. Every matching trigger is appended.
var skillExpansions = []expansion{
	{"computer vision", "image processing visual recognition computer vision object detection"},
	{"machine learning", "ML artificial intelligence data science predictive analytics"},
	{"deep learning", "neural networks AI machine learning data science"},
	{"programming", "coding development software programming languages"},
	{"frameworks", "tools libraries frameworks software development"},
	{"languages", "programming languages coding development"},
}

// Organization names expanded with role and location context from the CV.
// Applied regardless of the language/skill branches.
var organizationExpansions = []expansion{
	{"alten", "ALTEN GmbH Engineering Consultant Cologne Ford suppliers automotive component"},
	{"imi", "IMI Climate Control Mechanical Engineer Basel Switzerland components HVAC"},
	{"steltix", "Steltix ERP Consultant Berlin Germany software integration implementation"},
	{"european patent office", "European Patent Office Munich patent management analysis machine tools plastic welding"},
}

// ExpandQuery deterministically appends known context phrases to the query.
// These tables were tuned against one specific CV corpus; the trigger ordering
// and short-circuit rules are intentional and should not be re-derived.
func ExpandQuery(query string) string {
	queryLower := strings.ToLower(query)
	parts := []string{query}

	for _, e := range languageExpansions {
		if strings.Contains(queryLower, e.trigger) {
			parts = append(parts, e.phrase)
			break // only one language expansion
		}
	}

	// Skill expansions apply only when no language context was added.
	if len(parts) == 1 {
		for _, e := range skillExpansions {
			if strings.Contains(queryLower, e.trigger) {
				parts = append(parts, e.phrase)
			}
		}
	}

	for _, e := range organizationExpansions {
		if strings.Contains(queryLower, e.trigger) {
			parts = append(parts, e.phrase)
		}
	}

	return strings.Join(parts, " ")
}
