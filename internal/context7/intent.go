package context7

import "strings"

// intentTag is one of the rule-based query intents detected from phrasing.
type intentTag string

const (
	intentHow          intentTag = "how"
	intentWhy          intentTag = "why"
	intentCompare      intentTag = "compare"
	intentDefine       intentTag = "define"
	intentTroubleshoot intentTag = "troubleshoot"
	intentCode         intentTag = "code"
)

var intentKeywords = map[intentTag][]string{
	intentHow:          {"how do", "how to", "how can", "steps to"},
	intentWhy:          {"why does", "why is", "why do", "reason for"},
	intentCompare:      {"compare", "versus", " vs ", "difference between"},
	intentDefine:       {"what is", "what are", "define", "meaning of"},
	intentTroubleshoot: {"error", "fails", "failing", "broken", "not working", "bug"},
	intentCode:         {"function", "implement", "code", "snippet", "api"},
}

// intentExpansions supplies a small handful of intent-specific keyphrases
// appended to the query as extra retrieval sources.
var intentExpansions = map[intentTag][]string{
	intentHow:          {"steps", "procedure", "tutorial"},
	intentWhy:          {"rationale", "reason", "explanation"},
	intentCompare:      {"comparison", "tradeoffs", "differences"},
	intentDefine:       {"definition", "overview", "glossary"},
	intentTroubleshoot: {"troubleshooting", "fix", "known issue"},
	intentCode:         {"example", "usage", "reference"},
}

// analyzeIntent detects intent tags present in query via substring matching
// and returns the query expanded with each matched intent's keyphrases.
func analyzeIntent(query string) ([]intentTag, []string) {
	lower := " " + strings.ToLower(query) + " "

	var tags []intentTag
	var expansions []string
	for tag, phrases := range intentKeywords {
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				tags = append(tags, tag)
				for _, kw := range intentExpansions[tag] {
					expansions = append(expansions, query+" "+kw)
				}
				break
			}
		}
	}
	return tags, expansions
}

// hasIntent reports whether tags contains t.
func hasIntent(tags []intentTag, t intentTag) bool {
	for _, tag := range tags {
		if tag == t {
			return true
		}
	}
	return false
}
