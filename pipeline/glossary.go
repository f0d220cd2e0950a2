package pipeline

import "strings"

// glossaryTerms are canonical corpus concepts used two ways: embedded in the
// phrase-generation prompt to bias vocabulary toward words that plausibly
// appear in the corpus, and as the static fallback rotation when phrase
// generation fails or keeps colliding.
var glossaryTerms = []string{
	"agni",
	"indra",
	"soma",
	"varuna",
	"mitra",
	"ushas",
	"rudra",
	"vayu",
	"surya",
	"sarasvati",
	"ashvins",
	"maruts",
	"yajna",
	"rita",
	"vritra",
	"dyaus",
	"prithvi",
	"brahmanaspati",
}

// workAliases maps well-known hymn names to their locators. A question
// mentioning a named work is as unambiguous as a dotted reference.
var workAliases = map[string]string{
	"creation hymn":    "10.129",
	"hymn of creation": "10.129",
	"nasadiya":         "10.129",
	"nasadiya sukta":   "10.129",
	"purusha sukta":    "10.90",
	"purusha hymn":     "10.90",
	"gayatri":          "3.62",
	"gayatri mantra":   "3.62",
	"frog hymn":        "7.103",
	"gambler's hymn":   "10.34",
	"gamblers hymn":    "10.34",
	"wedding hymn":     "10.85",
	"riddle hymn":      "1.164",
}

// aliasReference looks up a named work mentioned anywhere in the question.
func aliasReference(question string) (string, bool) {
	lowered := strings.ToLower(question)
	for alias, ref := range workAliases {
		if strings.Contains(lowered, alias) {
			return ref, true
		}
	}
	return "", false
}

// nextGlossaryTerm returns the first glossary term the request has not tried
// yet, marking it used. Returns ok=false when the rotation is exhausted.
func nextGlossaryTerm(state *State) (string, bool) {
	for _, term := range glossaryTerms {
		if state.GlossaryUsed(term) || state.PhraseUsed(term) {
			continue
		}
		state.MarkGlossaryUsed(term)
		return term, true
	}
	return "", false
}
