package pipeline

import (
	"fmt"
	"strings"

	"github.com/ganarajpr/rgfe-sub000/core"
)

const phrasePromptTemplate = `You are helping search a corpus of Vedic Sanskrit verses.

Produce ONE short search phrase (2-6 words) that would match verses relevant
to the question below. Prefer vocabulary that plausibly appears in the corpus
or its standard translations: deity names and canonical concepts such as %s.

Do not answer the question. Output only the phrase, with no quotes and no
explanation.

Question: %s`

const phraseRetryHint = `

Phrases already tried (produce something clearly different): %s`

// buildPhrasePrompt creates the search-phrase generation prompt, seeded with
// the domain glossary and the phrases already attempted this request.
func buildPhrasePrompt(question string, attempts []core.QueryAttempt) string {
	prompt := fmt.Sprintf(phrasePromptTemplate, strings.Join(glossaryTerms, ", "), question)
	if len(attempts) > 0 {
		phrases := make([]string, len(attempts))
		for i, attempt := range attempts {
			phrases[i] = attempt.Phrase
		}
		prompt += fmt.Sprintf(phraseRetryHint, strings.Join(phrases, "; "))
	}
	return prompt
}

const fallbackTranslationPromptTemplate = `Translate the following question into
Sanskrit vocabulary as it would appear in Vedic verse, transliterated in IAST.
Output only the translated words, nothing else.

%s`

// buildFallbackTranslationPrompt renders the last-resort query: a direct
// translation of the raw question into the corpus's vocabulary.
func buildFallbackTranslationPrompt(question string) string {
	return fmt.Sprintf(fallbackTranslationPromptTemplate, question)
}

const classificationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "evaluations": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "tier": {"type": "string", "enum": ["high", "medium", "low"]},
          "relevant": {"type": "boolean"},
          "note": {"type": "string"}
        },
        "required": ["id", "tier", "relevant"],
        "additionalProperties": false
      }
    },
    "needs_more_search": {"type": "boolean"},
    "next_phrase": {"type": "string"}
  },
  "required": ["evaluations", "needs_more_search"],
  "additionalProperties": false
}`

const classificationPromptTemplate = `Judge how well each verse below answers the
user's question. Consider ONLY the verse text against the question; how the
verse was found is irrelevant.

Output ONLY valid JSON which complies with the schema given below. Do not
include any preamble, explanation, greeting, or acknowledgment. Start your
response directly with the opening brace { and end with the closing brace }.
Your output must exactly follow this schema:

%s

Rules:
- For each verse, set "relevant" to false if it does not help answer the
  question at all; such verses need no useful tier, use "low".
- Tier "high" means the verse directly answers the question, "medium" means
  it provides supporting context, "low" means it is only tangentially related.
- Set "needs_more_search" to true if the verses found so far are not enough
  to answer the question well.
- When "needs_more_search" is true, set "next_phrase" to a short new search
  phrase that might find better verses; otherwise omit it or leave it empty.
- The JSON must parse without errors; no trailing commas, no extra keys, and
  no extraneous text outside the object.

Question: %s

Verses:
%s`

// buildClassificationPrompt creates the relevance classification prompt.
// Retrieval scores are deliberately left out: lexical or vector similarity is
// a weak proxy for whether content actually answers the question.
func buildClassificationPrompt(question string, items []*core.RetrievedItem) string {
	var verses strings.Builder
	for _, item := range items {
		fmt.Fprintf(&verses, "- id: %s\n  reference: %s\n  text: %s\n",
			item.EntryID, item.Entry.Reference, item.Entry.Text)
	}
	return fmt.Sprintf(classificationPromptTemplate,
		classificationResponseSchema, question, verses.String())
}

const translationPromptTemplate = `Translate this Vedic Sanskrit verse into
clear English prose. Preserve the meaning faithfully; do not embellish or
interpret. Output only the translation.

Reference: %s
Verse: %s`

// buildTranslationPrompt creates the per-verse translation prompt.
func buildTranslationPrompt(item *core.RetrievedItem) string {
	return fmt.Sprintf(translationPromptTemplate, item.Entry.Reference, item.Entry.Text)
}

const synthesisPromptTemplate = `Answer the user's question using ONLY the
verses provided below. Cite every claim with the verse reference in
parentheses, e.g. (10.129.1). Quote or closely paraphrase the verse
translations; never attribute to a reference anything its verse does not say.
If the verses only partially answer the question, say what they do and do not
establish.

Question: %s

Verses (most relevant first):
%s`

// buildSynthesisPrompt creates the final answer prompt from the selected
// items, already ordered by importance tier.
func buildSynthesisPrompt(question string, items []*core.RetrievedItem) string {
	var verses strings.Builder
	for _, item := range items {
		fmt.Fprintf(&verses, "[%s] (%s, %s)\noriginal: %s\ntranslation: %s\n\n",
			item.EntryID, item.Entry.Reference, item.Tier, item.Entry.Text, item.Translation)
	}
	return fmt.Sprintf(synthesisPromptTemplate, question, verses.String())
}
