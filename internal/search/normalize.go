// Package search provides a simple, deterministic lexical ranker for Spanish
// legal text. It backs judgment search on deployments without a vector store:
// the query and each candidate are folded (lowercase, diacritics stripped,
// stop words removed) and scored with Jaccard similarity over token sets.
//
//   - No logging in the library (callers decide how/what to log)
//   - Deterministic scoring and sorting (stable order for ties)
//   - Unicode-aware folding, so "《resolución》" matches "RESOLUCION"
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// folder strips combining marks after canonical decomposition, turning
// "apelación" into "apelacion".
var folder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// spanishStopwords are function words dropped during tokenization. The list
// covers the handful that dominate legal prose; exhaustiveness is not the
// point, noise reduction is.
var spanishStopwords = map[string]struct{}{
	"a": {}, "al": {}, "con": {}, "de": {}, "del": {}, "el": {}, "en": {},
	"entre": {}, "es": {}, "la": {}, "las": {}, "lo": {}, "los": {},
	"no": {}, "o": {}, "para": {}, "por": {}, "que": {}, "se": {}, "sin": {},
	"sobre": {}, "su": {}, "un": {}, "una": {}, "y": {},
}

// Fold lowercases s and removes diacritics. Errors from the transformer fall
// back to plain lowercasing, never to an empty result.
func Fold(s string) string {
	out, _, err := transform.String(folder, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Tokenize folds s and splits it into unique lexical tokens, discarding
// Spanish stop words and single-character leftovers.
func Tokenize(s string) map[string]struct{} {
	folded := Fold(s)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := spanishStopwords[f]; stop {
			continue
		}
		set[f] = struct{}{}
	}
	return set
}

// Score computes Jaccard similarity between two token sets:
// |A ∩ B| / |A ∪ B|. Empty sets score zero.
func Score(query, doc map[string]struct{}) float64 {
	if len(query) == 0 || len(doc) == 0 {
		return 0
	}
	inter := 0
	for t := range query {
		if _, ok := doc[t]; ok {
			inter++
		}
	}
	union := len(query) + len(doc) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
