package utils

import "strings"

// TokenSet lowercases the text and splits it into a set of alphanumeric tokens.
func TokenSet(text string) map[string]struct{} {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Jaccard computes token-set Jaccard similarity between two texts:
// |intersection| / |union|. Returns 0 for two empty texts.
func Jaccard(a, b string) float64 {
	setA := TokenSet(a)
	setB := TokenSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}
