package segmenter

import "strings"

// splitSentences splits flowing text into sentences on terminal
// punctuation. The splitting is deliberately simple: sentence boundaries
// define fragment identity, so determinism matters more than linguistic
// nuance here.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if !isTerminator(r) {
			continue
		}
		// Runs like "..." or "?!" end one sentence, not several.
		if i+1 < len(runes) && isTerminator(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	// Don't forget the last sentence
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '\n'
}
