// Package wordsub provides a word substitution candidate generator.
//
// Candidates are single-slot edits: each proposed page differs from the
// baseline in exactly one sentence, with one word swapped for a
// configured replacement. Localized edits keep change sets small, which
// is what lets the incremental calculator skip most recomputation.
package wordsub

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// KeywordPlaceholder in a replacement expands to the run target's keyword.
const KeywordPlaceholder = "{keyword}"

// DefaultRules is the built-in replacement table used when no rules are
// configured: generic high-frequency substitutions. Real runs should
// configure rules for their domain.
var DefaultRules = map[string][]string{
	"good":      {"strong", "solid", "effective"},
	"great":     {"excellent", "outstanding"},
	"big":       {"large", "substantial"},
	"small":     {"compact", "modest"},
	"fast":      {"quick", "rapid"},
	"easy":      {"simple", "straightforward"},
	"help":      {"support", "assist"},
	"use":       {"apply", "employ"},
	"show":      {"demonstrate", "reveal"},
	"make":      {"build", "create"},
	"very":      {"highly", "notably"},
	"also":      {"additionally"},
	"but":       {"however", "yet"},
	"important": {"essential", "critical"},
}

// Ensure Generator implements the interface.
var _ driven.CandidateGenerator = (*Generator)(nil)

// Generator proposes word substitution edits from a replacement table.
type Generator struct {
	rules map[string][]string
	seed  int64

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures the generator.
type Option func(*Generator)

// WithRules sets the replacement table: lower-cased word to candidate
// replacements. The table is read, never written.
func WithRules(rules map[string][]string) Option {
	return func(g *Generator) {
		if len(rules) > 0 {
			g.rules = rules
		}
	}
}

// WithSeed fixes the random source for reproducible proposal order.
// A zero seed draws from the clock.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// New creates a generator with the given options.
func New(opts ...Option) *Generator {
	g := &Generator{
		rules: DefaultRules,
	}
	for _, opt := range opts {
		opt(g)
	}

	seed := g.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g.rng = rand.New(rand.NewSource(seed))

	return g
}

// Propose returns up to n edited copies of the page, each with a single
// word substituted. The page itself is never mutated.
func (g *Generator) Propose(
	_ context.Context, page domain.StructuredPage, target domain.Target, n int,
) ([]domain.StructuredPage, error) {
	if n <= 0 {
		return nil, nil
	}

	edits := g.collectEdits(page, target)
	if len(edits) == 0 {
		return nil, nil
	}

	g.mu.Lock()
	g.rng.Shuffle(len(edits), func(i, j int) {
		edits[i], edits[j] = edits[j], edits[i]
	})
	g.mu.Unlock()

	if len(edits) > n {
		edits = edits[:n]
	}

	candidates := make([]domain.StructuredPage, 0, len(edits))
	for _, e := range edits {
		candidates = append(candidates, e.apply(page))
	}
	return candidates, nil
}

// Slot markers for the head sentences.
const (
	slotTitle = -1
	slotMeta  = -2
)

// edit is one word substitution at a fixed location.
type edit struct {
	section  int // slotTitle, slotMeta, or content section index
	sentence int // body sentence index, -1 for the section heading
	word     int
	text     string // replacement token, affixes and case applied
}

// apply clones the page and rewrites the edited sentence.
func (e edit) apply(page domain.StructuredPage) domain.StructuredPage {
	out := page.Clone()

	var sentence *domain.Sentence
	switch {
	case e.section == slotTitle:
		sentence = &out.Title
	case e.section == slotMeta:
		sentence = &out.Meta
	case e.sentence < 0:
		sentence = &out.Sections[e.section].Heading
	default:
		sentence = &out.Sections[e.section].Sentences[e.sentence]
	}

	fields := strings.Fields(sentence.Text)
	fields[e.word] = e.text
	sentence.Text = strings.Join(fields, " ")
	sentence.Words = nil
	return out
}

// collectEdits enumerates every rule match in the page, document order.
func (g *Generator) collectEdits(page domain.StructuredPage, target domain.Target) []edit {
	var edits []edit

	visit := func(section, sentenceIdx int, sentence domain.Sentence) {
		for i, token := range strings.Fields(sentence.Text) {
			prefix, core, suffix := splitAffixes(token)
			if core == "" {
				continue
			}
			for _, replacement := range g.replacements(core, target) {
				edits = append(edits, edit{
					section:  section,
					sentence: sentenceIdx,
					word:     i,
					text:     prefix + matchCase(core, replacement) + suffix,
				})
			}
		}
	}

	visit(slotTitle, 0, page.Title)
	visit(slotMeta, 0, page.Meta)
	for s, section := range page.Sections {
		visit(s, -1, section.Heading)
		for i, sentence := range section.Sentences {
			visit(s, i, sentence)
		}
	}
	return edits
}

// replacements returns the usable replacements for a word: placeholder
// expanded, no-op swaps dropped.
func (g *Generator) replacements(core string, target domain.Target) []string {
	configured, ok := g.rules[strings.ToLower(core)]
	if !ok {
		return nil
	}

	var usable []string
	for _, replacement := range configured {
		if replacement == KeywordPlaceholder {
			replacement = target.Keyword
		}
		replacement = strings.TrimSpace(replacement)
		if replacement == "" || strings.EqualFold(replacement, core) {
			continue
		}
		usable = append(usable, replacement)
	}
	return usable
}

// splitAffixes splits a token into leading punctuation, the word core,
// and trailing punctuation so "rock." can match the rule for "rock".
func splitAffixes(token string) (prefix, core, suffix string) {
	runes := []rune(token)

	start := 0
	for start < len(runes) && !isWordRune(runes[start]) {
		start++
	}
	end := len(runes)
	for end > start && !isWordRune(runes[end-1]) {
		end--
	}

	return string(runes[:start]), string(runes[start:end]), string(runes[end:])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// matchCase carries a leading capital from the original word over to the
// replacement.
func matchCase(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	first := []rune(original)[0]
	if !unicode.IsUpper(first) {
		return replacement
	}
	runes := []rune(replacement)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
