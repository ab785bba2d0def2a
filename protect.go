package tercume

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const placeholderFormat = "__PROTECTED_%d__"

// placeholderPattern also matches placeholders a provider re-cased or padded.
var placeholderPattern = regexp.MustCompile(`(?i)__\s*PROTECTED_(\d+)\s*__`)

// Protector swaps protected terms (brand names and similar literals) for
// placeholder tokens before text reaches a provider.
type Protector struct {
	patterns []*regexp.Regexp
}

// Replacements maps each placeholder to the exact text it replaced.
type Replacements map[string]string

// NewProtector builds a Protector for the given terms. Matching is
// case-insensitive; longer terms win over terms they contain.
func NewProtector(terms []string) *Protector {
	cleaned := make([]string, 0, len(terms))
	seen := make(map[string]bool)
	for _, term := range terms {
		term = strings.TrimSpace(term)
		key := strings.ToLower(term)
		if term == "" || seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, term)
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return len(cleaned[i]) > len(cleaned[j])
	})

	p := &Protector{}
	for _, term := range cleaned {
		p.patterns = append(p.patterns, regexp.MustCompile("(?i)"+regexp.QuoteMeta(term)))
	}
	return p
}

// Protect replaces every occurrence of each matched case-variant of a
// protected term with a placeholder. Each distinct variant gets its own
// placeholder so restoration reproduces the original casing. All matches are
// found on the original text, longest term first; a match overlapping one
// already taken is dropped, so no term is ever matched inside a placeholder.
func (p *Protector) Protect(text string) (string, Replacements) {
	if p == nil || len(p.patterns) == 0 || text == "" {
		return text, nil
	}

	var spans [][2]int
	taken := make([]bool, len(text))
	for _, pattern := range p.patterns {
	next:
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			for i := loc[0]; i < loc[1]; i++ {
				if taken[i] {
					continue next
				}
			}
			for i := loc[0]; i < loc[1]; i++ {
				taken[i] = true
			}
			spans = append(spans, [2]int{loc[0], loc[1]})
		}
	}
	if len(spans) == 0 {
		return text, nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	repl := make(Replacements)
	variants := make(map[string]string)
	var b strings.Builder
	last := 0
	for _, sp := range spans {
		match := text[sp[0]:sp[1]]
		ph, ok := variants[match]
		if !ok {
			ph = fmt.Sprintf(placeholderFormat, len(repl))
			variants[match] = ph
			repl[ph] = match
		}
		b.WriteString(text[last:sp[0]])
		b.WriteString(ph)
		last = sp[1]
	}
	b.WriteString(text[last:])
	return b.String(), repl
}

// Restore substitutes every placeholder back to its recorded original text.
func (r Replacements) Restore(text string) string {
	if len(r) == 0 {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := placeholderPattern.FindStringSubmatch(match)
		n, err := strconv.Atoi(sub[1])
		if err != nil {
			return match
		}
		if original, ok := r[fmt.Sprintf(placeholderFormat, n)]; ok {
			return original
		}
		return match
	})
}
