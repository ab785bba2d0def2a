// Package processor translates the human-visible text of HTML content while
// leaving its markup untouched.
package processor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/tercume"
)

// Engine is the translation surface the processors rely on.
// *tercume.Translator satisfies it.
type Engine interface {
	TranslateText(ctx context.Context, text, sourceLang, targetLang string) string
	DetectLanguage(text string) string
}

// Unit kinds.
const (
	UnitText      = "html_text"
	UnitAttribute = "html_attr"
	UnitButton    = "button_label"
)

// Unit is one piece of translatable text found in markup.
type Unit struct {
	Kind    string `json:"kind"`
	Tag     string `json:"tag,omitempty"`
	Attr    string `json:"attr,omitempty"`
	Text    string `json:"text"`
	Hash    string `json:"hash"`
	Context string `json:"context,omitempty"`
}

// Inline buttons are written by the editor as
//
//	<button: [label]> url </button>
//
// Only the label is human-visible.
var buttonPattern = regexp.MustCompile(`(?i)<button:\s*\[([^\]]*)\]>\s*(.*?)\s*</button>`)

// button is one inline button cut out of a line.
type button struct {
	raw        string
	labelStart int // offsets of the label inside raw
	labelEnd   int
}

func (b button) label() string {
	return b.raw[b.labelStart:b.labelEnd]
}

// withLabel reassembles the button markup around a new label.
func (b button) withLabel(label string) string {
	return b.raw[:b.labelStart] + label + b.raw[b.labelEnd:]
}

// buttonSet holds the buttons cut out of one piece of content and the
// placeholder pattern standing in for them. The placeholder prefix is chosen
// so it does not already occur in the content.
type buttonSet struct {
	buttons []button
	pattern *regexp.Regexp
}

// protectButtons swaps every inline button in content for a placeholder.
func protectButtons(content string) (string, *buttonSet) {
	matches := buttonPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, &buttonSet{}
	}

	prefix := "__BUTTON_"
	for n := 1; strings.Contains(content, prefix); n++ {
		prefix = fmt.Sprintf("__BUTTON%d_", n)
	}
	set := &buttonSet{
		buttons: make([]button, 0, len(matches)),
		pattern: regexp.MustCompile(regexp.QuoteMeta(prefix) + `(\d+)__`),
	}

	var sb strings.Builder
	last := 0
	for i, m := range matches {
		sb.WriteString(content[last:m[0]])
		fmt.Fprintf(&sb, "%s%d__", prefix, i)
		set.buttons = append(set.buttons, button{
			raw:        content[m[0]:m[1]],
			labelStart: m[2] - m[0],
			labelEnd:   m[3] - m[0],
		})
		last = m[1]
	}
	sb.WriteString(content[last:])
	return sb.String(), set
}

// locate returns the placeholder spans in s.
func (bs *buttonSet) locate(s string) [][]int {
	if bs == nil || bs.pattern == nil {
		return nil
	}
	return bs.pattern.FindAllStringIndex(s, -1)
}

// split returns the text of s between placeholders.
func (bs *buttonSet) split(s string) []string {
	if bs == nil || bs.pattern == nil {
		return []string{s}
	}
	return bs.pattern.Split(s, -1)
}

// index returns the button number of a placeholder match, or -1.
func (bs *buttonSet) index(match string) int {
	sub := bs.pattern.FindStringSubmatch(match)
	if sub == nil {
		return -1
	}
	i, err := strconv.Atoi(sub[1])
	if err != nil || i >= len(bs.buttons) {
		return -1
	}
	return i
}

// restore replaces every placeholder with its button, relabelled by label.
func (bs *buttonSet) restore(s string, label func(i int, b button) string) string {
	if bs == nil || len(bs.buttons) == 0 {
		return s
	}
	return bs.pattern.ReplaceAllStringFunc(s, func(match string) string {
		i := bs.index(match)
		if i < 0 {
			return match
		}
		return bs.buttons[i].withLabel(label(i, bs.buttons[i]))
	})
}

// isIgnoredTag reports whether content inside tag is never translated.
func isIgnoredTag(ignored map[string]bool, tag string) bool {
	return ignored[strings.ToLower(tag)]
}

// splitSpace separates s into its leading whitespace, core text and
// trailing whitespace.
func splitSpace(s string) (lead, core, trail string) {
	const ws = " \t\n\r\f"
	trimmedLeft := strings.TrimLeft(s, ws)
	lead = s[:len(s)-len(trimmedLeft)]
	core = strings.TrimRight(trimmedLeft, ws)
	trail = trimmedLeft[len(core):]
	return lead, core, trail
}

// defaultIgnoredTags copies the shared ignored-tag set.
func defaultIgnoredTags() map[string]bool {
	out := make(map[string]bool, len(tercume.IgnoredTags))
	for k, v := range tercume.IgnoredTags {
		out[k] = v
	}
	return out
}
