package processor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/ZaguanLabs/tercume"
	"golang.org/x/net/html"
)

// DefaultMaxBuffer caps how many bytes the tokenizer buffers for one token.
const DefaultMaxBuffer = 1 << 20

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// rawTextElements hold text only; the tokenizer reads their content up to
// the matching end tag.
var rawTextElements = map[string]bool{
	"iframe": true, "noembed": true, "noframes": true, "noscript": true,
	"plaintext": true, "script": true, "style": true, "textarea": true,
	"title": true, "xmp": true,
}

// attrPattern matches one attribute of a raw start tag, after the tag name.
var attrPattern = regexp.MustCompile(`(\s+)([^\s"'>/=]+)(?:(\s*=\s*)("[^"]*"|'[^']*'|[^\s"'=<>` + "`" + `]+))?`)

// LineProcessor translates HTML line by line. Everything except the
// translated text units is copied through byte for byte.
type LineProcessor struct {
	engine      Engine
	ignoredTags map[string]bool
	attrs       map[string]bool
	maxBuf      int
	logger      *slog.Logger
}

// Option configures a LineProcessor.
type Option func(*LineProcessor)

// WithIgnoredTags replaces the set of elements whose content is never
// translated.
func WithIgnoredTags(tags ...string) Option {
	return func(p *LineProcessor) {
		p.ignoredTags = make(map[string]bool, len(tags))
		for _, tag := range tags {
			p.ignoredTags[strings.ToLower(tag)] = true
		}
	}
}

// WithMaxBuffer sets the per-token tokenizer limit. A line holding a larger
// token is translated as plain text. Zero disables the limit.
func WithMaxBuffer(n int) Option {
	return func(p *LineProcessor) {
		p.maxBuf = n
	}
}

// WithLogger sets the logger used for degraded lines.
func WithLogger(logger *slog.Logger) Option {
	return func(p *LineProcessor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewLineProcessor creates a LineProcessor that translates through engine.
func NewLineProcessor(engine Engine, opts ...Option) *LineProcessor {
	attrs := make(map[string]bool, len(tercume.TranslatableAttributes))
	for k, v := range tercume.TranslatableAttributes {
		attrs[k] = v
	}
	p := &LineProcessor{
		engine:      engine,
		ignoredTags: defaultIgnoredTags(),
		attrs:       attrs,
		maxBuf:      DefaultMaxBuffer,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type openElement struct {
	name string
	skip bool
}

// docState carries element nesting across the lines of one document, so a
// <pre> or <script> block spanning several lines stays untranslated.
type docState struct {
	ctx      context.Context
	src      string
	target   string
	stack    []openElement
	skipping int

	// Inline buttons of the chunk being translated. live marks the buttons
	// met in translatable text; the others keep their label.
	buttons *buttonSet
	live    map[int]bool
}

func (st *docState) push(name string, skip bool) {
	st.stack = append(st.stack, openElement{name: name, skip: skip})
	if skip {
		st.skipping++
	}
}

// pop closes the innermost open element called name and everything opened
// after it. Stray end tags are ignored.
func (st *docState) pop(name string) {
	for i := len(st.stack) - 1; i >= 0; i-- {
		if st.stack[i].name != name {
			continue
		}
		for _, el := range st.stack[i:] {
			if el.skip {
				st.skipping--
			}
		}
		st.stack = st.stack[:i]
		return
	}
}

// TranslateHTML translates the visible text of content into targetLang. An
// empty sourceLang is detected once from the document's visible text. When
// targetLang is empty or equals the source, the content is returned with
// only its line endings normalized.
func (p *LineProcessor) TranslateHTML(ctx context.Context, content, targetLang, sourceLang string) string {
	content = normalizeNewlines(content)
	target := tercume.NormalizeLang(targetLang)
	if p.engine == nil || target == "" || strings.TrimSpace(content) == "" {
		return content
	}

	src := tercume.NormalizeLang(sourceLang)
	if src == "" || src == tercume.AutoSource {
		src = p.engine.DetectLanguage(p.VisibleText(content))
	}
	if src == target {
		return content
	}

	st := &docState{ctx: ctx, src: src, target: target}
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			out = append(out, lines[i])
			continue
		}
		// A comment or tag left open at the end of a line continues on the
		// next ones; the lines are translated together as one chunk.
		chunk := lines[i]
		for i+1 < len(lines) && p.unterminated(st, chunk) {
			i++
			chunk += "\n" + lines[i]
		}
		out = append(out, p.translateLine(st, chunk))
	}
	return strings.Join(out, "\n")
}

func (p *LineProcessor) translateLine(st *docState, line string) string {
	protected, buttons := protectButtons(line)
	st.buttons, st.live = buttons, make(map[int]bool)

	saved := append([]openElement(nil), st.stack...)
	savedSkipping := st.skipping
	out, err := p.translateMarkup(st, protected)
	if err != nil {
		st.stack, st.skipping = saved, savedSkipping
		p.logger.Warn("markup tokenization failed, translating line as plain text",
			"target_lang", st.target,
			"error", err,
		)
		out = protected
		if st.skipping == 0 {
			out = p.translateSegments(st, protected)
		}
	}

	return p.restoreButtons(st, out)
}

// unterminated reports whether chunk ends inside a comment, declaration or
// tag.
func (p *LineProcessor) unterminated(st *docState, chunk string) bool {
	if !strings.Contains(chunk, "<") {
		return false
	}
	z := p.tokenizer(st, chunk)

	consumed := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return errors.Is(z.Err(), io.EOF) && consumed < len(chunk)
		case html.CommentToken, html.DoctypeToken:
			if !constructClosed(string(z.Raw())) {
				return true
			}
		}
		consumed += len(z.Raw())
	}
}

// constructClosed reports whether a raw comment or declaration token was
// terminated rather than cut off by the end of input.
func constructClosed(raw string) bool {
	if !strings.HasSuffix(raw, ">") {
		return false
	}
	if strings.HasPrefix(raw, "<!--") {
		return strings.HasSuffix(raw, "-->") || strings.HasSuffix(raw, "--!>")
	}
	return true
}

// tokenizer returns a tokenizer over chunk. When a previous line left a
// script, style or other raw-text element open, the tokenizer resumes in
// raw-text mode so the chunk is read up to that element's end tag.
func (p *LineProcessor) tokenizer(st *docState, chunk string) *html.Tokenizer {
	prefix := ""
	if n := len(st.stack); n > 0 && rawTextElements[st.stack[n-1].name] {
		prefix = "<" + st.stack[n-1].name + ">"
	}
	z := html.NewTokenizer(strings.NewReader(prefix + chunk))
	if p.maxBuf > 0 {
		z.SetMaxBuf(p.maxBuf)
	}
	if prefix != "" {
		z.Next()
	}
	return z
}

func (p *LineProcessor) translateMarkup(st *docState, line string) (string, error) {
	z := p.tokenizer(st, line)

	var sb strings.Builder
	consumed := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if !errors.Is(z.Err(), io.EOF) {
				return "", z.Err()
			}
			// An unterminated tag at the end of the line is kept as written.
			if consumed < len(line) {
				sb.WriteString(line[consumed:])
			}
			return sb.String(), nil
		}

		raw := string(z.Raw())
		consumed += len(raw)

		switch tt {
		case html.TextToken:
			if st.skipping > 0 {
				sb.WriteString(raw)
				continue
			}
			sb.WriteString(p.translateText(st, raw))

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			attrs := readAttrs(z, hasAttr)
			_, noTranslate := attrs["data-no-translate"]
			skip := isIgnoredTag(p.ignoredTags, tag) || noTranslate

			if st.skipping == 0 && !skip && hasAttr {
				raw = p.translateAttributes(st, raw, attrs)
			}
			sb.WriteString(raw)

			if tt == html.StartTagToken && !voidElements[tag] {
				st.push(tag, skip)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			st.pop(string(name))
			sb.WriteString(raw)

		default:
			sb.WriteString(raw)
		}
	}
}

func readAttrs(z *html.Tokenizer, more bool) map[string]string {
	attrs := make(map[string]string)
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		attrs[string(key)] = string(val)
	}
	return attrs
}

// translateText translates one raw text token, keeping its surrounding
// whitespace and re-escaping the result. Text spanning several lines is
// translated line by line.
func (p *LineProcessor) translateText(st *docState, raw string) string {
	lead, core, trail := splitSpace(raw)
	if core == "" {
		return raw
	}
	text := html.UnescapeString(core)
	translated := p.translateSegments(st, text)
	if translated == text {
		return raw
	}
	return lead + html.EscapeString(translated) + trail
}

// translateAttributes rewrites the values of translatable attributes inside
// a raw start tag. Other attributes and the tag's spacing are untouched.
func (p *LineProcessor) translateAttributes(st *docState, raw string, attrs map[string]string) string {
	nameEnd := strings.IndexAny(raw, " \t\n\r\f/>")
	if nameEnd < 0 {
		return raw
	}
	head, rest := raw[:nameEnd], raw[nameEnd:]
	hidden := strings.EqualFold(strings.TrimSpace(attrs["type"]), "hidden")

	var sb strings.Builder
	last := 0
	for _, m := range attrPattern.FindAllStringSubmatchIndex(rest, -1) {
		if m[8] < 0 {
			continue
		}
		key := strings.ToLower(rest[m[4]:m[5]])
		if !p.attrs[key] || (key == "value" && hidden) {
			continue
		}

		rawVal := rest[m[8]:m[9]]
		quote, inner := `"`, rawVal
		if rawVal[0] == '"' || rawVal[0] == '\'' {
			quote, inner = rawVal[:1], rawVal[1:len(rawVal)-1]
		}

		lead, core, trail := splitSpace(html.UnescapeString(inner))
		if core == "" {
			continue
		}
		translated := p.translateSegments(st, core)
		if translated == core {
			continue
		}

		sb.WriteString(rest[last:m[8]])
		sb.WriteString(quote)
		sb.WriteString(html.EscapeString(lead + translated + trail))
		sb.WriteString(quote)
		last = m[9]
	}
	if last == 0 {
		return raw
	}
	sb.WriteString(rest[last:])
	return head + sb.String()
}

// translateSegments translates the text between button placeholders, so
// placeholders never reach a provider. Each line of text is translated on
// its own. Buttons met here are marked live.
func (p *LineProcessor) translateSegments(st *docState, text string) string {
	if strings.Contains(text, "\n") {
		parts := strings.Split(text, "\n")
		for i, part := range parts {
			parts[i] = p.translateSegments(st, part)
		}
		return strings.Join(parts, "\n")
	}

	locs := st.buttons.locate(text)
	if len(locs) == 0 {
		return p.translateSegment(st, text)
	}

	var sb strings.Builder
	last := 0
	for _, loc := range locs {
		sb.WriteString(p.translateSegment(st, text[last:loc[0]]))
		match := text[loc[0]:loc[1]]
		if i := st.buttons.index(match); i >= 0 {
			st.live[i] = true
		}
		sb.WriteString(match)
		last = loc[1]
	}
	sb.WriteString(p.translateSegment(st, text[last:]))
	return sb.String()
}

func (p *LineProcessor) translateSegment(st *docState, s string) string {
	lead, core, trail := splitSpace(s)
	if !hasLetter(core) {
		return s
	}
	return lead + p.engine.TranslateText(st.ctx, core, st.src, st.target) + trail
}

// restoreButtons puts the inline buttons back. Labels of buttons met in
// translatable text are translated; buttons inside ignored content are
// restored as written. The URL part is never translated.
func (p *LineProcessor) restoreButtons(st *docState, line string) string {
	return st.buttons.restore(line, func(i int, b button) string {
		if !st.live[i] {
			return b.label()
		}
		return p.translateSegment(st, b.label())
	})
}

// VisibleText returns the human-visible text of content joined by spaces,
// including inline button labels. It is what language detection sees.
func (p *LineProcessor) VisibleText(content string) string {
	content = buttonPattern.ReplaceAllString(content, " $1 ")

	z := html.NewTokenizer(strings.NewReader(content))
	if p.maxBuf > 0 {
		z.SetMaxBuf(p.maxBuf)
	}

	st := &docState{}
	var parts []string
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.TextToken:
			if st.skipping > 0 {
				continue
			}
			if text := strings.TrimSpace(string(z.Text())); text != "" {
				parts = append(parts, text)
			}
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			_, noTranslate := readAttrs(z, hasAttr)["data-no-translate"]
			if !voidElements[tag] {
				st.push(tag, isIgnoredTag(p.ignoredTags, tag) || noTranslate)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			st.pop(string(name))
		}
	}
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
