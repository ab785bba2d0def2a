package processor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/tercume"
	"golang.org/x/net/html"
)

// HTMLProcessor lists the translatable units of an HTML document without
// translating it. It backs dry runs and diagnostics.
type HTMLProcessor struct {
	ignoredTags map[string]bool
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: defaultIgnoredTags(),
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLProcessor{
		ignoredTags: ignored,
	}
}

// Extract parses content and returns its translatable units in document
// order: inline button labels first, then text and attribute units. Units
// with the same kind and text are reported once.
func (p *HTMLProcessor) Extract(content string) ([]Unit, error) {
	content = normalizeNewlines(content)
	protected, buttons := protectButtons(content)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(protected))
	if err != nil {
		return nil, &tercume.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	var units []Unit
	seen := make(map[string]bool)
	add := func(u Unit) {
		u.Hash = tercume.HashText(u.Text)
		key := u.Kind + ":" + u.Hash
		if seen[key] {
			return
		}
		seen[key] = true
		units = append(units, u)
	}

	for _, b := range buttons.buttons {
		if label := strings.TrimSpace(b.label()); hasLetter(label) {
			add(Unit{Kind: UnitButton, Text: label, Context: "inline button"})
		}
	}

	skipped := make(map[*html.Node]bool)
	doc.Find(p.skipSelector()).Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			skipped[n] = true
		}
	})

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipped[n] {
				return
			}
			p.attributeUnits(n, add)
		}

		if n.Type == html.TextNode {
			for _, segment := range buttons.split(n.Data) {
				text := strings.TrimSpace(segment)
				if !hasLetter(text) {
					continue
				}
				u := Unit{Kind: UnitText, Text: text, Context: buildContext(n)}
				if n.Parent != nil {
					u.Tag = n.Parent.Data
				}
				add(u)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	return units, nil
}

func (p *HTMLProcessor) skipSelector() string {
	tags := make([]string, 0, len(p.ignoredTags)+1)
	for tag, ignored := range p.ignoredTags {
		if ignored {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return strings.Join(append(tags, "[data-no-translate]"), ", ")
}

func (p *HTMLProcessor) attributeUnits(n *html.Node, add func(Unit)) {
	hidden := false
	for _, attr := range n.Attr {
		if attr.Key == "type" && strings.EqualFold(strings.TrimSpace(attr.Val), "hidden") {
			hidden = true
		}
	}
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if !tercume.TranslatableAttributes[key] || (key == "value" && hidden) {
			continue
		}
		text := strings.TrimSpace(attr.Val)
		if !hasLetter(text) {
			continue
		}
		add(Unit{
			Kind:    UnitAttribute,
			Tag:     n.Data,
			Attr:    key,
			Text:    text,
			Context: fmt.Sprintf("%s attribute of <%s>", key, n.Data),
		})
	}
}

// buildContext describes where a text node sits in the document.
func buildContext(n *html.Node) string {
	if n.Parent == nil {
		return ""
	}
	var parts []string

	parent := n.Parent
	tag := parent.Data

	var classAttr, idAttr string
	for _, attr := range parent.Attr {
		if attr.Key == "class" {
			classAttr = attr.Val
		} else if attr.Key == "id" {
			idAttr = attr.Val
		}
	}

	if classAttr != "" {
		parts = append(parts, fmt.Sprintf("in <%s class=\"%s\">", tag, classAttr))
	} else if idAttr != "" {
		parts = append(parts, fmt.Sprintf("in <%s id=\"%s\">", tag, idAttr))
	} else {
		parts = append(parts, fmt.Sprintf("in <%s>", tag))
	}

	// Ancestor path, up to 3 levels, outer to inner.
	var ancestors []string
	ancestor := parent.Parent
	for i := 0; i < 3 && ancestor != nil; i++ {
		if ancestor.Type == html.ElementNode {
			if name := ancestor.Data; name != "html" && name != "body" {
				ancestors = append([]string{name}, ancestors...)
			}
		}
		ancestor = ancestor.Parent
	}
	if len(ancestors) > 0 {
		parts = append(parts, fmt.Sprintf("inside: %s", strings.Join(ancestors, " > ")))
	}

	return strings.Join(parts, " | ")
}
