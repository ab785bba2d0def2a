package processor

import (
	"strings"
	"testing"
)

func TestHTMLProcessor_Extract_Basic(t *testing.T) {
	p := NewHTMLProcessor()

	units, err := p.Extract(`<div><h1>Hello World</h1><p>Welcome to our site.</p></div>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(units) != 2 {
		t.Fatalf("Expected 2 units, got %d", len(units))
	}

	if units[0].Text != "Hello World" {
		t.Errorf("Expected 'Hello World', got %q", units[0].Text)
	}
	if units[0].Hash == "" {
		t.Error("Hash should not be empty")
	}
	if units[0].Kind != UnitText {
		t.Errorf("Expected kind %q, got %q", UnitText, units[0].Kind)
	}
	if units[0].Tag != "h1" {
		t.Errorf("Expected tag h1, got %q", units[0].Tag)
	}
	if units[1].Text != "Welcome to our site." {
		t.Errorf("Expected 'Welcome to our site.', got %q", units[1].Text)
	}
}

func TestHTMLProcessor_Extract_IgnoredTags(t *testing.T) {
	p := NewHTMLProcessor()

	units, err := p.Extract(`<div>
		<p>Translate me</p>
		<script>doNotTranslate();</script>
		<style>.class { color: red; }</style>
		<code>const x = 1;</code>
		<pre>preformatted</pre>
		<textarea>form input</textarea>
		<noscript>enable scripts</noscript>
	</div>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(units) != 1 {
		t.Fatalf("Expected 1 unit (only 'Translate me'), got %d: %+v", len(units), units)
	}
	if units[0].Text != "Translate me" {
		t.Errorf("Expected 'Translate me', got %q", units[0].Text)
	}
}

func TestHTMLProcessor_Extract_DataNoTranslate(t *testing.T) {
	p := NewHTMLProcessor()

	units, err := p.Extract(`<div>
		<p data-no-translate>Keep <b>this</b></p>
		<p>Translate this</p>
	</div>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(units) != 1 {
		t.Fatalf("Expected 1 unit, got %d", len(units))
	}
	if units[0].Text != "Translate this" {
		t.Errorf("Expected 'Translate this', got %q", units[0].Text)
	}
}

func TestHTMLProcessor_Extract_Deduplication(t *testing.T) {
	p := NewHTMLProcessor()

	units, err := p.Extract(`<div>
		<p>Hello</p>
		<p>Hello</p>
		<p title="Hello">Hello</p>
	</div>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// One text unit and one attribute unit.
	if len(units) != 2 {
		t.Fatalf("Expected 2 unique units, got %d", len(units))
	}
}

func TestHTMLProcessor_Extract_Attributes(t *testing.T) {
	p := NewHTMLProcessor()

	units, err := p.Extract(`<img src="a.png" alt="A cat"><input type="hidden" value="token"><input placeholder="Search courses" value="Go">`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	got := make(map[string]string)
	for _, u := range units {
		if u.Kind != UnitAttribute {
			t.Errorf("unexpected unit %+v", u)
			continue
		}
		got[u.Tag+"."+u.Attr] = u.Text
	}

	want := map[string]string{
		"img.alt":           "A cat",
		"input.placeholder": "Search courses",
		"input.value":       "Go",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestHTMLProcessor_Extract_Buttons(t *testing.T) {
	p := NewHTMLProcessor()

	units, err := p.Extract(`<p>Start here <button: [Open course]> https://example.com/c/1 </button></p>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(units) != 2 {
		t.Fatalf("Expected 2 units, got %d: %+v", len(units), units)
	}
	if units[0].Kind != UnitButton || units[0].Text != "Open course" {
		t.Errorf("Expected button label first, got %+v", units[0])
	}
	if units[1].Text != "Start here" {
		t.Errorf("Expected 'Start here', got %q", units[1].Text)
	}
	for _, u := range units {
		if strings.Contains(u.Text, "example.com") || strings.Contains(u.Text, "__BUTTON_") {
			t.Errorf("unit leaks button markup: %q", u.Text)
		}
	}
}

func TestHTMLProcessor_Extract_Context(t *testing.T) {
	p := NewHTMLProcessor()

	units, err := p.Extract(`<nav><ul><li><a class="primary">Run</a></li></ul></nav>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(units) != 1 {
		t.Fatalf("Expected 1 unit, got %d", len(units))
	}

	ctx := units[0].Context
	if !strings.Contains(ctx, `in <a class="primary">`) {
		t.Errorf("Context should mention tag and class, got: %s", ctx)
	}
	if !strings.Contains(ctx, "inside: nav > ul > li") {
		t.Errorf("Context should list ancestors outer to inner, got: %s", ctx)
	}
}

func TestHTMLProcessor_CustomIgnoredTags(t *testing.T) {
	p := NewHTMLProcessorWithIgnoredTags([]string{"ASIDE"})

	units, err := p.Extract(`<aside>Skip</aside><code>Now included</code>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(units) != 1 || units[0].Text != "Now included" {
		t.Errorf("unexpected units %+v", units)
	}
}

func TestHTMLProcessor_EmptyContent(t *testing.T) {
	p := NewHTMLProcessor()

	tests := []string{``, `<div></div>`, `<div>   </div>`, `<p>42 - 7</p>`}
	for _, input := range tests {
		units, err := p.Extract(input)
		if err != nil {
			t.Fatalf("Extract(%q) failed: %v", input, err)
		}
		if len(units) != 0 {
			t.Errorf("Extract(%q) = %d units, want 0", input, len(units))
		}
	}
}
