package tercume

import (
	"strings"
	"testing"
)

func TestProtector_ProtectAndRestore(t *testing.T) {
	p := NewProtector([]string{"Tercume"})

	tests := []struct {
		name  string
		input string
	}{
		{"original case", "Welcome to Tercume"},
		{"lower case", "welcome to tercume today"},
		{"upper case", "TERCUME courses"},
		{"mixed variants", "Tercume and TERCUME and tercume"},
		{"repeated", "Tercume, Tercume, Tercume"},
		{"no term", "Nothing to protect here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			protected, repl := p.Protect(tt.input)

			if strings.Contains(strings.ToLower(protected), "tercume") {
				t.Errorf("protected text still contains the term: %q", protected)
			}

			if got := repl.Restore(protected); got != tt.input {
				t.Errorf("Restore(Protect(%q)) = %q", tt.input, got)
			}
		})
	}
}

func TestProtector_PlaceholderFormat(t *testing.T) {
	p := NewProtector([]string{"Tercume"})

	protected, repl := p.Protect("Learn with Tercume")
	if protected != "Learn with __PROTECTED_0__" {
		t.Errorf("unexpected protected text: %q", protected)
	}
	if repl["__PROTECTED_0__"] != "Tercume" {
		t.Errorf("replacement map should record original casing, got %v", repl)
	}
}

func TestProtector_DistinctVariantsGetDistinctPlaceholders(t *testing.T) {
	p := NewProtector([]string{"Tercume"})

	_, repl := p.Protect("Tercume tercume")
	if len(repl) != 2 {
		t.Fatalf("expected 2 placeholders, got %d: %v", len(repl), repl)
	}
}

func TestProtector_LongestTermFirst(t *testing.T) {
	p := NewProtector([]string{"Tercume", "Tercume Academy"})

	protected, repl := p.Protect("Join Tercume Academy")
	if protected != "Join __PROTECTED_0__" {
		t.Errorf("longer term should be protected as a unit, got %q", protected)
	}
	if repl.Restore(protected) != "Join Tercume Academy" {
		t.Errorf("unexpected restore: %q", repl.Restore(protected))
	}
}

func TestReplacements_RestoreTolerant(t *testing.T) {
	repl := Replacements{"__PROTECTED_0__": "Tercume"}

	tests := []struct {
		input    string
		expected string
	}{
		{"Salam __PROTECTED_0__", "Salam Tercume"},
		{"Salam __protected_0__", "Salam Tercume"},
		{"Salam __ PROTECTED_0 __", "Salam Tercume"},
		{"Salam __PROTECTED_7__", "Salam __PROTECTED_7__"},
	}

	for _, tt := range tests {
		if got := repl.Restore(tt.input); got != tt.expected {
			t.Errorf("Restore(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestProtector_NilAndEmpty(t *testing.T) {
	var p *Protector
	text, repl := p.Protect("Tercume")
	if text != "Tercume" || repl != nil {
		t.Errorf("nil protector should be a no-op, got %q %v", text, repl)
	}

	empty := NewProtector([]string{"", "  "})
	text, repl = empty.Protect("Tercume")
	if text != "Tercume" || repl != nil {
		t.Errorf("empty protector should be a no-op, got %q %v", text, repl)
	}

	var none Replacements
	if none.Restore("x __PROTECTED_0__") != "x __PROTECTED_0__" {
		t.Error("empty replacements should leave text untouched")
	}
}

func TestProtector_TermInsidePlaceholderText(t *testing.T) {
	tests := []struct {
		name  string
		terms []string
		input string
	}{
		{"prefix of placeholder", []string{"Yonca", "Pro"}, "Yonca Pro is here, Yonca"},
		{"middle of placeholder", []string{"Tercume", "Ted"}, "Tercume met Ted"},
		{"digit term", []string{"Tercume", "0"}, "Tercume 2.0"},
		{"underscore term", []string{"Tercume", "_"}, "Tercume snake_case"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProtector(tt.terms)
			protected, repl := p.Protect(tt.input)

			for ph := range repl {
				if !strings.Contains(protected, ph) {
					t.Errorf("placeholder %s missing from %q", ph, protected)
				}
			}
			if got := repl.Restore(protected); got != tt.input {
				t.Errorf("Restore(Protect(%q)) = %q (protected %q)", tt.input, got, protected)
			}
		})
	}
}

func TestProtector_PlaceholdersInTextOrder(t *testing.T) {
	p := NewProtector([]string{"Yonca", "Pro"})

	protected, repl := p.Protect("Yonca Pro is here, Yonca")
	if protected != "__PROTECTED_0__ __PROTECTED_1__ is here, __PROTECTED_0__" {
		t.Errorf("unexpected protected text: %q", protected)
	}
	if repl["__PROTECTED_0__"] != "Yonca" || repl["__PROTECTED_1__"] != "Pro" {
		t.Errorf("unexpected replacements: %v", repl)
	}
}
