package provider

import "testing"

func TestPhrasebook_Lookup(t *testing.T) {
	pb := DefaultPhrasebook()

	tests := []struct {
		text   string
		target string
		want   string
		ok     bool
	}{
		{"Save", "az", "Yadda saxla", true},
		{"save", "ru", "Сохранить", true},
		{"  Read more ", "az", "  Ətraflı ", true},
		{"Сохранить", "en", "Save", true},
		{"Yadda saxla", "ru-RU", "Сохранить", true},
		{"Save", "de", "", false},
		{"Something uncommon", "az", "", false},
		{"", "az", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text+"->"+tt.target, func(t *testing.T) {
			got, ok := pb.Lookup(tt.text, tt.target)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Lookup(%q, %q) = %q, %v; want %q, %v", tt.text, tt.target, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPhrasebook_Fallback(t *testing.T) {
	pb := NewPhrasebook([]Phrase{{"en": "Hi", "az": "Salam"}})

	hit := pb.Fallback(TranslateRequest{Text: "Hi", TargetLang: "az"})
	if hit.Text != "Salam" || !hit.Fallback || hit.Provider != PhrasebookName {
		t.Errorf("unexpected phrase hit: %+v", hit)
	}

	miss := pb.Fallback(TranslateRequest{Text: "Sample", TargetLang: "ru"})
	if miss.Text != "[Translated to ru] Sample" {
		t.Errorf("unexpected miss text %q", miss.Text)
	}
	if !miss.Fallback {
		t.Error("miss should be marked as fallback")
	}
}
