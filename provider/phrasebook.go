package provider

import (
	"strings"

	"github.com/ZaguanLabs/tercume"
)

// PhrasebookName is the provider name reported for fallback output.
const PhrasebookName = "phrasebook"

// Phrase is one common UI string in every supported language.
type Phrase map[string]string

// defaultPhrases covers the interface strings that most often appear in
// content fields.
var defaultPhrases = []Phrase{
	{"en": "Home", "az": "Ana səhifə", "ru": "Главная"},
	{"en": "Courses", "az": "Kurslar", "ru": "Курсы"},
	{"en": "Resources", "az": "Resurslar", "ru": "Ресурсы"},
	{"en": "Forum", "az": "Forum", "ru": "Форум"},
	{"en": "Search", "az": "Axtar", "ru": "Поиск"},
	{"en": "Save", "az": "Yadda saxla", "ru": "Сохранить"},
	{"en": "Cancel", "az": "Ləğv et", "ru": "Отмена"},
	{"en": "Submit", "az": "Göndər", "ru": "Отправить"},
	{"en": "Delete", "az": "Sil", "ru": "Удалить"},
	{"en": "Edit", "az": "Redaktə et", "ru": "Редактировать"},
	{"en": "Download", "az": "Yüklə", "ru": "Скачать"},
	{"en": "Read more", "az": "Ətraflı", "ru": "Подробнее"},
	{"en": "Next", "az": "Növbəti", "ru": "Далее"},
	{"en": "Previous", "az": "Əvvəlki", "ru": "Назад"},
	{"en": "Login", "az": "Daxil ol", "ru": "Войти"},
	{"en": "Logout", "az": "Çıxış", "ru": "Выйти"},
	{"en": "Register", "az": "Qeydiyyat", "ru": "Регистрация"},
	{"en": "Contact", "az": "Əlaqə", "ru": "Контакты"},
	{"en": "Welcome", "az": "Xoş gəlmisiniz", "ru": "Добро пожаловать"},
	{"en": "Yes", "az": "Bəli", "ru": "Да"},
	{"en": "No", "az": "Xeyr", "ru": "Нет"},
}

// Phrasebook is the deterministic last tier of the chain. It never fails
// and never blocks.
type Phrasebook struct {
	// index maps lower-cased text in any language to its phrase
	index map[string]Phrase
}

// NewPhrasebook builds a phrasebook from the given phrases.
func NewPhrasebook(phrases []Phrase) *Phrasebook {
	pb := &Phrasebook{index: make(map[string]Phrase)}
	for _, p := range phrases {
		for _, text := range p {
			key := strings.ToLower(strings.TrimSpace(text))
			if _, exists := pb.index[key]; !exists {
				pb.index[key] = p
			}
		}
	}
	return pb
}

// DefaultPhrasebook returns a phrasebook with the built-in UI strings.
func DefaultPhrasebook() *Phrasebook {
	return NewPhrasebook(defaultPhrases)
}

// Lookup returns the target-language variant of a known phrase, keeping the
// surrounding whitespace of text.
func (pb *Phrasebook) Lookup(text, targetLang string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	phrase, ok := pb.index[strings.ToLower(trimmed)]
	if !ok {
		return "", false
	}
	translated, ok := phrase[tercume.NormalizeLang(targetLang)]
	if !ok {
		return "", false
	}
	lead := text[:strings.Index(text, trimmed)]
	trail := text[len(lead)+len(trimmed):]
	return lead + translated + trail, true
}

// Fallback answers from the phrasebook, or returns the marker-annotated
// original text.
func (pb *Phrasebook) Fallback(req TranslateRequest) Translation {
	if translated, ok := pb.Lookup(req.Text, req.TargetLang); ok {
		return Translation{Text: translated, Provider: PhrasebookName, Fallback: true}
	}
	return Translation{
		Text:     tercume.FallbackText(req.TargetLang, req.Text),
		Provider: PhrasebookName,
		Fallback: true,
	}
}
