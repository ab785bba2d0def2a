package tercume

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Sub-field names recognised on structured records, in detection priority order.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCaption     = "caption"
	FieldText        = "text"
)

// RecordFields is the fixed set of translatable record sub-fields.
var RecordFields = []string{FieldTitle, FieldDescription, FieldCaption, FieldText}

// Record is one element of an ordered list attached to a content entity
// (a feature, a gallery caption). Only the recognised sub-fields are
// translated; any other keys of the original JSON object are kept verbatim.
type Record struct {
	Title       *string
	Description *string
	Caption     *string
	Text        *string

	raw []byte
}

// NewRecord builds a Record from recognised sub-field values.
// Unknown keys are ignored.
func NewRecord(fields map[string]string) Record {
	var r Record
	for name, value := range fields {
		r.SetField(name, value)
	}
	return r
}

// Field returns the value of a recognised sub-field.
func (r Record) Field(name string) (string, bool) {
	var p *string
	switch name {
	case FieldTitle:
		p = r.Title
	case FieldDescription:
		p = r.Description
	case FieldCaption:
		p = r.Caption
	case FieldText:
		p = r.Text
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

// SetField sets a recognised sub-field. Unknown names are ignored.
func (r *Record) SetField(name, value string) {
	v := value
	switch name {
	case FieldTitle:
		r.Title = &v
	case FieldDescription:
		r.Description = &v
	case FieldCaption:
		r.Caption = &v
	case FieldText:
		r.Text = &v
	}
}

// representative returns the first non-empty sub-field in priority order.
func (r Record) representative() string {
	for _, name := range RecordFields {
		if v, ok := r.Field(name); ok && v != "" {
			return v
		}
	}
	return ""
}

// UnmarshalJSON keeps the raw object and extracts the recognised
// string-valued sub-fields.
func (r *Record) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("record: %w", ErrInvalidJSON)
	}
	*r = Record{raw: append([]byte(nil), data...)}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return nil
	}
	for _, name := range RecordFields {
		if v := parsed.Get(name); v.Type == gjson.String {
			r.SetField(name, v.String())
		}
	}
	return nil
}

// MarshalJSON patches the recognised sub-fields into the original object,
// preserving key order and every other key.
func (r Record) MarshalJSON() ([]byte, error) {
	out := []byte("{}")
	if len(r.raw) > 0 {
		out = append([]byte(nil), r.raw...)
	}
	if !gjson.ParseBytes(out).IsObject() {
		return out, nil
	}

	var err error
	for _, name := range RecordFields {
		v, ok := r.Field(name)
		if !ok {
			continue
		}
		if out, err = sjson.SetBytes(out, name, v); err != nil {
			return nil, fmt.Errorf("set %s: %w", name, err)
		}
	}
	return out, nil
}

// ParseRecords decodes a JSON array of records. Non-object elements keep
// their position and are passed through untouched.
func ParseRecords(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, ErrNotArray
	}

	var records []Record
	var err error
	parsed.ForEach(func(_, value gjson.Result) bool {
		var r Record
		if err = r.UnmarshalJSON([]byte(value.Raw)); err != nil {
			return false
		}
		records = append(records, r)
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FieldPath builds the synthetic address of one sub-field of one element,
// e.g. "features[2].description".
func FieldPath(fieldName string, index int, subField string) string {
	return fmt.Sprintf("%s[%d].%s", fieldName, index, subField)
}

// TranslateArray translates every recognised sub-field of every record.
// The source language is detected once, from the first record, and reused
// for all elements. Records are addressed by position.
func (t *Translator) TranslateArray(ctx context.Context, contentType string, contentID int64, fieldName string, records []Record, sourceLang string) []FieldResult {
	if len(records) == 0 {
		return nil
	}

	src, keySrc := t.resolveSource(records[0].representative(), sourceLang)

	var results []FieldResult
	for i, rec := range records {
		for _, name := range RecordFields {
			value, ok := rec.Field(name)
			if !ok {
				continue
			}
			path := FieldPath(fieldName, i, name)
			results = append(results, t.translateField(ctx, contentType, contentID, path, value, src, keySrc))
		}
	}
	return results
}

// GetTranslatedArray returns copies of records with each recognised
// sub-field replaced by its stored translation, falling back per sub-field
// to the original value.
func (t *Translator) GetTranslatedArray(ctx context.Context, contentType string, contentID int64, fieldName string, records []Record, targetLang string) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		translated := rec
		for _, name := range RecordFields {
			value, ok := rec.Field(name)
			if !ok {
				continue
			}
			path := FieldPath(fieldName, i, name)
			translated.SetField(name, t.GetTranslatedField(ctx, contentType, contentID, path, value, targetLang))
		}
		out[i] = translated
	}
	return out
}
