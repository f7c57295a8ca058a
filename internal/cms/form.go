// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/olegiv/folio-go/internal/backend"
)

// FormPrefix prefixes the input names of content fields in the generic
// section form.
const FormPrefix = "content."

// longTextThreshold switches inferred string fields to a textarea.
const longTextThreshold = 100

// FormField is one input of the generic section editor.
type FormField struct {
	Key         string
	Name        string
	Label       string
	Type        FieldType
	Value       string
	Placeholder string
	Description string
}

// FormFields returns the inputs for editing s. Fields of the section's
// template come first in template order, followed by any other content
// keys sorted by name. Types of untemplated keys are inferred from their
// current values.
func FormFields(s backend.Section) []FormField {
	content := s.Content
	seen := map[string]bool{"template_id": true}
	var out []FormField

	if t, ok := TemplateByID(TemplateID(s)); ok {
		for _, f := range t.Fields {
			seen[f.Key] = true
			v, present := content[f.Key]
			if !present {
				v = f.Default
			}
			out = append(out, FormField{
				Key:         f.Key,
				Name:        FormPrefix + f.Key,
				Label:       f.Label,
				Type:        f.Type,
				Value:       formatValue(v),
				Placeholder: f.Placeholder,
				Description: f.Description,
			})
		}
	}

	extra := make([]string, 0, len(content))
	for k := range content {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)

	for _, k := range extra {
		v := content[k]
		out = append(out, FormField{
			Key:   k,
			Name:  FormPrefix + k,
			Label: humanize(k),
			Type:  inferType(v),
			Value: formatValue(v),
		})
	}
	return out
}

// ApplyForm returns a copy of base with every field replaced by its
// submitted value. get returns the raw value for an input name. Keys not
// listed in fields (template_id among them) are kept, and so are values
// submitted unchanged, which preserves their original JSON type.
func ApplyForm(base map[string]any, fields []FormField, get func(name string) string) (map[string]any, error) {
	out := make(map[string]any, len(base)+len(fields))
	for k, v := range base {
		out[k] = v
	}
	for _, f := range fields {
		raw := get(f.Name)
		if orig, ok := base[f.Key]; ok && formatValue(orig) == raw {
			continue
		}
		v, err := ParseFieldValue(f.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Key, err)
		}
		out[f.Key] = v
	}
	return out, nil
}

func inferType(v any) FieldType {
	switch x := v.(type) {
	case map[string]any:
		return FieldObject
	case []any:
		return FieldArray
	case float64, int, int64, json.Number:
		return FieldNumber
	case string:
		if utf8.RuneCountInString(x) > longTextThreshold || strings.Contains(x, "\n") {
			return FieldTextarea
		}
	}
	return FieldText
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case map[string]any, []any:
		b, err := json.MarshalIndent(x, "", "  ")
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

// humanize turns "primary_button_text" into "Primary button text".
func humanize(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
