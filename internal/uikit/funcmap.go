// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package uikit provides template helpers, pagination and breadcrumb view
// models shared by the public site and the admin.
package uikit

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// MonthsEs contains Spanish month names.
var MonthsEs = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// TemplateFuncs returns the pure helper functions. Callers merge their own
// on top:
//
//	funcs := uikit.TemplateFuncs()
//	funcs["T"] = i18n.T
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Strings
		"upper":     strings.ToUpper,
		"hasPrefix": strings.HasPrefix,
		"join":      strings.Join,
		"truncate":  Truncate,
		"initials":  Initials,

		// Math
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},

		// Time
		"formatDate":     func(t any, lang string) string { return ApplyTimeFormatter(t, lang, FormatDateForLocale) },
		"formatDateTime": func(t any, lang string) string { return ApplyTimeFormatter(t, lang, FormatDateTimeForLocale) },

		// Formatting
		"formatNumber": FormatNumber,
		"prettyJSON":   PrettyJSON,

		// Data structures
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				dict[key] = values[i+1]
			}
			return dict
		},
	}
}

// Truncate shortens s to at most length runes, adding an ellipsis when cut.
func Truncate(s string, length int) string {
	if utf8.RuneCountInString(s) <= length {
		return s
	}
	return string([]rune(s)[:length]) + "..."
}

// Initials returns up to two upper-case initials of a name, used for
// avatar placeholders.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// FormatNumber groups thousands with a comma.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var result strings.Builder
	if neg {
		result.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return result.String()
}

// PrettyJSON indents a JSON document, or any value, for display.
func PrettyJSON(v any) string {
	if s, ok := v.(string); ok {
		var data any
		if err := json.Unmarshal([]byte(s), &data); err != nil {
			return s
		}
		v = data
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(pretty)
}

// FormatDateForLocale formats a date for the site language.
func FormatDateForLocale(t time.Time, lang string) string {
	if lang == "es" {
		return fmt.Sprintf("%d de %s de %d", t.Day(), MonthsEs[t.Month()-1], t.Year())
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateTimeForLocale formats a date and time for the site language.
func FormatDateTimeForLocale(t time.Time, lang string) string {
	if lang == "es" {
		return fmt.Sprintf("%d de %s de %d, %02d:%02d", t.Day(), MonthsEs[t.Month()-1], t.Year(), t.Hour(), t.Minute())
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

// backendTimeLayouts are the timestamp shapes the backend emits.
var backendTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseTime parses a backend timestamp. The backend omits the zone for
// naive UTC values.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range backendTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ApplyTimeFormatter formats a time.Time, *time.Time or backend timestamp
// string. Nil pointers and other types yield ""; unparseable strings are
// returned unchanged.
func ApplyTimeFormatter(t any, lang string, formatter func(time.Time, string) string) string {
	switch v := t.(type) {
	case time.Time:
		return formatter(v, lang)
	case *time.Time:
		if v == nil {
			return ""
		}
		return formatter(*v, lang)
	case string:
		if v == "" {
			return ""
		}
		if parsed, ok := ParseTime(v); ok {
			return formatter(parsed, lang)
		}
		return v
	default:
		return ""
	}
}
