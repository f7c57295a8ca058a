// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_CatalogOrderAndUniqueIDs(t *testing.T) {
	want := []string{
		TemplateHeroSimple, TemplateTextSimple, TemplateListIcons, TemplateImageGallery,
		TemplateTestimonials, TemplateCTA, TemplateStats, TemplateRoadmap, TemplateCustom,
	}

	got := Templates()
	require.Len(t, got, len(want))
	seen := map[string]bool{}
	for i, tmpl := range got {
		assert.Equal(t, want[i], tmpl.ID)
		assert.False(t, seen[tmpl.ID], "duplicate id %s", tmpl.ID)
		seen[tmpl.ID] = true
	}
}

func TestTemplates_ReturnsCopy(t *testing.T) {
	got := Templates()
	got[0].ID = "mutated"

	first := Templates()[0]
	assert.Equal(t, TemplateHeroSimple, first.ID)
}

func TestTemplateByID(t *testing.T) {
	tmpl, ok := TemplateByID(TemplateCTA)
	require.True(t, ok)
	assert.Equal(t, CategoryCTA, tmpl.Category)
	assert.Len(t, tmpl.Fields, 6)

	_, ok = TemplateByID("unknown-xyz")
	assert.False(t, ok)
}

func TestLookupTemplate(t *testing.T) {
	_, err := LookupTemplate("unknown-xyz")
	assert.True(t, errors.Is(err, ErrTemplateNotFound))

	tmpl, err := LookupTemplate(TemplateRoadmap)
	require.NoError(t, err)
	assert.Equal(t, TemplateRoadmap, tmpl.ID)
}

func TestTemplatesByCategory(t *testing.T) {
	var ids []string
	for _, tmpl := range TemplatesByCategory(CategoryContent) {
		ids = append(ids, tmpl.ID)
	}
	assert.Equal(t, []string{TemplateTextSimple, TemplateTestimonials, TemplateStats, TemplateRoadmap}, ids)
	assert.Empty(t, TemplatesByCategory("nope"))
}

func TestDefaultContent_DeepCopy(t *testing.T) {
	tmpl, _ := TemplateByID(TemplateRoadmap)

	first := DefaultContent(tmpl)
	cats := first["categories"].([]any)
	cat := cats[0].(map[string]any)
	cat["name"] = "Changed"
	skills := cat["skills"].([]any)
	skills[0].(map[string]any)["proficiency"] = float64(1)

	second := DefaultContent(tmpl)
	cat2 := second["categories"].([]any)[0].(map[string]any)
	assert.Equal(t, "Frontend", cat2["name"])
	assert.Equal(t, float64(85), cat2["skills"].([]any)[0].(map[string]any)["proficiency"])
	assert.Equal(t, "Mi Trayectoria de Aprendizaje", second["title"])
}

func TestDefaultContent_Custom(t *testing.T) {
	tmpl, _ := TemplateByID(TemplateCustom)
	assert.Empty(t, DefaultContent(tmpl))
	assert.NotContains(t, NewSectionContent(tmpl), "template_id")

	cta, _ := TemplateByID(TemplateCTA)
	content := NewSectionContent(cta)
	assert.Equal(t, TemplateCTA, content["template_id"])
	assert.Equal(t, "Comenzar", content["primary_button_text"])
}

func TestNewSectionKey(t *testing.T) {
	a := NewSectionKey(TemplateImageGallery)
	b := NewSectionKey(TemplateImageGallery)

	assert.True(t, strings.HasPrefix(a, "image_gallery_"), a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, NormalizeSectionKey(a))
}

func TestNormalizeSectionKey(t *testing.T) {
	tests := map[string]string{
		"About Me":     "about_me",
		"hero-simple":  "hero_simple",
		"  Stats_2024": "stats_2024",
		"ñandú":        "_and_",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeSectionKey(in), in)
	}
}

func TestParseFieldValue(t *testing.T) {
	tests := []struct {
		name    string
		ft      FieldType
		raw     string
		want    any
		wantErr bool
	}{
		{"text", FieldText, "hello", "hello", false},
		{"url kept verbatim", FieldURL, "/projects", "/projects", false},
		{"number", FieldNumber, " 42.5 ", 42.5, false},
		{"empty number", FieldNumber, "", float64(0), false},
		{"bad number", FieldNumber, "4x", nil, true},
		{"array", FieldArray, `[{"text":"a"}]`, []any{map[string]any{"text": "a"}}, false},
		{"empty array", FieldArray, "", []any{}, false},
		{"object", FieldObject, `{"a":1}`, map[string]any{"a": float64(1)}, false},
		{"object given array", FieldObject, `[1]`, nil, true},
		{"array given object", FieldArray, `{"a":1}`, nil, true},
		{"invalid json", FieldArray, `[`, nil, true},
		{"scalar json", FieldArray, `3`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFieldValue(tt.ft, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
