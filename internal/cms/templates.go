// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrTemplateNotFound is returned when a section template id is unknown.
var ErrTemplateNotFound = errors.New("cms: template not found")

// FieldType is the input kind of a template field.
type FieldType string

// Field types.
const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldURL      FieldType = "url"
	FieldEmail    FieldType = "email"
	FieldArray    FieldType = "array"
	FieldObject   FieldType = "object"
)

// Category groups templates in the "new section" picker.
type Category string

// Template categories.
const (
	CategoryHero    Category = "hero"
	CategoryContent Category = "content"
	CategoryList    Category = "list"
	CategoryMedia   Category = "media"
	CategoryCTA     Category = "cta"
	CategoryCustom  Category = "custom"
)

// Template ids.
const (
	TemplateHeroSimple   = "hero-simple"
	TemplateTextSimple   = "text-simple"
	TemplateListIcons    = "list-with-icons"
	TemplateImageGallery = "image-gallery"
	TemplateTestimonials = "testimonials"
	TemplateCTA          = "cta-section"
	TemplateStats        = "stats-section"
	TemplateRoadmap      = "roadmap"
	TemplateCustom       = "custom"
)

// Field describes one editable key of a section's content.
type Field struct {
	Key         string
	Label       string
	Type        FieldType
	Default     any
	Placeholder string
	Description string
}

// Template is a static section shape.
type Template struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Category    Category
	Fields      []Field
}

var catalog = []Template{
	{
		ID:          TemplateHeroSimple,
		Name:        "Hero Simple",
		Description: "Sección principal con título, descripción y botones",
		Icon:        "🎯",
		Category:    CategoryHero,
		Fields: []Field{
			{Key: "title", Label: "Título", Type: FieldText, Default: "", Placeholder: "Tu título aquí"},
			{Key: "subtitle", Label: "Subtítulo", Type: FieldText, Default: "", Placeholder: "Tu subtítulo aquí"},
			{Key: "description", Label: "Descripción", Type: FieldTextarea, Default: "", Placeholder: "Descripción detallada"},
			{Key: "button_text", Label: "Texto del Botón", Type: FieldText, Default: "Saber más", Placeholder: "Texto del botón"},
			{Key: "button_url", Label: "URL del Botón", Type: FieldURL, Default: "#", Placeholder: "/ruta-o-url"},
		},
	},
	{
		ID:          TemplateTextSimple,
		Name:        "Texto Simple",
		Description: "Sección de texto con título y contenido",
		Icon:        "📝",
		Category:    CategoryContent,
		Fields: []Field{
			{Key: "title", Label: "Título", Type: FieldText, Default: "", Placeholder: "Título de la sección"},
			{Key: "content", Label: "Contenido", Type: FieldTextarea, Default: "", Placeholder: "Escribe tu contenido aquí..."},
		},
	},
	{
		ID:          TemplateListIcons,
		Name:        "Lista con Iconos",
		Description: "Lista de elementos con iconos, texto y enlaces",
		Icon:        "📋",
		Category:    CategoryList,
		Fields: []Field{
			{Key: "title", Label: "Título", Type: FieldText, Default: "", Placeholder: "Título de la lista"},
			{Key: "items", Label: "Elementos", Type: FieldArray,
				Default:     []any{map[string]any{"text": "Elemento 1", "url": "#", "icon": ""}},
				Description: "Lista de elementos con texto, URL e icono"},
		},
	},
	{
		ID:          TemplateImageGallery,
		Name:        "Galería de Imágenes",
		Description: "Galería de imágenes con títulos y descripciones",
		Icon:        "🖼️",
		Category:    CategoryMedia,
		Fields: []Field{
			{Key: "title", Label: "Título", Type: FieldText, Default: "", Placeholder: "Título de la galería"},
			{Key: "images", Label: "Imágenes", Type: FieldArray,
				Default:     []any{map[string]any{"url": "", "alt": "", "title": "", "description": ""}},
				Description: "Lista de imágenes con URL, alt text, título y descripción"},
		},
	},
	{
		ID:          TemplateTestimonials,
		Name:        "Testimonios",
		Description: "Sección de testimonios o reseñas",
		Icon:        "💬",
		Category:    CategoryContent,
		Fields: []Field{
			{Key: "title", Label: "Título", Type: FieldText, Default: "Testimonios", Placeholder: "Título de la sección"},
			{Key: "testimonials", Label: "Testimonios", Type: FieldArray,
				Default:     []any{map[string]any{"name": "", "role": "", "company": "", "message": "", "avatar": ""}},
				Description: "Lista de testimonios con nombre, rol, empresa, mensaje y avatar"},
		},
	},
	{
		ID:          TemplateCTA,
		Name:        "Call to Action",
		Description: "Sección de llamada a la acción",
		Icon:        "🎬",
		Category:    CategoryCTA,
		Fields: []Field{
			{Key: "title", Label: "Título", Type: FieldText, Default: "", Placeholder: "¿Listo para empezar?"},
			{Key: "description", Label: "Descripción", Type: FieldTextarea, Default: "", Placeholder: "Descripción motivadora"},
			{Key: "primary_button_text", Label: "Botón Principal", Type: FieldText, Default: "Comenzar", Placeholder: "Texto del botón"},
			{Key: "primary_button_url", Label: "URL Botón Principal", Type: FieldURL, Default: "#", Placeholder: "/ruta"},
			{Key: "secondary_button_text", Label: "Botón Secundario (opcional)", Type: FieldText, Default: "", Placeholder: "Texto del botón"},
			{Key: "secondary_button_url", Label: "URL Botón Secundario", Type: FieldURL, Default: "", Placeholder: "/ruta"},
		},
	},
	{
		ID:          TemplateStats,
		Name:        "Estadísticas",
		Description: "Sección con números y estadísticas",
		Icon:        "📊",
		Category:    CategoryContent,
		Fields: []Field{
			{Key: "title", Label: "Título", Type: FieldText, Default: "", Placeholder: "Nuestros Números"},
			{Key: "stats", Label: "Estadísticas", Type: FieldArray,
				Default:     []any{map[string]any{"label": "Proyectos", "value": "50+", "icon": ""}},
				Description: "Lista de estadísticas con etiqueta, valor e icono"},
		},
	},
	{
		ID:          TemplateRoadmap,
		Name:        "Roadmap de Skills",
		Description: "Tu trayectoria de aprendizaje con categorías y habilidades",
		Icon:        "🚀",
		Category:    CategoryContent,
		Fields: []Field{
			{Key: "title", Label: "Título", Type: FieldText, Default: "Mi Trayectoria de Aprendizaje", Placeholder: "Título del roadmap"},
			{Key: "description", Label: "Descripción", Type: FieldTextarea,
				Default:     "Un vistazo a las tecnologías que domino, las que estoy aprendiendo y mis próximos objetivos",
				Placeholder: "Descripción del roadmap"},
			{Key: "categories", Label: "Categorías de Skills", Type: FieldArray,
				Default: []any{map[string]any{
					"name":        "Frontend",
					"icon":        "💻",
					"description": "Tecnologías de interfaz de usuario",
					"skills": []any{
						map[string]any{"name": "React", "icon": "https://cdn.jsdelivr.net/gh/devicons/devicon/icons/react/react-original.svg", "proficiency": float64(85), "status": "completed"},
						map[string]any{"name": "Next.js", "icon": "https://cdn.jsdelivr.net/gh/devicons/devicon/icons/nextjs/nextjs-original.svg", "proficiency": float64(70), "status": "learning"},
					},
				}},
				Description: "Categorías con sus skills. Status: completed, learning, planned"},
		},
	},
	{
		ID:          TemplateCustom,
		Name:        "Personalizado",
		Description: "Crea una sección desde cero con campos personalizados",
		Icon:        "⚙️",
		Category:    CategoryCustom,
	},
}

// Templates returns the catalog in display order. The returned slice is a
// copy; field defaults must be read through DefaultContent.
func Templates() []Template {
	out := make([]Template, len(catalog))
	copy(out, catalog)
	return out
}

// TemplateByID returns the template with the given id.
func TemplateByID(id string) (Template, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// LookupTemplate is TemplateByID returning ErrTemplateNotFound.
func LookupTemplate(id string) (Template, error) {
	t, ok := TemplateByID(id)
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	return t, nil
}

// TemplatesByCategory returns the templates of cat in catalog order.
func TemplatesByCategory(cat Category) []Template {
	var out []Template
	for _, t := range catalog {
		if t.Category == cat {
			out = append(out, t)
		}
	}
	return out
}

// DefaultContent returns the initial content of a new section built from
// t: each field seeded with a deep copy of its default.
func DefaultContent(t Template) map[string]any {
	content := make(map[string]any, len(t.Fields))
	for _, f := range t.Fields {
		content[f.Key] = deepCopy(f.Default)
	}
	return content
}

// NewSectionContent is DefaultContent plus the template_id marker the
// renderer dispatches on. The custom template carries no marker.
func NewSectionContent(t Template) map[string]any {
	content := DefaultContent(t)
	if t.ID != TemplateCustom {
		content["template_id"] = t.ID
	}
	return content
}

// NewSectionKey derives a unique section key from a template id.
func NewSectionKey(templateID string) string {
	base := strings.ReplaceAll(templateID, "-", "_")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return base + "_" + suffix
}

// NormalizeSectionKey lower-cases key and replaces anything outside
// [a-z0-9_] with an underscore.
func NormalizeSectionKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(key)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}

// ParseFieldValue converts a submitted form value back to the content type
// of a field. Array and object fields are JSON.
func ParseFieldValue(ft FieldType, raw string) (any, error) {
	switch ft {
	case FieldNumber:
		s := strings.TrimSpace(raw)
		if s == "" {
			return float64(0), nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", raw, err)
		}
		return n, nil
	case FieldArray, FieldObject:
		s := strings.TrimSpace(raw)
		if s == "" {
			if ft == FieldArray {
				return []any{}, nil
			}
			return map[string]any{}, nil
		}
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		switch v.(type) {
		case []any:
			if ft != FieldArray {
				return nil, errors.New("expected a JSON object")
			}
		case map[string]any:
			if ft != FieldObject {
				return nil, errors.New("expected a JSON array")
			}
		default:
			return nil, fmt.Errorf("expected a JSON %s", ft)
		}
		return v, nil
	default:
		return raw, nil
	}
}
