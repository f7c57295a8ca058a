// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/olegiv/folio-go/internal/backend"
)

// Section keys and template ids of the two self-fetching sections.
const (
	KeyHero             = "hero"
	KeyFeaturedProjects = "featured_projects"

	// seeded content uses a hyphen for the featured section
	keyFeaturedProjectsAlt = "featured-projects"
)

// DefaultFeaturedLimit is the number of featured projects shown when a
// section does not set showCount.
const DefaultFeaturedLimit = 6

// Layout is the resolved presentation of a section. The set of layouts is
// closed; RawLayout renders anything unrecognized.
type Layout interface {
	// Kind names the layout; section templates are looked up as
	// "layout-<kind>".
	Kind() string
	isLayout()
}

// Button is a call-to-action link.
type Button struct {
	Text string
	URL  string
}

// HeroContent is the home page hero.
type HeroContent struct {
	Badge          string
	Title          string
	TitleHighlight string
	Description    string
	Primary        *Button
	Secondary      *Button
}

// DefaultHero is shown when the hero section has no stored content.
var DefaultHero = HeroContent{
	Badge:          "¡Hola! Soy desarrollador Full Stack",
	Title:          "Creando experiencias web",
	TitleHighlight: "excepcionales",
	Description:    "Especializado en React, Next.js, Node.js y Python. Transformo ideas en aplicaciones web modernas, escalables y centradas en el usuario.",
	Primary:        &Button{Text: "Ver mis proyectos", URL: "/projects"},
	Secondary:      &Button{Text: "Descargar CV", URL: "/cv/download"},
}

// HeroLayout renders the hero. Its content is loaded separately from
// ("home", "hero") and never taken from the section being rendered.
type HeroLayout struct {
	Content HeroContent
}

// FeaturedProjectsLayout renders the featured projects grid. Projects are
// loaded from the projects store.
type FeaturedProjectsLayout struct {
	Title       string
	Description string
	Limit       int
	Projects    []backend.Project
	Error       string
}

// Skill is one roadmap entry.
type Skill struct {
	Name        string
	Icon        string
	Proficiency int
	Status      string
}

// RoadmapCategory groups skills.
type RoadmapCategory struct {
	Name        string
	Icon        string
	Description string
	Skills      []Skill
	// Progress is the rounded mean proficiency of Skills, 0 when empty.
	Progress int
}

// RoadmapLayout renders categorized skills.
type RoadmapLayout struct {
	Title       string
	Description string
	Categories  []RoadmapCategory
	Completed   int
	Learning    int
	Planned     int
}

// TextLayout renders a titled text block.
type TextLayout struct {
	Title   string
	Content string
}

// CTALayout renders a call to action. A button with empty text is nil.
type CTALayout struct {
	Title       string
	Description string
	Primary     *Button
	Secondary   *Button
}

// HeroSimpleLayout renders a generic hero block.
type HeroSimpleLayout struct {
	Title       string
	Subtitle    string
	Description string
	Button      *Button
}

// GalleryImage is one image of a gallery.
type GalleryImage struct {
	URL         string
	Alt         string
	Title       string
	Description string
}

// GalleryLayout renders an image gallery.
type GalleryLayout struct {
	Title  string
	Images []GalleryImage
}

// ListItem is one entry of a list section.
type ListItem struct {
	Text string
	URL  string
	Icon string
}

// ListLayout renders a list with icons.
type ListLayout struct {
	Title string
	Items []ListItem
}

// Testimonial is one quote.
type Testimonial struct {
	Name    string
	Role    string
	Company string
	Message string
	Avatar  string
}

// TestimonialsLayout renders quotes.
type TestimonialsLayout struct {
	Title        string
	Testimonials []Testimonial
}

// Stat is one figure of a stats section.
type Stat struct {
	Label string
	Value string
	Icon  string
}

// StatsLayout renders figures.
type StatsLayout struct {
	Title string
	Stats []Stat
}

// RawLayout dumps the content of a section whose template has no layout.
type RawLayout struct {
	Title      string
	TemplateID string
	Dump       string
}

func (HeroLayout) Kind() string             { return "hero" }
func (FeaturedProjectsLayout) Kind() string { return "featured_projects" }
func (RoadmapLayout) Kind() string          { return "roadmap" }
func (TextLayout) Kind() string             { return "text" }
func (CTALayout) Kind() string              { return "cta" }
func (HeroSimpleLayout) Kind() string       { return "hero_simple" }
func (GalleryLayout) Kind() string          { return "gallery" }
func (ListLayout) Kind() string             { return "list" }
func (TestimonialsLayout) Kind() string     { return "testimonials" }
func (StatsLayout) Kind() string            { return "stats" }
func (RawLayout) Kind() string              { return "raw" }

func (HeroLayout) isLayout()             {}
func (FeaturedProjectsLayout) isLayout() {}
func (RoadmapLayout) isLayout()          {}
func (TextLayout) isLayout()             {}
func (CTALayout) isLayout()              {}
func (HeroSimpleLayout) isLayout()       {}
func (GalleryLayout) isLayout()          {}
func (ListLayout) isLayout()             {}
func (TestimonialsLayout) isLayout()     {}
func (StatsLayout) isLayout()            {}
func (RawLayout) isLayout()              {}

// SelfContained reports whether l renders its own chrome and must not be
// wrapped in the generic section container.
func SelfContained(l Layout) bool {
	switch l.(type) {
	case HeroLayout, FeaturedProjectsLayout:
		return true
	}
	return false
}

// TemplateID returns the template a section was built from: content's
// template_id first, then the record field.
func TemplateID(s backend.Section) string {
	if id := str(s.Content, "template_id"); id != "" {
		return id
	}
	return s.TemplateID
}

// Resolve picks the layout for s. The first matching rule wins: hero,
// featured projects, a known template id, and finally the raw dump.
func Resolve(s backend.Section) Layout {
	tid := TemplateID(s)
	c := s.Content

	switch {
	case s.SectionKey == KeyHero || tid == KeyHero:
		return HeroLayout{Content: DefaultHero}
	case s.SectionKey == KeyFeaturedProjects || s.SectionKey == keyFeaturedProjectsAlt || tid == KeyFeaturedProjects:
		limit := int(num(c, "showCount"))
		if limit <= 0 {
			limit = DefaultFeaturedLimit
		}
		return FeaturedProjectsLayout{
			Title:       str(c, "title"),
			Description: str(c, "description"),
			Limit:       limit,
		}
	}

	switch tid {
	case TemplateRoadmap:
		return newRoadmap(c)
	case TemplateTextSimple:
		return TextLayout{Title: str(c, "title"), Content: str(c, "content")}
	case TemplateCTA:
		return CTALayout{
			Title:       str(c, "title"),
			Description: str(c, "description"),
			Primary:     button(c, "primary_button_text", "primary_button_url"),
			Secondary:   button(c, "secondary_button_text", "secondary_button_url"),
		}
	case TemplateHeroSimple:
		return HeroSimpleLayout{
			Title:       str(c, "title"),
			Subtitle:    str(c, "subtitle"),
			Description: str(c, "description"),
			Button:      button(c, "button_text", "button_url"),
		}
	case TemplateImageGallery:
		l := GalleryLayout{Title: str(c, "title")}
		for _, m := range maps(c, "images") {
			l.Images = append(l.Images, GalleryImage{
				URL:         str(m, "url"),
				Alt:         str(m, "alt"),
				Title:       str(m, "title"),
				Description: str(m, "description"),
			})
		}
		return l
	case TemplateListIcons:
		l := ListLayout{Title: str(c, "title")}
		for _, m := range maps(c, "items") {
			l.Items = append(l.Items, ListItem{Text: str(m, "text"), URL: orHash(str(m, "url")), Icon: str(m, "icon")})
		}
		return l
	case TemplateTestimonials:
		l := TestimonialsLayout{Title: str(c, "title")}
		for _, m := range maps(c, "testimonials") {
			l.Testimonials = append(l.Testimonials, Testimonial{
				Name:    str(m, "name"),
				Role:    str(m, "role"),
				Company: str(m, "company"),
				Message: str(m, "message"),
				Avatar:  str(m, "avatar"),
			})
		}
		return l
	case TemplateStats:
		l := StatsLayout{Title: str(c, "title")}
		for _, m := range maps(c, "stats") {
			l.Stats = append(l.Stats, Stat{Label: str(m, "label"), Value: str(m, "value"), Icon: str(m, "icon")})
		}
		return l
	}

	return newRaw(s, tid)
}

func newRoadmap(c map[string]any) RoadmapLayout {
	l := RoadmapLayout{Title: str(c, "title"), Description: str(c, "description")}
	for _, cm := range maps(c, "categories") {
		cat := RoadmapCategory{
			Name:        str(cm, "name"),
			Icon:        str(cm, "icon"),
			Description: str(cm, "description"),
		}
		for _, sm := range maps(cm, "skills") {
			sk := Skill{
				Name:        str(sm, "name"),
				Icon:        str(sm, "icon"),
				Proficiency: clampPercent(num(sm, "proficiency")),
				Status:      str(sm, "status"),
			}
			switch sk.Status {
			case "completed":
				l.Completed++
			case "learning":
				l.Learning++
			case "planned":
				l.Planned++
			}
			cat.Skills = append(cat.Skills, sk)
		}
		cat.Progress = CategoryProgress(cat.Skills)
		l.Categories = append(l.Categories, cat)
	}
	return l
}

// CategoryProgress is the rounded unweighted mean proficiency of skills.
func CategoryProgress(skills []Skill) int {
	if len(skills) == 0 {
		return 0
	}
	sum := 0
	for _, s := range skills {
		sum += s.Proficiency
	}
	return int(math.Round(float64(sum) / float64(len(skills))))
}

func newRaw(s backend.Section, tid string) RawLayout {
	dump := "{}"
	if len(s.Content) > 0 {
		if b, err := json.MarshalIndent(s.Content, "", "  "); err == nil {
			dump = string(b)
		}
	}
	title := str(s.Content, "title")
	if title == "" {
		title = s.Title
	}
	return RawLayout{Title: title, TemplateID: tid, Dump: dump}
}

func button(c map[string]any, textKey, urlKey string) *Button {
	text := str(c, textKey)
	if text == "" {
		return nil
	}
	return &Button{Text: text, URL: orHash(str(c, urlKey))}
}

func orHash(u string) string {
	if u == "" {
		return "#"
	}
	return u
}

func clampPercent(f float64) int {
	n := int(math.Round(f))
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	}
	return n
}

// str reads a scalar as a string. Numbers are formatted without trailing
// zeros; anything else is "".
func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	}
	return ""
}

func num(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

// maps reads a list of objects, skipping entries that are not objects.
func maps(m map[string]any, key string) []map[string]any {
	list, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if mm, ok := item.(map[string]any); ok {
			out = append(out, mm)
		}
	}
	return out
}

func obj(m map[string]any, key string) map[string]any {
	mm, _ := m[key].(map[string]any)
	return mm
}

// HeroFrom merges stored hero content over DefaultHero field by field.
func HeroFrom(c map[string]any) HeroContent {
	h := DefaultHero
	if c == nil {
		return h
	}
	if v := str(c, "badge"); v != "" {
		h.Badge = v
	}
	if v := str(c, "title"); v != "" {
		h.Title = v
	}
	if v := str(c, "titleHighlight"); v != "" {
		h.TitleHighlight = v
	}
	if v := str(c, "description"); v != "" {
		h.Description = v
	}
	if cta := obj(c, "ctaPrimary"); cta != nil {
		h.Primary = button(cta, "text", "url")
	}
	if cta := obj(c, "ctaSecondary"); cta != nil {
		h.Secondary = button(cta, "text", "url")
	}
	return h
}
