// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the meta tags, structured data, sitemap and robots.txt
// of the public site.
package seo

import (
	"encoding/json"
	"html/template"
	"strings"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/util"
)

// descriptionLimit is the longest generated meta description.
const descriptionLimit = 160

// Meta holds the SEO tags of one page.
type Meta struct {
	Title         string
	Description   string
	Keywords      string
	Canonical     string
	OGTitle       string
	OGDescription string
	OGImage       string
	OGType        string
	OGSiteName    string
	OGURL         string
	Robots        string
	TwitterCard   string
}

// PageData describes the page being rendered.
type PageData struct {
	Title       string
	Description string
	// Path is the request path without query string.
	Path    string
	Image   string
	Type    string
	NoIndex bool
}

// SiteConfig holds the site-wide values from the settings document.
type SiteConfig struct {
	SiteName       string
	SiteURL        string
	SEOTitle       string
	Description    string
	Keywords       string
	DefaultOGImage string
}

// SiteConfigFrom builds the site config from the public settings. st may
// be nil when the backend is unreachable.
func SiteConfigFrom(st *backend.Settings, siteURL string) SiteConfig {
	cfg := SiteConfig{SiteURL: strings.TrimSuffix(siteURL, "/")}
	if st == nil {
		return cfg
	}
	cfg.SiteName = st.SiteName
	cfg.SEOTitle = st.SEOTitle
	cfg.Description = st.SEODescription
	if cfg.Description == "" {
		cfg.Description = st.SiteDescription
	}
	cfg.Keywords = st.SEOKeywords
	cfg.DefaultOGImage = st.SEOOGImage
	return cfg
}

// BuildMeta creates the tags of a page, falling back to the site values.
func BuildMeta(page PageData, site SiteConfig) Meta {
	meta := Meta{
		OGType:      "website",
		OGSiteName:  site.SiteName,
		TwitterCard: "summary_large_image",
		Keywords:    site.Keywords,
	}
	if page.Type != "" {
		meta.OGType = page.Type
	}

	switch {
	case page.Title != "" && site.SiteName != "" && page.Title != site.SiteName:
		meta.Title = page.Title + " | " + site.SiteName
		meta.OGTitle = page.Title
	case page.Title != "":
		meta.Title = page.Title
		meta.OGTitle = page.Title
	case site.SEOTitle != "":
		meta.Title = site.SEOTitle
		meta.OGTitle = site.SEOTitle
	default:
		meta.Title = site.SiteName
		meta.OGTitle = site.SiteName
	}

	desc := page.Description
	if desc == "" {
		desc = site.Description
	}
	meta.Description = truncateText(util.StripTags(desc), descriptionLimit)
	meta.OGDescription = meta.Description

	image := page.Image
	if image == "" {
		image = site.DefaultOGImage
	}
	meta.OGImage = makeAbsoluteURL(image, site.SiteURL)

	if site.SiteURL != "" {
		p := page.Path
		if p == "/" {
			p = ""
		}
		meta.Canonical = site.SiteURL + p
		meta.OGURL = meta.Canonical
	}

	meta.Robots = buildRobotsDirective(page.NoIndex, page.NoIndex)
	return meta
}

// buildRobotsDirective creates the robots meta content from noindex/nofollow flags.
func buildRobotsDirective(noIndex, noFollow bool) string {
	parts := []string{"index", "follow"}
	if noIndex {
		parts[0] = "noindex"
	}
	if noFollow {
		parts[1] = "nofollow"
	}
	return strings.Join(parts, ",")
}

// PersonSchema represents JSON-LD Person structured data.
type PersonSchema struct {
	Context string   `json:"@context,omitempty"`
	Type    string   `json:"@type"`
	Name    string   `json:"name"`
	URL     string   `json:"url,omitempty"`
	Email   string   `json:"email,omitempty"`
	SameAs  []string `json:"sameAs,omitempty"`
}

// ProjectSchema represents JSON-LD CreativeWork structured data of a
// portfolio project.
type ProjectSchema struct {
	Context      string        `json:"@context"`
	Type         string        `json:"@type"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	URL          string        `json:"url"`
	Image        string        `json:"image,omitempty"`
	CodeURL      string        `json:"codeRepository,omitempty"`
	Keywords     string        `json:"keywords,omitempty"`
	DateCreated  string        `json:"dateCreated,omitempty"`
	Author       *PersonSchema `json:"author,omitempty"`
	Technologies []string      `json:"programmingLanguage,omitempty"`
}

// BuildPersonSchema creates the JSON-LD of the site owner from the public
// settings.
func BuildPersonSchema(st *backend.Settings, siteURL string) template.JS {
	if st == nil || st.SiteName == "" {
		return ""
	}
	p := PersonSchema{
		Context: "https://schema.org",
		Type:    "Person",
		Name:    st.SiteName,
		URL:     strings.TrimSuffix(siteURL, "/"),
		Email:   st.ContactEmail,
	}
	for _, l := range st.EnabledSocialLinks() {
		if l.URL != "" {
			p.SameAs = append(p.SameAs, l.URL)
		}
	}
	return marshalJSONLD(p)
}

// BuildProjectSchema creates the JSON-LD of a project page.
func BuildProjectSchema(p backend.Project, site SiteConfig) template.JS {
	desc := p.ShortDescription
	if desc == "" {
		desc = p.Description
	}
	s := ProjectSchema{
		Context:     "https://schema.org",
		Type:        "CreativeWork",
		Name:        p.Title,
		Description: truncateText(util.StripTags(desc), descriptionLimit),
		URL:         site.SiteURL + "/projects/" + p.Slug,
		Image:       makeAbsoluteURL(p.ThumbnailURL, site.SiteURL),
		CodeURL:     p.GithubURL,
		Keywords:    strings.Join(p.Tags, ", "),
		DateCreated: p.CreatedAt,
	}
	if site.SiteName != "" {
		s.Author = &PersonSchema{Type: "Person", Name: site.SiteName}
	}
	for _, t := range p.VisibleTechnologies() {
		s.Technologies = append(s.Technologies, t.Name)
	}
	return marshalJSONLD(s)
}

// marshalJSONLD marshals structured data to JSON-LD script tag content.
func marshalJSONLD(v any) template.JS {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return template.JS(data)
}

// truncateText truncates text to maxLen runes at a word boundary.
func truncateText(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	truncated := string(runes[:maxLen])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > len(truncated)/2 {
		truncated = truncated[:lastSpace]
	}
	return strings.TrimSpace(truncated) + "..."
}

// makeAbsoluteURL ensures a URL is absolute by prepending site URL if needed.
func makeAbsoluteURL(u, siteURL string) string {
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return strings.TrimSuffix(siteURL, "/") + u
}
