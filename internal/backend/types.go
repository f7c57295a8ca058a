// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"regexp"

	"github.com/olegiv/folio-go/internal/permission"
)

// Demo video types.
const (
	VideoYouTube = "youtube"
	VideoLocal   = "local"
)

var youTubeIDRegex = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([A-Za-z0-9_-]+)`)

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// User is an account as returned by the API.
type User struct {
	ID          int64           `json:"id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Role        permission.Role `json:"role"`
	IsActive    bool            `json:"is_active"`
	Permissions []string        `json:"permissions"`
	Bio         string          `json:"bio,omitempty"`
	AvatarURL   string          `json:"avatar_url,omitempty"`
	GithubURL   string          `json:"github_url,omitempty"`
	LinkedinURL string          `json:"linkedin_url,omitempty"`
	TwitterURL  string          `json:"twitter_url,omitempty"`
	WebsiteURL  string          `json:"website_url,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
}

// Checker returns the permission checker for u. A nil user yields the
// anonymous checker.
func (u *User) Checker() permission.Checker {
	if u == nil {
		return permission.Checker{}
	}
	return permission.NewChecker(u.Role, u.Permissions)
}

// UserCreate is the payload for creating an account.
type UserCreate struct {
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Password    string          `json:"password"`
	Role        permission.Role `json:"role"`
	Bio         string          `json:"bio,omitempty"`
	AvatarURL   string          `json:"avatar_url,omitempty"`
	GithubURL   string          `json:"github_url,omitempty"`
	LinkedinURL string          `json:"linkedin_url,omitempty"`
	TwitterURL  string          `json:"twitter_url,omitempty"`
	WebsiteURL  string          `json:"website_url,omitempty"`
}

// UserUpdate is a partial account update. Nil fields are left unchanged.
type UserUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Bio         *string          `json:"bio,omitempty"`
	AvatarURL   *string          `json:"avatar_url,omitempty"`
	GithubURL   *string          `json:"github_url,omitempty"`
	LinkedinURL *string          `json:"linkedin_url,omitempty"`
	TwitterURL  *string          `json:"twitter_url,omitempty"`
	WebsiteURL  *string          `json:"website_url,omitempty"`
	Role        *permission.Role `json:"role,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
	Password    *string          `json:"password,omitempty"`
}

// RoleInfo describes a role the current user may assign.
type RoleInfo struct {
	Name        string   `json:"name"`
	Value       string   `json:"value"`
	Permissions []string `json:"permissions"`
}

// Section is a CMS page section as returned by the privileged endpoints.
type Section struct {
	ID           int64          `json:"id,omitempty"`
	PageKey      string         `json:"page_key"`
	SectionKey   string         `json:"section_key"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	Content      map[string]any `json:"content"`
	Styles       map[string]any `json:"styles,omitempty"`
	TemplateID   string         `json:"template_id,omitempty"`
	IsActive     bool           `json:"is_active"`
	IsEditable   bool           `json:"is_editable"`
	OrderIndex   int            `json:"order_index"`
	Version      int            `json:"version,omitempty"`
	LastEditedBy *int64         `json:"last_edited_by,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
	UpdatedAt    string         `json:"updated_at,omitempty"`
}

// PublicSection is the anonymous view of a section.
type PublicSection struct {
	SectionKey string         `json:"section_key"`
	Title      string         `json:"title"`
	Content    map[string]any `json:"content"`
	Styles     map[string]any `json:"styles,omitempty"`
	OrderIndex int            `json:"order_index"`
}

// PublicPage is the anonymous view of a page.
type PublicPage struct {
	PageKey  string          `json:"page_key"`
	Sections []PublicSection `json:"sections"`
}

// SectionsOf converts the public sections of page into Section records.
// Public sections are active and editable by construction.
func (p PublicPage) SectionsOf() []Section {
	out := make([]Section, 0, len(p.Sections))
	for _, s := range p.Sections {
		out = append(out, Section{
			PageKey:    p.PageKey,
			SectionKey: s.SectionKey,
			Title:      s.Title,
			Content:    s.Content,
			Styles:     s.Styles,
			OrderIndex: s.OrderIndex,
			IsActive:   true,
			IsEditable: true,
		})
	}
	return out
}

// PageInfo describes an editable page.
type PageInfo struct {
	PageKey       string `json:"page_key"`
	Label         string `json:"label"`
	Icon          string `json:"icon"`
	Description   string `json:"description"`
	SectionsCount int    `json:"sections_count"`
}

// CMSStats summarizes CMS content.
type CMSStats struct {
	TotalPages       int `json:"total_pages"`
	TotalSections    int `json:"total_sections"`
	ActiveSections   int `json:"active_sections"`
	EditableSections int `json:"editable_sections"`
}

// SectionCreate is the payload for creating a section.
type SectionCreate struct {
	PageKey     string         `json:"page_key"`
	SectionKey  string         `json:"section_key"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Content     map[string]any `json:"content"`
	Styles      map[string]any `json:"styles,omitempty"`
	IsActive    bool           `json:"is_active"`
	IsEditable  bool           `json:"is_editable"`
	OrderIndex  int            `json:"order_index"`
}

// SectionUpdate is a partial section update.
type SectionUpdate struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Content     map[string]any `json:"content,omitempty"`
	Styles      map[string]any `json:"styles,omitempty"`
	IsActive    *bool          `json:"is_active,omitempty"`
	IsEditable  *bool          `json:"is_editable,omitempty"`
	OrderIndex  *int           `json:"order_index,omitempty"`
}

// Direction moves a section one slot within its page.
type Direction string

// Reorder directions.
const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Technology is a project technology badge. Disabled entries are kept but
// not displayed.
type Technology struct {
	Name    string `json:"name"`
	Icon    string `json:"icon,omitempty"`
	Enabled bool   `json:"enabled"`
}

// DemoImage is one image of a project's demo gallery.
type DemoImage struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Order int    `json:"order,omitempty"`
}

// Project is a portfolio project.
type Project struct {
	ID                 int64        `json:"id"`
	Title              string       `json:"title"`
	Slug               string       `json:"slug"`
	Description        string       `json:"description"`
	ShortDescription   string       `json:"short_description,omitempty"`
	Content            string       `json:"content,omitempty"`
	GithubURL          string       `json:"github_url,omitempty"`
	DemoURL            string       `json:"demo_url,omitempty"`
	DemoVideoType      string       `json:"demo_video_type,omitempty"`
	DemoVideoURL       string       `json:"demo_video_url,omitempty"`
	DemoVideoThumbnail string       `json:"demo_video_thumbnail,omitempty"`
	DemoImages         []DemoImage  `json:"demo_images,omitempty"`
	ThumbnailURL       string       `json:"thumbnail_url,omitempty"`
	Technologies       []Technology `json:"technologies"`
	Tags               []string     `json:"tags,omitempty"`
	IsFeatured         bool         `json:"is_featured"`
	IsPublished        bool         `json:"is_published"`
	OrderIndex         int          `json:"order_index,omitempty"`
	ViewCount          int          `json:"view_count"`
	CreatedAt          string       `json:"created_at,omitempty"`
}

// VisibleTechnologies returns the enabled technologies in order.
func (p Project) VisibleTechnologies() []Technology {
	out := make([]Technology, 0, len(p.Technologies))
	for _, t := range p.Technologies {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

// HasVideoDemo reports whether the project has a video demo configured.
func (p Project) HasVideoDemo() bool {
	return p.DemoVideoURL != ""
}

// YouTubeEmbedURL returns the privacy-enhanced embed URL of a YouTube demo
// video, or "" when the demo is not a recognizable YouTube link.
func (p Project) YouTubeEmbedURL() string {
	if p.DemoVideoType != VideoYouTube {
		return ""
	}
	m := youTubeIDRegex.FindStringSubmatch(p.DemoVideoURL)
	if m == nil {
		return ""
	}
	return "https://www.youtube-nocookie.com/embed/" + m[1]
}

// ProjectInput is the create/update payload for a project.
type ProjectInput struct {
	Title              string       `json:"title"`
	Slug               string       `json:"slug"`
	Description        string       `json:"description"`
	ShortDescription   string       `json:"short_description,omitempty"`
	Content            string       `json:"content,omitempty"`
	GithubURL          string       `json:"github_url,omitempty"`
	DemoURL            string       `json:"demo_url,omitempty"`
	DemoVideoType      string       `json:"demo_video_type,omitempty"`
	DemoVideoURL       string       `json:"demo_video_url,omitempty"`
	DemoVideoThumbnail string       `json:"demo_video_thumbnail,omitempty"`
	DemoImages         []DemoImage  `json:"demo_images"`
	ThumbnailURL       string       `json:"thumbnail_url,omitempty"`
	Technologies       []Technology `json:"technologies"`
	Tags               []string     `json:"tags"`
	IsFeatured         bool         `json:"is_featured"`
	IsPublished        bool         `json:"is_published"`
	OrderIndex         int          `json:"order_index"`
}

// ProjectQuery filters the project list.
type ProjectQuery struct {
	Skip               int
	Limit              int
	FeaturedOnly       bool
	Search             string
	IncludeUnpublished bool
}

// ProjectStats summarizes projects.
type ProjectStats struct {
	TotalProjects     int      `json:"total_projects"`
	PublishedProjects int      `json:"published_projects"`
	FeaturedProjects  int      `json:"featured_projects"`
	TotalViews        int      `json:"total_views"`
	MostViewed        *Project `json:"most_viewed,omitempty"`
}

// SocialLink is a footer/social profile link.
type SocialLink struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Icon    string `json:"icon"`
	Enabled bool   `json:"enabled"`
}

// Settings is the singleton site configuration document.
type Settings struct {
	SiteName            string         `json:"site_name"`
	SiteDescription     string         `json:"site_description,omitempty"`
	SiteLogoURL         string         `json:"site_logo_url,omitempty"`
	SiteFaviconURL      string         `json:"site_favicon_url,omitempty"`
	ContactEmail        string         `json:"contact_email,omitempty"`
	ContactPhone        string         `json:"contact_phone,omitempty"`
	ContactLocation     string         `json:"contact_location,omitempty"`
	ContactAvailability string         `json:"contact_availability,omitempty"`
	SocialLinks         []SocialLink   `json:"social_links"`
	SEOTitle            string         `json:"seo_title,omitempty"`
	SEODescription      string         `json:"seo_description,omitempty"`
	SEOKeywords         string         `json:"seo_keywords,omitempty"`
	SEOOGImage          string         `json:"seo_og_image,omitempty"`
	GoogleAnalyticsID   string         `json:"google_analytics_id,omitempty"`
	ThemeMode           string         `json:"theme_mode,omitempty"`
	PrimaryColor        string         `json:"primary_color,omitempty"`
	FontFamily          string         `json:"font_family,omitempty"`
	MaintenanceMode     bool           `json:"maintenance_mode"`
	MaintenanceMessage  string         `json:"maintenance_message,omitempty"`
	GlobalBanner        string         `json:"global_banner,omitempty"`
	BannerEnabled       bool           `json:"banner_enabled"`
	BannerType          string         `json:"banner_type,omitempty"`
	NewsletterEnabled   bool           `json:"newsletter_enabled"`
	ExtraConfig         map[string]any `json:"extra_config,omitempty"`
}

// EnabledSocialLinks returns the social links flagged as enabled.
func (s Settings) EnabledSocialLinks() []SocialLink {
	out := make([]SocialLink, 0, len(s.SocialLinks))
	for _, l := range s.SocialLinks {
		if l.Enabled {
			out = append(out, l)
		}
	}
	return out
}

// ShowBanner reports whether the global banner should be displayed.
func (s Settings) ShowBanner() bool {
	return s.BannerEnabled && s.GlobalBanner != ""
}

// SettingsUpdate is a partial settings update. Nil fields are left
// unchanged.
type SettingsUpdate struct {
	SiteName            *string      `json:"site_name,omitempty"`
	SiteDescription     *string      `json:"site_description,omitempty"`
	SiteLogoURL         *string      `json:"site_logo_url,omitempty"`
	ContactEmail        *string      `json:"contact_email,omitempty"`
	ContactPhone        *string      `json:"contact_phone,omitempty"`
	ContactLocation     *string      `json:"contact_location,omitempty"`
	ContactAvailability *string      `json:"contact_availability,omitempty"`
	SocialLinks         []SocialLink `json:"social_links,omitempty"`
	SEOTitle            *string      `json:"seo_title,omitempty"`
	SEODescription      *string      `json:"seo_description,omitempty"`
	ThemeMode           *string      `json:"theme_mode,omitempty"`
	PrimaryColor        *string      `json:"primary_color,omitempty"`
	MaintenanceMode     *bool        `json:"maintenance_mode,omitempty"`
	MaintenanceMessage  *string      `json:"maintenance_message,omitempty"`
	GlobalBanner        *string      `json:"global_banner,omitempty"`
	BannerEnabled       *bool        `json:"banner_enabled,omitempty"`
	BannerType          *string      `json:"banner_type,omitempty"`
}

// CVDownload carries the relative path of the generated CV document.
type CVDownload struct {
	DownloadURL string `json:"download_url"`
}
