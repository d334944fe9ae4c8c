package model

import "time"

// PageStatus is the publication status of a page.
type PageStatus string

// Publication statuses.
const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
)

// SectionType identifies the kind of content block a section renders.
type SectionType string

// The closed set of section types.
const (
	SectionHero         SectionType = "hero"
	SectionFeatures     SectionType = "features"
	SectionTestimonials SectionType = "testimonials"
	SectionCTA          SectionType = "cta"
	SectionPricing      SectionType = "pricing"
	SectionFAQ          SectionType = "faq"
	SectionContactForm  SectionType = "contact-form"
	SectionQuoteForm    SectionType = "quote-form"
	SectionCarriers     SectionType = "carriers"
	SectionProducts     SectionType = "products"
	SectionStats        SectionType = "stats"
	SectionTeam         SectionType = "team"
	SectionContent      SectionType = "content"
	SectionImageText    SectionType = "image-text"
	SectionGallery      SectionType = "gallery"
	SectionVideo        SectionType = "video"
	SectionCustom       SectionType = "custom"
)

// sectionTypes is the lookup set for Valid.
var sectionTypes = map[SectionType]bool{
	SectionHero: true, SectionFeatures: true, SectionTestimonials: true,
	SectionCTA: true, SectionPricing: true, SectionFAQ: true,
	SectionContactForm: true, SectionQuoteForm: true, SectionCarriers: true,
	SectionProducts: true, SectionStats: true, SectionTeam: true,
	SectionContent: true, SectionImageText: true, SectionGallery: true,
	SectionVideo: true, SectionCustom: true,
}

// Valid reports whether t is a member of the closed section type set.
func (t SectionType) Valid() bool {
	return sectionTypes[t]
}

// SectionStyles holds the per-section presentation overrides.
type SectionStyles struct {
	BackgroundColor   string `json:"background_color,omitempty" yaml:"background_color"`
	BackgroundImage   string `json:"background_image,omitempty" yaml:"background_image"`
	BackgroundOverlay string `json:"background_overlay,omitempty" yaml:"background_overlay"`
	PaddingTop        string `json:"padding_top,omitempty" yaml:"padding_top"`
	PaddingBottom     string `json:"padding_bottom,omitempty" yaml:"padding_bottom"`
	TextColor         string `json:"text_color,omitempty" yaml:"text_color"`
	MaxWidth          string `json:"max_width,omitempty" yaml:"max_width"`
	Alignment         string `json:"alignment,omitempty" yaml:"alignment"`
}

// SEOData holds page-level search metadata.
type SEOData struct {
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description" yaml:"description"`
	Keywords     []string `json:"keywords,omitempty" yaml:"keywords"`
	OGImage      string   `json:"og_image,omitempty" yaml:"og_image"`
	CanonicalURL string   `json:"canonical_url,omitempty" yaml:"canonical_url"`
	NoIndex      bool     `json:"no_index,omitempty" yaml:"no_index"`
}

// Section is one ordered, independently editable content block within a page.
// Data is an open payload whose shape depends on Type; the content package
// provides the typed view used at the API boundary.
type Section struct {
	ID        string         `json:"id" yaml:"id"`
	Type      SectionType    `json:"type" yaml:"type"`
	Order     int            `json:"order" yaml:"order"`
	Data      map[string]any `json:"data" yaml:"data"`
	Styles    SectionStyles  `json:"styles" yaml:"styles"`
	IsVisible bool           `json:"is_visible" yaml:"is_visible"`
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	out.Data = cloneValueMap(s.Data)
	return out
}

// Page is an ordered sequence of sections plus its metadata. Section order
// is contiguous and zero-based: sections[i].Order == i after every mutation.
type Page struct {
	ID          string     `json:"id" yaml:"id"`
	Slug        string     `json:"slug" yaml:"slug"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Sections    []Section  `json:"sections" yaml:"sections"`
	SEO         SEOData    `json:"seo" yaml:"seo"`
	Status      PageStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty" yaml:"published_at"`
}

// Clone returns a deep copy of the page, including every section payload.
func (p Page) Clone() Page {
	out := p
	if p.Sections != nil {
		out.Sections = make([]Section, len(p.Sections))
		for i, s := range p.Sections {
			out.Sections[i] = s.Clone()
		}
	}
	if p.SEO.Keywords != nil {
		out.SEO.Keywords = append([]string(nil), p.SEO.Keywords...)
	}
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		out.PublishedAt = &t
	}
	return out
}

// PageSummary is the listing view of a page, without section payloads.
type PageSummary struct {
	ID        string     `json:"id"`
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Status    PageStatus `json:"status"`
	Sections  int        `json:"sections"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Summary derives the listing view from a full page.
func (p Page) Summary() PageSummary {
	return PageSummary{
		ID:        p.ID,
		Slug:      p.Slug,
		Title:     p.Title,
		Status:    p.Status,
		Sections:  len(p.Sections),
		UpdatedAt: p.UpdatedAt,
	}
}

// cloneValueMap deep-copies a JSON-shaped map. Values are restricted to what
// encoding/json produces: scalars, []any, and map[string]any.
func cloneValueMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return cloneValueMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
