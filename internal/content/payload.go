// Package content defines the typed payload carried by each section type and
// the validation applied at the API boundary. Sections store their payload as
// a generic map so partial edits can merge key by key; this package is where
// those maps are checked against the shape each section type expects.
package content

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/getcoveredlife/studio/model"
)

// HeroData is the payload for hero sections.
type HeroData struct {
	Headline     string `json:"headline"`
	Subheadline  string `json:"subheadline,omitempty"`
	PrimaryCTA   CTA    `json:"primary_cta,omitempty"`
	SecondaryCTA CTA    `json:"secondary_cta,omitempty"`
	Image        string `json:"image,omitempty"`
	Badge        string `json:"badge,omitempty"`
}

// CTA is a call-to-action button.
type CTA struct {
	Label string `json:"label,omitempty"`
	Href  string `json:"href,omitempty"`
}

// FeatureItem is one entry in a features grid.
type FeatureItem struct {
	Icon        string `json:"icon,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// FeaturesData is the payload for features sections.
type FeaturesData struct {
	Title    string        `json:"title,omitempty"`
	Subtitle string        `json:"subtitle,omitempty"`
	Items    []FeatureItem `json:"items,omitempty"`
	Columns  int           `json:"columns,omitempty"`
}

// Testimonial is one customer quote.
type Testimonial struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
	Role   string `json:"role,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Rating int    `json:"rating,omitempty"`
}

// TestimonialsData is the payload for testimonials sections.
type TestimonialsData struct {
	Title string        `json:"title,omitempty"`
	Items []Testimonial `json:"items,omitempty"`
}

// CTAData is the payload for call-to-action banners.
type CTAData struct {
	Headline   string `json:"headline"`
	Body       string `json:"body,omitempty"`
	PrimaryCTA CTA    `json:"primary_cta,omitempty"`
}

// PricingTier is one column of a pricing table.
type PricingTier struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Period      string   `json:"period,omitempty"`
	Description string   `json:"description,omitempty"`
	Features    []string `json:"features,omitempty"`
	CTA         CTA      `json:"cta,omitempty"`
	Highlighted bool     `json:"highlighted,omitempty"`
}

// PricingData is the payload for pricing sections.
type PricingData struct {
	Title    string        `json:"title,omitempty"`
	Subtitle string        `json:"subtitle,omitempty"`
	Tiers    []PricingTier `json:"tiers,omitempty"`
}

// FAQItem is one question/answer pair.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQData is the payload for FAQ sections.
type FAQData struct {
	Title string    `json:"title,omitempty"`
	Items []FAQItem `json:"items,omitempty"`
}

// FormField describes one input on a contact or quote form.
type FormField struct {
	Name     string   `json:"name"`
	Label    string   `json:"label,omitempty"`
	Kind     string   `json:"kind,omitempty"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// FormData is the payload for contact-form and quote-form sections.
type FormData struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	SubmitLabel string      `json:"submit_label,omitempty"`
	SuccessText string      `json:"success_text,omitempty"`
	Fields      []FormField `json:"fields,omitempty"`
}

// CarrierLogo is one insurance carrier entry.
type CarrierLogo struct {
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
	Href string `json:"href,omitempty"`
}

// CarriersData is the payload for carriers sections.
type CarriersData struct {
	Title string        `json:"title,omitempty"`
	Items []CarrierLogo `json:"items,omitempty"`
}

// ProductCard is one product entry.
type ProductCard struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Href        string `json:"href,omitempty"`
}

// ProductsData is the payload for products sections.
type ProductsData struct {
	Title    string        `json:"title,omitempty"`
	Subtitle string        `json:"subtitle,omitempty"`
	Items    []ProductCard `json:"items,omitempty"`
}

// StatItem is one number in a stats band.
type StatItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// StatsData is the payload for stats sections.
type StatsData struct {
	Title string     `json:"title,omitempty"`
	Items []StatItem `json:"items,omitempty"`
}

// TeamMember is one person card.
type TeamMember struct {
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Bio   string `json:"bio,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// TeamData is the payload for team sections.
type TeamData struct {
	Title string       `json:"title,omitempty"`
	Items []TeamMember `json:"items,omitempty"`
}

// RichTextData is the payload for freeform content sections.
type RichTextData struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

// ImageTextData is the payload for image-text split sections.
type ImageTextData struct {
	Title         string `json:"title,omitempty"`
	Body          string `json:"body,omitempty"`
	Image         string `json:"image"`
	ImagePosition string `json:"image_position,omitempty"`
	CTA           CTA    `json:"cta,omitempty"`
}

// GalleryImage is one image in a gallery grid.
type GalleryImage struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// GalleryData is the payload for gallery sections.
type GalleryData struct {
	Title  string         `json:"title,omitempty"`
	Images []GalleryImage `json:"images,omitempty"`
}

// VideoData is the payload for video embed sections.
type VideoData struct {
	Title  string `json:"title,omitempty"`
	URL    string `json:"url"`
	Poster string `json:"poster,omitempty"`
}

// payloadFor returns a zero value of the typed payload for t, or nil when the
// type carries a freeform payload. Custom sections are the escape hatch for
// arbitrary embeds, so they stay unconstrained.
func payloadFor(t model.SectionType) any {
	switch t {
	case model.SectionHero:
		return &HeroData{}
	case model.SectionFeatures:
		return &FeaturesData{}
	case model.SectionTestimonials:
		return &TestimonialsData{}
	case model.SectionCTA:
		return &CTAData{}
	case model.SectionPricing:
		return &PricingData{}
	case model.SectionFAQ:
		return &FAQData{}
	case model.SectionContactForm, model.SectionQuoteForm:
		return &FormData{}
	case model.SectionCarriers:
		return &CarriersData{}
	case model.SectionProducts:
		return &ProductsData{}
	case model.SectionStats:
		return &StatsData{}
	case model.SectionTeam:
		return &TeamData{}
	case model.SectionContent:
		return &RichTextData{}
	case model.SectionImageText:
		return &ImageTextData{}
	case model.SectionGallery:
		return &GalleryData{}
	case model.SectionVideo:
		return &VideoData{}
	}
	return nil
}

// Decode checks that data matches the payload shape for the given section
// type. Unknown keys are rejected so typos in editor payloads surface as
// errors instead of silently dropped fields. The map itself is returned
// unchanged; sections keep the generic representation.
func Decode(t model.SectionType, data map[string]any) error {
	if !t.Valid() {
		return model.NewBadRequestError(fmt.Sprintf("unknown section type %q", t))
	}
	target := payloadFor(t)
	if target == nil || len(data) == 0 {
		return nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return model.NewBadRequestError(fmt.Sprintf("section data is not serializable: %v", err))
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return model.NewBadRequestError(fmt.Sprintf("invalid %s payload: %v", t, err))
	}
	return nil
}

// Validate applies the per-type field rules on top of the shape check and
// returns field-level errors suitable for a VALIDATION_ERROR envelope.
func Validate(t model.SectionType, data map[string]any) []model.FieldError {
	var errs []model.FieldError
	req := func(field string) {
		v, ok := data[field].(string)
		if !ok || v == "" {
			errs = append(errs, model.FieldError{
				Field:   field,
				Code:    "required",
				Message: fmt.Sprintf("%s sections require %s", t, field),
			})
		}
	}

	switch t {
	case model.SectionHero, model.SectionCTA:
		req("headline")
	case model.SectionImageText:
		req("image")
	case model.SectionVideo:
		req("url")
	}
	return errs
}

// DefaultData returns the starter payload placed into a freshly added section
// so the canvas never renders an empty block.
func DefaultData(t model.SectionType) map[string]any {
	var payload any
	switch t {
	case model.SectionHero:
		payload = HeroData{
			Headline:    "Protect What Matters Most",
			Subheadline: "Coverage designed around your family.",
			PrimaryCTA:  CTA{Label: "Get a Quote", Href: "/quote"},
		}
	case model.SectionFeatures:
		payload = FeaturesData{
			Title:   "Why Choose Us",
			Columns: 3,
			Items: []FeatureItem{
				{Title: "Licensed Advisors", Description: "Real people, not call scripts."},
				{Title: "Top-Rated Carriers", Description: "We shop dozens of carriers for you."},
				{Title: "No-Pressure Quotes", Description: "Compare options at your own pace."},
			},
		}
	case model.SectionCTA:
		payload = CTAData{
			Headline:   "Ready to get covered?",
			PrimaryCTA: CTA{Label: "Start Your Quote", Href: "/quote"},
		}
	case model.SectionFAQ:
		payload = FAQData{Title: "Frequently Asked Questions"}
	case model.SectionContactForm:
		payload = FormData{
			Title:       "Get in Touch",
			SubmitLabel: "Send Message",
			SuccessText: "Thanks, we will get back to you within one business day.",
			Fields: []FormField{
				{Name: "name", Label: "Name", Kind: "text", Required: true},
				{Name: "email", Label: "Email", Kind: "email", Required: true},
				{Name: "message", Label: "Message", Kind: "textarea", Required: true},
			},
		}
	case model.SectionQuoteForm:
		payload = FormData{
			Title:       "Get Your Free Quote",
			SubmitLabel: "See My Rates",
			Fields: []FormField{
				{Name: "name", Label: "Full Name", Kind: "text", Required: true},
				{Name: "email", Label: "Email", Kind: "email", Required: true},
				{Name: "phone", Label: "Phone", Kind: "tel"},
				{Name: "coverage_amount", Label: "Coverage Amount", Kind: "select",
					Options: []string{"250000", "500000", "1000000", "2000000"}},
				{Name: "term_length", Label: "Term Length", Kind: "select",
					Options: []string{"10", "20", "30"}},
			},
		}
	case model.SectionStats:
		payload = StatsData{Items: []StatItem{
			{Value: "10,000+", Label: "Families Covered"},
			{Value: "4.9", Label: "Average Rating"},
			{Value: "24h", Label: "Typical Approval"},
		}}
	case model.SectionContent:
		payload = RichTextData{Title: "New Section"}
	default:
		return map[string]any{}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}
