package model

// ColorTokens are the named brand colors.
type ColorTokens struct {
	Primary    string `json:"primary" yaml:"primary"`
	Secondary  string `json:"secondary" yaml:"secondary"`
	Accent     string `json:"accent" yaml:"accent"`
	Background string `json:"background" yaml:"background"`
	Foreground string `json:"foreground" yaml:"foreground"`
	Muted      string `json:"muted" yaml:"muted"`
	Border     string `json:"border" yaml:"border"`
}

// FontTokens are the named font families.
type FontTokens struct {
	Heading string `json:"heading" yaml:"heading"`
	Body    string `json:"body" yaml:"body"`
	Display string `json:"display" yaml:"display"`
}

// TypographyTokens are the base typography settings.
type TypographyTokens struct {
	HeadingFont string  `json:"heading_font" yaml:"heading_font"`
	BodyFont    string  `json:"body_font" yaml:"body_font"`
	BaseSize    int     `json:"base_size" yaml:"base_size"`
	LineHeight  float64 `json:"line_height" yaml:"line_height"`
}

// SpacingTokens are the layout spacing primitives.
type SpacingTokens struct {
	Section        string `json:"section" yaml:"section"`
	Component      string `json:"component" yaml:"component"`
	Element        string `json:"element" yaml:"element"`
	Unit           string `json:"unit" yaml:"unit"`
	ContainerWidth string `json:"container_width" yaml:"container_width"`
}

// DesignTokens is the complete set of style primitives that parameterize
// rendered output. Exactly one token set is active at a time; every category
// is always fully populated (defaults back-fill omissions).
type DesignTokens struct {
	Colors       ColorTokens       `json:"colors" yaml:"colors"`
	Fonts        FontTokens        `json:"fonts" yaml:"fonts"`
	Typography   TypographyTokens  `json:"typography" yaml:"typography"`
	FontSizes    map[string]string `json:"font_sizes" yaml:"font_sizes"`
	Spacing      SpacingTokens     `json:"spacing" yaml:"spacing"`
	BorderRadius map[string]string `json:"border_radius" yaml:"border_radius"`
	Shadows      map[string]string `json:"shadows" yaml:"shadows"`
}

// Clone returns a deep copy of the token set.
func (t DesignTokens) Clone() DesignTokens {
	out := t
	out.FontSizes = cloneStringMap(t.FontSizes)
	out.BorderRadius = cloneStringMap(t.BorderRadius)
	out.Shadows = cloneStringMap(t.Shadows)
	return out
}

// TokenPatch is a partial token update. A non-nil category replaces the
// corresponding category wholesale; nil categories are left untouched.
type TokenPatch struct {
	Colors       *ColorTokens      `json:"colors,omitempty"`
	Fonts        *FontTokens       `json:"fonts,omitempty"`
	Typography   *TypographyTokens `json:"typography,omitempty"`
	FontSizes    map[string]string `json:"font_sizes,omitempty"`
	Spacing      *SpacingTokens    `json:"spacing,omitempty"`
	BorderRadius map[string]string `json:"border_radius,omitempty"`
	Shadows      map[string]string `json:"shadows,omitempty"`
}

// Empty reports whether the patch carries no changes at all.
func (p TokenPatch) Empty() bool {
	return p.Colors == nil && p.Fonts == nil && p.Typography == nil &&
		p.FontSizes == nil && p.Spacing == nil &&
		p.BorderRadius == nil && p.Shadows == nil
}

// Apply merges the patch into t, replacing provided categories wholesale.
func (p TokenPatch) Apply(t DesignTokens) DesignTokens {
	out := t.Clone()
	if p.Colors != nil {
		out.Colors = *p.Colors
	}
	if p.Fonts != nil {
		out.Fonts = *p.Fonts
	}
	if p.Typography != nil {
		out.Typography = *p.Typography
	}
	if p.FontSizes != nil {
		out.FontSizes = cloneStringMap(p.FontSizes)
	}
	if p.Spacing != nil {
		out.Spacing = *p.Spacing
	}
	if p.BorderRadius != nil {
		out.BorderRadius = cloneStringMap(p.BorderRadius)
	}
	if p.Shadows != nil {
		out.Shadows = cloneStringMap(p.Shadows)
	}
	return out
}

// DefaultTokens returns the built-in token set used before any tokens have
// been saved. Values match the original brand defaults.
func DefaultTokens() DesignTokens {
	return DesignTokens{
		Colors: ColorTokens{
			Primary:    "#173860",
			Secondary:  "#F8BF4F",
			Accent:     "#F8BF4F",
			Background: "#FFFFFF",
			Foreground: "#173860",
			Muted:      "#F4F4F5",
			Border:     "#E4E4E7",
		},
		Fonts: FontTokens{
			Heading: "Montserrat",
			Body:    "Inter",
			Display: "Playfair Display",
		},
		Typography: TypographyTokens{
			HeadingFont: "Montserrat",
			BodyFont:    "Inter",
			BaseSize:    16,
			LineHeight:  1.6,
		},
		FontSizes: map[string]string{
			"xs":   "0.75rem",
			"sm":   "0.875rem",
			"base": "1rem",
			"lg":   "1.125rem",
			"xl":   "1.25rem",
			"2xl":  "1.5rem",
			"3xl":  "1.875rem",
			"4xl":  "2.25rem",
			"5xl":  "3rem",
			"6xl":  "3.75rem",
		},
		Spacing: SpacingTokens{
			Section:        "80px",
			Component:      "24px",
			Element:        "16px",
			Unit:           "4px",
			ContainerWidth: "1280px",
		},
		BorderRadius: map[string]string{
			"none":    "0",
			"sm":      "0.25rem",
			"default": "0.5rem",
			"md":      "0.75rem",
			"lg":      "1rem",
			"xl":      "1.5rem",
			"full":    "9999px",
		},
		Shadows: map[string]string{
			"sm":      "0 1px 2px 0 rgb(0 0 0 / 0.05)",
			"default": "0 4px 6px -1px rgb(0 0 0 / 0.1)",
			"md":      "0 10px 15px -3px rgb(0 0 0 / 0.1)",
			"lg":      "0 20px 25px -5px rgb(0 0 0 / 0.1)",
			"xl":      "0 25px 50px -12px rgb(0 0 0 / 0.25)",
		},
	}
}

// Normalize back-fills any empty category or missing scale entry from the
// defaults, so a loaded token set is always complete.
func (t DesignTokens) Normalize() DesignTokens {
	def := DefaultTokens()
	out := t.Clone()

	if out.Colors == (ColorTokens{}) {
		out.Colors = def.Colors
	}
	if out.Fonts == (FontTokens{}) {
		out.Fonts = def.Fonts
	}
	if out.Typography == (TypographyTokens{}) {
		out.Typography = def.Typography
	}
	if out.Typography.BaseSize == 0 {
		out.Typography.BaseSize = def.Typography.BaseSize
	}
	if out.Typography.LineHeight == 0 {
		out.Typography.LineHeight = def.Typography.LineHeight
	}
	if out.Spacing == (SpacingTokens{}) {
		out.Spacing = def.Spacing
	}
	out.FontSizes = fillStringMap(out.FontSizes, def.FontSizes)
	out.BorderRadius = fillStringMap(out.BorderRadius, def.BorderRadius)
	out.Shadows = fillStringMap(out.Shadows, def.Shadows)
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func fillStringMap(in, def map[string]string) map[string]string {
	if in == nil {
		return cloneStringMap(def)
	}
	for k, v := range def {
		if _, ok := in[k]; !ok {
			in[k] = v
		}
	}
	return in
}
