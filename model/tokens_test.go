package model

import "testing"

func TestDefaultTokens(t *testing.T) {
	d := DefaultTokens()
	if d.Colors.Primary != "#173860" {
		t.Errorf("primary = %q, want #173860", d.Colors.Primary)
	}
	if d.Fonts.Heading != "Montserrat" {
		t.Errorf("heading font = %q, want Montserrat", d.Fonts.Heading)
	}
	if d.FontSizes["base"] != "1rem" {
		t.Errorf("base size = %q, want 1rem", d.FontSizes["base"])
	}
	if d.Spacing.ContainerWidth != "1280px" {
		t.Errorf("container width = %q, want 1280px", d.Spacing.ContainerWidth)
	}
}

func TestTokenPatchApply_replacesCategoriesWholesale(t *testing.T) {
	base := DefaultTokens()
	colors := base.Colors
	colors.Primary = "#000000"

	patched := TokenPatch{Colors: &colors}.Apply(base)

	if patched.Colors.Primary != "#000000" {
		t.Errorf("primary = %q, want #000000", patched.Colors.Primary)
	}
	if patched.Colors.Secondary != "#F8BF4F" {
		t.Errorf("secondary = %q, want unchanged #F8BF4F", patched.Colors.Secondary)
	}
	// Untouched categories survive.
	if patched.Fonts != base.Fonts {
		t.Errorf("fonts changed by a colors-only patch")
	}
	// Apply must not alias the input's maps.
	patched.FontSizes["base"] = "2rem"
	if base.FontSizes["base"] != "1rem" {
		t.Errorf("patch result aliases base token maps")
	}
}

func TestTokenPatchEmpty(t *testing.T) {
	if !(TokenPatch{}).Empty() {
		t.Error("zero patch should be empty")
	}
	c := DefaultTokens().Colors
	if (TokenPatch{Colors: &c}).Empty() {
		t.Error("patch with colors should not be empty")
	}
}

func TestNormalize_backfillsMissing(t *testing.T) {
	partial := DesignTokens{
		Colors: ColorTokens{Primary: "#111111", Secondary: "#222222",
			Accent: "#333333", Background: "#fff", Foreground: "#000",
			Muted: "#eee", Border: "#ddd"},
	}
	full := partial.Normalize()

	if full.Colors.Primary != "#111111" {
		t.Errorf("normalize overwrote provided colors")
	}
	if full.Fonts.Body != "Inter" {
		t.Errorf("fonts not back-filled, body = %q", full.Fonts.Body)
	}
	if full.Typography.BaseSize != 16 {
		t.Errorf("typography not back-filled, base size = %d", full.Typography.BaseSize)
	}
	if full.Shadows["sm"] == "" {
		t.Errorf("shadow scale not back-filled")
	}
}
