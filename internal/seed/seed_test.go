package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/getcoveredlife/studio/internal/storage"
	"github.com/getcoveredlife/studio/model"
)

const homeSeed = `slug: home
title: Get Covered Life
description: Term life insurance without the runaround.
sections:
  - type: hero
    data:
      headline: Life insurance made simple
      subheadline: Compare quotes from top carriers in minutes.
      primary_cta:
        label: Get my quote
        href: /quote
  - type: features
    data:
      title: Why families choose us
  - type: cta
    hidden: true
    data:
      headline: Ready when you are
`

const tokensSeed = `colors:
  primary: "#0A2540"
fonts:
  heading: Montserrat
`

func writeSeed(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write seed %s: %v", name, err)
	}
	return path
}

func newTestSeeder(t *testing.T) (*Seeder, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewSeeder(store, nil, zap.NewNop()), store
}

func TestLoadPage_buildsOrderedVisibleSections(t *testing.T) {
	dir := t.TempDir()
	path := writeSeed(t, dir, "home.yaml", homeSeed)

	page, err := NewLoader().LoadPage(path)
	if err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	if page.Slug != "home" || page.Title != "Get Covered Life" {
		t.Fatalf("unexpected page identity: %q / %q", page.Slug, page.Title)
	}
	if page.Status != model.PageStatusPublished || page.PublishedAt == nil {
		t.Fatal("seed pages default to published")
	}
	if len(page.Sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(page.Sections))
	}
	for i, sec := range page.Sections {
		if sec.Order != i {
			t.Fatalf("section %d has order %d", i, sec.Order)
		}
		if sec.ID == "" {
			t.Fatalf("section %d has no id", i)
		}
	}
	if !page.Sections[0].IsVisible || page.Sections[2].IsVisible {
		t.Fatal("visibility should follow the hidden flag")
	}
	if page.Sections[0].ID != "home-hero-1" {
		t.Fatalf("expected deterministic id, got %q", page.Sections[0].ID)
	}
}

func TestLoadPage_rejectsInvalidSections(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		body string
	}{
		{"missing slug", "title: Nope\n"},
		{"missing title", "slug: nope\n"},
		{"unknown section type", "slug: a\ntitle: A\nsections:\n  - type: banner\n"},
		{"unknown payload key", "slug: a\ntitle: A\nsections:\n  - type: hero\n    data:\n      headline: Hi\n      bogus: x\n"},
		{"missing required field", "slug: a\ntitle: A\nsections:\n  - type: video\n    data:\n      caption: clip\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSeed(t, dir, "bad.yaml", tc.body)
			if _, err := NewLoader().LoadPage(path); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadDir_separatesTokensFromPages(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "home.yaml", homeSeed)
	writeSeed(t, dir, "tokens.yaml", tokensSeed)
	writeSeed(t, dir, "notes.txt", "not a seed")

	pages, tokens, err := NewLoader().LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	if tokens == nil {
		t.Fatal("expected tokens seed")
	}
	if tokens.Colors.Primary != "#0A2540" {
		t.Fatalf("primary = %q", tokens.Colors.Primary)
	}
	// Categories the seed omits fall back to defaults.
	if tokens.Colors.Secondary == "" || tokens.Fonts.Body == "" {
		t.Fatal("expected defaults to back-fill omitted token fields")
	}
}

func TestLoadDir_missingDirectoryIsEmpty(t *testing.T) {
	pages, tokens, err := NewLoader().LoadDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if pages != nil || tokens != nil {
		t.Fatal("expected no seeds from a missing directory")
	}
}

func TestApply_insertsOnlyMissingPages(t *testing.T) {
	ctx := context.Background()
	seeder, store := newTestSeeder(t)
	dir := t.TempDir()
	writeSeed(t, dir, "home.yaml", homeSeed)

	edited := model.Page{ID: "p1", Slug: "about", Title: "Edited in the studio"}
	if err := store.UpsertPage(ctx, edited); err != nil {
		t.Fatalf("UpsertPage: %v", err)
	}
	writeSeed(t, dir, "about.yaml", "slug: about\ntitle: Seed About\n")

	inserted, err := seeder.Apply(ctx, dir)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("inserted = %d, want 1", inserted)
	}

	about, err := store.GetPage(ctx, "about")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if about.Title != "Edited in the studio" {
		t.Fatal("Apply must not overwrite persisted pages")
	}
	if _, err := store.GetPage(ctx, "home"); err != nil {
		t.Fatalf("expected home to be seeded: %v", err)
	}
}

func TestApply_seedsTokensOnlyWhenUnset(t *testing.T) {
	ctx := context.Background()
	seeder, store := newTestSeeder(t)
	dir := t.TempDir()
	writeSeed(t, dir, "tokens.yaml", tokensSeed)

	if _, err := seeder.Apply(ctx, dir); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	tokens, err := store.GetTokens(ctx)
	if err != nil {
		t.Fatalf("GetTokens: %v", err)
	}
	if tokens.Colors.Primary != "#0A2540" {
		t.Fatalf("primary = %q", tokens.Colors.Primary)
	}

	saved := model.DefaultTokens()
	saved.Colors.Primary = "#111111"
	if err := store.SaveTokens(ctx, saved); err != nil {
		t.Fatalf("SaveTokens: %v", err)
	}
	if _, err := seeder.Apply(ctx, dir); err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	tokens, _ = store.GetTokens(ctx)
	if tokens.Colors.Primary != "#111111" {
		t.Fatal("Apply must not overwrite saved tokens")
	}
}

func TestReloadFile_overwritesAndKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	seeder, store := newTestSeeder(t)
	dir := t.TempDir()
	path := writeSeed(t, dir, "home.yaml", homeSeed)

	if _, err := seeder.Apply(ctx, dir); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	before, _ := store.GetPage(ctx, "home")

	writeSeed(t, dir, "home.yaml", "slug: home\ntitle: Home v2\n")
	if err := seeder.ReloadFile(ctx, path); err != nil {
		t.Fatalf("ReloadFile: %v", err)
	}

	after, err := store.GetPage(ctx, "home")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if after.Title != "Home v2" {
		t.Fatalf("title = %q, want Home v2", after.Title)
	}
	if after.ID != before.ID || !after.CreatedAt.Equal(before.CreatedAt) {
		t.Fatal("reload should keep page identity and creation time")
	}
}

func TestReloadFile_tokens(t *testing.T) {
	ctx := context.Background()
	seeder, store := newTestSeeder(t)
	dir := t.TempDir()
	path := writeSeed(t, dir, "tokens.yaml", tokensSeed)

	if err := seeder.ReloadFile(ctx, path); err != nil {
		t.Fatalf("ReloadFile: %v", err)
	}
	tokens, err := store.GetTokens(ctx)
	if err != nil {
		t.Fatalf("GetTokens: %v", err)
	}
	if tokens.Colors.Primary != "#0A2540" {
		t.Fatalf("primary = %q", tokens.Colors.Primary)
	}
}
