// Package seed loads YAML page definitions from disk and populates storage
// with them, so a fresh deployment serves a complete site before anyone
// opens the editor.
package seed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/getcoveredlife/studio/internal/content"
	"github.com/getcoveredlife/studio/model"
)

// tokensFile is the reserved name for the design-token seed inside the
// seeds directory. Every other YAML file is a page.
const tokensFile = "tokens"

// seedPage is the authoring shape of a page seed file. It mirrors
// model.Page but lets authors omit bookkeeping fields.
type seedPage struct {
	Slug        string           `yaml:"slug"`
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Status      model.PageStatus `yaml:"status"`
	SEO         model.SEOData    `yaml:"seo"`
	Sections    []seedSection    `yaml:"sections"`
}

// seedSection is the authoring shape of one section. Sections are visible
// unless the file says otherwise, and ordering follows file order.
type seedSection struct {
	ID     string              `yaml:"id"`
	Type   model.SectionType   `yaml:"type"`
	Data   map[string]any      `yaml:"data"`
	Styles model.SectionStyles `yaml:"styles"`
	Hidden bool                `yaml:"hidden"`
}

// Loader parses seed YAML files into model types.
type Loader struct{}

// NewLoader creates a seed Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadDir scans the directory for *.yaml and *.yml files and parses each
// into a page, except the reserved tokens file which is parsed as a design
// token set. A missing directory yields no seeds rather than an error.
func (l *Loader) LoadDir(dir string) ([]model.Page, *model.DesignTokens, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("scanning seed directory %s: %w", dir, err)
	}

	var pages []model.Page
	var tokens *model.DesignTokens
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		if strings.TrimSuffix(entry.Name(), ext) == tokensFile {
			t, err := l.LoadTokens(path)
			if err != nil {
				return nil, nil, err
			}
			tokens = &t
			continue
		}

		page, err := l.LoadPage(path)
		if err != nil {
			return nil, nil, err
		}
		pages = append(pages, page)
	}
	return pages, tokens, nil
}

// LoadPage loads and validates a single page seed file.
func (l *Loader) LoadPage(path string) (model.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Page{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var sp seedPage
	if err := yaml.Unmarshal(data, &sp); err != nil {
		return model.Page{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if sp.Slug == "" {
		return model.Page{}, fmt.Errorf("seed %s: slug is required", path)
	}
	if sp.Title == "" {
		return model.Page{}, fmt.Errorf("seed %s: title is required", path)
	}

	status := sp.Status
	if status == "" {
		status = model.PageStatusPublished
	}

	now := time.Now().UTC()
	page := model.Page{
		ID:          uuid.NewString(),
		Slug:        sp.Slug,
		Title:       sp.Title,
		Description: sp.Description,
		SEO:         sp.SEO,
		Status:      status,
		Sections:    make([]model.Section, 0, len(sp.Sections)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == model.PageStatusPublished {
		page.PublishedAt = &now
	}

	for i, ss := range sp.Sections {
		if err := content.Decode(ss.Type, ss.Data); err != nil {
			return model.Page{}, fmt.Errorf("seed %s: section %d: %w", path, i+1, err)
		}
		if fieldErrs := content.Validate(ss.Type, ss.Data); len(fieldErrs) > 0 {
			return model.Page{}, fmt.Errorf(
				"seed %s: section %d: %s", path, i+1, fieldErrs[0].Message,
			)
		}

		id := ss.ID
		if id == "" {
			// Deterministic so hot reloads keep section identity stable.
			id = fmt.Sprintf("%s-%s-%d", sp.Slug, ss.Type, i+1)
		}
		d := ss.Data
		if d == nil {
			d = map[string]any{}
		}
		page.Sections = append(page.Sections, model.Section{
			ID:        id,
			Type:      ss.Type,
			Order:     i,
			Data:      d,
			Styles:    ss.Styles,
			IsVisible: !ss.Hidden,
		})
	}
	return page, nil
}

// LoadTokens loads the design-token seed file.
func (l *Loader) LoadTokens(path string) (model.DesignTokens, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.DesignTokens{}, fmt.Errorf("reading %s: %w", path, err)
	}

	tokens := model.DefaultTokens()
	if err := yaml.Unmarshal(data, &tokens); err != nil {
		return model.DesignTokens{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return tokens.Normalize(), nil
}
