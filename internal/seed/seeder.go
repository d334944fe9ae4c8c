package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/getcoveredlife/studio/internal/observability"
	"github.com/getcoveredlife/studio/internal/storage"
	"github.com/getcoveredlife/studio/model"
)

// Seeder applies loaded seed content to storage.
type Seeder struct {
	loader  *Loader
	store   storage.Store
	metrics *observability.Metrics
	log     *zap.Logger
}

// NewSeeder creates a Seeder. Metrics may be nil in tests.
func NewSeeder(store storage.Store, metrics *observability.Metrics, log *zap.Logger) *Seeder {
	return &Seeder{
		loader:  NewLoader(),
		store:   store,
		metrics: metrics,
		log:     log,
	}
}

// Apply loads the seed directory and inserts pages whose slug is not yet in
// storage. Pages already persisted are left alone so editor saves survive
// restarts. Tokens seed the same way, only when none are saved yet. It
// returns the number of pages inserted.
func (s *Seeder) Apply(ctx context.Context, dir string) (int, error) {
	pages, tokens, err := s.loader.LoadDir(dir)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, page := range pages {
		_, err := s.store.GetPage(ctx, page.Slug)
		if err == nil {
			s.log.Debug("seed page already persisted, skipping",
				zap.String("slug", page.Slug))
			continue
		}
		if !isNotFound(err) {
			return inserted, fmt.Errorf("checking seed page %s: %w", page.Slug, err)
		}
		if err := s.store.UpsertPage(ctx, page); err != nil {
			return inserted, fmt.Errorf("inserting seed page %s: %w", page.Slug, err)
		}
		s.log.Info("seeded page",
			zap.String("slug", page.Slug),
			zap.Int("sections", len(page.Sections)))
		inserted++
	}

	if tokens != nil {
		if _, err := s.store.GetTokens(ctx); isNotFound(err) {
			if err := s.store.SaveTokens(ctx, *tokens); err != nil {
				return inserted, fmt.Errorf("inserting seed tokens: %w", err)
			}
			s.log.Info("seeded design tokens")
		}
	}

	if s.metrics != nil {
		summaries, err := s.store.ListPages(ctx)
		if err == nil {
			s.metrics.SetPagesLoaded(float64(len(summaries)))
		}
	}
	return inserted, nil
}

// ReloadFile re-reads one changed seed file and upserts its content,
// replacing whatever is persisted. Hot reload is a development aid, so
// unlike Apply it overwrites editor saves for that slug.
func (s *Seeder) ReloadFile(ctx context.Context, path string) error {
	err := s.reloadFile(ctx, path)
	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.RecordSeedReload(status)
	}
	return err
}

func (s *Seeder) reloadFile(ctx context.Context, path string) error {
	if isTokensFile(path) {
		tokens, err := s.loader.LoadTokens(path)
		if err != nil {
			return err
		}
		if err := s.store.SaveTokens(ctx, tokens); err != nil {
			return fmt.Errorf("reloading seed tokens: %w", err)
		}
		s.log.Info("reloaded design tokens", zap.String("file", path))
		return nil
	}

	page, err := s.loader.LoadPage(path)
	if err != nil {
		return err
	}
	if existing, err := s.store.GetPage(ctx, page.Slug); err == nil {
		// Keep identity and creation time stable across reloads.
		page.ID = existing.ID
		page.CreatedAt = existing.CreatedAt
	}
	if err := s.store.UpsertPage(ctx, page); err != nil {
		return fmt.Errorf("reloading seed page %s: %w", page.Slug, err)
	}
	s.log.Info("reloaded page from seed",
		zap.String("slug", page.Slug),
		zap.String("file", path))
	return nil
}

func isNotFound(err error) bool {
	var env *model.ErrorEnvelope
	return errors.As(err, &env) && env.Code == model.ErrNotFound
}
