package cli

import (
	"context"
	"fmt"
	"path/filepath"

	slogctx "github.com/veqryn/slog-context"
	"refdocs/config"
	"refdocs/internal/adapter/fs"
	"refdocs/internal/adapter/gosource"
	"refdocs/internal/adapter/memstore"
	"refdocs/internal/domain"
	"refdocs/internal/port"
	"refdocs/internal/usecase"
)

// loadSymbols builds the symbol service for dir: the configured manifest if
// any, otherwise the Go sources matched by the include patterns.
func loadSymbols(ctx context.Context, dir string, cfg *config.Config) (port.SymbolService, domain.Symbol, error) {
	if cfg.Source.Manifest != "" {
		path := cfg.Source.Manifest
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		svc, err := memstore.LoadManifestFile(path)
		if err != nil {
			return nil, nil, err
		}
		slogctx.Debug(ctx, "loaded manifest", "path", path)
		return svc, svc.Root(), nil
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, err
	}
	files, err := fs.NewWalker(cfg.Source.Includes, cfg.Source.Excludes).Walk(ctx, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}

	svc, err := gosource.Load(ctx, dir, paths)
	if err != nil {
		return nil, nil, err
	}
	slogctx.Debug(ctx, "loaded go sources", "files", len(paths))
	return svc, svc.Root(), nil
}

// buildCatalog loads the symbols of dir and parses their comments.
func buildCatalog(ctx context.Context, dir string, cfg *config.Config) (*usecase.Catalog, error) {
	svc, root, err := loadSymbols(ctx, dir, cfg)
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Parse.Policy()
	if err != nil {
		return nil, err
	}
	return usecase.BuildCatalog(ctx, svc, root, usecase.Options{
		Policy:         policy,
		TrimWhitespace: cfg.Parse.TrimWhitespace,
		Locale:         cfg.Resolve.Locale,
		Workers:        cfg.Resolve.Workers,
	})
}
