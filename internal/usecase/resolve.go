package usecase

import (
	"context"
	"fmt"

	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"
	"refdocs/internal/adapter/graph"
	"refdocs/internal/domain"
)

type lowering struct {
	elements []domain.Element
	refs     []graph.Reference
	diags    []domain.Diagnostic
}

// Graph returns the inheritance graph of the catalog, building it on first
// use. A build interrupted by ctx is retried by the next call.
func (c *Catalog) Graph(ctx context.Context) (*graph.Graph, error) {
	c.graphMu.Lock()
	defer c.graphMu.Unlock()
	if c.graph != nil {
		return c.graph, nil
	}

	lowered := make([]lowering, len(c.ids))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.opts.workers())
	for i, id := range c.ids {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			e := c.entries[id]
			low := c.lowerer.Lower(e.Syntax)
			res := c.resolver.Resolve(e.Symbol, low.Directives)
			lowered[i] = lowering{elements: low.Elements, refs: res.References, diags: res.Diagnostics}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	b := graph.NewBuilder()
	diags := make(map[string][]domain.Diagnostic)
	for i, id := range c.ids {
		b.Add(id, lowered[i].elements, lowered[i].refs)
		if len(lowered[i].diags) > 0 {
			diags[id] = lowered[i].diags
		}
	}
	g := b.Build()

	missing := g.MissingTargets()
	for _, e := range missing {
		diags[e.From] = append(diags[e.From], domain.Diagnostic{
			Kind:     domain.DiagMissingReferenceTarget,
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("Inherited documentation target '%s' has no documentation.", e.To),
		})
	}

	slogctx.Debug(ctx, "graph built", "nodes", g.Len(), "missing", len(missing))
	c.graph, c.resolution = g, diags
	return g, nil
}

// Resolve returns the effective documentation of id. Identifiers outside
// the catalog resolve to an empty record.
func (c *Catalog) Resolve(ctx context.Context, id string) (domain.Record, error) {
	return c.records.GetOrCompute(id, func() (domain.Record, error) {
		g, err := c.Graph(ctx)
		if err != nil {
			return domain.Record{}, err
		}
		els, err := g.Closure(ctx, id)
		if err != nil {
			return domain.Record{}, err
		}
		return Assemble(els), nil
	})
}

func (c *Catalog) ResolveSymbol(ctx context.Context, sym domain.Symbol) (domain.Record, error) {
	id, ok := c.svc.StableID(sym)
	if !ok {
		return domain.Record{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, sym.Name())
	}
	return c.Resolve(ctx, id)
}

// ResolveAll resolves every cataloged identifier. Records already resolved
// through Resolve are reused.
func (c *Catalog) ResolveAll(ctx context.Context) (map[string]domain.Record, error) {
	g, err := c.Graph(ctx)
	if err != nil {
		return nil, err
	}
	closures, err := g.CloseAll(ctx, c.opts.workers())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve records: %w", err)
	}

	out := make(map[string]domain.Record, len(closures))
	for id, els := range closures {
		rec, _ := c.records.LoadOrStore(id, Assemble(els))
		out[id] = rec
	}
	slogctx.Debug(ctx, "records resolved", "records", len(out), "memoized", c.records.Len())
	return out, nil
}
