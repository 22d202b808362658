package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"
	"refdocs/internal/adapter/analyzer"
	"refdocs/internal/adapter/cache"
	"refdocs/internal/adapter/graph"
	"refdocs/internal/adapter/xmldoc"
	"refdocs/internal/domain"
	"refdocs/internal/port"
)

// ErrUnknownSymbol is returned for a symbol without a stable identifier.
var ErrUnknownSymbol = errors.New("symbol has no stable identifier")

// Options controls how a catalog parses and resolves comments.
type Options struct {
	Policy         domain.Policy
	TrimWhitespace string
	Locale         string
	Workers        int
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// Entry is a parsed comment. Symbol is nil for members of an assembly-level
// doc comment that match no enumerated symbol.
type Entry struct {
	ID     string
	Symbol domain.Symbol
	Syntax xmldoc.Root
}

// Report groups the diagnostics of one identifier.
type Report struct {
	ID          string              `json:"id"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
}

// Catalog maps identifiers to parsed comments and resolves their
// inherited documentation. Entries never change after BuildCatalog returns.
type Catalog struct {
	svc     port.SymbolService
	opts    Options
	entries map[string]*Entry
	ids     []string
	parse   map[string][]domain.Diagnostic

	lowerer  *analyzer.Lowerer
	resolver *analyzer.ReferenceResolver

	graphMu    sync.Mutex
	graph      *graph.Graph
	resolution map[string][]domain.Diagnostic

	records *cache.OnceMap[string, domain.Record]
}

type parseJob struct {
	id   string
	sym  domain.Symbol
	text string
}

type parseResult struct {
	root  xmldoc.Root
	diags []domain.Diagnostic
}

// BuildCatalog enumerates the symbols under root and parses their comments
// concurrently. A comment that fails to parse leaves its symbol without an
// entry and is reported through Diagnostics.
func BuildCatalog(ctx context.Context, svc port.SymbolService, root domain.Symbol, opts Options) (*Catalog, error) {
	var jobs []parseJob
	symbols := make(map[string]domain.Symbol)
	err := EnumerateSymbols(ctx, svc, root, func(sym domain.Symbol, id string) error {
		if id == "" {
			return nil
		}
		if _, dup := symbols[id]; dup {
			return nil
		}
		symbols[id] = sym

		text, ok := svc.RawComment(sym, opts.Locale)
		if !ok || strings.TrimSpace(text) == "" {
			return nil
		}
		jobs = append(jobs, parseJob{id: id, sym: sym, text: text})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate symbols: %w", err)
	}

	results := make([]parseResult, len(jobs))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.workers())
	parseOpts := xmldoc.Options{Policy: opts.Policy}
	for i, job := range jobs {
		eg.Go(func() error {
			res, err := xmldoc.Parse(egctx, job.text, parseOpts)
			var perr *xmldoc.ParseError
			switch {
			case err == nil:
				results[i] = parseResult{root: res.Root, diags: res.Warnings}
			case errors.As(err, &perr):
				results[i] = parseResult{diags: perr.Diagnostics()}
			case errors.Is(err, xmldoc.ErrEmptyComment):
			default:
				return err
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to parse comments: %w", err)
	}

	c := &Catalog{
		svc:      svc,
		opts:     opts,
		entries:  make(map[string]*Entry, len(jobs)),
		parse:    make(map[string][]domain.Diagnostic),
		lowerer:  analyzer.NewLowerer(opts.TrimWhitespace),
		resolver: analyzer.NewReferenceResolver(svc),
		records:  cache.NewOnceMap[string, domain.Record](),
	}

	failed := 0
	for i, job := range jobs {
		r := results[i]
		if len(r.diags) > 0 {
			c.parse[job.id] = r.diags
		}
		if r.root == nil {
			failed++
			slogctx.Debug(ctx, "comment not cataloged", "id", job.id, "diagnostics", len(r.diags))
			continue
		}
		c.add(&Entry{ID: job.id, Symbol: job.sym, Syntax: r.root})
	}

	for i := range jobs {
		doc, ok := results[i].root.(*xmldoc.Doc)
		if !ok {
			continue
		}
		for _, m := range doc.Members {
			c.add(&Entry{ID: m.Name, Symbol: symbols[m.Name], Syntax: m})
		}
	}

	c.ids = make([]string, 0, len(c.entries))
	for id := range c.entries {
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)

	slogctx.Info(ctx, "catalog built", "symbols", len(symbols), "entries", len(c.ids), "failed", failed)
	return c, nil
}

// add inserts e unless its identifier is already present.
func (c *Catalog) add(e *Entry) {
	if e.ID == "" {
		return
	}
	if _, ok := c.entries[e.ID]; ok {
		return
	}
	c.entries[e.ID] = e
}

func (c *Catalog) Lookup(id string) (*Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// IDs returns every cataloged identifier in sorted order.
func (c *Catalog) IDs() []string {
	return c.ids
}

func (c *Catalog) Len() int {
	return len(c.ids)
}

// Diagnostics returns parse and resolution diagnostics grouped by
// identifier, sorted by identifier. It builds the graph if needed.
func (c *Catalog) Diagnostics(ctx context.Context) ([]Report, error) {
	if _, err := c.Graph(ctx); err != nil {
		return nil, err
	}

	merged := make(map[string][]domain.Diagnostic, len(c.parse))
	for id, d := range c.parse {
		merged[id] = append(merged[id], d...)
	}
	for id, d := range c.resolution {
		merged[id] = append(merged[id], d...)
	}

	out := make([]Report, 0, len(merged))
	for id, d := range merged {
		out = append(out, Report{ID: id, Diagnostics: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
