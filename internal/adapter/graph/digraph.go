package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"refdocs/internal/domain"
)

// Reference is an inheritance edge. A zero Scope inherits every element of
// the target; otherwise only the element with that key.
type Reference struct {
	Target string
	Scope  domain.ElementKey
}

func (r Reference) less(o Reference) bool {
	if r.Target != o.Target {
		return r.Target < o.Target
	}
	return r.Scope.Less(o.Scope)
}

type Node struct {
	ID         string
	Elements   []domain.Element
	References []Reference
}

// Edge is a reference from one node to another by identifier.
type Edge struct {
	From string
	To   string
}

type Builder struct {
	nodes map[string]*Node
}

func NewBuilder() *Builder {
	return &Builder{nodes: make(map[string]*Node)}
}

// Add inserts a node and reports whether it was new. Elements sharing a key
// with an earlier element are dropped, and so are duplicate references.
// Adding an id that is already present changes nothing.
func (b *Builder) Add(id string, elements []domain.Element, refs []Reference) bool {
	if _, ok := b.nodes[id]; ok {
		return false
	}

	n := &Node{ID: id}
	seen := make(map[domain.ElementKey]bool, len(elements))
	for _, el := range elements {
		key := el.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		n.Elements = append(n.Elements, el)
	}

	seenRefs := make(map[Reference]bool, len(refs))
	for _, r := range refs {
		if r.Target == "" || seenRefs[r] {
			continue
		}
		seenRefs[r] = true
		n.References = append(n.References, r)
	}

	b.nodes[id] = n
	return true
}

// Build freezes the builder's nodes into a graph. The builder must not be
// used afterwards.
func (b *Builder) Build() *Graph {
	ids := make([]string, 0, len(b.nodes))
	for id := range b.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	g := &Graph{nodes: b.nodes, ids: ids}
	b.nodes = nil
	return g
}

// Graph is an immutable inheritance digraph keyed by identifier.
type Graph struct {
	nodes map[string]*Node
	ids   []string
}

func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// IDs returns the node identifiers in sorted order.
func (g *Graph) IDs() []string {
	return g.ids
}

func (g *Graph) Len() int {
	return len(g.ids)
}

type state struct {
	id    string
	scope domain.ElementKey
}

// Closure returns the elements of id together with every element reachable
// through its references. An element is kept only if no element with the
// same key was collected before it; the node's own elements come first,
// followed by its references in breadth-first order. Unknown identifiers
// yield no elements.
func (g *Graph) Closure(ctx context.Context, id string) ([]domain.Element, error) {
	start, ok := g.nodes[id]
	if !ok {
		return nil, nil
	}
	if len(start.References) == 0 {
		return append([]domain.Element(nil), start.Elements...), nil
	}

	var out []domain.Element
	collected := make(map[domain.ElementKey]bool)

	first := state{id: id}
	visited := map[state]bool{first: true}
	queue := []state{first}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur := queue[0]
		queue = queue[1:]
		n := g.nodes[cur.id]

		for _, el := range n.Elements {
			key := el.Key()
			if !cur.scope.IsZero() && key != cur.scope {
				continue
			}
			if collected[key] {
				continue
			}
			collected[key] = true
			out = append(out, el)
		}

		for _, r := range n.References {
			next, ok := narrow(cur.scope, r.Scope)
			if !ok {
				continue
			}
			if _, exists := g.nodes[r.Target]; !exists {
				continue
			}
			s := state{id: r.Target, scope: next}
			if visited[s] {
				continue
			}
			visited[s] = true
			queue = append(queue, s)
		}
	}

	return out, nil
}

// narrow combines the scope of the current traversal with the scope of an
// edge. Two different element scopes never meet.
func narrow(cur, edge domain.ElementKey) (domain.ElementKey, bool) {
	switch {
	case cur.IsZero():
		return edge, true
	case edge.IsZero() || edge == cur:
		return cur, true
	}
	return domain.ElementKey{}, false
}

// CloseAll computes the closure of every node using up to workers
// goroutines.
func (g *Graph) CloseAll(ctx context.Context, workers int) (map[string][]domain.Element, error) {
	results := make([][]domain.Element, len(g.ids))

	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for i, id := range g.ids {
		eg.Go(func() error {
			els, err := g.Closure(ctx, id)
			if err != nil {
				return err
			}
			results[i] = els
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]domain.Element, len(g.ids))
	for i, id := range g.ids {
		out[id] = results[i]
	}
	return out, nil
}

// MissingTargets lists references whose target is not a node, sorted.
func (g *Graph) MissingTargets() []Edge {
	var out []Edge
	for _, id := range g.ids {
		for _, r := range g.nodes[id].References {
			if _, ok := g.nodes[r.Target]; !ok {
				out = append(out, Edge{From: id, To: r.Target})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Reachable returns id and every node reachable from it through any
// reference, sorted. Unknown identifiers yield nil.
func (g *Graph) Reachable(id string) []string {
	if _, ok := g.nodes[id]; !ok {
		return nil
	}
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		n := g.nodes[queue[0]]
		queue = queue[1:]
		for _, r := range n.References {
			if _, ok := g.nodes[r.Target]; !ok || seen[r.Target] {
				continue
			}
			seen[r.Target] = true
			queue = append(queue, r.Target)
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// String renders the whole graph. See Dump.
func (g *Graph) String() string {
	return g.Dump(g.ids)
}

// Dump renders the given nodes as an indented tree, one block per node.
// Elements are drawn with ├─ and references with ├>. Unknown identifiers
// are skipped.
func (g *Graph) Dump(ids []string) string {
	var sb strings.Builder
	for _, id := range ids {
		n, ok := g.nodes[id]
		if !ok {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(id)
		sb.WriteByte('\n')

		refs := append([]Reference(nil), n.References...)
		sort.Slice(refs, func(i, j int) bool { return refs[i].less(refs[j]) })

		total := len(n.Elements) + len(refs)
		line := 0
		branch := func(mark string) string {
			line++
			if line == total {
				return "└" + mark + " "
			}
			return "├" + mark + " "
		}
		for _, el := range n.Elements {
			sb.WriteString(branch("─"))
			sb.WriteString(el.Key().String())
			sb.WriteByte('\n')
		}
		for _, r := range refs {
			sb.WriteString(branch(">"))
			sb.WriteString(r.Target)
			if !r.Scope.IsZero() {
				fmt.Fprintf(&sb, " [%s]", r.Scope)
			}
			if _, ok := g.nodes[r.Target]; !ok {
				sb.WriteString(" (missing)")
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
