package analyzer

import (
	"fmt"
	"sort"

	"refdocs/internal/adapter/cache"
	"refdocs/internal/adapter/graph"
	"refdocs/internal/domain"
	"refdocs/internal/port"
)

// ReferenceResolver finds the identifiers an inherit directive points at.
// It is safe for concurrent use.
type ReferenceResolver struct {
	svc   port.SymbolService
	crefs port.CrefResolver
	// members maps a containing type to the inheritance targets of each of
	// its members.
	members *cache.OnceMap[domain.Symbol, map[domain.Symbol][]string]
}

func NewReferenceResolver(svc port.SymbolService) *ReferenceResolver {
	r := &ReferenceResolver{
		svc:     svc,
		members: cache.NewOnceMap[domain.Symbol, map[domain.Symbol][]string](),
	}
	if cr, ok := svc.(port.CrefResolver); ok {
		r.crefs = cr
	}
	return r
}

// Resolution is the outcome of resolving the directives of one symbol.
type Resolution struct {
	References  []graph.Reference
	Diagnostics []domain.Diagnostic
}

// Resolve turns the directives of sym into graph references, keeping the
// first occurrence of each. sym may be nil for comments without an owning
// symbol, in which case only explicit crefs resolve.
func (r *ReferenceResolver) Resolve(sym domain.Symbol, directives []Directive) Resolution {
	var res Resolution
	seen := make(map[graph.Reference]bool)

	var ambiguous bool
	for _, d := range directives {
		targets, ok := r.Targets(sym, d.Cref)
		if !ok && !ambiguous {
			ambiguous = true
			res.Diagnostics = append(res.Diagnostics, r.ambiguity(sym))
		}
		for _, t := range targets {
			ref := graph.Reference{Target: t, Scope: d.Scope}
			if seen[ref] {
				continue
			}
			seen[ref] = true
			res.References = append(res.References, ref)
		}
	}
	return res
}

// Targets returns the identifiers inherited by a directive on sym. An
// explicit cref always wins. Otherwise a type inherits from its only
// supertype and a member from the member it overrides followed by the
// interface members it implements. The boolean is false when a type has
// several supertypes and no cref was given.
func (r *ReferenceResolver) Targets(sym domain.Symbol, cref string) ([]string, bool) {
	if cref != "" {
		if r.crefs != nil && sym != nil {
			if id, ok := r.crefs.ResolveCref(sym, cref); ok {
				return []string{id}, true
			}
		}
		return []string{cref}, true
	}
	if sym == nil {
		return nil, true
	}

	switch {
	case sym.Kind().IsType():
		return r.typeTargets(sym)
	case sym.Kind().IsMember():
		return r.memberTargets(sym), true
	}
	return nil, true
}

func (r *ReferenceResolver) typeTargets(sym domain.Symbol) ([]string, bool) {
	rel := r.svc.Relations(sym)

	var super domain.Symbol
	switch {
	case rel.BaseType != nil && len(rel.Interfaces) == 0:
		super = rel.BaseType
	case (rel.BaseType == nil || rel.BaseIsRoot) && len(rel.Interfaces) == 1:
		super = rel.Interfaces[0]
	case rel.BaseType == nil && len(rel.Interfaces) == 0:
		return nil, true
	default:
		return nil, false
	}

	id, ok := r.svc.StableID(super)
	if !ok {
		return nil, true
	}
	return []string{id}, true
}

func (r *ReferenceResolver) memberTargets(sym domain.Symbol) []string {
	typ := r.svc.Relations(sym).ContainingType
	if typ == nil {
		if id, ok := r.overridden(sym); ok {
			return []string{id}
		}
		return nil
	}

	table, _ := r.members.GetOrCompute(typ, func() (map[domain.Symbol][]string, error) {
		return r.memberTable(typ), nil
	})
	return table[sym]
}

func (r *ReferenceResolver) overridden(member domain.Symbol) (string, bool) {
	o := r.svc.Relations(member).Overridden
	if o == nil {
		return "", false
	}
	return r.svc.StableID(o)
}

// memberTable computes the targets of every member declared on typ:
// the overridden member first, then implemented interface members sorted
// by identifier.
func (r *ReferenceResolver) memberTable(typ domain.Symbol) map[domain.Symbol][]string {
	table := make(map[domain.Symbol][]string)

	for _, m := range r.svc.Children(typ) {
		if !m.Kind().IsMember() {
			continue
		}
		if id, ok := r.overridden(m); ok {
			table[m] = []string{id}
		}
	}

	implemented := make(map[domain.Symbol][]string)
	for _, impl := range r.svc.InterfaceImplementations(typ) {
		id, ok := r.svc.StableID(impl.InterfaceMember)
		if !ok {
			continue
		}
		implemented[impl.Member] = append(implemented[impl.Member], id)
	}
	for m, ids := range implemented {
		sort.Strings(ids)
		targets := table[m]
		for _, id := range ids {
			if !contains(targets, id) {
				targets = append(targets, id)
			}
		}
		table[m] = targets
	}

	return table
}

func (r *ReferenceResolver) ambiguity(sym domain.Symbol) domain.Diagnostic {
	rel := r.svc.Relations(sym)
	n := len(rel.Interfaces)
	if rel.BaseType != nil && !rel.BaseIsRoot {
		n++
	}
	return domain.Diagnostic{
		Kind:     domain.DiagAmbiguousInheritance,
		Severity: domain.SeverityWarning,
		Message:  fmt.Sprintf("Cannot infer inherited documentation for '%s' from %d supertypes; add a cref.", sym.Name(), n),
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
