package usecase

import (
	"context"

	"refdocs/internal/domain"
	"refdocs/internal/port"
)

// EnumerateSymbols walks the symbols reachable from root depth first,
// calling fn once per handle in the order the service lists children.
// id is the symbol's stable identifier, "<owner id>$<name>" for parameters
// and type parameters, or "" when the symbol has none.
func EnumerateSymbols(ctx context.Context, svc port.SymbolService, root domain.Symbol, fn func(sym domain.Symbol, id string) error) error {
	visited := make(map[domain.Symbol]bool)

	var visit func(sym domain.Symbol, ownerID string) error
	visit = func(sym domain.Symbol, ownerID string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if visited[sym] {
			return nil
		}
		visited[sym] = true

		var id string
		if sym.Kind().IsSubSymbol() {
			if ownerID != "" {
				id = ownerID + "$" + sym.Name()
			}
		} else if sid, ok := svc.StableID(sym); ok {
			id = sid
		}

		if err := fn(sym, id); err != nil {
			return err
		}
		for _, child := range svc.Children(sym) {
			if err := visit(child, id); err != nil {
				return err
			}
		}
		return nil
	}

	return visit(root, "")
}
