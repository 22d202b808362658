package port

import "refdocs/internal/domain"

// SymbolService answers symbol and relation queries for one compilation.
type SymbolService interface {
	StableID(sym domain.Symbol) (string, bool)

	RawComment(sym domain.Symbol, locale string) (string, bool)

	Relations(sym domain.Symbol) domain.Relations

	// InterfaceImplementations lists the interface members implemented by
	// members declared on typ itself.
	InterfaceImplementations(typ domain.Symbol) []domain.Implementation

	// Children returns the symbols directly contained in sym, in
	// enumeration order.
	Children(sym domain.Symbol) []domain.Symbol
}

// CrefResolver is implemented by symbol services that can expand a short
// cref written in a comment into a stable identifier.
type CrefResolver interface {
	ResolveCref(from domain.Symbol, cref string) (string, bool)
}
