package domain

import "fmt"

type SymbolKind int

const (
	KindNamespace SymbolKind = iota
	KindType
	KindMethod
	KindProperty
	KindField
	KindEvent
	KindParameter
	KindTypeParameter
)

var symbolKindNames = [...]string{
	KindNamespace:     "namespace",
	KindType:          "type",
	KindMethod:        "method",
	KindProperty:      "property",
	KindField:         "field",
	KindEvent:         "event",
	KindParameter:     "parameter",
	KindTypeParameter: "typeparameter",
}

func (k SymbolKind) String() string {
	if k < 0 || int(k) >= len(symbolKindNames) {
		return fmt.Sprintf("SymbolKind(%d)", int(k))
	}
	return symbolKindNames[k]
}

// ParseSymbolKind maps a kind name as produced by String back to its value.
func ParseSymbolKind(s string) (SymbolKind, error) {
	for k, name := range symbolKindNames {
		if name == s {
			return SymbolKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown symbol kind: %q", s)
}

func (k SymbolKind) IsType() bool {
	return k == KindType
}

func (k SymbolKind) IsMember() bool {
	switch k {
	case KindMethod, KindProperty, KindField, KindEvent:
		return true
	}
	return false
}

// IsSubSymbol reports whether symbols of this kind are addressed through
// their owner's identifier rather than a stable identifier of their own.
func (k SymbolKind) IsSubSymbol() bool {
	return k == KindParameter || k == KindTypeParameter
}

// Symbol is a handle to a program entity owned by a symbol service.
// Handles must be comparable; two handles are the same symbol iff they are ==.
type Symbol interface {
	Kind() SymbolKind
	Name() string
}

type Relations struct {
	ContainingType Symbol
	BaseType       Symbol
	// BaseIsRoot marks BaseType as the implicit root of the type hierarchy.
	BaseIsRoot bool
	Interfaces []Symbol
	Overridden Symbol
}

// Implementation pairs an interface member with the member of a concrete
// type that implements it.
type Implementation struct {
	Member          Symbol
	InterfaceMember Symbol
}
