package memstore

import (
	"sync"

	"refdocs/internal/domain"
)

// Symbol is a symbol handle owned by a SymbolService.
type Symbol struct {
	id       string
	kind     domain.SymbolKind
	name     string
	parent   *Symbol
	children []*Symbol
	comments map[string]string

	base       *Symbol
	baseIsRoot bool
	interfaces []*Symbol
	overrides  *Symbol
	implements []*Symbol
}

func (s *Symbol) Kind() domain.SymbolKind { return s.kind }
func (s *Symbol) Name() string            { return s.name }
func (s *Symbol) ID() string              { return s.id }

// SymbolService is an in-memory symbol model assembled through its Add and
// Set methods or loaded from a manifest.
type SymbolService struct {
	mu   sync.RWMutex
	root *Symbol
	byID map[string]*Symbol
}

func NewSymbolService() *SymbolService {
	return &SymbolService{
		root: &Symbol{kind: domain.KindNamespace},
		byID: make(map[string]*Symbol),
	}
}

// Root returns the global namespace.
func (s *SymbolService) Root() *Symbol {
	return s.root
}

func (s *SymbolService) Lookup(id string) (*Symbol, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sym, ok := s.byID[id]
	return sym, ok
}

func (s *SymbolService) add(parent *Symbol, kind domain.SymbolKind, id, name string) *Symbol {
	s.mu.Lock()
	defer s.mu.Unlock()

	sym := &Symbol{id: id, kind: kind, name: name, parent: parent}
	parent.children = append(parent.children, sym)
	if id != "" {
		if _, exists := s.byID[id]; !exists {
			s.byID[id] = sym
		}
	}
	return sym
}

// AddNamespace adds a namespace under parent, identified as N:<qualified name>.
func (s *SymbolService) AddNamespace(parent *Symbol, name string) *Symbol {
	qualified := name
	if parent != s.root && parent.name != "" {
		qualified = parent.id[len("N:"):] + "." + name
	}
	return s.add(parent, domain.KindNamespace, "N:"+qualified, name)
}

// AddType adds a type to a namespace or, for nested types, to a type.
func (s *SymbolService) AddType(parent *Symbol, id, name string) *Symbol {
	return s.add(parent, domain.KindType, id, name)
}

func (s *SymbolService) AddMember(typ *Symbol, kind domain.SymbolKind, id, name string) *Symbol {
	return s.add(typ, kind, id, name)
}

func (s *SymbolService) AddParameter(owner *Symbol, name string) *Symbol {
	return s.add(owner, domain.KindParameter, "", name)
}

func (s *SymbolService) AddTypeParameter(owner *Symbol, name string) *Symbol {
	return s.add(owner, domain.KindTypeParameter, "", name)
}

// SetComment sets the raw comment of sym for a locale. The empty locale is
// the fallback for every other locale.
func (s *SymbolService) SetComment(sym *Symbol, locale, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sym.comments == nil {
		sym.comments = make(map[string]string)
	}
	sym.comments[locale] = text
}

// SetBase records the base type of typ. isRoot marks base as the root of
// the hierarchy.
func (s *SymbolService) SetBase(typ, base *Symbol, isRoot bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	typ.base = base
	typ.baseIsRoot = isRoot
}

func (s *SymbolService) AddInterface(typ, iface *Symbol) {
	s.mu.Lock()
	defer s.mu.Unlock()
	typ.interfaces = append(typ.interfaces, iface)
}

func (s *SymbolService) SetOverride(member, overridden *Symbol) {
	s.mu.Lock()
	defer s.mu.Unlock()
	member.overrides = overridden
}

// AddImplementation records that member implements ifaceMember.
func (s *SymbolService) AddImplementation(member, ifaceMember *Symbol) {
	s.mu.Lock()
	defer s.mu.Unlock()
	member.implements = append(member.implements, ifaceMember)
}

func own(sym domain.Symbol) (*Symbol, bool) {
	s, ok := sym.(*Symbol)
	return s, ok && s != nil
}

func (s *SymbolService) StableID(sym domain.Symbol) (string, bool) {
	m, ok := own(sym)
	if !ok || m.id == "" {
		return "", false
	}
	return m.id, true
}

func (s *SymbolService) RawComment(sym domain.Symbol, locale string) (string, bool) {
	m, ok := own(sym)
	if !ok {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if text, ok := m.comments[locale]; ok {
		return text, true
	}
	text, ok := m.comments[""]
	return text, ok
}

func (s *SymbolService) Relations(sym domain.Symbol) domain.Relations {
	m, ok := own(sym)
	if !ok {
		return domain.Relations{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rel domain.Relations
	if m.parent != nil && m.parent.kind.IsType() {
		rel.ContainingType = m.parent
	}
	if m.base != nil {
		rel.BaseType = m.base
		rel.BaseIsRoot = m.baseIsRoot
	}
	for _, iface := range m.interfaces {
		rel.Interfaces = append(rel.Interfaces, iface)
	}
	if m.overrides != nil {
		rel.Overridden = m.overrides
	}
	return rel
}

func (s *SymbolService) InterfaceImplementations(typ domain.Symbol) []domain.Implementation {
	m, ok := own(typ)
	if !ok {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Implementation
	for _, c := range m.children {
		for _, im := range c.implements {
			out = append(out, domain.Implementation{Member: c, InterfaceMember: im})
		}
	}
	return out
}

// Children lists types before nested namespaces, and members before nested
// types.
func (s *SymbolService) Children(sym domain.Symbol) []domain.Symbol {
	m, ok := own(sym)
	if !ok {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first, rest []domain.Symbol
	for _, c := range m.children {
		switch {
		case m.kind == domain.KindNamespace && c.kind == domain.KindNamespace:
			rest = append(rest, c)
		case m.kind.IsType() && c.kind.IsType():
			rest = append(rest, c)
		default:
			first = append(first, c)
		}
	}
	return append(first, rest...)
}

var crefPrefixes = []string{"T:", "M:", "P:", "F:", "E:", "N:"}

// ResolveCref accepts a full identifier or one missing its kind prefix.
func (s *SymbolService) ResolveCref(_ domain.Symbol, cref string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[cref]; ok {
		return cref, true
	}
	for _, p := range crefPrefixes {
		if _, ok := s.byID[p+cref]; ok {
			return p + cref, true
		}
	}
	return "", false
}
