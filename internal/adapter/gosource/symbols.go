package gosource

import (
	"go/ast"
	"sort"

	"refdocs/internal/domain"
)

// Symbol is a declaration found in Go source.
type Symbol struct {
	id       string
	kind     domain.SymbolKind
	name     string
	pkg      string
	parent   *Symbol
	children []*Symbol
	doc      string

	// Set on types only.
	isStruct    bool
	isInterface bool
	embedded    []string
	methods     map[string]*Symbol
}

func (s *Symbol) Kind() domain.SymbolKind { return s.kind }
func (s *Symbol) Name() string            { return s.name }
func (s *Symbol) ID() string              { return s.id }

type pkgInfo struct {
	path  string
	sym   *Symbol
	types map[string]*Symbol
	funcs []*Symbol
}

func newType(pkg *pkgInfo, name, doc string) *Symbol {
	return &Symbol{
		id:      "T:" + pkg.path + "." + name,
		kind:    domain.KindType,
		name:    name,
		pkg:     pkg.path,
		parent:  pkg.sym,
		doc:     doc,
		methods: make(map[string]*Symbol),
	}
}

func newMember(owner *Symbol, kind domain.SymbolKind, prefix, name, doc string) *Symbol {
	qualified := owner.pkg + "." + name
	if owner.kind.IsType() {
		qualified = owner.pkg + "." + owner.name + "." + name
	}
	return &Symbol{
		id:     prefix + qualified,
		kind:   kind,
		name:   name,
		pkg:    owner.pkg,
		parent: owner,
		doc:    doc,
	}
}

func addSubSymbol(owner *Symbol, kind domain.SymbolKind, name string) {
	owner.children = append(owner.children, &Symbol{
		kind:   kind,
		name:   name,
		pkg:    owner.pkg,
		parent: owner,
	})
}

func addFieldList(owner *Symbol, kind domain.SymbolKind, list *ast.FieldList) {
	if list == nil {
		return
	}
	for _, field := range list.List {
		for _, n := range field.Names {
			if n.Name == "_" {
				continue
			}
			addSubSymbol(owner, kind, n.Name)
		}
	}
}

// baseName returns the local type name of a type expression, or "" when
// the type is declared in another package or is not a named type.
func baseName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return baseName(t.X)
	case *ast.IndexExpr:
		return baseName(t.X)
	case *ast.IndexListExpr:
		return baseName(t.X)
	}
	return ""
}

func docText(groups ...*ast.CommentGroup) string {
	for _, g := range groups {
		if g != nil {
			return g.Text()
		}
	}
	return ""
}

func sortSymbols(syms []*Symbol) {
	sort.Slice(syms, func(i, j int) bool { return syms[i].name < syms[j].name })
}
