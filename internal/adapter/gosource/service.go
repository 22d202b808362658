package gosource

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"sort"
	"strings"

	"refdocs/internal/domain"
)

// Service is a symbol service over a set of Go source files. Each directory
// is one package. Struct embedding stands in for inheritance: the first
// embedded local struct is the base type and a method shadowing a promoted
// method overrides it.
type Service struct {
	root     *Symbol
	packages map[string]*pkgInfo
	byID     map[string]*Symbol

	relations map[*Symbol]domain.Relations
	impls     map[*Symbol][]domain.Implementation
}

// Load parses files, given as paths under root, into a Service.
func Load(ctx context.Context, root string, files []string) (*Service, error) {
	s := &Service{
		root:      &Symbol{kind: domain.KindNamespace},
		packages:  make(map[string]*pkgInfo),
		byID:      make(map[string]*Symbol),
		relations: make(map[*Symbol]domain.Relations),
		impls:     make(map[*Symbol][]domain.Implementation),
	}

	byDir := make(map[string][]string)
	for _, f := range files {
		dir := filepath.Dir(f)
		byDir[dir] = append(byDir[dir], f)
	}
	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	fset := token.NewFileSet()
	for _, dir := range dirs {
		paths := byDir[dir]
		sort.Strings(paths)

		var parsed []*ast.File
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
			if err != nil {
				return nil, fmt.Errorf("failed to parse Go file: %w", err)
			}
			parsed = append(parsed, f)
		}

		rel, err := filepath.Rel(root, dir)
		if err != nil {
			return nil, err
		}
		pkgPath := filepath.ToSlash(rel)
		if pkgPath == "." {
			pkgPath = parsed[0].Name.Name
		}
		s.addPackage(pkgPath, parsed)
	}

	s.link()
	return s, nil
}

func (s *Service) addPackage(path string, files []*ast.File) {
	pkg := &pkgInfo{
		path:  path,
		types: make(map[string]*Symbol),
		sym: &Symbol{
			id:     "N:" + path,
			kind:   domain.KindNamespace,
			name:   path,
			pkg:    path,
			parent: s.root,
		},
	}
	s.packages[path] = pkg

	for _, f := range files {
		for _, decl := range f.Decls {
			if gd, ok := decl.(*ast.GenDecl); ok && gd.Tok == token.TYPE {
				s.addTypes(pkg, gd)
			}
		}
	}
	for _, f := range files {
		for _, decl := range f.Decls {
			if fd, ok := decl.(*ast.FuncDecl); ok {
				s.addFunc(pkg, fd)
			}
		}
	}

	var types []*Symbol
	for _, t := range pkg.types {
		methods := make([]*Symbol, 0, len(t.methods))
		for _, m := range t.methods {
			if m.parent == t {
				methods = append(methods, m)
			}
		}
		sortSymbols(methods)
		t.children = append(t.children, methods...)
		types = append(types, t)
	}
	sortSymbols(types)
	sortSymbols(pkg.funcs)
	pkg.sym.children = append(types, pkg.funcs...)

	s.index(pkg.sym)
}

func (s *Service) index(sym *Symbol) {
	if sym.id != "" {
		if _, exists := s.byID[sym.id]; !exists {
			s.byID[sym.id] = sym
		}
	}
	for _, c := range sym.children {
		s.index(c)
	}
}

func (s *Service) addTypes(pkg *pkgInfo, gd *ast.GenDecl) {
	for _, spec := range gd.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		var doc string
		if len(gd.Specs) == 1 {
			doc = docText(ts.Doc, gd.Doc)
		} else {
			doc = docText(ts.Doc)
		}

		t := newType(pkg, ts.Name.Name, doc)
		addFieldList(t, domain.KindTypeParameter, ts.TypeParams)

		switch st := ts.Type.(type) {
		case *ast.StructType:
			t.isStruct = true
			for _, field := range st.Fields.List {
				if len(field.Names) == 0 {
					if name := baseName(field.Type); name != "" {
						t.embedded = append(t.embedded, name)
					}
					continue
				}
				for _, n := range field.Names {
					f := newMember(t, domain.KindField, "F:", n.Name, docText(field.Doc, field.Comment))
					t.children = append(t.children, f)
				}
			}
		case *ast.InterfaceType:
			t.isInterface = true
			for _, field := range st.Methods.List {
				ft, isFunc := field.Type.(*ast.FuncType)
				if len(field.Names) == 0 || !isFunc {
					if name := baseName(field.Type); name != "" {
						t.embedded = append(t.embedded, name)
					}
					continue
				}
				for _, n := range field.Names {
					m := newMember(t, domain.KindMethod, "M:", n.Name, docText(field.Doc, field.Comment))
					addFieldList(m, domain.KindParameter, ft.Params)
					t.methods[n.Name] = m
				}
			}
		}
		pkg.types[t.name] = t
	}
}

func (s *Service) addFunc(pkg *pkgInfo, fd *ast.FuncDecl) {
	doc := docText(fd.Doc)

	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		fn := newMember(pkg.sym, domain.KindMethod, "M:", fd.Name.Name, doc)
		addFieldList(fn, domain.KindTypeParameter, fd.Type.TypeParams)
		addFieldList(fn, domain.KindParameter, fd.Type.Params)
		pkg.funcs = append(pkg.funcs, fn)
		return
	}

	t, ok := pkg.types[baseName(fd.Recv.List[0].Type)]
	if !ok {
		return
	}
	m := newMember(t, domain.KindMethod, "M:", fd.Name.Name, doc)
	addFieldList(m, domain.KindParameter, fd.Type.Params)
	t.methods[fd.Name.Name] = m
}

// link computes type and member relations for every package.
func (s *Service) link() {
	for _, pkg := range s.packages {
		for _, t := range pkg.types {
			rel := domain.Relations{}
			if base := s.base(pkg, t); base != nil {
				rel.BaseType = base
			}
			for _, iface := range s.interfaces(pkg, t) {
				rel.Interfaces = append(rel.Interfaces, iface)
			}
			s.relations[t] = rel

			for _, c := range t.children {
				if !c.kind.IsMember() {
					continue
				}
				mrel := domain.Relations{ContainingType: t}
				if c.kind == domain.KindMethod {
					if o := s.overridden(pkg, t, c.name); o != nil {
						mrel.Overridden = o
					}
				}
				s.relations[c] = mrel
			}

			s.impls[t] = s.implementations(pkg, t)
		}
	}
}

// base returns the first embedded struct declared in the same package.
func (s *Service) base(pkg *pkgInfo, t *Symbol) *Symbol {
	if !t.isStruct {
		return nil
	}
	for _, name := range t.embedded {
		if b, ok := pkg.types[name]; ok && b.isStruct && b != t {
			return b
		}
	}
	return nil
}

func (s *Service) overridden(pkg *pkgInfo, t *Symbol, method string) *Symbol {
	seen := map[*Symbol]bool{t: true}
	for b := s.base(pkg, t); b != nil && !seen[b]; b = s.base(pkg, b) {
		seen[b] = true
		if m, ok := b.methods[method]; ok {
			return m
		}
	}
	return nil
}

// interfaces returns the embedded local interfaces of an interface, or the
// local interfaces whose methods a concrete type provides.
func (s *Service) interfaces(pkg *pkgInfo, t *Symbol) []*Symbol {
	var out []*Symbol
	if t.isInterface {
		for _, name := range t.embedded {
			if e, ok := pkg.types[name]; ok && e.isInterface && e != t {
				out = append(out, e)
			}
		}
		return out
	}

	methods := s.methodSet(pkg, t, map[*Symbol]bool{})
	if len(methods) == 0 {
		return nil
	}
	for _, iface := range pkg.types {
		if !iface.isInterface || iface == t {
			continue
		}
		required, ok := s.interfaceMethods(pkg, iface, map[*Symbol]bool{})
		if !ok || len(required) == 0 {
			continue
		}
		satisfied := true
		for name := range required {
			if !methods[name] {
				satisfied = false
				break
			}
		}
		if satisfied {
			out = append(out, iface)
		}
	}
	sortSymbols(out)
	return out
}

func (s *Service) methodSet(pkg *pkgInfo, t *Symbol, seen map[*Symbol]bool) map[string]bool {
	set := make(map[string]bool)
	if seen[t] {
		return set
	}
	seen[t] = true
	for name := range t.methods {
		set[name] = true
	}
	for _, name := range t.embedded {
		if e, ok := pkg.types[name]; ok {
			for m := range s.methodSet(pkg, e, seen) {
				set[m] = true
			}
		}
	}
	return set
}

// interfaceMethods returns the full method names of an interface. ok is
// false when the interface embeds something declared elsewhere.
func (s *Service) interfaceMethods(pkg *pkgInfo, iface *Symbol, seen map[*Symbol]bool) (map[string]bool, bool) {
	set := make(map[string]bool)
	if seen[iface] {
		return set, true
	}
	seen[iface] = true
	for name := range iface.methods {
		set[name] = true
	}
	for _, name := range iface.embedded {
		e, ok := pkg.types[name]
		if !ok || !e.isInterface {
			return nil, false
		}
		sub, ok := s.interfaceMethods(pkg, e, seen)
		if !ok {
			return nil, false
		}
		for m := range sub {
			set[m] = true
		}
	}
	return set, true
}

// implementations pairs the methods declared on t with the same-named
// methods of every interface t implements, including embedded ones.
func (s *Service) implementations(pkg *pkgInfo, t *Symbol) []domain.Implementation {
	var all []*Symbol
	seen := map[*Symbol]bool{}
	var walk func(ifaces []*Symbol)
	walk = func(ifaces []*Symbol) {
		for _, iface := range ifaces {
			if seen[iface] {
				continue
			}
			seen[iface] = true
			all = append(all, iface)
			walk(s.interfaces(pkg, iface))
		}
	}
	walk(s.interfaces(pkg, t))

	var out []domain.Implementation
	for _, iface := range all {
		names := make([]string, 0, len(iface.methods))
		for name := range iface.methods {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			m, ok := t.methods[name]
			if !ok || m.parent != t {
				continue
			}
			out = append(out, domain.Implementation{Member: m, InterfaceMember: iface.methods[name]})
		}
	}
	return out
}

func own(sym domain.Symbol) (*Symbol, bool) {
	s, ok := sym.(*Symbol)
	return s, ok && s != nil
}

// Root returns the namespace holding every package.
func (s *Service) Root() *Symbol {
	return s.root
}

func (s *Service) Lookup(id string) (*Symbol, bool) {
	sym, ok := s.byID[id]
	return sym, ok
}

func (s *Service) StableID(sym domain.Symbol) (string, bool) {
	g, ok := own(sym)
	if !ok || g.id == "" {
		return "", false
	}
	return g.id, true
}

// RawComment wraps the doc comment of sym in a member element. Comments
// that do not start with markup become the summary.
func (s *Service) RawComment(sym domain.Symbol, _ string) (string, bool) {
	g, ok := own(sym)
	if !ok || g.id == "" || strings.TrimSpace(g.doc) == "" {
		return "", false
	}

	var sb strings.Builder
	sb.WriteString(`<member name="`)
	sb.WriteString(attrEscaper.Replace(g.id))
	sb.WriteString(`">`)
	doc := strings.TrimSpace(g.doc)
	if strings.HasPrefix(doc, "<") {
		sb.WriteString(doc)
	} else {
		sb.WriteString("<summary>")
		sb.WriteString(textEscaper.Replace(doc))
		sb.WriteString("</summary>")
	}
	sb.WriteString("</member>")
	return sb.String(), true
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func (s *Service) Relations(sym domain.Symbol) domain.Relations {
	g, ok := own(sym)
	if !ok {
		return domain.Relations{}
	}
	return s.relations[g]
}

func (s *Service) InterfaceImplementations(typ domain.Symbol) []domain.Implementation {
	g, ok := own(typ)
	if !ok {
		return nil
	}
	return s.impls[g]
}

func (s *Service) Children(sym domain.Symbol) []domain.Symbol {
	g, ok := own(sym)
	if !ok {
		return nil
	}
	if g == s.root {
		paths := make([]string, 0, len(s.packages))
		for p := range s.packages {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		out := make([]domain.Symbol, len(paths))
		for i, p := range paths {
			out[i] = s.packages[p].sym
		}
		return out
	}
	out := make([]domain.Symbol, len(g.children))
	for i, c := range g.children {
		out[i] = c
	}
	return out
}

// ResolveCref accepts a full identifier, a name qualified relative to the
// package of from, or a package-qualified name.
func (s *Service) ResolveCref(from domain.Symbol, cref string) (string, bool) {
	if _, ok := s.byID[cref]; ok {
		return cref, true
	}
	var candidates []string
	if g, ok := own(from); ok && g.pkg != "" {
		for _, p := range []string{"T:", "M:", "F:"} {
			candidates = append(candidates, p+g.pkg+"."+cref)
		}
	}
	for _, p := range []string{"T:", "M:", "F:", "N:"} {
		candidates = append(candidates, p+cref)
	}
	for _, id := range candidates {
		if _, ok := s.byID[id]; ok {
			return id, true
		}
	}
	return "", false
}
