package memstore

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"refdocs/internal/domain"
)

// Manifest describes a symbol model in YAML. Relations refer to symbols by
// identifier and may point forward.
type Manifest struct {
	Namespaces []NamespaceSpec `yaml:"namespaces"`
}

type NamespaceSpec struct {
	Name       string          `yaml:"name"`
	Namespaces []NamespaceSpec `yaml:"namespaces,omitempty"`
	Types      []TypeSpec      `yaml:"types,omitempty"`
}

type TypeSpec struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Comment    string            `yaml:"comment,omitempty"`
	Comments   map[string]string `yaml:"comments,omitempty"`
	Base       string            `yaml:"base,omitempty"`
	BaseIsRoot bool              `yaml:"base_is_root,omitempty"`
	Interfaces []string          `yaml:"interfaces,omitempty"`
	Typeparams []string          `yaml:"typeparams,omitempty"`
	Members    []MemberSpec      `yaml:"members,omitempty"`
	Types      []TypeSpec        `yaml:"types,omitempty"`
}

type MemberSpec struct {
	ID         string            `yaml:"id"`
	Kind       string            `yaml:"kind"`
	Name       string            `yaml:"name"`
	Comment    string            `yaml:"comment,omitempty"`
	Comments   map[string]string `yaml:"comments,omitempty"`
	Overrides  string            `yaml:"overrides,omitempty"`
	Implements []string          `yaml:"implements,omitempty"`
	Params     []string          `yaml:"params,omitempty"`
	Typeparams []string          `yaml:"typeparams,omitempty"`
}

type link struct {
	from *Symbol
	kind string
	id   string
}

type manifestLoader struct {
	svc   *SymbolService
	seen  map[string]bool
	links []link
}

func LoadManifestFile(path string) (*SymbolService, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	svc, err := LoadManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return svc, nil
}

// LoadManifest decodes a YAML manifest into a new SymbolService.
func LoadManifest(r io.Reader) (*SymbolService, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	l := &manifestLoader{svc: NewSymbolService(), seen: make(map[string]bool)}
	for _, ns := range m.Namespaces {
		if err := l.namespace(l.svc.Root(), ns); err != nil {
			return nil, err
		}
	}
	if err := l.resolveLinks(); err != nil {
		return nil, err
	}
	return l.svc, nil
}

func (l *manifestLoader) claim(id string) error {
	if id == "" {
		return fmt.Errorf("symbol without id")
	}
	if l.seen[id] {
		return fmt.Errorf("duplicate symbol id %q", id)
	}
	l.seen[id] = true
	return nil
}

func (l *manifestLoader) namespace(parent *Symbol, spec NamespaceSpec) error {
	ns := l.svc.AddNamespace(parent, spec.Name)
	for _, t := range spec.Types {
		if err := l.typ(ns, t); err != nil {
			return err
		}
	}
	for _, child := range spec.Namespaces {
		if err := l.namespace(ns, child); err != nil {
			return err
		}
	}
	return nil
}

func (l *manifestLoader) typ(parent *Symbol, spec TypeSpec) error {
	if err := l.claim(spec.ID); err != nil {
		return err
	}
	t := l.svc.AddType(parent, spec.ID, spec.Name)
	l.comments(t, spec.Comment, spec.Comments)
	for _, tp := range spec.Typeparams {
		l.svc.AddTypeParameter(t, tp)
	}

	if spec.Base != "" {
		kind := "base"
		if spec.BaseIsRoot {
			kind = "root"
		}
		l.links = append(l.links, link{from: t, kind: kind, id: spec.Base})
	}
	for _, iface := range spec.Interfaces {
		l.links = append(l.links, link{from: t, kind: "interface", id: iface})
	}

	for _, ms := range spec.Members {
		if err := l.member(t, ms); err != nil {
			return err
		}
	}
	for _, nested := range spec.Types {
		if err := l.typ(t, nested); err != nil {
			return err
		}
	}
	return nil
}

func (l *manifestLoader) member(typ *Symbol, spec MemberSpec) error {
	if err := l.claim(spec.ID); err != nil {
		return err
	}
	kindName := spec.Kind
	if kindName == "" {
		kindName = "method"
	}
	kind, err := domain.ParseSymbolKind(kindName)
	if err != nil {
		return fmt.Errorf("member %s: %w", spec.ID, err)
	}
	if !kind.IsMember() {
		return fmt.Errorf("member %s: kind %s is not a member kind", spec.ID, kind)
	}

	m := l.svc.AddMember(typ, kind, spec.ID, spec.Name)
	l.comments(m, spec.Comment, spec.Comments)
	for _, tp := range spec.Typeparams {
		l.svc.AddTypeParameter(m, tp)
	}
	for _, p := range spec.Params {
		l.svc.AddParameter(m, p)
	}

	if spec.Overrides != "" {
		l.links = append(l.links, link{from: m, kind: "overrides", id: spec.Overrides})
	}
	for _, im := range spec.Implements {
		l.links = append(l.links, link{from: m, kind: "implements", id: im})
	}
	return nil
}

func (l *manifestLoader) comments(sym *Symbol, text string, localized map[string]string) {
	if text != "" {
		l.svc.SetComment(sym, "", text)
	}
	for locale, t := range localized {
		l.svc.SetComment(sym, locale, t)
	}
}

func (l *manifestLoader) resolveLinks() error {
	for _, ln := range l.links {
		target, ok := l.svc.Lookup(ln.id)
		if !ok {
			return fmt.Errorf("%s: unknown %s target %q", ln.from.id, ln.kind, ln.id)
		}
		switch ln.kind {
		case "base":
			l.svc.SetBase(ln.from, target, false)
		case "root":
			l.svc.SetBase(ln.from, target, true)
		case "interface":
			l.svc.AddInterface(ln.from, target)
		case "overrides":
			l.svc.SetOverride(ln.from, target)
		case "implements":
			l.svc.AddImplementation(ln.from, target)
		}
	}
	return nil
}
