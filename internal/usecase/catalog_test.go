package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"refdocs/internal/adapter/memstore"
	"refdocs/internal/domain"
)

func member(id, body string) string {
	return fmt.Sprintf(`<member name="%s">%s</member>`, id, body)
}

type lib struct {
	svc *memstore.SymbolService
	ns  *memstore.Symbol
}

func newLib() *lib {
	svc := memstore.NewSymbolService()
	return &lib{svc: svc, ns: svc.AddNamespace(svc.Root(), "Lib")}
}

func (l *lib) typ(name, body string) *memstore.Symbol {
	id := "T:Lib." + name
	sym := l.svc.AddType(l.ns, id, name)
	if body != "" {
		l.svc.SetComment(sym, "", member(id, body))
	}
	return sym
}

func (l *lib) method(typ *memstore.Symbol, name, body string) *memstore.Symbol {
	id := "M:Lib." + typ.Name() + "." + name
	sym := l.svc.AddMember(typ, domain.KindMethod, id, name)
	if body != "" {
		l.svc.SetComment(sym, "", member(id, body))
	}
	return sym
}

func (l *lib) build(t *testing.T) *Catalog {
	t.Helper()
	c, err := BuildCatalog(context.Background(), l.svc, l.svc.Root(), Options{Workers: 4})
	if err != nil {
		t.Fatalf("BuildCatalog() error = %v", err)
	}
	return c
}

func resolve(t *testing.T, c *Catalog, id string) domain.Record {
	t.Helper()
	rec, err := c.Resolve(context.Background(), id)
	if err != nil {
		t.Fatalf("Resolve(%q) error = %v", id, err)
	}
	return rec
}

func diagnosticKinds(t *testing.T, c *Catalog) map[string][]domain.DiagnosticKind {
	t.Helper()
	reports, err := c.Diagnostics(context.Background())
	if err != nil {
		t.Fatalf("Diagnostics() error = %v", err)
	}
	out := make(map[string][]domain.DiagnosticKind)
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			out[r.ID] = append(out[r.ID], d.Kind)
		}
	}
	return out
}

func TestResolveInheritsBaseSummary(t *testing.T) {
	l := newLib()
	bar := l.typ("Bar", "<summary>Bar</summary>")
	foo := l.typ("Foo", "<inheritdoc/>")
	l.svc.SetBase(foo, bar, false)
	c := l.build(t)

	rec := resolve(t, c, "T:Lib.Foo")
	if got := rec.Summary.PlainText(); got != "Bar" {
		t.Errorf("summary = %q, want %q", got, "Bar")
	}

	bySymbol, err := c.ResolveSymbol(context.Background(), foo)
	if err != nil {
		t.Fatalf("ResolveSymbol() error = %v", err)
	}
	if diff := cmp.Diff(rec, bySymbol); diff != "" {
		t.Errorf("ResolveSymbol() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveOwnContentWins(t *testing.T) {
	l := newLib()
	bar := l.typ("Bar", "")
	foo := l.typ("Foo", "")
	l.svc.SetBase(foo, bar, false)
	barBaz := l.method(bar, "Baz", `<remarks>BazRemarks</remarks><inheritdoc cref="Foobar"/>`)
	fooBaz := l.method(foo, "Baz", "<remarks>BazRemarks2</remarks><inheritdoc/>")
	l.svc.SetOverride(fooBaz, barBaz)
	c := l.build(t)

	if got := resolve(t, c, "M:Lib.Foo.Baz").Remarks.PlainText(); got != "BazRemarks2" {
		t.Errorf("Foo.Baz remarks = %q, want %q", got, "BazRemarks2")
	}
	if got := resolve(t, c, "M:Lib.Bar.Baz").Remarks.PlainText(); got != "BazRemarks" {
		t.Errorf("Bar.Baz remarks = %q, want %q", got, "BazRemarks")
	}

	want := map[string][]domain.DiagnosticKind{
		"M:Lib.Bar.Baz": {domain.DiagMissingReferenceTarget},
	}
	if diff := cmp.Diff(want, diagnosticKinds(t, c)); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveAmbiguousType(t *testing.T) {
	l := newLib()
	ia := l.typ("IA", "<summary>A</summary>")
	ib := l.typ("IB", "<summary>B</summary>")
	both := l.typ("Both", "<inheritdoc/>")
	l.svc.AddInterface(both, ia)
	l.svc.AddInterface(both, ib)
	c := l.build(t)

	if rec := resolve(t, c, "T:Lib.Both"); !rec.IsEmpty() {
		t.Errorf("Both = %+v, want empty record", rec)
	}
	want := map[string][]domain.DiagnosticKind{
		"T:Lib.Both": {domain.DiagAmbiguousInheritance},
	}
	if diff := cmp.Diff(want, diagnosticKinds(t, c)); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveExplicitCrefOnAmbiguousType(t *testing.T) {
	l := newLib()
	ia := l.typ("IA", "<summary>A</summary>")
	ib := l.typ("IB", "<summary>B</summary>")
	both := l.typ("Both", `<inheritdoc cref="Lib.IB"/>`)
	l.svc.AddInterface(both, ia)
	l.svc.AddInterface(both, ib)
	c := l.build(t)

	if got := resolve(t, c, "T:Lib.Both").Summary.PlainText(); got != "B" {
		t.Errorf("summary = %q, want %q", got, "B")
	}
	if got := diagnosticKinds(t, c); len(got) != 0 {
		t.Errorf("diagnostics = %v, want none", got)
	}
}

func TestResolveElementPrecedence(t *testing.T) {
	l := newLib()
	typ := l.typ("Calc", "")
	l.method(typ, "Add", `<summary>first</summary><summary>second</summary>`+
		`<param name="x">one</param><param name="x">two</param><param name="a">A</param>`+
		`<exception cref="T:Lib.Overflow">big</exception><exception cref="T:Lib.Argument">bad</exception>`)
	c := l.build(t)

	rec := resolve(t, c, "M:Lib.Calc.Add")
	if got := rec.Summary.PlainText(); got != "second" {
		t.Errorf("summary = %q, want %q", got, "second")
	}
	want := domain.Record{
		Summary: domain.Content{domain.Text("second")},
		Params: []domain.Named{
			{Name: "a", Content: domain.Content{domain.Text("A")}},
			{Name: "x", Content: domain.Content{domain.Text("one")}},
		},
		Exceptions: []domain.Named{
			{Name: "T:Lib.Argument", Content: domain.Content{domain.Text("bad")}},
			{Name: "T:Lib.Overflow", Content: domain.Content{domain.Text("big")}},
		},
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveElementScopedDirective(t *testing.T) {
	l := newLib()
	bar := l.typ("Bar", "")
	foo := l.typ("Foo", "")
	l.svc.SetBase(foo, bar, false)
	barRun := l.method(bar, "Run", `<summary>BarSummary</summary><remarks>BarRemarks</remarks><param name="n">count</param>`)
	fooRun := l.method(foo, "Run", `<summary>Own</summary><remarks><inheritdoc/></remarks>`)
	l.svc.SetOverride(fooRun, barRun)
	c := l.build(t)

	want := domain.Record{
		Summary: domain.Content{domain.Text("Own")},
		Remarks: domain.Content{domain.Text("BarRemarks")},
	}
	if diff := cmp.Diff(want, resolve(t, c, "M:Lib.Foo.Run")); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCycle(t *testing.T) {
	l := newLib()
	l.typ("A", `<summary>SA</summary><inheritdoc cref="T:Lib.B"/>`)
	l.typ("B", `<remarks>RB</remarks><inheritdoc cref="T:Lib.C"/>`)
	l.typ("C", `<returns>RC</returns><inheritdoc cref="T:Lib.A"/>`)
	c := l.build(t)

	for _, id := range []string{"T:Lib.A", "T:Lib.B", "T:Lib.C"} {
		rec := resolve(t, c, id)
		got := []string{rec.Summary.PlainText(), rec.Remarks.PlainText(), rec.Returns.PlainText()}
		if diff := cmp.Diff([]string{"SA", "RB", "RC"}, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", id, diff)
		}
	}
}

func TestResolveUnknownAndUndocumented(t *testing.T) {
	l := newLib()
	l.typ("Plain", "")
	empty := l.svc.AddType(l.ns, "T:Lib.Empty", "Empty")
	l.svc.SetComment(empty, "", "  \n ")
	c := l.build(t)

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	for _, id := range []string{"T:Lib.Plain", "T:Lib.Missing"} {
		if rec := resolve(t, c, id); !rec.IsEmpty() {
			t.Errorf("Resolve(%q) = %+v, want empty record", id, rec)
		}
	}

	param := l.svc.AddParameter(l.svc.Root(), "x")
	if _, err := c.ResolveSymbol(context.Background(), param); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("ResolveSymbol() error = %v, want ErrUnknownSymbol", err)
	}
}

func TestResolveIsStable(t *testing.T) {
	l := newLib()
	bar := l.typ("Bar", "<summary>Bar</summary><remarks>R</remarks>")
	foo := l.typ("Foo", "<summary>Foo</summary><inheritdoc/>")
	l.svc.SetBase(foo, bar, false)
	c := l.build(t)

	first := resolve(t, c, "T:Lib.Foo")
	all, err := c.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	if diff := cmp.Diff(first, all["T:Lib.Foo"]); diff != "" {
		t.Errorf("ResolveAll() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, resolve(t, c, "T:Lib.Foo")); diff != "" {
		t.Errorf("second Resolve() mismatch (-want +got):\n%s", diff)
	}

	rebuilt := l.build(t)
	if diff := cmp.Diff(all, mustResolveAll(t, rebuilt)); diff != "" {
		t.Errorf("rebuilt catalog mismatch (-want +got):\n%s", diff)
	}
}

func mustResolveAll(t *testing.T, c *Catalog) map[string]domain.Record {
	t.Helper()
	all, err := c.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	return all
}

func TestBuildCatalogDocRoot(t *testing.T) {
	l := newLib()
	l.typ("Bar", "<summary>Own</summary>")
	l.typ("Plain", "")
	l.svc.SetComment(l.ns, "", `<doc>
  <assembly><name>Lib</name></assembly>
  <members>
    <member name="T:Lib.Bar"><summary>FromDoc</summary></member>
    <member name="T:Lib.Plain"><summary>Plain</summary></member>
    <member name="T:Lib.Gone"><inheritdoc cref="T:Lib.Plain"/></member>
  </members>
</doc>`)
	c := l.build(t)

	if diff := cmp.Diff([]string{"N:Lib", "T:Lib.Bar", "T:Lib.Gone", "T:Lib.Plain"}, c.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}
	e, ok := c.Lookup("T:Lib.Plain")
	if !ok || e.Symbol == nil || e.Symbol.Name() != "Plain" {
		t.Errorf("Lookup(T:Lib.Plain) = %+v, %v; want entry bound to Plain", e, ok)
	}
	if e, ok := c.Lookup("T:Lib.Gone"); !ok || e.Symbol != nil {
		t.Errorf("Lookup(T:Lib.Gone) = %+v, %v; want entry without symbol", e, ok)
	}

	tests := map[string]string{
		"T:Lib.Bar":   "Own",
		"T:Lib.Plain": "Plain",
		"T:Lib.Gone":  "Plain",
	}
	for id, want := range tests {
		if got := resolve(t, c, id).Summary.PlainText(); got != want {
			t.Errorf("%s summary = %q, want %q", id, got, want)
		}
	}
}

func TestBuildCatalogIsolatesParseFailures(t *testing.T) {
	l := newLib()
	l.typ("Good", "<summary>fine</summary>")
	broken := l.svc.AddType(l.ns, "T:Lib.Broken", "Broken")
	l.svc.SetComment(broken, "", `<member name="T:Lib.Broken"><summary>oops</member>`)
	l.typ("Odd", "<summary>ok</summary><custom/>")

	c, err := BuildCatalog(context.Background(), l.svc, l.svc.Root(), Options{
		Policy: domain.Policy{domain.DiagUnrecognizedMainElement: domain.SeverityWarning},
	})
	if err != nil {
		t.Fatalf("BuildCatalog() error = %v", err)
	}

	if diff := cmp.Diff([]string{"T:Lib.Good", "T:Lib.Odd"}, c.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}
	want := map[string][]domain.DiagnosticKind{
		"T:Lib.Broken": {domain.DiagMalformedComment},
		"T:Lib.Odd":    {domain.DiagUnrecognizedMainElement},
	}
	if diff := cmp.Diff(want, diagnosticKinds(t, c)); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
	if got := resolve(t, c, "T:Lib.Odd").Summary.PlainText(); got != "ok" {
		t.Errorf("Odd summary = %q, want %q", got, "ok")
	}
}

func TestBuildCatalogLocale(t *testing.T) {
	l := newLib()
	sym := l.typ("Greeter", "<summary>Hello</summary>")
	l.svc.SetComment(sym, "fr", member("T:Lib.Greeter", "<summary>Bonjour</summary>"))

	for locale, want := range map[string]string{"": "Hello", "fr": "Bonjour", "de": "Hello"} {
		c, err := BuildCatalog(context.Background(), l.svc, l.svc.Root(), Options{Locale: locale})
		if err != nil {
			t.Fatalf("BuildCatalog(%q) error = %v", locale, err)
		}
		if got := resolve(t, c, "T:Lib.Greeter").Summary.PlainText(); got != want {
			t.Errorf("locale %q summary = %q, want %q", locale, got, want)
		}
	}
}

func TestCatalogCancellation(t *testing.T) {
	l := newLib()
	l.typ("Bar", "<summary>Bar</summary>")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BuildCatalog(ctx, l.svc, l.svc.Root(), Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("BuildCatalog() error = %v, want context.Canceled", err)
	}

	c := l.build(t)
	if _, err := c.Graph(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Graph() error = %v, want context.Canceled", err)
	}
	g, err := c.Graph(context.Background())
	if err != nil {
		t.Fatalf("Graph() retry error = %v", err)
	}
	if g.Len() != 1 {
		t.Errorf("Graph().Len() = %d, want 1", g.Len())
	}
}
