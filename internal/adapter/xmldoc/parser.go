package xmldoc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"refdocs/internal/domain"
)

// ErrEmptyComment is returned by Parse for empty or whitespace-only input.
var ErrEmptyComment = errors.New("empty comment")

// errAbort unwinds the parser after an error-severity diagnostic.
var errAbort = errors.New("parse aborted")

// ParseError is returned when a comment cannot be parsed. Errors holds the
// diagnostics that caused the failure.
type ParseError struct {
	Errors   []domain.Diagnostic
	Warnings []domain.Diagnostic
	Err      error
}

func (e *ParseError) Error() string {
	if len(e.Errors) == 0 {
		return "malformed comment"
	}
	msg := "malformed comment: " + e.Errors[0].Message
	if n := len(e.Errors) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Diagnostics returns errors followed by warnings.
func (e *ParseError) Diagnostics() []domain.Diagnostic {
	out := make([]domain.Diagnostic, 0, len(e.Errors)+len(e.Warnings))
	out = append(out, e.Errors...)
	return append(out, e.Warnings...)
}

type Options struct {
	Policy domain.Policy
}

// Result is a successful parse. Warnings lists non-fatal diagnostics.
type Result struct {
	Root     Root
	Warnings []domain.Diagnostic
}

// Parse parses the raw documentation comment of one symbol. The outermost
// element must be <member name="..."> or an assembly-level <doc>.
func Parse(ctx context.Context, src string, opts Options) (Result, error) {
	if strings.TrimSpace(src) == "" {
		return Result{}, ErrEmptyComment
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	tree, err := ReadTree(src)
	if err != nil {
		return Result{}, &ParseError{
			Errors: []domain.Diagnostic{{
				Kind:     domain.DiagMalformedComment,
				Severity: domain.SeverityError,
				Message:  err.Error(),
			}},
			Err: err,
		}
	}

	p := &parser{ctx: ctx, policy: opts.Policy}
	root, ok, err := p.root(tree)
	if err != nil && !errors.Is(err, errAbort) {
		return Result{}, err
	}
	if err == nil && !ok {
		p.errors = append(p.errors, domain.Diagnostic{
			Kind:     domain.DiagMalformedComment,
			Severity: domain.SeverityError,
			Message:  fmt.Sprintf("Unrecognized root element: '%s'.", shallowXML(tree)),
		})
	}
	if err != nil || !ok {
		return Result{}, &ParseError{Errors: p.errors, Warnings: p.warnings}
	}
	return Result{Root: root, Warnings: p.warnings}, nil
}

type parser struct {
	ctx      context.Context
	policy   domain.Policy
	errors   []domain.Diagnostic
	warnings []domain.Diagnostic
}

// unrecognized records a diagnostic for n and returns errAbort when its
// kind is configured as an error.
func (p *parser) unrecognized(kind domain.DiagnosticKind, n *Node) error {
	sev := p.policy.Severity(kind)
	if sev == domain.SeverityIgnore {
		return nil
	}
	d := domain.Diagnostic{
		Kind:     kind,
		Severity: sev,
		Message:  fmt.Sprintf("Unrecognized element: '%s'.", n.OuterXML()),
	}
	if sev == domain.SeverityError {
		p.errors = append(p.errors, d)
		return errAbort
	}
	p.warnings = append(p.warnings, d)
	return nil
}

func (p *parser) root(n *Node) (Root, bool, error) {
	switch n.Label {
	case "doc":
		return p.doc(n)
	case "member":
		m, ok, err := p.member(n)
		if err != nil || !ok {
			return nil, false, err
		}
		return m, true, nil
	}
	return nil, false, nil
}

func (p *parser) doc(n *Node) (Root, bool, error) {
	d := &Doc{}
	var hasAssembly, hasMembers bool

	for _, c := range n.Children {
		if err := p.ctx.Err(); err != nil {
			return nil, false, err
		}
		switch {
		case c.IsWhitespace():
		case c.Label == "assembly":
			for _, ac := range c.Children {
				if ac.Label == "name" {
					d.Assembly = strings.TrimSpace(ac.InnerText())
					hasAssembly = true
				}
			}
		case c.Label == "members":
			hasMembers = true
			for _, mc := range c.Children {
				if mc.IsWhitespace() {
					continue
				}
				m, ok, err := p.member(mc)
				if err != nil || !ok {
					return nil, false, err
				}
				d.Members = append(d.Members, m)
			}
		default:
			return nil, false, nil
		}
	}

	if !hasAssembly || !hasMembers {
		return nil, false, nil
	}
	return d, true, nil
}

func (p *parser) member(n *Node) (*Member, bool, error) {
	if n.Label != "member" {
		return nil, false, nil
	}
	name, ok := n.Attr("name")
	if !ok {
		return nil, false, nil
	}

	m := &Member{Name: name}
	for _, c := range n.Children {
		if err := p.ctx.Err(); err != nil {
			return nil, false, err
		}
		if c.IsWhitespace() {
			continue
		}
		if c.Label == "inheritdoc" {
			if m.Inheritdoc == nil {
				m.Inheritdoc = inheritdoc(c)
			}
			continue
		}

		el, recognized, err := p.mainElement(c)
		if err != nil {
			return nil, false, err
		}
		if !recognized {
			if err := p.unrecognized(domain.DiagUnrecognizedMainElement, c); err != nil {
				return nil, false, err
			}
			continue
		}
		if el != nil {
			m.Elements = append(m.Elements, *el)
		}
	}
	return m, true, nil
}

func inheritdoc(n *Node) *Inheritdoc {
	cref, _ := n.Attr("cref")
	return &Inheritdoc{Cref: cref}
}

// mainElement parses one section. A recognized label with a missing name or
// cref attribute yields (nil, true, nil) and the node is dropped.
func (p *parser) mainElement(n *Node) (*MainElement, bool, error) {
	var kind domain.ElementKind
	var name string

	switch n.Label {
	case "summary":
		kind = domain.ElementSummary
	case "remarks":
		kind = domain.ElementRemarks
	case "returns":
		kind = domain.ElementReturns
	case "example":
		kind = domain.ElementExample
	case "param", "typeparam":
		kind = domain.ElementParam
		if n.Label == "typeparam" {
			kind = domain.ElementTypeparam
		}
		name, _ = n.Attr("name")
		if name == "" {
			return nil, true, nil
		}
	case "exception":
		kind = domain.ElementException
		name, _ = n.Attr("cref")
		if name == "" {
			return nil, true, nil
		}
	default:
		return nil, false, nil
	}

	body, err := p.body(n)
	if err != nil {
		return nil, false, err
	}
	return &MainElement{Kind: kind, Name: name, Body: body}, true, nil
}

func (p *parser) body(n *Node) (Body, error) {
	var only *Node
	count := 0
	for _, c := range n.Children {
		if c.IsWhitespace() {
			continue
		}
		only = c
		count++
	}
	if count == 1 && only.Label == "inheritdoc" {
		return Body{Inheritdoc: inheritdoc(only)}, nil
	}

	nested, err := p.nestedElements(n.Children)
	if err != nil {
		return Body{}, err
	}
	return Body{Nested: nested}, nil
}

func (p *parser) nestedElements(children []*Node) ([]Nested, error) {
	var out []Nested
	for _, c := range children {
		if err := p.ctx.Err(); err != nil {
			return nil, err
		}
		nd, ok, err := p.nestedElement(c)
		if err != nil {
			return nil, err
		}
		if !ok {
			if err := p.unrecognized(domain.DiagUnrecognizedNestedElement, c); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, nd)
	}
	return out, nil
}

func (p *parser) nestedElement(n *Node) (Nested, bool, error) {
	switch n.Label {
	case TextLabel:
		return Text{Value: n.Text}, true, nil
	case "c", "code", "para":
		children, err := p.nestedElements(n.Children)
		if err != nil {
			return nil, false, err
		}
		switch n.Label {
		case "c":
			return InlineCode{Children: children}, true, nil
		case "code":
			return BlockCode{Children: children}, true, nil
		}
		return Para{Children: children}, true, nil
	case "see":
		cref, _ := n.Attr("cref")
		href, _ := n.Attr("href")
		langword, _ := n.Attr("langword")
		if cref == "" && href == "" && langword == "" {
			return nil, false, nil
		}
		return See{Cref: cref, Href: href, Langword: langword}, true, nil
	case "paramref", "typeparamref":
		name, _ := n.Attr("name")
		if name == "" {
			return nil, false, nil
		}
		if n.Label == "paramref" {
			return Paramref{Name: name}, true, nil
		}
		return Typeparamref{Name: name}, true, nil
	}
	return nil, false, nil
}

// shallowXML renders only the opening tag of n.
func shallowXML(n *Node) string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(n.Label)
	for _, a := range n.Attrs {
		writeAttr(&sb, a.Name, a.Value)
	}
	sb.WriteByte('>')
	return sb.String()
}
