package xmldoc

import (
	"fmt"
	"strings"

	"refdocs/internal/domain"
)

// Root is a parsed comment: either *Doc or *Member.
type Root interface {
	isRoot()
}

// Doc is an assembly-level documentation file holding many members.
type Doc struct {
	Assembly string
	Members  []*Member
}

// Member is the documentation comment of one symbol.
type Member struct {
	Name       string
	Inheritdoc *Inheritdoc
	Elements   []MainElement
}

func (*Doc) isRoot()    {}
func (*Member) isRoot() {}

// Inheritdoc is an inherit directive. An empty Cref leaves the target to be
// inferred from the symbol's relations.
type Inheritdoc struct {
	Cref string
}

// MainElement is a top-level section of a member comment. Name holds the
// name of a param or typeparam and the cref of an exception.
type MainElement struct {
	Kind domain.ElementKind
	Name string
	Body Body
}

// Body is either a per-element inherit directive or nested content.
type Body struct {
	Inheritdoc *Inheritdoc
	Nested     []Nested
}

// Nested is inline or block content inside a main element. The set of
// implementations is closed: Text, InlineCode, BlockCode, Para, See,
// Paramref and Typeparamref.
type Nested interface {
	isNested()
}

type Text struct{ Value string }

type InlineCode struct{ Children []Nested }

type BlockCode struct{ Children []Nested }

type Para struct{ Children []Nested }

// See references a symbol, a URL or a language keyword. At least one of
// the fields is set.
type See struct {
	Cref     string
	Href     string
	Langword string
}

type Paramref struct{ Name string }

type Typeparamref struct{ Name string }

func (Text) isNested()         {}
func (InlineCode) isNested()   {}
func (BlockCode) isNested()    {}
func (Para) isNested()         {}
func (See) isNested()          {}
func (Paramref) isNested()     {}
func (Typeparamref) isNested() {}

var mainLabels = map[domain.ElementKind]string{
	domain.ElementSummary:   "summary",
	domain.ElementRemarks:   "remarks",
	domain.ElementExample:   "example",
	domain.ElementParam:     "param",
	domain.ElementTypeparam: "typeparam",
	domain.ElementReturns:   "returns",
	domain.ElementException: "exception",
}

// Format renders a parsed comment back into canonical markup.
func Format(root Root) string {
	var sb strings.Builder
	switch r := root.(type) {
	case *Doc:
		sb.WriteString("<doc><assembly><name>")
		sb.WriteString(textEscaper.Replace(r.Assembly))
		sb.WriteString("</name></assembly><members>")
		for _, m := range r.Members {
			formatMember(&sb, m)
		}
		sb.WriteString("</members></doc>")
	case *Member:
		formatMember(&sb, r)
	default:
		panic(fmt.Sprintf("xmldoc: unhandled root %T", root))
	}
	return sb.String()
}

func formatMember(sb *strings.Builder, m *Member) {
	sb.WriteString("<member")
	writeAttr(sb, "name", m.Name)
	sb.WriteByte('>')
	if m.Inheritdoc != nil {
		formatInheritdoc(sb, m.Inheritdoc)
	}
	for _, el := range m.Elements {
		label := mainLabels[el.Kind]
		sb.WriteByte('<')
		sb.WriteString(label)
		switch el.Kind {
		case domain.ElementParam, domain.ElementTypeparam:
			writeAttr(sb, "name", el.Name)
		case domain.ElementException:
			writeAttr(sb, "cref", el.Name)
		}
		sb.WriteByte('>')
		if el.Body.Inheritdoc != nil {
			formatInheritdoc(sb, el.Body.Inheritdoc)
		} else {
			formatNested(sb, el.Body.Nested)
		}
		sb.WriteString("</")
		sb.WriteString(label)
		sb.WriteByte('>')
	}
	sb.WriteString("</member>")
}

func formatInheritdoc(sb *strings.Builder, d *Inheritdoc) {
	sb.WriteString("<inheritdoc")
	if d.Cref != "" {
		writeAttr(sb, "cref", d.Cref)
	}
	sb.WriteString(" />")
}

func formatNested(sb *strings.Builder, nodes []Nested) {
	for _, n := range nodes {
		switch v := n.(type) {
		case Text:
			sb.WriteString(textEscaper.Replace(v.Value))
		case InlineCode:
			sb.WriteString("<c>")
			formatNested(sb, v.Children)
			sb.WriteString("</c>")
		case BlockCode:
			sb.WriteString("<code>")
			formatNested(sb, v.Children)
			sb.WriteString("</code>")
		case Para:
			sb.WriteString("<para>")
			formatNested(sb, v.Children)
			sb.WriteString("</para>")
		case See:
			sb.WriteString("<see")
			if v.Cref != "" {
				writeAttr(sb, "cref", v.Cref)
			}
			if v.Href != "" {
				writeAttr(sb, "href", v.Href)
			}
			if v.Langword != "" {
				writeAttr(sb, "langword", v.Langword)
			}
			sb.WriteString(" />")
		case Paramref:
			sb.WriteString("<paramref")
			writeAttr(sb, "name", v.Name)
			sb.WriteString(" />")
		case Typeparamref:
			sb.WriteString("<typeparamref")
			writeAttr(sb, "name", v.Name)
			sb.WriteString(" />")
		default:
			panic(fmt.Sprintf("xmldoc: unhandled nested node %T", n))
		}
	}
}
