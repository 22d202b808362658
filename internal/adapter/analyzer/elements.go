package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"refdocs/internal/adapter/xmldoc"
	"refdocs/internal/domain"
)

// DefaultSyntheticWhitespace is the indentation left in comment text by
// documentation generators.
const DefaultSyntheticWhitespace = "\n    "

// Directive is an unresolved inherit directive. A zero Scope applies to the
// whole comment; otherwise only the element with that key is inherited.
type Directive struct {
	Scope domain.ElementKey
	Cref  string
}

// Lowered is the flattened form of one parsed comment.
type Lowered struct {
	Elements   []domain.Element
	Directives []Directive
}

// Lowerer turns syntax trees into documentation elements.
type Lowerer struct {
	trim string
}

// NewLowerer returns a lowerer that deletes every occurrence of trim from
// text content. An empty trim keeps text untouched.
func NewLowerer(trim string) *Lowerer {
	return &Lowerer{trim: trim}
}

// Lower flattens a parsed comment. Within the comment the last summary,
// remarks, returns or example wins, while the first param, typeparam or
// exception with a given name wins. Either may be an element-level
// directive instead of content. Doc roots carry no elements of their own.
func (l *Lowerer) Lower(root xmldoc.Root) Lowered {
	m, ok := root.(*xmldoc.Member)
	if !ok {
		return Lowered{}
	}

	type slot struct {
		element   *domain.Element
		directive *Directive
	}
	slots := make(map[domain.ElementKey]slot, len(m.Elements))

	for _, el := range m.Elements {
		key := domain.Element{Kind: el.Kind, Name: el.Name}.Key()
		if _, seen := slots[key]; seen && key.Kind.IsKeyed() {
			continue
		}
		if el.Body.Inheritdoc != nil {
			slots[key] = slot{directive: &Directive{Scope: key, Cref: el.Body.Inheritdoc.Cref}}
			continue
		}
		slots[key] = slot{element: &domain.Element{
			Kind:    el.Kind,
			Name:    el.Name,
			Content: l.Content(el.Body.Nested),
		}}
	}

	keys := make([]domain.ElementKey, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	var out Lowered
	if m.Inheritdoc != nil {
		out.Directives = append(out.Directives, Directive{Cref: m.Inheritdoc.Cref})
	}
	for _, k := range keys {
		s := slots[k]
		if s.directive != nil {
			out.Directives = append(out.Directives, *s.directive)
		} else {
			out.Elements = append(out.Elements, *s.element)
		}
	}
	return out
}

// Content converts nested syntax into rendered content.
func (l *Lowerer) Content(nodes []xmldoc.Nested) domain.Content {
	var out domain.Content
	for _, n := range nodes {
		switch v := n.(type) {
		case xmldoc.Text:
			text := v.Value
			if l.trim != "" {
				text = strings.ReplaceAll(text, l.trim, "")
			}
			if text != "" {
				out = append(out, domain.Text(text))
			}
		case xmldoc.InlineCode:
			out = append(out, domain.InlineCode(l.Content(v.Children)...))
		case xmldoc.BlockCode:
			out = append(out, domain.BlockCode(l.Content(v.Children)...))
		case xmldoc.Para:
			out = append(out, domain.Para(l.Content(v.Children)...))
		case xmldoc.See:
			switch {
			case v.Cref != "":
				out = append(out, domain.SeeCref(v.Cref))
			case v.Href != "":
				out = append(out, domain.SeeHref(v.Href))
			default:
				out = append(out, domain.SeeLangword(v.Langword))
			}
		case xmldoc.Paramref:
			out = append(out, domain.Paramref(v.Name))
		case xmldoc.Typeparamref:
			out = append(out, domain.Typeparamref(v.Name))
		default:
			panic(fmt.Sprintf("analyzer: unhandled nested node %T", n))
		}
	}
	return out
}
