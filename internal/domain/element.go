package domain

import (
	"fmt"
	"strings"
)

type ElementKind int

// The declaration order is the canonical sort order of elements.
const (
	ElementSummary ElementKind = iota + 1
	ElementRemarks
	ElementExample
	ElementParam
	ElementTypeparam
	ElementReturns
	ElementException
)

var elementKindNames = map[ElementKind]string{
	ElementSummary:   "summary",
	ElementRemarks:   "remarks",
	ElementExample:   "example",
	ElementParam:     "param",
	ElementTypeparam: "typeparam",
	ElementReturns:   "returns",
	ElementException: "exception",
}

func (k ElementKind) String() string {
	if name, ok := elementKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ElementKind(%d)", int(k))
}

// IsKeyed reports whether elements of this kind are identified by kind and
// name rather than by kind alone.
func (k ElementKind) IsKeyed() bool {
	return k == ElementParam || k == ElementTypeparam || k == ElementException
}

// ElementKey is the identity of an element. The zero key stands for the
// whole comment when used as an inheritance scope.
type ElementKey struct {
	Kind ElementKind
	Name string
}

func (k ElementKey) IsZero() bool {
	return k == ElementKey{}
}

func (k ElementKey) Less(o ElementKey) bool {
	if k.Kind != o.Kind {
		return k.Kind < o.Kind
	}
	return k.Name < o.Name
}

func (k ElementKey) String() string {
	if k.IsZero() {
		return "*"
	}
	if k.Name == "" {
		return k.Kind.String()
	}
	return k.Kind.String() + "(" + k.Name + ")"
}

type Element struct {
	Kind    ElementKind
	Name    string
	Content Content
}

func (e Element) Key() ElementKey {
	if !e.Kind.IsKeyed() {
		return ElementKey{Kind: e.Kind}
	}
	return ElementKey{Kind: e.Kind, Name: e.Name}
}

type NodeKind int

const (
	NodeText NodeKind = iota
	NodeInlineCode
	NodeBlockCode
	NodePara
	NodeSeeCref
	NodeSeeHref
	NodeSeeLangword
	NodeParamref
	NodeTypeparamref
)

var nodeKindNames = [...]string{
	NodeText:         "text",
	NodeInlineCode:   "c",
	NodeBlockCode:    "code",
	NodePara:         "para",
	NodeSeeCref:      "see-cref",
	NodeSeeHref:      "see-href",
	NodeSeeLangword:  "see-langword",
	NodeParamref:     "paramref",
	NodeTypeparamref: "typeparamref",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
	return nodeKindNames[k]
}

func (k NodeKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return nil, fmt.Errorf("invalid node kind %d", int(k))
	}
	return []byte(nodeKindNames[k]), nil
}

func (k *NodeKind) UnmarshalText(b []byte) error {
	for i, name := range nodeKindNames {
		if name == string(b) {
			*k = NodeKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown node kind: %q", b)
}

// Node is one piece of rendered documentation content. Value holds the text
// of a text node, or the cref, href, langword or name attribute of a
// reference node. Children is set for code and paragraph nodes only.
type Node struct {
	Kind     NodeKind `json:"kind" yaml:"kind"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
	Children Content  `json:"children,omitempty" yaml:"children,omitempty"`
}

type Content []Node

func Text(s string) Node               { return Node{Kind: NodeText, Value: s} }
func InlineCode(children ...Node) Node { return Node{Kind: NodeInlineCode, Children: children} }
func BlockCode(children ...Node) Node  { return Node{Kind: NodeBlockCode, Children: children} }
func Para(children ...Node) Node       { return Node{Kind: NodePara, Children: children} }
func SeeCref(cref string) Node         { return Node{Kind: NodeSeeCref, Value: cref} }
func SeeHref(href string) Node         { return Node{Kind: NodeSeeHref, Value: href} }
func SeeLangword(word string) Node     { return Node{Kind: NodeSeeLangword, Value: word} }
func Paramref(name string) Node        { return Node{Kind: NodeParamref, Value: name} }
func Typeparamref(name string) Node    { return Node{Kind: NodeTypeparamref, Value: name} }

// PlainText flattens content into readable text. Code is wrapped in
// backticks, cref targets are shortened to their last segment and
// paragraphs are separated by one blank line.
func (c Content) PlainText() string {
	var sb strings.Builder
	c.writePlain(&sb)

	var paras []string
	for _, p := range strings.Split(sb.String(), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	return strings.Join(paras, "\n\n")
}

func (c Content) writePlain(sb *strings.Builder) {
	for _, n := range c {
		switch n.Kind {
		case NodeText, NodeSeeHref, NodeSeeLangword, NodeParamref, NodeTypeparamref:
			sb.WriteString(n.Value)
		case NodeSeeCref:
			sb.WriteString(shortCref(n.Value))
		case NodeInlineCode:
			sb.WriteByte('`')
			n.Children.writePlain(sb)
			sb.WriteByte('`')
		case NodeBlockCode:
			sb.WriteString("\n```\n")
			n.Children.writePlain(sb)
			sb.WriteString("\n```\n")
		case NodePara:
			sb.WriteString("\n\n")
			n.Children.writePlain(sb)
			sb.WriteString("\n\n")
		default:
			panic(fmt.Sprintf("domain: unhandled node kind %v", n.Kind))
		}
	}
}

func shortCref(cref string) string {
	if i := strings.IndexByte(cref, ':'); i >= 0 {
		cref = cref[i+1:]
	}
	if i := strings.LastIndexByte(cref, '.'); i >= 0 {
		cref = cref[i+1:]
	}
	return cref
}
