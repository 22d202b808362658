package xmldoc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// TextLabel is the label carried by character-data nodes.
const TextLabel = "#text"

var (
	errNoRoot          = errors.New("no root element")
	errMultipleRoots   = errors.New("more than one root element")
	errTextOutsideRoot = errors.New("text outside the root element")
)

// Node is a generic labeled tree node. Element nodes carry a label,
// attributes and children; text nodes carry TextLabel and Text.
type Node struct {
	Label    string
	Attrs    []Attr
	Text     string
	Children []*Node
}

type Attr struct {
	Name  string
	Value string
}

func (n *Node) IsText() bool {
	return n.Label == TextLabel
}

// IsWhitespace reports whether n is a text node holding only whitespace.
func (n *Node) IsWhitespace() bool {
	return n.IsText() && strings.TrimSpace(n.Text) == ""
}

func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// InnerText concatenates all descendant text.
func (n *Node) InnerText() string {
	if n.IsText() {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.Children {
		sb.WriteString(c.InnerText())
	}
	return sb.String()
}

// OuterXML renders n and its subtree as markup.
func (n *Node) OuterXML() string {
	var sb strings.Builder
	n.writeXML(&sb)
	return sb.String()
}

func (n *Node) writeXML(sb *strings.Builder) {
	if n.IsText() {
		sb.WriteString(textEscaper.Replace(n.Text))
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.Label)
	for _, a := range n.Attrs {
		writeAttr(sb, a.Name, a.Value)
	}
	if len(n.Children) == 0 {
		sb.WriteString(" />")
		return
	}
	sb.WriteByte('>')
	for _, c := range n.Children {
		c.writeXML(sb)
	}
	sb.WriteString("</")
	sb.WriteString(n.Label)
	sb.WriteByte('>')
}

func writeAttr(sb *strings.Builder, name, value string) {
	sb.WriteByte(' ')
	sb.WriteString(name)
	sb.WriteString(`="`)
	sb.WriteString(attrEscaper.Replace(value))
	sb.WriteByte('"')
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// ReadTree reads markup into a labeled tree and returns its single root
// element. Adjacent character data is merged into one text node; comments,
// processing instructions and directives are dropped.
func ReadTree(src string) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(src))

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read markup: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Label: t.Name.Local}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errMultipleRoots
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, errTextOutsideRoot
				}
				continue
			}
			parent := stack[len(stack)-1]
			if k := len(parent.Children); k > 0 && parent.Children[k-1].IsText() {
				parent.Children[k-1].Text += string(t)
			} else {
				parent.Children = append(parent.Children, &Node{Label: TextLabel, Text: string(t)})
			}
		}
	}

	if root == nil {
		return nil, errNoRoot
	}
	return root, nil
}
