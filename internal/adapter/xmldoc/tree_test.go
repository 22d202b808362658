package xmldoc

import "testing"

func TestReadTreeMergesText(t *testing.T) {
	root, err := ReadTree(`<a x="1">one<!-- c -->two<![CDATA[<three>]]><b/>four</a>`)
	if err != nil {
		t.Fatalf("ReadTree() failed: %v", err)
	}
	if root.Label != "a" {
		t.Fatalf("root label = %q, want a", root.Label)
	}
	if v, ok := root.Attr("x"); !ok || v != "1" {
		t.Errorf("Attr(x) = %q, %v", v, ok)
	}
	if len(root.Children) != 3 {
		t.Fatalf("len(Children) = %d, want 3", len(root.Children))
	}
	if got := root.Children[0].Text; got != "onetwo<three>" {
		t.Errorf("first text = %q, want onetwo<three>", got)
	}
	if root.Children[1].Label != "b" || !root.Children[2].IsText() {
		t.Errorf("unexpected children: %+v", root.Children)
	}
	if got := root.InnerText(); got != "onetwo<three>four" {
		t.Errorf("InnerText() = %q", got)
	}
}

func TestReadTreeErrors(t *testing.T) {
	for _, src := range []string{"", "   ", "<a/><b/>", "<a>", "text"} {
		if _, err := ReadTree(src); err == nil {
			t.Errorf("ReadTree(%q) succeeded, want error", src)
		}
	}
}

func TestOuterXML(t *testing.T) {
	root, err := ReadTree(`<see cref="a&amp;b"><x>1 &lt; 2</x></see>`)
	if err != nil {
		t.Fatalf("ReadTree() failed: %v", err)
	}
	if got, want := root.OuterXML(), `<see cref="a&amp;b"><x>1 &lt; 2</x></see>`; got != want {
		t.Errorf("OuterXML() = %q, want %q", got, want)
	}
}
