// Package fixture turns an HTML test page into the DOM update stream the
// layouter consumes, plus the scripts the page carries.
package fixture

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/css"
	"github.com/BigBadE/valor-sub000/pkg/layouter"
)

// ResetCSS is applied before the page's own styles so results line up with
// reference snapshots taken in a browser with the same reset.
const ResetCSS = `*, *::before, *::after { box-sizing: border-box; margin: 0; padding: 0; font-family: monospace; }
html, body { margin: 0; padding: 0; }
h1, h2, h3, h4, h5, h6, p { margin: 0; padding: 0; }
ul, ol { margin: 0; padding: 0; list-style: none; }`

// ResetSheet parses ResetCSS.
func ResetSheet() *css.Stylesheet {
	return css.ParseStylesheet(ResetCSS)
}

// Fixture is a parsed test page.
type Fixture struct {
	// Name is the file name without extension, or "inline".
	Name    string
	Path    string
	Updates []layouter.Update
	// Scripts holds inline <script> bodies in document order.
	Scripts []string
}

// LoadFile parses the fixture at path.
func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	fx, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	fx.Path = path
	fx.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return fx, nil
}

// Load parses an HTML document. Keys are assigned in document order
// starting at 1.
func Load(r io.Reader) (*Fixture, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	b := &builder{next: boxtree.Root + 1}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		b.visit(c, boxtree.Root)
	}
	b.updates = append(b.updates, layouter.EndOfDocument{})
	return &Fixture{Name: "inline", Updates: b.updates, Scripts: b.scripts}, nil
}

// Build applies the fixture to a new layouter with the reset sheet installed
// ahead of any options.
func (f *Fixture) Build(opts ...layouter.Option) (*layouter.Layouter, error) {
	all := append([]layouter.Option{layouter.WithStylesheets(ResetSheet())}, opts...)
	l := layouter.New(all...)
	if err := l.Apply(f.Updates...); err != nil {
		return nil, fmt.Errorf("build %s: %w", f.Name, err)
	}
	return l, nil
}

type builder struct {
	next    boxtree.NodeKey
	updates []layouter.Update
	scripts []string
}

func (b *builder) visit(n *html.Node, parent boxtree.NodeKey) {
	switch n.Type {
	case html.ElementNode:
		key := b.next
		b.next++
		b.updates = append(b.updates, layouter.InsertElement{Parent: parent, Node: key, Tag: n.Data, Pos: -1})
		for _, a := range n.Attr {
			if a.Namespace != "" {
				continue
			}
			b.updates = append(b.updates, layouter.SetAttr{Node: key, Name: a.Key, Value: a.Val})
		}
		if n.Data == "script" && !hasAttr(n, "src") {
			b.scripts = append(b.scripts, textOf(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			b.visit(c, key)
		}
	case html.TextNode:
		key := b.next
		b.next++
		b.updates = append(b.updates, layouter.InsertText{Parent: parent, Node: key, Text: n.Data, Pos: -1})
	}
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// Discover returns the .html files under dir, sorted by path.
func Discover(dir string) ([]string, error) {
	paths := make([]string, 0)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".html") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover fixtures in %s: %w", dir, err)
	}
	return paths, nil
}
