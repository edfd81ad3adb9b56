// Package compare serialises layout results into the JSON shape used by the
// reference snapshots and diffs them within a small epsilon.
package compare

import (
	"fmt"

	json "github.com/json-iterator/go"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/layout"
)

// skippedTags never produce boxes and are left out of snapshots.
var skippedTags = map[string]bool{
	"head": true, "meta": true, "title": true, "link": true,
	"style": true, "script": true, "base": true,
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is one element in a geometry snapshot.
type Node struct {
	Tag      string `json:"tag"`
	ID       string `json:"id"`
	Rect     Rect   `json:"rect"`
	Children []Node `json:"children"`
}

// Snapshot captures the element subtree rooted at body, or at html when the
// document has no body.
func Snapshot(t *boxtree.Tree, res *layout.Result) (Node, error) {
	root, ok := t.FindByTag("body")
	if !ok {
		if root, ok = t.FindByTag("html"); !ok {
			return Node{}, fmt.Errorf("snapshot: document has no body or html element")
		}
	}
	return snapshotNode(t, res, root), nil
}

func snapshotNode(t *boxtree.Tree, res *layout.Result, key boxtree.NodeKey) Node {
	n := t.Node(key)
	r, _ := res.Rect(key)
	out := Node{
		Tag:      n.Tag,
		ID:       n.ID(),
		Rect:     Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height},
		Children: make([]Node, 0),
	}
	for _, c := range n.Children {
		child := t.Node(c)
		if child == nil || child.Kind != boxtree.KindElement || skippedTags[child.Tag] {
			continue
		}
		out.Children = append(out.Children, snapshotNode(t, res, c))
	}
	return out
}

// Marshal renders a snapshot as indented JSON.
func Marshal(n Node) ([]byte, error) {
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}
