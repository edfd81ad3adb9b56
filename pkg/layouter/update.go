package layouter

import (
	"fmt"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
)

// Update is one DOM change streamed from the parser or a script.
type Update interface {
	fmt.Stringer
	isUpdate()
}

// InsertElement creates (or moves) an element with a caller-chosen key. Pos
// is the index in the parent's child list; a negative or too large index
// appends.
type InsertElement struct {
	Parent boxtree.NodeKey
	Node   boxtree.NodeKey
	Tag    string
	Pos    int
}

// InsertText creates a text node.
type InsertText struct {
	Parent boxtree.NodeKey
	Node   boxtree.NodeKey
	Text   string
	Pos    int
}

// SetAttr sets an attribute. The id, class and style attributes feed the
// cascade.
type SetAttr struct {
	Node  boxtree.NodeKey
	Name  string
	Value string
}

// RemoveNode removes a node and its subtree.
type RemoveNode struct {
	Node boxtree.NodeKey
}

// EndOfDocument marks the end of the initial parse.
type EndOfDocument struct{}

func (InsertElement) isUpdate() {}
func (InsertText) isUpdate()    {}
func (SetAttr) isUpdate()       {}
func (RemoveNode) isUpdate()    {}
func (EndOfDocument) isUpdate() {}

func (u InsertElement) String() string {
	return fmt.Sprintf("insert <%s> %d under %d at %d", u.Tag, u.Node, u.Parent, u.Pos)
}

func (u InsertText) String() string {
	return fmt.Sprintf("insert text %d under %d at %d", u.Node, u.Parent, u.Pos)
}

func (u SetAttr) String() string {
	return fmt.Sprintf("set %s=%q on %d", u.Name, u.Value, u.Node)
}

func (u RemoveNode) String() string { return fmt.Sprintf("remove %d", u.Node) }

func (EndOfDocument) String() string { return "end of document" }
