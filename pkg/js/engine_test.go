package js

import (
	"errors"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BigBadE/valor-sub000/pkg/boxtree"
	"github.com/BigBadE/valor-sub000/pkg/layout"
	"github.com/BigBadE/valor-sub000/pkg/layouter"
)

const (
	bodyKey boxtree.NodeKey = 1
	boxKey  boxtree.NodeKey = 2
	spanKey boxtree.NodeKey = 3
	listKey boxtree.NodeKey = 4
)

// newDoc builds body > (div#box.card > span#label), ul#list > li.item x3.
func newDoc(t *testing.T) *layouter.Layouter {
	t.Helper()
	l := layouter.New(layouter.WithEngineOptions(layout.WithViewport(800, 600)))
	require.NoError(t, l.Apply(
		layouter.InsertElement{Parent: boxtree.Root, Node: bodyKey, Tag: "body", Pos: -1},
		layouter.InsertElement{Parent: bodyKey, Node: boxKey, Tag: "div", Pos: -1},
		layouter.SetAttr{Node: boxKey, Name: "id", Value: "box"},
		layouter.SetAttr{Node: boxKey, Name: "class", Value: "card"},
		layouter.SetAttr{Node: boxKey, Name: "style", Value: "width: 100px; height: 20px"},
		layouter.InsertElement{Parent: boxKey, Node: spanKey, Tag: "span", Pos: -1},
		layouter.SetAttr{Node: spanKey, Name: "id", Value: "label"},
		layouter.InsertElement{Parent: bodyKey, Node: listKey, Tag: "ul", Pos: -1},
		layouter.SetAttr{Node: listKey, Name: "id", Value: "list"},
	))
	for i := boxtree.NodeKey(5); i < 8; i++ {
		require.NoError(t, l.Apply(
			layouter.InsertElement{Parent: listKey, Node: i, Tag: "li", Pos: -1},
			layouter.SetAttr{Node: i, Name: "class", Value: "item"},
			layouter.SetAttr{Node: i, Name: "style", Value: "height: 10px"},
		))
	}
	require.NoError(t, l.ApplyUpdate(layouter.EndOfDocument{}))
	return l
}

func requireAllPassed(t *testing.T, e *Engine, want int) {
	t.Helper()
	assert.Len(t, e.Assertions(), want)
	for _, f := range e.Failures() {
		t.Errorf("%s: %s failed: %s", f.Script, f.Name, f.Details)
	}
}

func TestGetElementByIdAndAssertions(t *testing.T) {
	e := New(newDoc(t))
	err := e.Execute([]string{`
		var box = document.getElementById("box");
		assert("found", box !== null);
		assert("tag", box.tagName === "DIV", box.tagName);
		assert("identity", box === document.getElementById("box"));
		assert("missing", document.getElementById("nope") === null);
	`, `assert("second script", false, "expected failure")`})
	require.NoError(t, err)

	all := e.Assertions()
	require.Len(t, all, 5)
	assert.Equal(t, "script-0", all[0].Script)
	assert.Equal(t, "script-1", all[4].Script)

	failures := e.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, Assertion{Script: "script-1", Name: "second script", Details: "expected failure"}, failures[0])
}

func TestAssertNeedsTwoArguments(t *testing.T) {
	e := New(newDoc(t))
	err := e.Run("bad", `assert("only a name")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script bad")
}

func TestBoundingRectReflowsAfterStyleChange(t *testing.T) {
	doc := newDoc(t)
	e := New(doc)
	require.NoError(t, e.Run("reflow", `
		var box = document.getElementById("box");
		var before = box.getBoundingClientRect();
		assert("initial height", before.height === 20, before.height);
		assert("initial width", before.width === 100, before.width);

		box.style.height = "45px";
		assert("style reads back", box.style.height === "45px", box.style.height);
		var after = box.getBoundingClientRect();
		assert("new height", after.height === 45, after.height);
		assert("bottom", after.bottom === after.top + 45, after.bottom);

		var list = document.getElementById("list");
		assert("list moved down", list.getBoundingClientRect().top === 45, list.offsetTop);
	`))
	requireAllPassed(t, e, 6)

	r, ok := doc.Layout().Rect(boxKey)
	require.True(t, ok)
	assert.Equal(t, 45.0, r.Height)
	assert.Equal(t, "width: 100px; height: 45px", doc.Tree().Node(boxKey).Attrs["style"])
}

func TestCreateElementAndAppend(t *testing.T) {
	doc := newDoc(t)
	e := New(doc)
	require.NoError(t, e.Run("create", `
		var el = document.createElement("DIV");
		el.id = "fresh";
		el.setAttribute("style", "width: 30px; height: 10px");
		assert("detached rect", el.getBoundingClientRect().width === 0);
		assert("not in document", document.getElementById("fresh") === null);

		document.body.appendChild(el);
		assert("parent", el.parentElement === document.body);
		assert("found", document.getElementById("fresh") === el);
		assert("width", el.offsetWidth === 30, el.offsetWidth);
		assert("last child", document.body.lastElementChild === el);
	`))
	requireAllPassed(t, e, 6)

	key, ok := doc.Tree().FindByID("fresh")
	require.True(t, ok)
	parent, _ := doc.Tree().Parent(key)
	assert.Equal(t, bodyKey, parent)
}

func TestRemovedNodesCanBeReinserted(t *testing.T) {
	doc := newDoc(t)
	e := New(doc)
	require.NoError(t, e.Run("remove", `
		var box = document.getElementById("box");
		var label = document.getElementById("label");
		document.body.removeChild(box);
		assert("box detached", box.parentElement === null);
		assert("label gone", document.getElementById("label") === null);
		assert("label keeps parent", label.parentElement === box);

		var list = document.getElementById("list");
		document.body.insertBefore(box, null);
		assert("reinserted", box.parentElement === document.body);
		assert("after list", list.nextElementSibling === box);
		assert("label back", document.getElementById("label") === label);
		assert("style kept", box.offsetHeight === 20, box.offsetHeight);
	`))
	requireAllPassed(t, e, 7)

	assert.Equal(t, []boxtree.NodeKey{listKey, boxKey}, doc.Tree().Children(bodyKey))
	assert.Equal(t, []boxtree.NodeKey{spanKey}, doc.Tree().Children(boxKey))
}

func TestInsertBeforeAndCycles(t *testing.T) {
	e := New(newDoc(t))
	require.NoError(t, e.Run("order", `
		var list = document.getElementById("list");
		var items = list.children;
		list.insertBefore(items[2], items[0]);
		assert("moved first", list.firstElementChild === items[2]);
		assert("count", list.childElementCount === 3);
	`))
	requireAllPassed(t, e, 2)

	err := e.Run("cycle", `
		var box = document.getElementById("box");
		document.getElementById("label").appendChild(box);
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contains the parent")
}

func TestSelectorsAndClassList(t *testing.T) {
	doc := newDoc(t)
	e := New(doc)
	require.NoError(t, e.Run("select", `
		assert("all items", document.querySelectorAll("li.item").length === 3);
		assert("by class", document.getElementsByClassName("item").length === 3);
		assert("by tag", document.getElementsByTagName("li").length === 3);
		var box = document.querySelector("#box");
		assert("id selector", box === document.getElementById("box"));
		assert("matches", box.matches("div.card"));
		assert("scoped", box.querySelector("li") === null);

		box.classList.add("wide", "card");
		assert("add", box.className === "card wide", box.className);
		assert("toggle off", box.classList.toggle("card") === false);
		assert("contains", !box.classList.contains("card") && box.classList.length === 1);
		assert("replace", box.classList.replace("wide", "narrow") && box.classList[0] === "narrow");
	`))
	requireAllPassed(t, e, 10)
	assert.Equal(t, "narrow", doc.Tree().Node(boxKey).Attrs["class"])
}

func TestTextContent(t *testing.T) {
	doc := newDoc(t)
	e := New(doc)
	require.NoError(t, e.Run("text", `
		var label = document.getElementById("label");
		label.textContent = "hi";
		assert("text", label.textContent === "hi");
		assert("one child", label.childNodes.length === 1 && label.firstChild.nodeType === 3);
		assert("box text", document.getElementById("box").textContent === "hi");
	`))
	requireAllPassed(t, e, 3)

	children := doc.Tree().Children(spanKey)
	require.Len(t, children, 1)
	assert.Equal(t, "hi", doc.Tree().Node(children[0]).Text)
}

func TestScriptTimeout(t *testing.T) {
	e := New(newDoc(t), WithTimeout(20*time.Millisecond))
	err := e.Run("spin", `for (;;) {}`)
	require.Error(t, err)
	var interrupted *goja.InterruptedError
	assert.True(t, errors.As(err, &interrupted), "got %v", err)

	// The interrupt is cleared for the next script.
	require.NoError(t, e.Run("after", `assert("runs", true)`))
}

func TestConsoleLogsThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := New(newDoc(t), WithLogger(zap.New(core)))
	require.NoError(t, e.Run("console", `console.log("width", 42); console.warn("careful")`))

	entries := logs.FilterField(zap.String("source", "console")).All()
	require.Len(t, entries, 2)
	assert.Equal(t, "width 42", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}
