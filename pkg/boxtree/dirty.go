package boxtree

import "sort"

// DirtySet names the nodes whose style or structure changed since the last
// layout pass. It is an immutable value: With and Union return new sets, so
// a set handed to the layout engine can't change under it.
type DirtySet struct {
	keys map[NodeKey]struct{}
}

func NewDirtySet(keys ...NodeKey) DirtySet {
	d := DirtySet{keys: make(map[NodeKey]struct{}, len(keys))}
	for _, k := range keys {
		d.keys[k] = struct{}{}
	}
	return d
}

// With returns a copy of d that also contains keys.
func (d DirtySet) With(keys ...NodeKey) DirtySet {
	out := NewDirtySet(keys...)
	for k := range d.keys {
		out.keys[k] = struct{}{}
	}
	return out
}

// Union returns the keys in either set.
func (d DirtySet) Union(other DirtySet) DirtySet {
	return d.With(other.Keys()...)
}

func (d DirtySet) Has(key NodeKey) bool {
	_, ok := d.keys[key]
	return ok
}

func (d DirtySet) Len() int    { return len(d.keys) }
func (d DirtySet) Empty() bool { return len(d.keys) == 0 }

// Keys returns the members in ascending order.
func (d DirtySet) Keys() []NodeKey {
	out := make([]NodeKey, 0, len(d.keys))
	for k := range d.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Roots reduces the set to its topmost members: keys with a dirty ancestor
// are dropped, and keys no longer in the tree are ignored.
func (d DirtySet) Roots(t *Tree) []NodeKey {
	out := make([]NodeKey, 0)
	for _, k := range d.Keys() {
		if !t.Has(k) {
			continue
		}
		covered := false
		for _, a := range t.Ancestors(k) {
			if d.Has(a) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, k)
		}
	}
	return out
}
