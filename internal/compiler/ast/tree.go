package ast

import (
	"sort"
	"strings"
)

// Tree is a theme property tree. Values are either string leaves or nested
// Trees (property groups).
type Tree map[string]any

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for k, v := range t {
		if sub, ok := v.(Tree); ok {
			out[k] = sub.Clone()
			continue
		}
		out[k] = v
	}
	return out
}

// Group returns the nested group stored under key.
func (t Tree) Group(key string) (Tree, bool) {
	sub, ok := t[key].(Tree)
	return sub, ok
}

// Lookup follows a dotted path such as "colors.primary".
func (t Tree) Lookup(path string) (any, bool) {
	var cur any = t
	for _, part := range strings.Split(path, ".") {
		group, ok := cur.(Tree)
		if !ok {
			return nil, false
		}
		cur, ok = group[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Leaf returns the string stored at a dotted path.
func (t Tree) Leaf(path string) (string, bool) {
	v, ok := t.Lookup(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Flatten returns every leaf keyed by its dotted path.
func (t Tree) Flatten() map[string]string {
	out := make(map[string]string)
	t.flatten("", out)
	return out
}

func (t Tree) flatten(prefix string, out map[string]string) {
	for k, v := range t {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch val := v.(type) {
		case Tree:
			val.flatten(path, out)
		case string:
			out[path] = val
		}
	}
}

// Keys returns the tree's top-level keys in sorted order.
func (t Tree) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
