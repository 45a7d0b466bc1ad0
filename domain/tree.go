package domain

import (
	"sort"
	"strings"
)

// Flatten returns every node of the forest in pre-order: each node before its
// children, siblings in their given order. The input is not modified.
func Flatten(forest []CategoryNode) []CategoryNode {
	out := make([]CategoryNode, 0, len(forest))
	stack := make([]*CategoryNode, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, &forest[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, *n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, &n.Children[i])
		}
	}
	return out
}

func IDs(nodes []CategoryNode) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// Tree is an arena view of a forest snapshot: nodes by id plus a
// children-by-parent index. Parent links come from the nesting of the
// snapshot, root nodes are indexed under "".
type Tree struct {
	nodes    map[string]CategoryNode
	parents  map[string]string
	children map[string][]string
	order    []string
}

func NewTree(forest []CategoryNode) *Tree {
	t := &Tree{
		nodes:    make(map[string]CategoryNode),
		parents:  make(map[string]string),
		children: make(map[string][]string),
	}

	type frame struct {
		node   *CategoryNode
		parent string
	}
	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: &forest[i]})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		id := f.node.ID
		if _, dup := t.nodes[id]; dup {
			continue
		}
		t.nodes[id] = *f.node
		t.parents[id] = f.parent
		t.children[f.parent] = append(t.children[f.parent], id)
		t.order = append(t.order, id)
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: &f.node.Children[i], parent: id})
		}
	}
	return t
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) Contains(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

func (t *Tree) Node(id string) (CategoryNode, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Parent returns the parent id of a node ("" for roots).
func (t *Tree) Parent(id string) (string, bool) {
	p, ok := t.parents[id]
	return p, ok
}

func (t *Tree) Children(id string) []string {
	return append([]string(nil), t.children[id]...)
}

func (t *Tree) Roots() []string {
	return t.Children("")
}

// IDs returns all ids in pre-order.
func (t *Tree) IDs() []string {
	return append([]string(nil), t.order...)
}

// Ancestors returns the chain of parent ids from the direct parent up to the root.
func (t *Tree) Ancestors(id string) []string {
	var out []string
	cur, ok := t.parents[id]
	for steps := 0; ok && cur != "" && steps < len(t.nodes); steps++ {
		out = append(out, cur)
		cur, ok = t.parents[cur]
	}
	return out
}

// IsDescendant reports whether id sits strictly below ancestorID.
func (t *Tree) IsDescendant(ancestorID, id string) bool {
	if ancestorID == "" {
		return false
	}
	for _, a := range t.Ancestors(id) {
		if a == ancestorID {
			return true
		}
	}
	return false
}

// Subtree returns id and all of its descendants in pre-order.
func (t *Tree) Subtree(id string) []string {
	if !t.Contains(id) {
		return nil
	}
	var out []string
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		kids := t.children[cur]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// BuildForest nests flat rows by parent_id. Siblings are ordered by sort
// order, then name, then id. Rows whose parent is absent become roots; rows
// only reachable through a parent cycle are dropped.
func BuildForest(rows []CategoryNode) []CategoryNode {
	present := make(map[string]bool, len(rows))
	for _, r := range rows {
		present[r.ID] = true
	}

	byParent := map[string][]CategoryNode{}
	var roots []CategoryNode
	for _, r := range rows {
		r.Children = nil
		if r.IsRoot() || !present[*r.ParentID] {
			roots = append(roots, r)
			continue
		}
		byParent[*r.ParentID] = append(byParent[*r.ParentID], r)
	}

	sortSiblings(roots)
	for pid := range byParent {
		sortSiblings(byParent[pid])
	}

	visited := make(map[string]bool, len(rows))
	var build func(n CategoryNode) CategoryNode
	build = func(n CategoryNode) CategoryNode {
		visited[n.ID] = true
		kids := byParent[n.ID]
		n.Children = make([]CategoryNode, 0, len(kids))
		for _, k := range kids {
			if visited[k.ID] {
				continue
			}
			n.Children = append(n.Children, build(k))
		}
		return n
	}

	out := make([]CategoryNode, 0, len(roots))
	for _, r := range roots {
		if visited[r.ID] {
			continue
		}
		out = append(out, build(r))
	}
	return out
}

func sortSiblings(nodes []CategoryNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return compareCategoryNodes(nodes[i], nodes[j]) < 0
	})
}

func compareCategoryNodes(a, b CategoryNode) int {
	if a.SortOrder != b.SortOrder {
		if a.SortOrder < b.SortOrder {
			return -1
		}
		return 1
	}
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
