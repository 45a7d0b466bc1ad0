package categorytree

import (
	"goldshop/domain"
)

const (
	DefaultIndentUnit = 20
	DefaultMaxDepth   = 32
)

type Action string

const (
	ActionAddChild Action = "add-child"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
)

// RowActions are the per-row controls, in display order.
var RowActions = []Action{ActionAddChild, ActionEdit, ActionDelete}

func ParseAction(s string) (Action, error) {
	for _, a := range RowActions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", ErrUnknownAction
}

type Row struct {
	Node     domain.CategoryNode
	Depth    int
	Indent   int
	Leaf     bool
	Expanded bool
	Selected bool
	Active   bool
	Muted    bool
	// Truncated is set when the row is expanded but its children sit below
	// the renderer's depth limit.
	Truncated bool
}

type Renderer struct {
	IndentUnit int
	MaxDepth   int
}

func NewRenderer(indentUnit, maxDepth int) Renderer {
	if indentUnit <= 0 {
		indentUnit = DefaultIndentUnit
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return Renderer{IndentUnit: indentUnit, MaxDepth: maxDepth}
}

// Rows lays out the visible part of the forest: every root, and the children
// of every expanded node, in pre-order.
func (r Renderer) Rows(forest []domain.CategoryNode, expanded, selected *IDSet, activeID string) []Row {
	r = NewRenderer(r.IndentUnit, r.MaxDepth)

	type frame struct {
		node  *domain.CategoryNode
		depth int
	}
	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: &forest[i]})
	}

	var rows []Row
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := f.node

		leaf := len(n.Children) == 0
		row := Row{
			Node:     *n,
			Depth:    f.depth,
			Indent:   f.depth * r.IndentUnit,
			Leaf:     leaf,
			Expanded: !leaf && expanded.Has(n.ID),
			Selected: selected.Has(n.ID),
			Active:   activeID != "" && activeID == n.ID,
			Muted:    !n.IsActive,
		}
		row.Node.Children = nil

		if row.Expanded {
			if f.depth+1 >= r.MaxDepth {
				row.Truncated = true
			} else {
				for i := len(n.Children) - 1; i >= 0; i-- {
					stack = append(stack, frame{node: &n.Children[i], depth: f.depth + 1})
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Target is the part of a row that received a click.
type Target int

const (
	TargetBody Target = iota
	TargetExpander
	TargetCheckbox
	TargetAction
)

type Click struct {
	NodeID string
	Target Target
	Action Action
}

type Callbacks struct {
	OnSelect         func(node domain.CategoryNode)
	OnToggleExpanded func(id string)
	OnToggleSelected func(id string)
	OnAction         func(action Action, node domain.CategoryNode)
}

// Dispatch routes a click to exactly one callback. Expander, checkbox and
// action controls stop propagation: they never reach OnSelect.
func Dispatch(tree *domain.Tree, click Click, cb Callbacks) error {
	node, ok := tree.Node(click.NodeID)
	if !ok {
		return ErrUnknownNode
	}

	switch click.Target {
	case TargetExpander:
		if len(tree.Children(node.ID)) == 0 {
			return nil
		}
		if cb.OnToggleExpanded != nil {
			cb.OnToggleExpanded(node.ID)
		}
	case TargetCheckbox:
		if cb.OnToggleSelected != nil {
			cb.OnToggleSelected(node.ID)
		}
	case TargetAction:
		if _, err := ParseAction(string(click.Action)); err != nil {
			return err
		}
		if cb.OnAction != nil {
			cb.OnAction(click.Action, node)
		}
	default:
		if cb.OnSelect != nil {
			cb.OnSelect(node)
		}
	}
	return nil
}
