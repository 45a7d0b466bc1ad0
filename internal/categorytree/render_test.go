package categorytree

import (
	"errors"
	"testing"

	"goldshop/domain"
)

func rowIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Node.ID
	}
	return ids
}

func TestRenderer_CollapsedShowsRootsOnly(t *testing.T) {
	rows := NewRenderer(0, 0).Rows(shopForest(), NewIDSet(), NewIDSet(), "")

	if got := rowIDs(rows); len(got) != 2 || got[0] != "1" || got[1] != "5" {
		t.Fatalf("expected roots [1 5], got %v", got)
	}
	if rows[0].Leaf {
		t.Fatalf("expected Jewelry to have an expander")
	}
	if !rows[1].Leaf {
		t.Fatalf("expected Bullion to render as a leaf")
	}
	if !rows[1].Muted {
		t.Fatalf("expected inactive Bullion to be muted")
	}
}

func TestRenderer_IndentFollowsDepth(t *testing.T) {
	expanded := NewIDSet("1", "2")
	rows := NewRenderer(20, 0).Rows(shopForest(), expanded, NewIDSet("4"), "3")

	want := []struct {
		id     string
		depth  int
		indent int
	}{
		{"1", 0, 0},
		{"2", 1, 20},
		{"4", 2, 40},
		{"3", 1, 20},
		{"5", 0, 0},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %v", len(want), rowIDs(rows))
	}
	for i, w := range want {
		r := rows[i]
		if r.Node.ID != w.id || r.Depth != w.depth || r.Indent != w.indent {
			t.Fatalf("row %d: expected %s depth %d indent %d, got %s depth %d indent %d",
				i, w.id, w.depth, w.indent, r.Node.ID, r.Depth, r.Indent)
		}
		if r.Node.Children != nil {
			t.Fatalf("row %d: expected children to be stripped", i)
		}
	}
	if !rows[2].Selected || rows[1].Selected {
		t.Fatalf("expected only Wedding bands to be checked")
	}
	if !rows[3].Active {
		t.Fatalf("expected Necklaces to be the active row")
	}
}

func TestRenderer_TruncatesBelowMaxDepth(t *testing.T) {
	rows := NewRenderer(10, 2).Rows(shopForest(), NewIDSet("1", "2"), NewIDSet(), "")

	got := rowIDs(rows)
	if len(got) != 4 {
		t.Fatalf("expected [1 2 3 5], got %v", got)
	}
	if !rows[1].Truncated {
		t.Fatalf("expected Rings to be truncated at depth limit")
	}
}

func TestDispatch_StopsPropagation(t *testing.T) {
	tree := domain.NewTree(shopForest())

	var selected, toggledExpand, toggledSelect int
	var action Action
	cb := Callbacks{
		OnSelect:         func(domain.CategoryNode) { selected++ },
		OnToggleExpanded: func(string) { toggledExpand++ },
		OnToggleSelected: func(string) { toggledSelect++ },
		OnAction:         func(a Action, _ domain.CategoryNode) { action = a },
	}

	if err := Dispatch(tree, Click{NodeID: "1", Target: TargetExpander}, cb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Dispatch(tree, Click{NodeID: "1", Target: TargetCheckbox}, cb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Dispatch(tree, Click{NodeID: "1", Target: TargetAction, Action: ActionEdit}, cb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected != 0 {
		t.Fatalf("expected controls not to select the row, got %d selects", selected)
	}
	if toggledExpand != 1 || toggledSelect != 1 || action != ActionEdit {
		t.Fatalf("expected one expand, one check and edit, got %d %d %q", toggledExpand, toggledSelect, action)
	}

	if err := Dispatch(tree, Click{NodeID: "1"}, cb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected != 1 {
		t.Fatalf("expected body click to select, got %d", selected)
	}
}

func TestDispatch_LeafExpanderIsNoop(t *testing.T) {
	tree := domain.NewTree(shopForest())
	called := false
	err := Dispatch(tree, Click{NodeID: "5", Target: TargetExpander}, Callbacks{
		OnToggleExpanded: func(string) { called = true },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatalf("expected no expand toggle on a leaf")
	}
}

func TestDispatch_Errors(t *testing.T) {
	tree := domain.NewTree(shopForest())

	if err := Dispatch(tree, Click{NodeID: "missing"}, Callbacks{}); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
	err := Dispatch(tree, Click{NodeID: "1", Target: TargetAction, Action: "archive"}, Callbacks{})
	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}
