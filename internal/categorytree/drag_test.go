package categorytree

import (
	"errors"
	"testing"

	"goldshop/domain"
)

func TestComputeMove(t *testing.T) {
	tree := domain.NewTree(shopForest())

	tests := []struct {
		name       string
		dragged    string
		target     string
		pos        Position
		wantParent *string
		wantOrder  int
	}{
		{"after sibling", "2", "3", PositionAfter, strPtr("1"), 2},
		{"before sibling clamps at zero", "3", "2", PositionBefore, strPtr("1"), 0},
		{"before sibling", "4", "3", PositionBefore, strPtr("1"), 0},
		{"inside", "5", "3", PositionInside, strPtr("3"), 0},
		{"after root", "4", "5", PositionAfter, nil, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ComputeMove(tree, tt.dragged, tt.target, tt.pos)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.ID != tt.dragged {
				t.Fatalf("expected id %s, got %s", tt.dragged, req.ID)
			}
			if (tt.wantParent == nil) != (req.NewParentID == nil) {
				t.Fatalf("expected parent %v, got %v", tt.wantParent, req.NewParentID)
			}
			if tt.wantParent != nil && *req.NewParentID != *tt.wantParent {
				t.Fatalf("expected parent %s, got %s", *tt.wantParent, *req.NewParentID)
			}
			if req.NewSortOrder == nil || *req.NewSortOrder != tt.wantOrder {
				t.Fatalf("expected sort order %d, got %v", tt.wantOrder, req.NewSortOrder)
			}
		})
	}
}

func TestComputeMove_Rejects(t *testing.T) {
	tree := domain.NewTree(shopForest())

	if _, err := ComputeMove(tree, "2", "2", PositionInside); !errors.Is(err, ErrDropOnSelf) {
		t.Fatalf("expected ErrDropOnSelf, got %v", err)
	}
	if _, err := ComputeMove(tree, "1", "4", PositionInside); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle for a drop into the subtree, got %v", err)
	}
	if _, err := ComputeMove(tree, "1", "4", PositionAfter); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle for a drop next to a descendant, got %v", err)
	}
	if _, err := ComputeMove(tree, "9", "1", PositionInside); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
	if _, err := ComputeMove(tree, "2", "3", "below"); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
}

func TestDragController_Lifecycle(t *testing.T) {
	tree := domain.NewTree(shopForest())
	var d DragController

	if err := d.Hover("3", PositionAfter); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("expected ErrNotDragging while idle, got %v", err)
	}

	d.Start("2")
	if d.State() != DragDragging {
		t.Fatalf("expected dragging, got %s", d.State())
	}
	if _, err := d.Drop(tree); !errors.Is(err, ErrNoDropTarget) {
		t.Fatalf("expected ErrNoDropTarget, got %v", err)
	}
	if d.State() != DragIdle {
		t.Fatalf("expected idle after drop, got %s", d.State())
	}

	d.Start("2")
	if err := d.Hover("3", PositionAfter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.State() != DragHovering {
		t.Fatalf("expected hovering, got %s", d.State())
	}
	req, err := d.Drop(tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ID != "2" || *req.NewParentID != "1" || *req.NewSortOrder != 2 {
		t.Fatalf("expected {2 1 2}, got {%s %s %d}", req.ID, *req.NewParentID, *req.NewSortOrder)
	}
}

func TestDragController_CancelAndRestart(t *testing.T) {
	var d DragController
	d.Start("2")
	_ = d.Hover("3", PositionInside)
	d.Cancel()
	if d.State() != DragIdle || d.Dragged() != "" {
		t.Fatalf("expected cancel to reset, got %s %q", d.State(), d.Dragged())
	}

	d.Start("2")
	_ = d.Hover("3", PositionInside)
	d.Start("4")
	if target, _ := d.Target(); target != "" || d.Dragged() != "4" {
		t.Fatalf("expected restart to drop the old target, got %q dragging %q", target, d.Dragged())
	}
}
