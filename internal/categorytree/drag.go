package categorytree

import (
	"goldshop/domain"
)

type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionInside Position = "inside"
)

func ParsePosition(s string) (Position, error) {
	switch p := Position(s); p {
	case PositionBefore, PositionAfter, PositionInside:
		return p, nil
	}
	return "", ErrInvalidPosition
}

type DragState int

const (
	DragIdle DragState = iota
	DragDragging
	DragHovering
)

func (s DragState) String() string {
	switch s {
	case DragDragging:
		return "dragging"
	case DragHovering:
		return "hovering"
	default:
		return "idle"
	}
}

// MoveRequest reparents one category. A nil NewParentID moves it to the root.
type MoveRequest struct {
	ID           string  `json:"id"`
	NewParentID  *string `json:"new_parent_id"`
	NewSortOrder *int    `json:"new_sort_order,omitempty"`
}

// ComputeMove turns a drop of draggedID relative to targetID into a move
// request. Drops onto the node itself or onto one of its descendants are
// rejected.
func ComputeMove(tree *domain.Tree, draggedID, targetID string, pos Position) (MoveRequest, error) {
	if draggedID == targetID {
		return MoveRequest{}, ErrDropOnSelf
	}
	if !tree.Contains(draggedID) {
		return MoveRequest{}, ErrUnknownNode
	}
	target, ok := tree.Node(targetID)
	if !ok {
		return MoveRequest{}, ErrUnknownNode
	}
	if tree.IsDescendant(draggedID, targetID) {
		return MoveRequest{}, ErrCycle
	}

	var parent *string
	if p, _ := tree.Parent(targetID); p != "" {
		parent = &p
	}

	var order int
	switch pos {
	case PositionInside:
		id := targetID
		parent = &id
		order = 0
	case PositionAfter:
		order = target.SortOrder + 1
	case PositionBefore:
		order = max(0, target.SortOrder-1)
	default:
		return MoveRequest{}, ErrInvalidPosition
	}

	return MoveRequest{
		ID:           draggedID,
		NewParentID:  parent,
		NewSortOrder: &order,
	}, nil
}

// DragController follows one drag gesture at a time:
// idle -> dragging -> hovering -> dropped -> idle.
type DragController struct {
	state    DragState
	dragged  string
	target   string
	position Position
}

// Start begins a drag. Any gesture still in progress is abandoned.
func (d *DragController) Start(id string) {
	d.state = DragDragging
	d.dragged = id
	d.target = ""
	d.position = ""
}

func (d *DragController) Hover(targetID string, pos Position) error {
	if d.state == DragIdle {
		return ErrNotDragging
	}
	if _, err := ParsePosition(string(pos)); err != nil {
		return err
	}
	d.state = DragHovering
	d.target = targetID
	d.position = pos
	return nil
}

// Cancel ends the gesture without a request.
func (d *DragController) Cancel() {
	*d = DragController{}
}

// Drop finishes the gesture over the last hovered target. The controller is
// idle afterwards whatever the outcome.
func (d *DragController) Drop(tree *domain.Tree) (MoveRequest, error) {
	state, dragged, target, pos := d.state, d.dragged, d.target, d.position
	d.Cancel()

	switch state {
	case DragIdle:
		return MoveRequest{}, ErrNotDragging
	case DragDragging:
		return MoveRequest{}, ErrNoDropTarget
	}
	return ComputeMove(tree, dragged, target, pos)
}

func (d *DragController) State() DragState {
	return d.state
}

func (d *DragController) Dragged() string {
	return d.dragged
}

func (d *DragController) Target() (string, Position) {
	return d.target, d.position
}
