// Package categorytree drives the category management screen: the bulk
// selection, the visible tree rows, drag reordering and bulk operations
// against the inventory service.
package categorytree

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"goldshop/domain"
)

type Dialog string

const (
	DialogNone       Dialog = ""
	DialogBulkUpdate Dialog = "bulk-update"
	DialogBulkMove   Dialog = "bulk-move"
	DialogBulkDelete Dialog = "bulk-delete"
	DialogCreate     Dialog = "create"
	DialogEdit       Dialog = "edit"
)

func ParseDialog(s string) (Dialog, error) {
	switch d := Dialog(s); d {
	case DialogBulkUpdate, DialogBulkMove, DialogBulkDelete, DialogCreate, DialogEdit:
		return d, nil
	}
	return DialogNone, ErrNoDialog
}

// Draft is the create/edit form of a single category.
type Draft struct {
	Name        string
	Description string
	Color       string
	Icon        string
	IsActive    bool
}

// State is a read-only snapshot of the screen.
type State struct {
	Loaded        bool
	Empty         bool
	Rows          []Row
	SelectedIDs   []string
	SelectedCount int
	CanBulk       bool
	Active        *domain.CategoryNode

	Dialog        Dialog
	Scope         []string
	Form          FieldChanges
	Draft         Draft
	Force         bool
	MoveTarget    string
	MoveTargets   []domain.CategoryNode
	DeleteBlocked bool

	Drag       DragState
	DragSource string

	ErrorCode string
	Error     string
}

// Controller owns the expanded and selected sets of one screen and applies
// user events to them one at a time. Requests run outside the lock; their
// results are dropped when the screen was unmounted in the meantime.
type Controller struct {
	mu         sync.Mutex
	svc        Service
	dispatcher *Dispatcher
	renderer   Renderer
	logger     *zap.Logger

	forest []domain.CategoryNode
	tree   *domain.Tree
	loaded bool
	stale  bool

	expanded *IDSet
	selected *IDSet
	active   string
	drag     DragController

	dialog     Dialog
	scope      []string
	form       FieldChanges
	draft      Draft
	force      bool
	moveTarget string

	errCode string
	errMsg  string

	mounted    bool
	generation uint64
}

func NewController(svc Service, renderer Renderer, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.L()
	}
	return &Controller{
		svc:        svc,
		dispatcher: NewDispatcher(svc),
		renderer:   renderer,
		logger:     logger,
		tree:       domain.NewTree(nil),
		expanded:   NewIDSet(),
		selected:   NewIDSet(),
	}
}

func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	c.mounted = true
	c.generation++
	c.mu.Unlock()

	return c.Reload(ctx)
}

// Unmount resets the ephemeral screen state. Responses still in flight are
// discarded when they arrive.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mounted = false
	c.generation++
	c.selected.Clear()
	c.expanded.Clear()
	c.active = ""
	c.drag.Cancel()
	c.closeDialogLocked()
}

func (c *Controller) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// Invalidate marks the tree stale; the next Snapshot refetches it.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return nil
	}
	gen := c.generation
	c.mu.Unlock()

	forest, err := c.svc.Tree(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(gen) {
		c.logger.Debug("Discarding category tree response for unmounted screen")
		return nil
	}
	if err != nil {
		c.logger.Warn("Failed to load category tree", zap.Error(err))
		c.setErrorLocked(err)
		return err
	}
	c.applyTreeLocked(forest)
	return nil
}

func (c *Controller) applyTreeLocked(forest []domain.CategoryNode) {
	c.forest = forest
	c.tree = domain.NewTree(forest)
	c.loaded = true
	c.stale = false

	ids := c.tree.IDs()
	if removed := c.selected.Prune(ids); removed > 0 {
		c.logger.Debug("Dropped stale ids from selection", zap.Int("removed", removed))
	}
	c.expanded.Prune(ids)
	if c.active != "" && !c.tree.Contains(c.active) {
		c.active = ""
	}
	if len(c.scope) > 0 {
		scope := c.scope[:0]
		for _, id := range c.scope {
			if c.tree.Contains(id) {
				scope = append(scope, id)
			}
		}
		c.scope = scope
		if len(scope) == 0 && c.dialog != DialogCreate {
			c.closeDialogLocked()
		}
	}
}

// Snapshot returns the current screen, refetching the tree first when it is
// stale. The state is returned even when the refetch fails.
func (c *Controller) Snapshot(ctx context.Context) (State, error) {
	c.mu.Lock()
	needsReload := c.mounted && (c.stale || !c.loaded)
	c.mu.Unlock()

	var err error
	if needsReload {
		err = c.Reload(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked(), err
}

func (c *Controller) stateLocked() State {
	selected := c.selected.IDs()
	st := State{
		Loaded:        c.loaded,
		Empty:         c.loaded && len(c.forest) == 0,
		Rows:          c.renderer.Rows(c.forest, c.expanded, c.selected, c.active),
		SelectedIDs:   selected,
		SelectedCount: len(selected),
		CanBulk:       len(selected) > 0,
		Dialog:        c.dialog,
		Scope:         append([]string(nil), c.scope...),
		Form:          c.form,
		Draft:         c.draft,
		Force:         c.force,
		MoveTarget:    c.moveTarget,
		Drag:          c.drag.State(),
		DragSource:    c.drag.Dragged(),
		ErrorCode:     c.errCode,
		Error:         c.errMsg,
	}
	if n, ok := c.tree.Node(c.active); ok {
		n.Children = nil
		st.Active = &n
	}
	switch c.dialog {
	case DialogBulkDelete:
		st.DeleteBlocked = DeleteBlocked(c.tree, c.scope)
	case DialogBulkMove, DialogBulkUpdate:
		st.MoveTargets = MoveTargets(c.tree, c.scope)
	}
	return st
}

func (c *Controller) Click(click Click) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Dispatch(c.tree, click, Callbacks{
		OnSelect:         func(n domain.CategoryNode) { c.active = n.ID },
		OnToggleExpanded: c.expanded.Toggle,
		OnToggleSelected: c.selected.Toggle,
		OnAction:         c.openActionLocked,
	})
}

func (c *Controller) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected.SelectAll(c.tree.IDs())
}

func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected.Clear()
}

func (c *Controller) ExpandAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded.SelectAll(c.tree.IDs())
}

func (c *Controller) CollapseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded.Clear()
}

func (c *Controller) openActionLocked(action Action, node domain.CategoryNode) {
	c.closeDialogLocked()
	c.scope = []string{node.ID}
	switch action {
	case ActionAddChild:
		c.dialog = DialogCreate
		c.draft = Draft{IsActive: true}
	case ActionEdit:
		c.dialog = DialogEdit
		c.draft = draftFrom(node)
	case ActionDelete:
		c.dialog = DialogBulkDelete
	}
}

// OpenDialog opens a bulk dialog over the current selection, or the create
// dialog for a new root category.
func (c *Controller) OpenDialog(d Dialog) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch d {
	case DialogBulkUpdate, DialogBulkMove, DialogBulkDelete:
		if c.selected.Count() == 0 {
			c.setErrorLocked(ErrEmptySelection)
			return ErrEmptySelection
		}
		c.closeDialogLocked()
		c.scope = c.selected.IDs()
	case DialogCreate:
		c.closeDialogLocked()
		c.draft = Draft{IsActive: true}
	default:
		return ErrNoDialog
	}
	c.dialog = d
	return nil
}

// Dialog returns the open dialog, DialogNone when there is none.
func (c *Controller) Dialog() Dialog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialog
}

func (c *Controller) CloseDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeDialogLocked()
}

func (c *Controller) closeDialogLocked() {
	c.dialog = DialogNone
	c.scope = nil
	c.form = FieldChanges{}
	c.draft = Draft{}
	c.force = false
	c.moveTarget = ""
	c.clearErrorLocked()
}

func (c *Controller) SetForm(f FieldChanges) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = f
}

func (c *Controller) SetDraft(d Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = d
}

func (c *Controller) SetForce(force bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.force = force
}

// SetMoveTarget picks the new parent for a bulk move; "" is the root.
func (c *Controller) SetMoveTarget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moveTarget = id
}

// Submit sends the open dialog's operation. On failure the dialog, its form
// and the selection stay as they are and the error is recorded; on success
// the dialog closes and the tree reloads.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	op, err := c.operationLocked()
	if err != nil {
		c.setErrorLocked(err)
		c.mu.Unlock()
		return err
	}
	tree, ids, gen := c.tree, append([]string(nil), c.scope...), c.generation
	c.clearErrorLocked()
	c.mu.Unlock()

	err = c.dispatcher.Dispatch(ctx, tree, ids, op)

	c.mu.Lock()
	if !c.current(gen) {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		if !IsLocal(err) {
			c.logger.Warn("Category operation failed", zap.String("dialog", string(c.dialog)), zap.Error(err))
		}
		c.setErrorLocked(err)
		c.mu.Unlock()
		return err
	}
	c.closeDialogLocked()
	c.mu.Unlock()

	return c.Reload(ctx)
}

func (c *Controller) operationLocked() (Operation, error) {
	switch c.dialog {
	case DialogBulkUpdate:
		return BulkUpdate{Fields: c.form}, nil
	case DialogBulkMove:
		return BulkMove{ParentID: c.moveTarget}, nil
	case DialogBulkDelete:
		return BulkDelete{Force: c.force}, nil
	case DialogCreate:
		req := CreateRequest{
			Name:        strings.TrimSpace(c.draft.Name),
			Description: nonEmpty(c.draft.Description),
			Color:       nonEmpty(c.draft.Color),
			Icon:        nonEmpty(c.draft.Icon),
		}
		if len(c.scope) == 1 {
			parent := c.scope[0]
			req.ParentID = &parent
		}
		return CreateCategory{Request: req}, nil
	case DialogEdit:
		if len(c.scope) != 1 {
			return nil, ErrNoDialog
		}
		node, ok := c.tree.Node(c.scope[0])
		if !ok {
			return nil, ErrUnknownNode
		}
		return EditCategory{Request: editRequest(node, c.draft)}, nil
	}
	return nil, ErrNoDialog
}

func (c *Controller) DragStart(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.tree.Contains(id) {
		return ErrUnknownNode
	}
	c.clearErrorLocked()
	c.drag.Start(id)
	return nil
}

func (c *Controller) DragHover(targetID string, pos Position) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.tree.Contains(targetID) {
		return ErrUnknownNode
	}
	return c.drag.Hover(targetID, pos)
}

func (c *Controller) DragCancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag.Cancel()
}

// Drop completes the drag over targetID. Drops onto the dragged node itself
// are ignored, drops into its own subtree are rejected; neither sends a
// request.
func (c *Controller) Drop(ctx context.Context, targetID string, pos Position) error {
	c.mu.Lock()
	if err := c.drag.Hover(targetID, pos); err != nil {
		c.drag.Cancel()
		c.mu.Unlock()
		return err
	}
	req, err := c.drag.Drop(c.tree)
	if err != nil {
		if !errors.Is(err, ErrDropOnSelf) {
			c.setErrorLocked(err)
		}
		c.mu.Unlock()
		return err
	}
	gen := c.generation
	c.mu.Unlock()

	err = c.svc.Reorder(ctx, req)

	c.mu.Lock()
	if !c.current(gen) {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.logger.Warn("Category reorder failed", zap.String("id", req.ID), zap.Error(err))
		c.setErrorLocked(err)
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	return c.Reload(ctx)
}

func (c *Controller) current(gen uint64) bool {
	return c.mounted && c.generation == gen
}

func (c *Controller) setErrorLocked(err error) {
	c.errCode, c.errMsg = Message(err)
}

func (c *Controller) clearErrorLocked() {
	c.errCode, c.errMsg = "", ""
}

func draftFrom(n domain.CategoryNode) Draft {
	return Draft{
		Name:        n.Name,
		Description: deref(n.Description),
		Color:       deref(n.Color),
		Icon:        deref(n.Icon),
		IsActive:    n.IsActive,
	}
}

// editRequest carries only the fields that differ from the stored node.
func editRequest(n domain.CategoryNode, d Draft) EditRequest {
	req := EditRequest{ID: n.ID}
	if name := strings.TrimSpace(d.Name); name != n.Name {
		req.Name = &name
	}
	if d.Description != deref(n.Description) {
		req.Description = &d.Description
	}
	// Color and icon cannot be cleared from the edit form.
	if d.Color != "" && d.Color != deref(n.Color) {
		req.Color = &d.Color
	}
	if d.Icon != "" && d.Icon != deref(n.Icon) {
		req.Icon = &d.Icon
	}
	if d.IsActive != n.IsActive {
		active := d.IsActive
		req.IsActive = &active
	}
	return req
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
