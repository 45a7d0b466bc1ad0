package categorytree

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"goldshop/pkg/httperror"
)

func mountedController(t *testing.T, svc *fakeService) *Controller {
	t.Helper()
	c := NewController(svc, NewRenderer(0, 0), zap.NewNop())
	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	return c
}

func snapshot(t *testing.T, c *Controller) State {
	t.Helper()
	st, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return st
}

func TestController_MountLoadsTree(t *testing.T) {
	svc := &fakeService{forest: shopForest()}
	c := mountedController(t, svc)

	st := snapshot(t, c)
	if !st.Loaded || st.Empty {
		t.Fatalf("expected a loaded non-empty tree, got loaded=%v empty=%v", st.Loaded, st.Empty)
	}
	if len(st.Rows) != 2 {
		t.Fatalf("expected 2 root rows, got %v", rowIDs(st.Rows))
	}
	if st.CanBulk {
		t.Fatalf("expected bulk actions disabled with nothing selected")
	}
}

func TestController_EmptyTree(t *testing.T) {
	c := mountedController(t, &fakeService{})
	if st := snapshot(t, c); !st.Empty {
		t.Fatalf("expected empty state")
	}
}

func TestController_ReloadPrunesStaleSelection(t *testing.T) {
	svc := &fakeService{forest: shopForest()}
	c := mountedController(t, svc)

	_ = c.Click(Click{NodeID: "3", Target: TargetCheckbox})
	_ = c.Click(Click{NodeID: "5", Target: TargetCheckbox})
	_ = c.Click(Click{NodeID: "5"})

	svc.mu.Lock()
	svc.forest = svc.forest[:1]
	svc.mu.Unlock()
	c.Invalidate()

	st := snapshot(t, c)
	if !reflect.DeepEqual(st.SelectedIDs, []string{"3"}) {
		t.Fatalf("expected selection [3], got %v", st.SelectedIDs)
	}
	if st.Active != nil {
		t.Fatalf("expected deleted active node to be cleared, got %s", st.Active.ID)
	}
}

func TestController_SubmitFailureKeepsDialog(t *testing.T) {
	svc := &fakeService{forest: shopForest()}
	c := mountedController(t, svc)

	_ = c.Click(Click{NodeID: "1", Target: TargetCheckbox})
	_ = c.Click(Click{NodeID: "5", Target: TargetCheckbox})
	if err := c.OpenDialog(DialogBulkUpdate); err != nil {
		t.Fatalf("open dialog: %v", err)
	}
	c.SetForm(FieldChanges{Color: strPtr("#ff0000")})

	svc.err = httperror.InternalServerError("category.bulk_update.failed", "Failed to update categories", nil)
	if err := c.Submit(context.Background()); err == nil {
		t.Fatalf("expected submit to fail")
	}

	st := snapshot(t, c)
	if st.Dialog != DialogBulkUpdate {
		t.Fatalf("expected dialog to stay open, got %q", st.Dialog)
	}
	if st.Form.Color == nil || *st.Form.Color != "#ff0000" {
		t.Fatalf("expected form to be kept")
	}
	if !reflect.DeepEqual(st.SelectedIDs, []string{"1", "5"}) {
		t.Fatalf("expected selection to be kept, got %v", st.SelectedIDs)
	}
	if st.ErrorCode != "category.bulk_update.failed" || st.Error != "Failed to update categories" {
		t.Fatalf("expected server error to be shown, got %q %q", st.ErrorCode, st.Error)
	}
}

func TestController_SubmitSuccessClosesAndReloads(t *testing.T) {
	svc := &fakeService{forest: shopForest()}
	c := mountedController(t, svc)

	_ = c.Click(Click{NodeID: "2", Target: TargetCheckbox})
	_ = c.OpenDialog(DialogBulkMove)
	c.SetMoveTarget("5")

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(svc.moves) != 1 || *svc.moves[0] != "5" {
		t.Fatalf("expected one move under 5, got %v", svc.moves)
	}
	if svc.treeCalls != 2 {
		t.Fatalf("expected tree to be reloaded, got %d fetches", svc.treeCalls)
	}

	st := snapshot(t, c)
	if st.Dialog != DialogNone || st.MoveTarget != "" {
		t.Fatalf("expected dialog to be closed and cleared, got %q %q", st.Dialog, st.MoveTarget)
	}
}

func TestController_OpenBulkDialogNeedsSelection(t *testing.T) {
	c := mountedController(t, &fakeService{forest: shopForest()})

	if err := c.OpenDialog(DialogBulkDelete); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	if st := snapshot(t, c); st.Dialog != DialogNone {
		t.Fatalf("expected no dialog, got %q", st.Dialog)
	}
}

func TestController_RowDeleteNeedsForce(t *testing.T) {
	svc := &fakeService{forest: shopForest()}
	c := mountedController(t, svc)

	_ = c.Click(Click{NodeID: "1", Target: TargetExpander})
	if err := c.Click(Click{NodeID: "3", Target: TargetAction, Action: ActionDelete}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := snapshot(t, c)
	if st.Dialog != DialogBulkDelete || !st.DeleteBlocked {
		t.Fatalf("expected blocked delete dialog, got %q blocked=%v", st.Dialog, st.DeleteBlocked)
	}
	if st.Active != nil {
		t.Fatalf("expected row action not to change the active node")
	}

	if err := c.Submit(context.Background()); !errors.Is(err, ErrDeleteBlocked) {
		t.Fatalf("expected ErrDeleteBlocked, got %v", err)
	}
	if svc.sent() != 0 {
		t.Fatalf("expected no request, got %d", svc.sent())
	}

	c.SetForce(true)
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(svc.deleteIDs, [][]string{{"3"}}) {
		t.Fatalf("expected delete of [3], got %v", svc.deleteIDs)
	}
}

func TestController_EditSendsChangedFields(t *testing.T) {
	svc := &fakeService{forest: shopForest()}
	c := mountedController(t, svc)

	_ = c.Click(Click{NodeID: "5", Target: TargetAction, Action: ActionEdit})
	st := snapshot(t, c)
	if st.Draft.Name != "Bullion" {
		t.Fatalf("expected draft from node, got %+v", st.Draft)
	}

	d := st.Draft
	d.Name = "Bars & coins"
	c.SetDraft(d)
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(svc.edited) != 1 {
		t.Fatalf("expected one edit, got %d", len(svc.edited))
	}
	got := svc.edited[0]
	if got.Name == nil || *got.Name != "Bars & coins" {
		t.Fatalf("expected new name, got %v", got.Name)
	}
	if got.IsActive != nil || got.Color != nil || got.Description != nil {
		t.Fatalf("expected untouched fields to be omitted, got %+v", got)
	}
}

func TestController_CreateChild(t *testing.T) {
	svc := &fakeService{forest: shopForest()}
	c := mountedController(t, svc)

	_ = c.Click(Click{NodeID: "1", Target: TargetAction, Action: ActionAddChild})
	c.SetDraft(Draft{Name: "  Bracelets ", IsActive: true})
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(svc.created) != 1 {
		t.Fatalf("expected one create, got %d", len(svc.created))
	}
	req := svc.created[0]
	if req.Name != "Bracelets" || req.ParentID == nil || *req.ParentID != "1" {
		t.Fatalf("expected Bracelets under 1, got %+v", req)
	}
}

func TestController_DropRejections(t *testing.T) {
	svc := &fakeService{forest: shopForest()}
	c := mountedController(t, svc)

	_ = c.DragStart("2")
	if err := c.Drop(context.Background(), "2", PositionInside); !errors.Is(err, ErrDropOnSelf) {
		t.Fatalf("expected ErrDropOnSelf, got %v", err)
	}
	if st := snapshot(t, c); st.Error != "" || st.Drag != DragIdle {
		t.Fatalf("expected silent self-drop, got %q %s", st.Error, st.Drag)
	}

	_ = c.DragStart("1")
	if err := c.Drop(context.Background(), "4", PositionInside); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	if st := snapshot(t, c); st.Error == "" {
		t.Fatalf("expected cycle error to be shown")
	}
	if svc.sent() != 0 {
		t.Fatalf("expected no reorder request, got %d", svc.sent())
	}
}

func TestController_DropSendsReorder(t *testing.T) {
	svc := &fakeService{forest: shopForest()}
	c := mountedController(t, svc)

	_ = c.DragStart("2")
	if err := c.DragHover("3", PositionAfter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st := snapshot(t, c); st.Drag != DragHovering || st.DragSource != "2" {
		t.Fatalf("expected hovering over 3 with 2, got %s %q", st.Drag, st.DragSource)
	}
	if err := c.Drop(context.Background(), "3", PositionAfter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := MoveRequest{ID: "2", NewParentID: strPtr("1"), NewSortOrder: intPtr(2)}
	if len(svc.reorders) != 1 || !reflect.DeepEqual(svc.reorders[0], want) {
		t.Fatalf("expected %+v, got %+v", want, svc.reorders)
	}
	if svc.treeCalls != 2 {
		t.Fatalf("expected tree to be reloaded, got %d fetches", svc.treeCalls)
	}
}

func TestController_UnmountDiscardsLateResponse(t *testing.T) {
	svc := &fakeService{
		forest:      shopForest(),
		treeGate:    make(chan struct{}),
		treeStarted: make(chan struct{}, 1),
	}
	c := NewController(svc, NewRenderer(0, 0), zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- c.Mount(context.Background()) }()

	<-svc.treeStarted
	c.Unmount()
	close(svc.treeGate)

	if err := <-done; err != nil {
		t.Fatalf("expected late response to be dropped silently, got %v", err)
	}
	st, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if st.Loaded || len(st.Rows) != 0 {
		t.Fatalf("expected unmounted screen to stay empty, got %d rows", len(st.Rows))
	}
	if c.Mounted() {
		t.Fatalf("expected controller to be unmounted")
	}
}

func TestController_ReloadErrorIsShown(t *testing.T) {
	svc := &fakeService{treeErr: errors.New("connection refused")}
	c := NewController(svc, NewRenderer(0, 0), zap.NewNop())

	if err := c.Mount(context.Background()); err == nil {
		t.Fatalf("expected mount to fail")
	}
	st, _ := c.Snapshot(context.Background())
	if st.Error != "connection refused" {
		t.Fatalf("expected load error to be shown, got %q", st.Error)
	}
}

var _ Service = (*fakeService)(nil)
