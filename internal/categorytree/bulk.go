package categorytree

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"goldshop/domain"
)

// Service is the inventory API as seen by the category screen.
type Service interface {
	Tree(ctx context.Context) ([]domain.CategoryNode, error)
	BulkUpdate(ctx context.Context, ids []string, updates map[string]any) error
	BulkMove(ctx context.Context, ids []string, parentID *string) error
	BulkDelete(ctx context.Context, ids []string, force bool) error
	Reorder(ctx context.Context, req MoveRequest) error
	Create(ctx context.Context, req CreateRequest) (domain.CategoryNode, error)
	Update(ctx context.Context, id string, req EditRequest) error
}

// Operation is one of BulkUpdate, BulkMove, BulkDelete, CreateCategory or
// EditCategory.
type Operation interface {
	operation()
}

type BulkUpdate struct {
	Fields FieldChanges
}

type BulkMove struct {
	// ParentID is the new parent; "" moves the selection to the root.
	ParentID string
}

type BulkDelete struct {
	Force bool
}

type CreateCategory struct {
	Request CreateRequest
}

type EditCategory struct {
	Request EditRequest
}

func (BulkUpdate) operation()     {}
func (BulkMove) operation()       {}
func (BulkDelete) operation()     {}
func (CreateCategory) operation() {}
func (EditCategory) operation()   {}

// ParentChange is a requested new parent; an empty ID means root.
type ParentChange struct {
	ID string
}

// FieldChanges is the sparse bulk-update form. Nil fields were not touched.
type FieldChanges struct {
	IsActive *bool         `validate:"omitempty"`
	Color    *string       `validate:"omitempty,hexcolor"`
	Icon     *string       `validate:"omitempty,max=255"`
	Parent   *ParentChange `validate:"-"`
}

func (f FieldChanges) Touched() bool {
	return f.IsActive != nil || f.Color != nil || f.Icon != nil || f.Parent != nil
}

// Payload holds only the touched fields; a root parent is sent as null.
func (f FieldChanges) Payload() map[string]any {
	payload := map[string]any{}
	if f.IsActive != nil {
		payload["is_active"] = *f.IsActive
	}
	if f.Color != nil {
		payload["color"] = *f.Color
	}
	if f.Icon != nil {
		payload["icon"] = *f.Icon
	}
	if f.Parent != nil {
		if f.Parent.ID == "" {
			payload["parent_id"] = nil
		} else {
			payload["parent_id"] = f.Parent.ID
		}
	}
	return payload
}

type CreateRequest struct {
	ParentID    *string `json:"parent_id"`
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=255"`
}

type EditRequest struct {
	ID          string  `json:"-" validate:"required"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (r EditRequest) touched() bool {
	return r.Name != nil || r.Description != nil || r.Color != nil || r.Icon != nil || r.IsActive != nil
}

// Dispatcher turns an operation on a set of ids into exactly one request.
type Dispatcher struct {
	svc      Service
	validate *validator.Validate
}

func NewDispatcher(svc Service) *Dispatcher {
	return &Dispatcher{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate runs every client-side check for op against the tree snapshot.
func (d *Dispatcher) Validate(tree *domain.Tree, ids []string, op Operation) error {
	switch op := op.(type) {
	case CreateCategory:
		if err := d.validateStruct(op.Request); err != nil {
			return err
		}
		if op.Request.ParentID != nil && !tree.Contains(*op.Request.ParentID) {
			return ErrUnknownNode
		}
		return nil
	case EditCategory:
		if !tree.Contains(op.Request.ID) {
			return ErrUnknownNode
		}
		if !op.Request.touched() {
			return ErrNoChanges
		}
		return d.validateStruct(op.Request)
	}

	if len(ids) == 0 {
		return ErrEmptySelection
	}
	for _, id := range ids {
		if !tree.Contains(id) {
			return fmt.Errorf("%w: %s", ErrUnknownNode, id)
		}
	}

	switch op := op.(type) {
	case BulkUpdate:
		if !op.Fields.Touched() {
			return ErrNoChanges
		}
		if err := d.validateStruct(op.Fields); err != nil {
			return err
		}
		if op.Fields.Parent != nil {
			return checkParent(tree, ids, op.Fields.Parent.ID)
		}
		return nil
	case BulkMove:
		return checkParent(tree, ids, op.ParentID)
	case BulkDelete:
		if !op.Force && DeleteBlocked(tree, ids) {
			return ErrDeleteBlocked
		}
		return nil
	}
	return fmt.Errorf("unsupported operation %T", op)
}

// Dispatch validates op and, only when it passes, sends one request.
func (d *Dispatcher) Dispatch(ctx context.Context, tree *domain.Tree, ids []string, op Operation) error {
	if err := d.Validate(tree, ids, op); err != nil {
		return err
	}

	switch op := op.(type) {
	case BulkUpdate:
		return d.svc.BulkUpdate(ctx, ids, op.Fields.Payload())
	case BulkMove:
		return d.svc.BulkMove(ctx, ids, optional(op.ParentID))
	case BulkDelete:
		return d.svc.BulkDelete(ctx, ids, op.Force)
	case CreateCategory:
		_, err := d.svc.Create(ctx, op.Request)
		return err
	case EditCategory:
		return d.svc.Update(ctx, op.Request.ID, op.Request)
	}
	return fmt.Errorf("unsupported operation %T", op)
}

func (d *Dispatcher) validateStruct(v any) error {
	if err := d.validate.Struct(v); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make([]string, 0, len(ve))
			for _, fe := range ve {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidFields, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %s", ErrInvalidFields, err.Error())
	}
	return nil
}

func checkParent(tree *domain.Tree, ids []string, parentID string) error {
	if parentID == "" {
		return nil
	}
	if !tree.Contains(parentID) {
		return ErrUnknownNode
	}
	for _, id := range ids {
		if id == parentID || tree.IsDescendant(id, parentID) {
			return ErrCycle
		}
	}
	return nil
}

// DeleteBlocked reports whether any of ids still holds products.
func DeleteBlocked(tree *domain.Tree, ids []string) bool {
	for _, id := range ids {
		if n, ok := tree.Node(id); ok && n.HasProducts() {
			return true
		}
	}
	return false
}

// MoveTargets lists the categories the selection may be moved under: every
// node except the selected ones and their descendants.
func MoveTargets(tree *domain.Tree, ids []string) []domain.CategoryNode {
	excluded := map[string]bool{}
	for _, id := range ids {
		for _, sub := range tree.Subtree(id) {
			excluded[sub] = true
		}
	}
	var out []domain.CategoryNode
	for _, id := range tree.IDs() {
		if excluded[id] {
			continue
		}
		n, _ := tree.Node(id)
		n.Children = nil
		out = append(out, n)
	}
	return out
}

func optional(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
