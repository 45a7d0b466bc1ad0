package categorytree

import (
	"errors"

	"goldshop/pkg/httperror"
)

// Validation errors: caught before any request is sent.
var (
	ErrEmptySelection = errors.New("no categories selected")
	ErrNoChanges      = errors.New("no fields were changed")
	ErrInvalidFields  = errors.New("invalid field values")
	ErrDeleteBlocked  = errors.New("selected categories still hold products; confirm force delete")
	ErrNoDialog       = errors.New("no dialog is open")
)

// Structural errors: the move would break the tree.
var (
	ErrCycle           = errors.New("a category cannot be moved into itself or one of its descendants")
	ErrDropOnSelf      = errors.New("category dropped onto itself")
	ErrUnknownNode     = errors.New("unknown category")
	ErrNotDragging     = errors.New("no drag in progress")
	ErrNoDropTarget    = errors.New("drag has no drop target")
	ErrInvalidPosition = errors.New("invalid drop position")
	ErrUnknownAction   = errors.New("unknown row action")
)

// IsLocal reports whether err was raised client side, before any request.
func IsLocal(err error) bool {
	for _, target := range []error{
		ErrEmptySelection, ErrNoChanges, ErrInvalidFields, ErrDeleteBlocked, ErrNoDialog,
		ErrCycle, ErrDropOnSelf, ErrUnknownNode, ErrNotDragging, ErrNoDropTarget,
		ErrInvalidPosition, ErrUnknownAction,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Message returns the text shown next to the control that failed.
func Message(err error) (code, message string) {
	var httpErr *httperror.Error
	if errors.As(err, &httpErr) {
		return httpErr.Code, httpErr.Message
	}
	return "", err.Error()
}
