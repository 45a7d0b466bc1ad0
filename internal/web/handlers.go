package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"goldshop/internal/categorytree"
)

// Handler serves the category management screen. Every mutating route
// re-renders the #screen fragment for htmx to swap in.
type Handler struct {
	registry *Registry
	sessions *session.Store
}

func NewHandler(registry *Registry, sessions *session.Store) *Handler {
	return &Handler{
		registry: registry,
		sessions: sessions,
	}
}

func (h *Handler) Register(router fiber.Router) {
	g := router.Group("/categories")

	g.Get("/", h.index)
	g.Post("/leave", h.leave)

	g.Post("/click", h.act(func(c *fiber.Ctx, ctrl *categorytree.Controller) error {
		var form clickForm
		if err := parseForm(c, &form); err != nil {
			return err
		}
		click, err := form.click()
		if err != nil {
			return err
		}
		return ctrl.Click(click)
	}))
	g.Post("/select-all", h.act(func(c *fiber.Ctx, ctrl *categorytree.Controller) error {
		ctrl.SelectAll()
		return nil
	}))
	g.Post("/clear", h.act(func(c *fiber.Ctx, ctrl *categorytree.Controller) error {
		ctrl.ClearSelection()
		return nil
	}))
	g.Post("/expand-all", h.act(func(c *fiber.Ctx, ctrl *categorytree.Controller) error {
		ctrl.ExpandAll()
		return nil
	}))
	g.Post("/collapse-all", h.act(func(c *fiber.Ctx, ctrl *categorytree.Controller) error {
		ctrl.CollapseAll()
		return nil
	}))

	g.Post("/dialogs/close", h.act(func(c *fiber.Ctx, ctrl *categorytree.Controller) error {
		ctrl.CloseDialog()
		return nil
	}))
	g.Post("/dialogs/:dialog", h.act(func(c *fiber.Ctx, ctrl *categorytree.Controller) error {
		dialog, err := categorytree.ParseDialog(utils.CopyString(c.Params("dialog")))
		if err != nil {
			return err
		}
		return ctrl.OpenDialog(dialog)
	}))
	g.Post("/form", h.act(applyForm))
	g.Post("/submit", h.act(func(c *fiber.Ctx, ctrl *categorytree.Controller) error {
		if err := applyForm(c, ctrl); err != nil {
			return err
		}
		return ctrl.Submit(c.UserContext())
	}))

	g.Post("/drag/start", h.act(func(c *fiber.Ctx, ctrl *categorytree.Controller) error {
		var form dragForm
		if err := parseForm(c, &form); err != nil {
			return err
		}
		return ctrl.DragStart(form.ID)
	}))
	g.Post("/drag/hover", h.dragHover)
	g.Post("/drag/drop", h.act(func(c *fiber.Ctx, ctrl *categorytree.Controller) error {
		var form dragForm
		if err := parseForm(c, &form); err != nil {
			return err
		}
		pos, err := categorytree.ParsePosition(form.Position)
		if err != nil {
			ctrl.DragCancel()
			return err
		}
		return ctrl.Drop(c.UserContext(), form.Target, pos)
	}))
	g.Post("/drag/cancel", h.act(func(c *fiber.Ctx, ctrl *categorytree.Controller) error {
		ctrl.DragCancel()
		return nil
	}))
}

func (h *Handler) index(c *fiber.Ctx) error {
	ctrl, sessionID, err := h.controller(c)
	if err != nil {
		return err
	}

	state, err := ctrl.Snapshot(c.UserContext())
	if err != nil {
		zap.L().Warn("Rendering category screen without fresh tree", zap.String("session", sessionID), zap.Error(err))
	}
	return c.Render("categories/index", newView(state), "layouts/main")
}

// leave is sent when the page is closed. Requests still in flight for the
// session are discarded.
func (h *Handler) leave(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	h.registry.Remove(sess.ID())
	return c.SendStatus(fiber.StatusNoContent)
}

// dragHover records the hovered drop target. It fires continuously while
// dragging, so it answers without re-rendering.
func (h *Handler) dragHover(c *fiber.Ctx) error {
	ctrl, _, err := h.controller(c)
	if err != nil {
		return err
	}

	var form dragForm
	if err := parseForm(c, &form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	pos, err := categorytree.ParsePosition(form.Position)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := ctrl.DragHover(form.Target, pos); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// act runs fn against the session's controller and re-renders the screen.
// Errors the controller records are part of the rendered state; malformed
// requests get a 400 with the same fragment.
func (h *Handler) act(fn func(c *fiber.Ctx, ctrl *categorytree.Controller) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctrl, sessionID, err := h.controller(c)
		if err != nil {
			return err
		}

		status := fiber.StatusOK
		if err := fn(c, ctrl); err != nil {
			if badRequest(err) {
				status = fiber.StatusBadRequest
			}
			zap.L().Debug("Category screen event rejected",
				zap.String("session", sessionID),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		state, err := ctrl.Snapshot(c.UserContext())
		if err != nil {
			zap.L().Warn("Failed to refresh category tree", zap.String("session", sessionID), zap.Error(err))
		}
		return c.Status(status).Render("partials/screen", newView(state))
	}
}

func (h *Handler) controller(c *fiber.Ctx) (*categorytree.Controller, string, error) {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return nil, "", err
	}
	sessionID := sess.ID()
	if err := sess.Save(); err != nil {
		return nil, "", err
	}

	ctrl, err := h.registry.Get(c.UserContext(), sessionID)
	if err != nil {
		zap.L().Warn("Failed to load category tree", zap.String("session", sessionID), zap.Error(err))
	}
	return ctrl, sessionID, nil
}

func applyForm(c *fiber.Ctx, ctrl *categorytree.Controller) error {
	switch ctrl.Dialog() {
	case categorytree.DialogBulkUpdate:
		var form bulkForm
		if err := parseForm(c, &form); err != nil {
			return err
		}
		ctrl.SetForm(form.changes())
	case categorytree.DialogBulkMove:
		var form moveForm
		if err := parseForm(c, &form); err != nil {
			return err
		}
		ctrl.SetMoveTarget(form.target())
	case categorytree.DialogBulkDelete:
		var form deleteForm
		if err := parseForm(c, &form); err != nil {
			return err
		}
		ctrl.SetForce(form.Force)
	case categorytree.DialogCreate, categorytree.DialogEdit:
		var form draftForm
		if err := parseForm(c, &form); err != nil {
			return err
		}
		ctrl.SetDraft(form.draft())
	default:
		return categorytree.ErrNoDialog
	}
	return nil
}

func badRequest(err error) bool {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return true
	}
	for _, target := range []error{
		categorytree.ErrUnknownNode,
		categorytree.ErrUnknownAction,
		categorytree.ErrInvalidPosition,
		categorytree.ErrNoDialog,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
