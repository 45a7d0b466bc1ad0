package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"goldshop/internal/categorytree"
)

type boundForm interface {
	own()
}

// parseForm binds the request body into f. fiber reuses the request buffer
// after the handler returns, and the controller keeps these values across
// requests, so every string is copied out of it.
func parseForm(c *fiber.Ctx, f boundForm) error {
	if err := c.BodyParser(f); err != nil {
		return err
	}
	f.own()
	return nil
}

func detach(fields ...*string) {
	for _, field := range fields {
		*field = utils.CopyString(*field)
	}
}

const (
	parentKeep = ""
	parentRoot = "root"
)

type clickForm struct {
	ID     string `form:"id"`
	Target string `form:"target"`
	Action string `form:"action"`
}

func (f *clickForm) own() { detach(&f.ID, &f.Target, &f.Action) }

func (f clickForm) click() (categorytree.Click, error) {
	click := categorytree.Click{NodeID: f.ID}
	switch f.Target {
	case "", "body":
		click.Target = categorytree.TargetBody
	case "expander":
		click.Target = categorytree.TargetExpander
	case "checkbox":
		click.Target = categorytree.TargetCheckbox
	case "action":
		action, err := categorytree.ParseAction(f.Action)
		if err != nil {
			return click, err
		}
		click.Target = categorytree.TargetAction
		click.Action = action
	default:
		return click, categorytree.ErrUnknownAction
	}
	return click, nil
}

// bulkForm is the bulk edit dialog. Empty inputs leave the field untouched;
// the colour only counts when its checkbox is ticked because a colour input
// always carries a value.
type bulkForm struct {
	IsActive   string `form:"is_active"`
	ApplyColor bool   `form:"apply_color"`
	Color      string `form:"color"`
	Icon       string `form:"icon"`
	Parent     string `form:"parent"`
}

func (f *bulkForm) own() { detach(&f.IsActive, &f.Color, &f.Icon, &f.Parent) }

func (f bulkForm) changes() categorytree.FieldChanges {
	var changes categorytree.FieldChanges
	switch f.IsActive {
	case "true":
		active := true
		changes.IsActive = &active
	case "false":
		active := false
		changes.IsActive = &active
	}
	if f.ApplyColor {
		color := strings.TrimSpace(f.Color)
		changes.Color = &color
	}
	if icon := strings.TrimSpace(f.Icon); icon != "" {
		changes.Icon = &icon
	}
	switch f.Parent {
	case parentKeep:
	case parentRoot:
		changes.Parent = &categorytree.ParentChange{}
	default:
		changes.Parent = &categorytree.ParentChange{ID: f.Parent}
	}
	return changes
}

type draftForm struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	Color       string `form:"color"`
	Icon        string `form:"icon"`
	IsActive    bool   `form:"is_active"`
}

func (f *draftForm) own() { detach(&f.Name, &f.Description, &f.Color, &f.Icon) }

func (f draftForm) draft() categorytree.Draft {
	return categorytree.Draft{
		Name:        f.Name,
		Description: f.Description,
		Color:       f.Color,
		Icon:        f.Icon,
		IsActive:    f.IsActive,
	}
}

type moveForm struct {
	Parent string `form:"parent"`
}

func (f *moveForm) own() { detach(&f.Parent) }

// target maps the select value to a parent id; "" is the root.
func (f moveForm) target() string {
	if f.Parent == parentRoot {
		return ""
	}
	return f.Parent
}

type deleteForm struct {
	Force bool `form:"force"`
}

func (f *deleteForm) own() {}

type dragForm struct {
	ID       string `form:"id"`
	Target   string `form:"target"`
	Position string `form:"position"`
}

func (f *dragForm) own() { detach(&f.ID, &f.Target, &f.Position) }
