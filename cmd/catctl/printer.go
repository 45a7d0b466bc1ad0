package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"goldshop/domain"
	"goldshop/internal/categorytree"
)

var (
	bold  = color.New(color.Bold)
	faint = color.New(color.Faint)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

func printTree(w io.Writer, rows []categorytree.Row) {
	if len(rows) == 0 {
		_, _ = faint.Fprintln(w, "No categories.")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Name"), bold.Sprint("Products"), bold.Sprint("Gold (g)"), bold.Sprint("Status"))

	for _, row := range rows {
		n := row.Node
		name := strings.Repeat("  ", row.Depth) + n.Name
		if row.Truncated {
			name += " …"
		}
		products := "-"
		if n.ProductCount != nil {
			products = fmt.Sprint(*n.ProductCount)
		}
		status := "active"
		if row.Muted {
			status = "inactive"
			name = faint.Sprint(name)
		}
		tbl.AddRow(n.ID, name, products, n.GoldWeight.StringFixed(2), status)
	}

	_, _ = fmt.Fprintln(w, tbl)
}

func printCategory(w io.Writer, n domain.CategoryNode) {
	optional := func(s *string) string {
		if s == nil || *s == "" {
			return faint.Sprint("-")
		}
		return *s
	}
	parent := "(top level)"
	if !n.IsRoot() {
		parent = n.Parent()
	}
	products := "-"
	if n.ProductCount != nil {
		products = fmt.Sprint(*n.ProductCount)
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), n.ID)
	tbl.AddRow(bold.Sprint("Name"), n.Name)
	tbl.AddRow(bold.Sprint("Parent"), parent)
	tbl.AddRow(bold.Sprint("Description"), optional(n.Description))
	tbl.AddRow(bold.Sprint("Colour"), optional(n.Color))
	tbl.AddRow(bold.Sprint("Icon"), optional(n.Icon))
	tbl.AddRow(bold.Sprint("Active"), n.IsActive)
	tbl.AddRow(bold.Sprint("Sort order"), n.SortOrder)
	tbl.AddRow(bold.Sprint("Products"), products)
	tbl.AddRow(bold.Sprint("Gold (g)"), n.GoldWeight.StringFixed(2))

	_, _ = fmt.Fprintln(w, tbl)
}

func printDone(w io.Writer, verb string, count int) {
	noun := "categories"
	if count == 1 {
		noun = "category"
	}
	_, _ = green.Fprintf(w, "%s %d %s.\n", verb, count, noun)
}

func printError(w io.Writer, err error) {
	code, message := categorytree.Message(err)
	if code != "" {
		_, _ = red.Fprintf(w, "Error: %s (%s)\n", message, code)
		return
	}
	_, _ = red.Fprintf(w, "Error: %s\n", message)
}
