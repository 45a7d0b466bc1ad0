package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"

	"goldshop/internal/categorytree"
)

//go:embed views
var viewsFS embed.FS

// NewEngine returns the template engine for the admin views.
func NewEngine() *html.Engine {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(views), ".html")
	engine.AddFunc("deref", deref)
	engine.AddFunc("isTrue", func(b *bool) bool { return b != nil && *b })
	engine.AddFunc("isFalse", func(b *bool) bool { return b != nil && !*b })
	engine.AddFunc("parentValue", parentValue)
	return engine
}

type view struct {
	categorytree.State
	Title string
}

func newView(state categorytree.State) view {
	return view{State: state, Title: "Categories"}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parentValue is the select value of a bulk parent change.
func parentValue(p *categorytree.ParentChange) string {
	switch {
	case p == nil:
		return parentKeep
	case p.ID == "":
		return parentRoot
	default:
		return p.ID
	}
}
