package renderer

import (
	"html/template"

	"github.com/Rakhulsr/kidstore/app/utils/format"
	"github.com/unrolled/render"
)

func New(directory string, development bool) *render.Render {
	return render.New(render.Options{
		Directory:     directory,
		Layout:        "layout",
		Extensions:    []string{".html"},
		IsDevelopment: development,
		IndentJSON:    development,
		Funcs: []template.FuncMap{
			{
				"formatINR": format.FormatINR,
				"add":       func(a, b int) int { return a + b },
			},
		},
	})
}
