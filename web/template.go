package web

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
)

type TemplateEngine interface {
	// Render 渲染页面
	// tplName 模板的名字，按名索引
	// data 渲染页面用的数据
	Render(ctx context.Context, tplName string, data any) ([]byte, error)
}

type GoTemplateEngine struct {
	T *template.Template
}

func (g *GoTemplateEngine) Render(ctx context.Context, tplName string, data any) ([]byte, error) {
	bs := &bytes.Buffer{}
	err := g.T.ExecuteTemplate(bs, tplName, data)
	return bs.Bytes(), err
}

// LoadFromFS parses the templates matching patterns in fsys, e.g. an
// embed.FS. funcs may be nil.
func (g *GoTemplateEngine) LoadFromFS(fsys fs.FS, funcs template.FuncMap, patterns ...string) error {
	t := template.New("")
	if funcs != nil {
		t = t.Funcs(funcs)
	}
	tpl, err := t.ParseFS(fsys, patterns...)
	if err != nil {
		return err
	}
	g.T = tpl
	return nil
}
