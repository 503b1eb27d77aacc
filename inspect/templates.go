package inspect

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"vsdxc/common"
	"vsdxc/config"
	"vsdxc/vsdx"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Base       string
	SourceFile string
	Format     string
	RefID      string
	Pages      int
	PageNames  []string
	Masters    int
	Background int
}

func buildValues(m *vsdx.Model, src, refID string, format common.OutputFmt) Values {
	v := Values{
		Base:       strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		SourceFile: filepath.ToSlash(src),
		Format:     format.String(),
		RefID:      refID,
	}
	if m == nil {
		return v
	}
	v.Pages = m.Pages().Len()
	v.Masters = m.Masters().Len()
	v.PageNames = make([]string, 0, v.Pages)
	for p := range m.Pages().Values() {
		if p.IsBackground() {
			v.Background++
		}
		name := p.NameU
		if name == "" {
			name = p.Name
		}
		v.PageNames = append(v.PageNames, name)
	}
	return v
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values.Context = string(name)

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
