package server

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
)

// errorView is the data contract of the "error" view: Error carries detail
// only in development mode.
type errorView struct {
	Message string
	Error   string
}

// builtinErrorTemplate renders the error view when the views directory does
// not provide one, so the terminal stage can always respond.
var builtinErrorTemplate = template.Must(template.New("error").Parse(
	`<!DOCTYPE html>
<html>
<head><title>{{.Message}}</title></head>
<body>
<h1>{{.Message}}</h1>
{{if .Error}}<pre>{{.Error}}</pre>{{end}}
</body>
</html>
`))

// viewRenderer resolves view names to template files under the configured
// views directory, using the view engine as the file extension.
type viewRenderer struct {
	dir    string
	engine string
}

func newViewRenderer(dir, engine string) *viewRenderer {
	return &viewRenderer{dir: dir, engine: engine}
}

// Render executes the named view. The "error" view falls back to the
// built-in template when no file exists.
func (v *viewRenderer) Render(w io.Writer, name string, data any) error {
	path := filepath.Join(v.dir, name+"."+v.engine)
	if _, err := os.Stat(path); err == nil {
		tmpl, err := template.ParseFiles(path)
		if err != nil {
			return fmt.Errorf("parse view %s: %w", name, err)
		}
		return tmpl.Execute(w, data)
	}
	if name == "error" {
		return builtinErrorTemplate.Execute(w, data)
	}
	return fmt.Errorf("view %s not found in %s", name, v.dir)
}
