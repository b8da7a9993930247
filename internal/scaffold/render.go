// Where: internal/scaffold/render.go
// What: Starter configuration rendering.
// Why: 'toxa init' writes a working file, not an empty skeleton.
package scaffold

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Data parameterizes the starter configuration.
type Data struct {
	EnvList []string
	Package string
}

// DefaultData is the scaffold used when the caller has no opinions.
func DefaultData() Data {
	return Data{EnvList: []string{"py3", "lint", "coverage"}}
}

// Render produces the starter configuration file content.
func Render(data Data) (string, error) {
	if len(data.EnvList) == 0 {
		data.EnvList = DefaultData().EnvList
	}

	tmpl, err := template.New("toxa.ini.tmpl").
		Funcs(sprig.FuncMap()).
		ParseFS(templateFS, "templates/toxa.ini.tmpl")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
