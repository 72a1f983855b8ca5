// Package renderer turns engine aggregates into markdown reports. Each
// report is a plain view struct, also serializable to json, plus a
// text/template that lays it out as markdown tables.
package renderer

import (
	"fmt"
	"strings"
	"text/template"
)

// render executes a named template over data, returning the error as the
// rendered text. Templates are compile-time constants, so an error here is a
// programming mistake, not user input.
func render(name, tmpl string, data any) string {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", name, err)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", name, err)
	}
	return b.String()
}
