package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"
)

// kindTypes maps built-in kinds to the Go type of their accessors and the
// Element reader that returns it.
var kindTypes = map[string]struct {
	goType string
	reader string
}{
	"String":  {"string", "String"},
	"Number":  {"float64", "Float"},
	"Int":     {"int", "Int"},
	"Boolean": {"bool", "Bool"},
	"Object":  {"map[string]any", ""},
	"Array":   {"[]any", ""},
}

// reserved holds method names promoted from *hxel.Element. Accessors that
// would shadow one get a Prop suffix.
var reserved = map[string]bool{
	"AttributeChanged": true, "Base": true, "Bool": true, "Class": true,
	"Connected": true, "Dependents": true, "Disconnected": true, "Float": true,
	"Get": true, "Host": true, "Int": true, "Invalidate": true,
	"IsConnected": true, "Lookup": true, "MustSet": true, "ObservedAttributes": true,
	"Pending": true, "Render": true, "RenderCount": true, "Restore": true,
	"Root": true, "Set": true, "Snapshot": true, "String": true,
	"Value": true, "Values": true,
}

// generateComponent generates the *_hx.go file for a component.
func (g *Generator) generateComponent(pkgPath, pkgName string, comp *ComponentInfo) error {
	baseName := strings.TrimSuffix(filepath.Base(comp.SourceFile), ".go")
	outputFile := filepath.Join(pkgPath, baseName+"_hx.go")

	fmt.Printf("generating %s\n", outputFile)

	if g.opts.DryRun {
		return nil
	}

	code, err := g.renderTemplate(pkgName, comp)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	formatted, err := format.Source(code)
	if err != nil {
		// Write unformatted for debugging
		if writeErr := os.WriteFile(outputFile+".unformatted", code, 0644); writeErr == nil {
			fmt.Printf("  wrote unformatted code to %s.unformatted for debugging\n", outputFile)
		}
		return fmt.Errorf("format source: %w", err)
	}

	return os.WriteFile(outputFile, formatted, 0644)
}

// renderTemplate renders the generated code template.
func (g *Generator) renderTemplate(pkgName string, comp *ComponentInfo) ([]byte, error) {
	tmpl, err := template.New("hx").Funcs(template.FuncMap{
		"accessor": accessorName,
		"exported": exported,
		"goType":   goType,
		"read":     readCode,
	}).Parse(hxTemplate)
	if err != nil {
		return nil, err
	}

	data := struct {
		Package   string
		Source    string
		Component *ComponentInfo
	}{
		Package:   pkgName,
		Source:    filepath.Base(comp.SourceFile),
		Component: comp,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// exported converts "first-name" or "first_name" to "FirstName".
func exported(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '-' || r == '_' || r == '.' || r == ' ' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// accessorName is the getter name for a property.
func accessorName(p PropertyInfo) string {
	name := exported(p.Name)
	if reserved[name] {
		return name + "Prop"
	}
	return name
}

func goType(p PropertyInfo) string {
	if t, ok := kindTypes[p.Kind]; ok {
		return t.goType
	}
	return "any"
}

// readCode generates the getter body.
func readCode(p PropertyInfo) string {
	t, ok := kindTypes[p.Kind]
	switch {
	case !ok:
		return fmt.Sprintf(`return c.Get(%q)`, p.Name)
	case t.reader != "":
		return fmt.Sprintf(`return c.%s(%q)`, t.reader, p.Name)
	default:
		return fmt.Sprintf("v, _ := c.Get(%q).(%s)\n\treturn v", p.Name, t.goType)
	}
}

const hxTemplate = `// Code generated by hxel. DO NOT EDIT.
// Source: {{.Source}}

package {{.Package}}

import "github.com/pthm/hxel"

// New{{.Component.TypeName}} constructs a {{.Component.TypeName}} on host.
func New{{.Component.TypeName}}(host hxel.Host, opts ...hxel.Option) (hxel.Component, error) {
	c := &{{.Component.TypeName}}{}
	el, err := hxel.New({{.Component.ClassVar}}, host, c, opts...)
	if err != nil {
		return nil, err
	}
	c.Element = el
	return c, nil
}
{{range .Component.Properties}}
// {{accessor .}} returns the {{.Name}} property.
func (c *{{$.Component.TypeName}}) {{accessor .}}() {{goType .}} {
	{{read .}}
}
{{if not .Computed}}
// Set{{exported .Name}} assigns the {{.Name}} property{{if .Attribute}} and writes the {{.Attribute}} attribute{{end}}.
func (c *{{$.Component.TypeName}}) Set{{exported .Name}}(v {{goType .}}) {
	c.MustSet({{printf "%q" .Name}}, v)
}
{{end}}{{end}}`
