package templates

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerTypeTemplates()
	registry.registerObserverTemplates()
	registry.registerSetterTemplates()
	registry.registerConversionTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

func (tr *TemplateRegistry) registerTypeTemplates() {
	tr.templates["file-header"] = `// {{.Marker}}. DO NOT EDIT.
// This file was automatically generated and should not be modified manually.

package {{.PackageName}}
{{if .Imports}}
{{.Imports}}{{end}}`

	tr.templates["dto-struct"] = `// {{.DTOName}} is the data transfer shape of {{.Name}}.
type {{.DTOName}}{{.TypeParamsDecl}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}} ` + "`{{.Tag}}`" + `
{{- end}}

	propertyChanging []func(string)
	propertyChanged  []func(string)
}`
}

func (tr *TemplateRegistry) registerObserverTemplates() {
	tr.templates["observers"] = `// OnPropertyChanged registers a handler called after a property of {{.DTOName}} changes.
func (d *{{.DTOName}}{{.TypeArgs}}) OnPropertyChanged(handler func(property string)) {
	d.propertyChanged = append(d.propertyChanged, handler)
}

// OnPropertyChanging registers a handler called before a property of {{.DTOName}} changes.
func (d *{{.DTOName}}{{.TypeArgs}}) OnPropertyChanging(handler func(property string)) {
	d.propertyChanging = append(d.propertyChanging, handler)
}

func (d *{{.DTOName}}{{.TypeArgs}}) notifyChanging(property string) {
	for _, handler := range d.propertyChanging {
		handler(property)
	}
}

func (d *{{.DTOName}}{{.TypeArgs}}) notifyChanged(property string) {
	for _, handler := range d.propertyChanged {
		handler(property)
	}
}`
}

func (tr *TemplateRegistry) registerSetterTemplates() {
	tr.templates["setter"] = `// {{.Name}} sets {{.Field}} and notifies the registered handlers.
{{- range .Directives}}
{{.}}
{{- end}}
func (d *{{.DTOName}}{{.TypeArgs}}) {{.Name}}(value {{.Type}}) {
	d.notifyChanging({{quote .Field}})
	d.{{.Field}} = value
	d.notifyChanged({{quote .Field}})
}`
}

func (tr *TemplateRegistry) registerConversionTemplates() {
	tr.templates["to-dto"] = `// ToDTO copies the dto members of {{.Name}} into a new {{.DTOName}}.
func (c *{{.Name}}{{.TypeArgs}}) ToDTO() *{{.DTOName}}{{.TypeArgs}} {
	return &{{.DTOName}}{{.TypeArgs}}{
{{- range .Fields}}
		{{.Name}}: c.{{.Source}},
{{- end}}
	}
}`

	tr.templates["apply"] = `// Apply copies the members of d back onto c.
func (d *{{.DTOName}}{{.TypeArgs}}) Apply(c *{{.Name}}{{.TypeArgs}}) {
{{- range .Fields}}
	c.{{.Source}} = d.{{.Name}}
{{- end}}
}`
}

// DefaultTemplateRegistry is the registry used by the package-level render functions
var DefaultTemplateRegistry = NewTemplateRegistry()
