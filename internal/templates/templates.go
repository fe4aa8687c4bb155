// Package templates renders synthesized DTO declarations as Go source.
package templates

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/toyz/dtogen/internal/errors"
	"github.com/toyz/dtogen/internal/models"
	"github.com/toyz/dtogen/internal/parser"
)

// HeaderData is the data of the file-header template
type HeaderData struct {
	Marker      string
	PackageName string
	Imports     string
}

// DTOData is the data of the per-type templates
type DTOData struct {
	Name           string
	DTOName        string
	TypeParamsDecl string
	TypeArgs       string
	Fields         []FieldData
}

// FieldData is one field of a DTO struct
type FieldData struct {
	Name   string
	Source string
	Type   string
	Tag    string
}

// SetterData is the data of the setter template
type SetterData struct {
	Name       string
	Field      string
	Type       string
	DTOName    string
	TypeArgs   string
	Directives []string
}

// RenderFile renders the declaration sets of one package as an unformatted Go
// source file. Sets are rendered in the order given.
func RenderFile(pkgName, pkgPath string, sets []*models.DeclarationSet) (string, error) {
	imports := NewImportManager(pkgPath)

	var body strings.Builder
	for _, set := range sets {
		code, err := RenderDeclarationSet(set, imports)
		if err != nil {
			return "", err
		}
		body.WriteString("\n")
		body.WriteString(code)
	}

	header, err := executeTemplate("file-header", DefaultTemplateRegistry.MustGet("file-header"), HeaderData{
		Marker:      parser.GeneratedMarker,
		PackageName: pkgName,
		Imports:     imports.GenerateImports(),
	})
	if err != nil {
		return "", err
	}
	return header + body.String(), nil
}

// RenderDeclarationSet renders the declarations of one container in fragment order.
// Packages referenced by member types are registered with imports.
func RenderDeclarationSet(set *models.DeclarationSet, imports *ImportManager) (string, error) {
	if set == nil || set.Container == nil {
		return "", fmt.Errorf("declaration set has no container")
	}

	qf := imports.Qualifier()
	tu := DefaultTemplateUtils
	data := DTOData{
		Name:           set.Container.Name,
		DTOName:        set.Container.DTOName,
		TypeParamsDecl: tu.TypeParamsDecl(set.Container.TypeParams, qf),
		TypeArgs:       tu.TypeArgs(set.Container.TypeParams),
	}
	for _, f := range set.OfKind(models.FragmentField) {
		data.Fields = append(data.Fields, FieldData{
			Name:   f.Name,
			Source: f.Member.Name,
			Type:   tu.TypeExpr(f.Member.Type, qf),
			Tag:    f.Tag,
		})
	}

	var blocks []string
	observersDone := false
	for _, f := range set.Fragments {
		var (
			code string
			err  error
		)
		switch f.Kind {
		case models.FragmentStruct:
			code, err = executeTemplate("dto-struct", DefaultTemplateRegistry.MustGet("dto-struct"), data)
		case models.FragmentObservers:
			if observersDone {
				continue
			}
			observersDone = true
			code, err = executeTemplate("observers", DefaultTemplateRegistry.MustGet("observers"), data)
		case models.FragmentSetter:
			code, err = executeTemplate("setter", DefaultTemplateRegistry.MustGet("setter"), SetterData{
				Name:       f.Name,
				Field:      f.Member.OutputName,
				Type:       tu.TypeExpr(f.Member.Type, qf),
				DTOName:    data.DTOName,
				TypeArgs:   data.TypeArgs,
				Directives: f.Directives,
			})
		case models.FragmentToDTO:
			code, err = executeTemplate("to-dto", DefaultTemplateRegistry.MustGet("to-dto"), data)
		case models.FragmentApply:
			code, err = executeTemplate("apply", DefaultTemplateRegistry.MustGet("apply"), data)
		default:
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to render %s for %s: %w", f.Kind, set.Container.Name, err)
		}
		blocks = append(blocks, code)
	}

	return strings.Join(blocks, "\n\n") + "\n", nil
}

// executeTemplate executes a Go template with the given data
func executeTemplate(name, templateStr string, data interface{}) (string, error) {
	funcMap := template.FuncMap{
		"quote": DefaultTemplateUtils.QuoteString,
	}

	tmpl, err := template.New(name).Funcs(funcMap).Parse(templateStr)
	if err != nil {
		return "", errors.WrapTemplateError(name, "parse", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", errors.WrapTemplateError(name, "execute", err)
	}

	return buf.String(), nil
}

