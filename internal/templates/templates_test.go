package templates

import (
	stderrors "errors"
	"go/types"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dtogen/internal/errors"
	"github.com/toyz/dtogen/internal/models"
)

func namedType(pkgPath, pkgName, name string) *types.Named {
	pkg := types.NewPackage(pkgPath, pkgName)
	obj := types.NewTypeName(0, pkg, name, nil)
	return types.NewNamed(obj, types.NewStruct(nil, nil), nil)
}

func TestImportManager_AliasesClashingNames(t *testing.T) {
	im := NewImportManager("example.com/shop")

	assert.Equal(t, "money", im.AddImport("github.com/acme/money", "money"))
	assert.Equal(t, "money2", im.AddImport("example.com/legacy/money", "money"))
	assert.Equal(t, "money", im.AddImport("github.com/acme/money", "money"))
	assert.Equal(t, "time", im.AddImport("time", ""))
	assert.Equal(t, "", im.AddImport("", "x"))

	assert.Equal(t, []Import{
		{Path: "example.com/legacy/money", Alias: "money2"},
		{Path: "github.com/acme/money"},
		{Path: "time"},
	}, im.Imports())
}

func TestImportManager_GenerateImports(t *testing.T) {
	im := NewImportManager("example.com/shop")
	assert.Empty(t, im.GenerateImports())

	im.AddImport("time", "time")
	assert.Equal(t, "import \"time\"\n", im.GenerateImports())

	im.AddImport("github.com/google/uuid", "uuid")
	im.AddImport("encoding/json", "json")
	assert.Equal(t, "import (\n\t\"encoding/json\"\n\t\"time\"\n\n\t\"github.com/google/uuid\"\n)\n", im.GenerateImports())
}

func TestImportManager_QualifierSkipsOwnPackage(t *testing.T) {
	im := NewImportManager("example.com/shop")
	qf := im.Qualifier()

	own := namedType("example.com/shop", "shop", "Order")
	foreign := namedType("github.com/acme/money", "money", "Amount")

	assert.Equal(t, "example.com/shop.Order", types.TypeString(own, nil))
	assert.Equal(t, "Order", types.TypeString(own, qf))
	assert.Equal(t, "*money.Amount", types.TypeString(types.NewPointer(foreign), qf))
	assert.Len(t, im.Imports(), 1)
}

func TestTemplateUtils_TypeParams(t *testing.T) {
	tu := NewTemplateUtils()
	assert.Empty(t, tu.TypeParamsDecl(nil, nil))
	assert.Empty(t, tu.TypeArgs(nil))

	params := []models.TypeParam{
		{Name: "T"},
		{Name: "N", Constraint: namedType("example.com/shop", "shop", "Number")},
	}
	qf := NewImportManager("example.com/shop").Qualifier()
	assert.Equal(t, "[T any, N Number]", tu.TypeParamsDecl(params, qf))
	assert.Equal(t, "[T, N]", tu.TypeArgs(params))
	assert.Equal(t, `"Name"`, tu.QuoteString("Name"))
}

func TestTemplateRegistry(t *testing.T) {
	for _, name := range []string{"file-header", "dto-struct", "observers", "setter", "to-dto", "apply"} {
		_, ok := DefaultTemplateRegistry.Get(name)
		assert.True(t, ok, name)
	}
	_, ok := DefaultTemplateRegistry.Get("route")
	assert.False(t, ok)
	assert.Panics(t, func() { DefaultTemplateRegistry.MustGet("route") })
}

func declarationSet() *models.DeclarationSet {
	container := &models.ContainerDescriptor{
		QualifiedName: "example.com/shop.Invoice",
		Name:          "Invoice",
		PkgPath:       "example.com/shop",
		Verdict:       models.VerdictEligible,
		DTOName:       "InvoiceDTO",
	}
	amount := &models.MemberDescriptor{
		Owner:          container,
		Name:           "Total",
		OutputName:     "Amount",
		Type:           types.NewPointer(namedType("github.com/acme/money", "money", "Amount")),
		NotNilContract: true,
	}
	ref := &models.MemberDescriptor{
		Owner:      container,
		Name:       "Ref",
		OutputName: "Ref",
		Type:       types.Typ[types.String],
		Index:      1,
	}
	return &models.DeclarationSet{
		Container: container,
		Fragments: []models.Fragment{
			{Kind: models.FragmentStruct, Name: "InvoiceDTO"},
			{Kind: models.FragmentField, Name: "Amount", Member: amount, Tag: `dto:"Read"`},
			{Kind: models.FragmentSetter, Name: "SetAmount", Member: amount, Directives: []string{"//dto:notnil Amount"}},
			{Kind: models.FragmentField, Name: "Ref", Member: ref, Tag: `dto:"Create,Read"`},
			{Kind: models.FragmentSetter, Name: "SetRef", Member: ref},
			{Kind: models.FragmentObservers, Name: "OnPropertyChanged"},
			{Kind: models.FragmentObservers, Name: "OnPropertyChanging"},
			{Kind: models.FragmentToDTO, Name: "ToDTO"},
			{Kind: models.FragmentApply, Name: "Apply"},
		},
	}
}

func TestRenderFile(t *testing.T) {
	code, err := RenderFile("shop", "example.com/shop", []*models.DeclarationSet{declarationSet()})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(code, "// Code generated by dtogen. DO NOT EDIT."))
	assert.Contains(t, code, "package shop")
	assert.Contains(t, code, `import "github.com/acme/money"`)
	assert.Contains(t, code, "type InvoiceDTO struct {")
	assert.Contains(t, code, "Amount *money.Amount `dto:\"Read\"`")
	assert.Contains(t, code, "//dto:notnil Amount\nfunc (d *InvoiceDTO) SetAmount(value *money.Amount) {")
	assert.Contains(t, code, `d.notifyChanged("Ref")`)
	assert.Equal(t, 1, strings.Count(code, "OnPropertyChanged(handler func(property string))"))
	assert.Contains(t, code, "func (c *Invoice) ToDTO() *InvoiceDTO {")
	assert.Contains(t, code, "func (d *InvoiceDTO) Apply(c *Invoice) {")

	// struct, two setters, observers, ToDTO and Apply come out in fragment order
	assert.Less(t, strings.Index(code, "SetAmount"), strings.Index(code, "SetRef"))
	assert.Less(t, strings.Index(code, "SetRef"), strings.Index(code, "OnPropertyChanged"))
	assert.Less(t, strings.Index(code, "ToDTO()"), strings.Index(code, "Apply("))
}

func TestRenderDeclarationSet_RequiresContainer(t *testing.T) {
	_, err := RenderDeclarationSet(&models.DeclarationSet{}, NewImportManager("p"))
	assert.Error(t, err)
	_, err = RenderDeclarationSet(nil, NewImportManager("p"))
	assert.Error(t, err)
}

func TestExecuteTemplate_WrapsTemplateErrors(t *testing.T) {
	_, err := executeTemplate("broken", "{{.Name", nil)
	var genErr *errors.GenerationError
	require.True(t, stderrors.As(err, &genErr))
	assert.Equal(t, errors.TemplateErrorCode, genErr.ErrorCode())
	assert.Equal(t, "parse", genErr.Stage)
	assert.Equal(t, "broken", genErr.TargetFile)

	_, err = executeTemplate("setter", DefaultTemplateRegistry.MustGet("setter"), struct{}{})
	require.True(t, stderrors.As(err, &genErr))
	assert.Equal(t, errors.TemplateErrorCode, genErr.ErrorCode())
	assert.Equal(t, "execute", genErr.Stage)
	assert.Contains(t, err.Error(), "failed to execute template 'setter'")
}
