package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dtogen/internal/annotations"
	"github.com/toyz/dtogen/internal/diagnostics"
	"github.com/toyz/dtogen/internal/models"
)

func parse(t *testing.T, source string) *models.Package {
	t.Helper()
	program, err := NewLoader().ParseSource("models.go", source)
	require.NoError(t, err)
	require.Len(t, program.Packages, 1)
	return program.Packages[0]
}

func containerNamed(t *testing.T, pkg *models.Package, name string) *models.ContainerSymbol {
	t.Helper()
	for _, c := range pkg.Containers {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "container not found", "%s", name)
	return nil
}

func TestParseSource_SourceAndMembers(t *testing.T) {
	pkg := parse(t, `package users

//dto::source -Name=UserView
type User struct {
	//dto::member -Roles=Create,Read
	Name string
	Age  int //dto::member
	internal bool
	//dto::member -Nullable
	Tags, Labels []string
}
`)

	assert.Equal(t, "users", pkg.Name)
	assert.Empty(t, pkg.Diagnostics)
	require.Len(t, pkg.Containers, 1)

	user := pkg.Containers[0]
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, "users.User", user.QualifiedName())
	assert.True(t, user.Exported)
	require.NotNil(t, user.Source)
	assert.Equal(t, "UserView", user.Source.GetString("Name"))
	assert.True(t, user.Capabilities.HasOwn(models.CapabilitySource))
	assert.Equal(t, 4, user.Location.Line)

	var names []string
	for _, m := range user.Members {
		names = append(names, m.Name)
		assert.Same(t, user, m.Container)
	}
	assert.Equal(t, []string{"Name", "Age", "Tags", "Labels"}, names)
	assert.Equal(t, []int{0, 1, 3, 4}, []int{user.Members[0].Index, user.Members[1].Index, user.Members[2].Index, user.Members[3].Index})
	assert.Equal(t, "string", user.Members[0].Type.String())
	assert.Equal(t, "[]string", user.Members[3].Type.String())
	assert.True(t, user.Members[2].Annotations[0].GetBool("Nullable"))
	assert.Equal(t, "User.Tags,Labels", user.Members[2].Annotations[0].Target)
}

func TestParseSource_QuotedValues(t *testing.T) {
	pkg := parse(t, `package users

//dto::source -Name='AccountView'
type Account struct {
	//dto::member -Name='Handle' -Roles='Create,Read'
	Login string
	//dto::member -Name="Mail"
	Email string
}
`)

	assert.Empty(t, pkg.Diagnostics)
	account := containerNamed(t, pkg, "Account")
	assert.Equal(t, "AccountView", account.Source.GetString("Name"))
	require.Len(t, account.Members, 2)
	assert.Equal(t, "Handle", account.Members[0].Annotations[0].GetString("Name"))
	assert.Equal(t, "Create,Read", account.Members[0].Annotations[0].GetString("Roles"))
	assert.Equal(t, "Mail", account.Members[1].Annotations[0].GetString("Name"))
}

func TestParseSource_ContainerOrderFollowsSource(t *testing.T) {
	pkg := parse(t, `package p

//dto::source
type Zeta struct{}

type (
	//dto::source
	Alpha struct{}

	Plain struct{ X int }

	Mid struct {
		//dto::member
		Y int
	}
)
`)

	var names []string
	for _, c := range pkg.Containers {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, names)
	assert.Nil(t, containerNamed(t, pkg, "Mid").Source)
}

func TestParseSource_InheritedCapabilities(t *testing.T) {
	pkg := parse(t, `package p

//dto::observable
type Observed struct{}

//dto::notify
type Notifying struct{}

type Middle struct {
	*Observed
}

//dto::source
type ViaChain struct {
	Middle
}

//dto::source
//dto::notify
type Direct struct{}

//dto::source
type ViaNotify struct {
	Notifying
}

//dto::source
//dto::observable
type OwnObservable struct{}

type Loop struct {
	*Loop
}

//dto::source
type Cyclic struct {
	Loop
}
`)

	chain := containerNamed(t, pkg, "ViaChain")
	assert.True(t, chain.Capabilities.HasInherited(models.CapabilityObservable))
	assert.False(t, chain.Capabilities.HasOwn(models.CapabilityObservable))

	direct := containerNamed(t, pkg, "Direct")
	assert.True(t, direct.Capabilities.HasOwn(models.CapabilityNotify))

	viaNotify := containerNamed(t, pkg, "ViaNotify")
	assert.True(t, viaNotify.Capabilities.HasInherited(models.CapabilityNotify))

	own := containerNamed(t, pkg, "OwnObservable")
	assert.True(t, own.Capabilities.HasOwn(models.CapabilityObservable))
	assert.False(t, own.Capabilities.HasInherited(models.CapabilityObservable))

	cyclic := containerNamed(t, pkg, "Cyclic")
	assert.Equal(t, models.Capability(0), cyclic.Capabilities.Inherited)
}

func TestParseSource_Protocols(t *testing.T) {
	pkg := parse(t, `package p

type Handler func(string)

//dto::source
type Changed struct{}

func (c *Changed) OnPropertyChanged(handler func(property string)) {}

//dto::source
type Changing struct{}

func (c Changing) OnPropertyChanging(handler Handler) {}

type base struct{}

func (b *base) OnPropertyChanged(func(string)) {}

//dto::source
type Promoted struct {
	base
}

//dto::source
type WrongShape struct{}

func (w *WrongShape) OnPropertyChanged(handler func(int)) {}

//dto::source
type Generic[T any] struct {
	//dto::member
	Value T
}

func (g *Generic[T]) OnPropertyChanging(func(string)) {}
`)

	assert.Equal(t, models.ProtocolPropertyChanged, containerNamed(t, pkg, "Changed").Protocols)
	assert.Equal(t, models.ProtocolPropertyChanging, containerNamed(t, pkg, "Changing").Protocols)
	assert.Equal(t, models.ProtocolPropertyChanged, containerNamed(t, pkg, "Promoted").Protocols)
	assert.Equal(t, models.Protocol(0), containerNamed(t, pkg, "WrongShape").Protocols)

	generic := containerNamed(t, pkg, "Generic")
	assert.Equal(t, models.ProtocolPropertyChanging, generic.Protocols)
	require.Len(t, generic.TypeParams, 1)
	assert.Equal(t, "T", generic.TypeParams[0].Name)
	assert.Equal(t, "any", generic.TypeParams[0].Constraint.String())
}

func TestParseSource_InvalidAnnotations(t *testing.T) {
	pkg := parse(t, `package p

//dto::source -Roles=Read
type BadParam struct{}

//dto::member
type MemberOnType struct{}

//dto::source
type NotAStruct int

//dto::source
//dto::source
type Twice struct {
	//dto::source
	Field int
	//dto::member -Roles=Archive
	Other int
}
`)

	require.Len(t, pkg.Diagnostics, 6)
	for _, d := range pkg.Diagnostics {
		assert.Equal(t, diagnostics.InvalidAnnotation, d.Kind)
		assert.Equal(t, "models.go", d.Location.File)
	}
	assert.Equal(t, "BadParam", pkg.Diagnostics[0].Args[0])
	assert.Equal(t, "MemberOnType", pkg.Diagnostics[1].Args[0])
	assert.Contains(t, pkg.Diagnostics[2].Args[1], "requires a struct type")
	assert.Contains(t, pkg.Diagnostics[3].Args[1], "duplicate")
	assert.Equal(t, "Twice.Field", pkg.Diagnostics[4].Args[0])
	assert.Equal(t, "Twice.Other", pkg.Diagnostics[5].Args[0])

	// Lines increase in discovery order
	for i := 1; i < len(pkg.Diagnostics); i++ {
		assert.Less(t, pkg.Diagnostics[i-1].Location.Line, pkg.Diagnostics[i].Location.Line)
	}

	twice := containerNamed(t, pkg, "Twice")
	assert.NotNil(t, twice.Source)
	assert.Empty(t, twice.Members)
}

func TestParseSource_TypeErrorIsLoadError(t *testing.T) {
	_, err := NewLoader().ParseSource("broken.go", "package p\n\ntype T struct { X Missing }\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.go:3")
}

func TestParseSource_SkipsGeneratedFiles(t *testing.T) {
	program, err := NewLoader().ParseFiles(map[string]string{
		"a.go":           "package p\n\n//dto::source\ntype A struct{}\n",
		"autogen_dto.go": "// Code generated by dtogen. DO NOT EDIT.\n\npackage p\n\n//dto::source\ntype ADTO struct{}\n",
	})
	require.NoError(t, err)

	pkg := program.Packages[0]
	assert.Equal(t, []string{"a.go"}, pkg.Files)
	require.Len(t, pkg.Containers, 1)
	assert.Equal(t, "A", pkg.Containers[0].Name)
}

func TestParseFiles_ScopeAndSelectors(t *testing.T) {
	program, err := NewLoader().ParseFiles(map[string]string{
		"a.go": `package p

const Limit = 3

var _ = Limit

type Base struct{}

func (Base) Promoted() {}

func init() {}

func Helper() {}

//dto::source
type Box[T any] struct {
	Base
	//dto::member
	Value T
	hidden int
}

func (b *Box[T]) Len() int { return b.hidden }

//dto::source
type Pair[K comparable, V any] struct {
	//dto::member
	Key K
}

func (p Pair[K, V]) Swap() {}
`,
		"autogen_dto.go": "// Code generated by dtogen. DO NOT EDIT.\n\npackage p\n\ntype BoxDTO struct{}\n\nfunc (b *Box[T]) ToDTO() *BoxDTO { return nil }\n",
	})
	require.NoError(t, err)
	pkg := program.Packages[0]

	for _, name := range []string{"Limit", "Base", "Helper", "Box", "Pair"} {
		assert.True(t, pkg.Declares(name), name)
	}
	for _, name := range []string{"_", "init", "BoxDTO", "Promoted"} {
		assert.False(t, pkg.Declares(name), name)
	}

	box := containerNamed(t, pkg, "Box")
	assert.Equal(t, map[string]bool{"Base": true, "Value": true, "hidden": true, "Len": true}, box.Selectors)

	pair := containerNamed(t, pkg, "Pair")
	assert.Equal(t, map[string]bool{"Key": true, "Swap": true}, pair.Selectors)

	var missing *models.Package
	assert.False(t, missing.Declares("Box"))
}

func TestLoaderUsesConfiguredGoVersion(t *testing.T) {
	program, err := NewLoader(WithGoVersion("1.17")).ParseSource("a.go", "package p\n")
	require.NoError(t, err)
	assert.Equal(t, "1.17", program.Packages[0].GoVersion)
}

func TestLoaderCustomAnnotationParser(t *testing.T) {
	loader := NewLoader(WithAnnotationParser(annotations.NewParticipleParser(nil)))
	program, err := loader.ParseSource("a.go", "package p\n\n//dto::source -Anything\ntype A struct{}\n")
	require.NoError(t, err)
	assert.Empty(t, program.Packages[0].Diagnostics)
}

func TestSupportsGeneratedCode(t *testing.T) {
	tests := map[string]bool{
		"":         true,
		"1.17":     false,
		"1.18":     true,
		"1.21.5":   true,
		"go1.22":   true,
		"1.23rc1":  true,
		"1.16beta": false,
		"garbage":  true,
	}
	for version, want := range tests {
		assert.Equal(t, want, SupportsGeneratedCode(version), version)
	}
}

func TestParsePosition(t *testing.T) {
	assert.Equal(t, diagnostics.Location{File: "/a/b.go", Line: 3, Column: 9}, parsePosition("/a/b.go:3:9"))
	assert.Equal(t, diagnostics.Location{File: "/a/b.go", Line: 3}, parsePosition("/a/b.go:3"))
	assert.Equal(t, diagnostics.Location{File: "C:/a/b.go", Line: 1, Column: 2}, parsePosition("C:/a/b.go:1:2"))
	assert.Equal(t, diagnostics.Location{}, parsePosition("-"))
	assert.Equal(t, diagnostics.Location{File: "b.go"}, parsePosition("b.go"))
}
