package extractor

import (
	"context"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dtogen/internal/diagnostics"
	"github.com/toyz/dtogen/internal/models"
	"github.com/toyz/dtogen/internal/parser"
	"github.com/toyz/dtogen/pkg/dto"
)

var notNilHost = models.HostFeatures{NotNilContracts: true}

func members(t *testing.T, source, container string) map[string]*models.MemberSymbol {
	t.Helper()
	program, err := parser.NewLoader().ParseSource("src.go", source)
	require.NoError(t, err)

	out := make(map[string]*models.MemberSymbol)
	for _, c := range program.Packages[0].Containers {
		if c.Name != container {
			continue
		}
		for _, m := range c.Members {
			out[m.Name] = m
		}
	}
	require.NotEmpty(t, out, "no members for %s", container)
	return out
}

const eligibleSource = `package shop

type Tagger interface{ Tag() string }

//dto::source
type Order struct {
	//dto::member
	Name string
	//dto::member -Roles=Read
	Total int
	//dto::member -Roles=Create
	//dto::member -Roles=Update
	Note *string
	//dto::member -Nullable
	Lines []string
	//dto::member -Name=Meta
	Attributes map[string]string
	//dto::member
	Tagger Tagger
	//dto::member
	Callback func()
}
`

func TestExtract_EligibleMembers(t *testing.T) {
	ms := members(t, eligibleSource, "Order")

	tests := []struct {
		field      string
		outputName string
		roles      dto.RoleSet
		canBeNil   bool
		nullable   bool
		notNil     bool
	}{
		{"Name", "Name", dto.DefaultRoles(), false, false, false},
		{"Total", "Total", dto.RolesOf(dto.Read), false, false, false},
		{"Note", "Note", dto.RolesOf(dto.Create, dto.Update), true, false, true},
		{"Lines", "Lines", dto.DefaultRoles(), true, true, false},
		{"Attributes", "Meta", dto.DefaultRoles(), true, false, true},
		{"Tagger", "Tagger", dto.DefaultRoles(), true, false, true},
		{"Callback", "Callback", dto.DefaultRoles(), true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			desc, diags, err := Extract(context.Background(), ms[tt.field], notNilHost)
			require.NoError(t, err)
			assert.Empty(t, diags)
			require.NotNil(t, desc)

			assert.Equal(t, tt.field, desc.Name)
			assert.Equal(t, tt.outputName, desc.OutputName)
			assert.Equal(t, tt.roles, desc.Roles)
			assert.Equal(t, tt.canBeNil, desc.CanBeNil)
			assert.Equal(t, tt.nullable, desc.Nullable)
			assert.Equal(t, tt.notNil, desc.NotNilContract)
			assert.False(t, desc.IsTypeParam)
			assert.True(t, desc.Owner.Eligible())
			assert.Equal(t, "OrderDTO", desc.Owner.DTOName)
		})
	}
}

func TestExtract_HostWithoutNotNilContracts(t *testing.T) {
	ms := members(t, eligibleSource, "Order")

	desc, _, err := Extract(context.Background(), ms["Note"], models.HostFeatures{})
	require.NoError(t, err)
	assert.True(t, desc.CanBeNil)
	assert.False(t, desc.NotNilContract)
}

func TestExtract_RejectedContainer(t *testing.T) {
	ms := members(t, `package shop

//dto::source
type Watched struct {
	//dto::member
	Name string
	//dto::member
	Age int
}

func (w *Watched) OnPropertyChanged(func(string)) {}
`, "Watched")

	for _, name := range []string{"Name", "Age"} {
		desc, diags, err := Extract(context.Background(), ms[name], notNilHost)
		require.NoError(t, err)
		assert.Nil(t, desc)
		require.Len(t, diags, 1)
		assert.Equal(t, diagnostics.InvalidContainerForMember, diags[0].Kind)
		assert.Equal(t, []string{"Watched", name}, diags[0].Args)
		assert.Equal(t, ms[name].Location, diags[0].Location)
	}
}

func TestExtract_MemberWithoutSource(t *testing.T) {
	ms := members(t, `package shop

type Loose struct {
	//dto::member
	Name string
}
`, "Loose")

	desc, diags, err := Extract(context.Background(), ms["Name"], notNilHost)
	require.NoError(t, err)
	assert.Nil(t, desc)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.InvalidContainerForMember, diags[0].Kind)
}

func TestExtract_Canceled(t *testing.T) {
	ms := members(t, eligibleSource, "Order")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	desc, diags, err := Extract(ctx, ms["Name"], notNilHost)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, desc)
	assert.Nil(t, diags)
}

func TestExtract_TypeParameters(t *testing.T) {
	ms := members(t, `package shop

type Number interface{ ~int | ~float64 }

type Ref interface{ ~*int | ~int }

//dto::source
type Box[T any, N Number, C comparable, R Ref, S interface{ ~[]byte }] struct {
	//dto::member
	Any T
	//dto::member
	Num N
	//dto::member
	Cmp C
	//dto::member
	Ref R
	//dto::member
	Bytes S
	//dto::member -Nullable
	Opt T
	//dto::member
	Items []N
}
`, "Box")

	tests := []struct {
		field       string
		canBeNil    bool
		isTypeParam bool
		notNil      bool
	}{
		{"Any", true, true, true},
		{"Num", false, true, false},
		{"Cmp", true, true, true},
		{"Ref", true, true, true},
		{"Bytes", true, true, true},
		{"Opt", true, true, false},
		{"Items", true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			desc, _, err := Extract(context.Background(), ms[tt.field], notNilHost)
			require.NoError(t, err)
			require.NotNil(t, desc)
			assert.Equal(t, tt.canBeNil, desc.CanBeNil)
			assert.Equal(t, tt.isTypeParam, desc.IsTypeParam)
			assert.Equal(t, tt.notNil, desc.NotNilContract)
		})
	}
}

func TestNeedsNotNilContractMatrix(t *testing.T) {
	for _, canBeNil := range []bool{false, true} {
		for _, nullable := range []bool{false, true} {
			for _, supported := range []bool{false, true} {
				want := canBeNil && !nullable && supported
				got := NeedsNotNilContract(canBeNil, nullable, models.HostFeatures{NotNilContracts: supported})
				assert.Equal(t, want, got, "canBeNil=%v nullable=%v supported=%v", canBeNil, nullable, supported)
			}
		}
	}
}

func TestNillableBasics(t *testing.T) {
	canBeNil, isTP := Nillable(types.Typ[types.String])
	assert.False(t, canBeNil)
	assert.False(t, isTP)

	canBeNil, _ = Nillable(types.Typ[types.UnsafePointer])
	assert.True(t, canBeNil)

	canBeNil, _ = Nillable(types.NewPointer(types.Typ[types.Int]))
	assert.True(t, canBeNil)

	canBeNil, _ = Nillable(types.NewArray(types.Typ[types.Int], 2))
	assert.False(t, canBeNil)

	canBeNil, _ = Nillable(types.NewStruct(nil, nil))
	assert.False(t, canBeNil)
}
