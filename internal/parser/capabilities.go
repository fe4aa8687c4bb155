package parser

import (
	"go/token"
	"go/types"

	"github.com/toyz/dtogen/internal/models"
	"github.com/toyz/dtogen/pkg/dto"
)

// capabilityIndex maps a type key to the capabilities annotated on that type
type capabilityIndex map[string]models.Capability

// typeKey identifies a declared type across packages of one load
func typeKey(obj *types.TypeName) string {
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}

// inherited returns the union of the capabilities of every type embedded in named,
// transitively. Types outside the loaded packages contribute nothing.
func (idx capabilityIndex) inherited(named *types.Named) models.Capability {
	visited := map[string]bool{typeKey(named.Origin().Obj()): true}

	var walk func(*types.Named) models.Capability
	walk = func(n *types.Named) models.Capability {
		st, ok := n.Underlying().(*types.Struct)
		if !ok {
			return 0
		}

		var caps models.Capability
		for i := 0; i < st.NumFields(); i++ {
			field := st.Field(i)
			if !field.Embedded() {
				continue
			}
			embedded := embeddedNamed(field.Type())
			if embedded == nil {
				continue
			}
			key := typeKey(embedded.Origin().Obj())
			if visited[key] {
				continue
			}
			visited[key] = true
			caps |= idx[key] | walk(embedded)
		}
		return caps
	}

	return walk(named)
}

// embeddedNamed returns the defined type behind an embedded field type
func embeddedNamed(t types.Type) *types.Named {
	t = types.Unalias(t)
	if ptr, ok := t.(*types.Pointer); ok {
		t = types.Unalias(ptr.Elem())
	}
	named, _ := t.(*types.Named)
	return named
}

// propertyHandler is the callback type of both notification protocols: func(property string)
var propertyHandler = types.NewSignatureType(nil, nil, nil,
	types.NewTuple(types.NewParam(token.NoPos, nil, "property", types.Typ[types.String])),
	nil, false)

// protocolsOf reports the notification protocols in the method set of *T,
// including methods promoted from embedded types
func protocolsOf(named *types.Named) models.Protocol {
	mset := types.NewMethodSet(types.NewPointer(named))

	var protocols models.Protocol
	if hasHandlerMethod(mset, dto.PropertyChangedMethod) {
		protocols |= models.ProtocolPropertyChanged
	}
	if hasHandlerMethod(mset, dto.PropertyChangingMethod) {
		protocols |= models.ProtocolPropertyChanging
	}
	return protocols
}

// hasHandlerMethod reports a method name(func(string)) with no results
func hasHandlerMethod(mset *types.MethodSet, name string) bool {
	sel := mset.Lookup(nil, name)
	if sel == nil {
		return false
	}
	fn, ok := sel.Obj().(*types.Func)
	if !ok {
		return false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Variadic() || sig.Params().Len() != 1 || sig.Results().Len() != 0 {
		return false
	}
	return types.Identical(sig.Params().At(0).Type().Underlying(), propertyHandler)
}
