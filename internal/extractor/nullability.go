package extractor

import "go/types"

// Nillable reports whether a value of type t can hold nil, and whether t is a
// type parameter. A type parameter can hold nil unless every type in its
// constraint's type set is non-nillable.
func Nillable(t types.Type) (canBeNil, isTypeParam bool) {
	t = types.Unalias(t)
	if tp, ok := t.(*types.TypeParam); ok {
		return typeParamNillable(tp), true
	}
	return holdsNil(t), false
}

func holdsNil(t types.Type) bool {
	t = types.Unalias(t)
	if tp, ok := t.(*types.TypeParam); ok {
		return typeParamNillable(tp)
	}

	switch u := t.Underlying().(type) {
	case *types.Pointer, *types.Slice, *types.Map, *types.Chan, *types.Signature, *types.Interface:
		return true
	case *types.Basic:
		return u.Kind() == types.UnsafePointer || u.Kind() == types.UntypedNil
	default:
		return false
	}
}

func typeParamNillable(tp *types.TypeParam) bool {
	iface, ok := tp.Constraint().Underlying().(*types.Interface)
	if !ok {
		return true
	}
	restricted, nillable := constraintTerms(iface)
	return !restricted || nillable
}

// constraintTerms reports whether an interface restricts its type set with terms,
// and whether any of those terms can hold nil. Intersections of term lists are
// approximated by their union.
func constraintTerms(iface *types.Interface) (restricted, nillable bool) {
	for i := 0; i < iface.NumEmbeddeds(); i++ {
		embedded := types.Unalias(iface.EmbeddedType(i))

		if union, ok := embedded.(*types.Union); ok {
			restricted = true
			for j := 0; j < union.Len(); j++ {
				if holdsNil(union.Term(j).Type()) {
					nillable = true
				}
			}
			continue
		}

		if inner, ok := embedded.Underlying().(*types.Interface); ok {
			r, n := constraintTerms(inner)
			restricted = restricted || r
			nillable = nillable || n
			continue
		}

		restricted = true
		if holdsNil(embedded) {
			nillable = true
		}
	}
	return restricted, nillable
}
