package types

// ArrayOp discriminates which of the five on-demand MDArray intrinsic
// methods a MethodInfo stands in for. The zero value, ArrayOpNone, means
// the MethodInfo describes an ordinary method — the overwhelmingly common
// case.
type ArrayOp uint8

const (
	ArrayOpNone ArrayOp = iota
	ArrayOpCtorSizes
	ArrayOpCtorRanges
	ArrayOpGet
	ArrayOpSet
	ArrayOpAddress
)

// MDArrayMethods is the five-method surface ECMA-335 §II.14.2 says every
// multi-dimensional array type exposes without a backing TypeDef: a
// constructor taking one size per dimension, a constructor taking a
// (lowerBound, size) pair per dimension, Get, Set, and Address.
type MDArrayMethods struct {
	CtorSizes  MethodRef
	CtorRanges MethodRef
	Get        MethodRef
	Set        MethodRef
	Address    MethodRef
}

// SynthesizeMDArrayMethods returns the five intrinsic method handles for
// mdArray, deriving every signature from its Rank and Elem and registering
// them in m on first request. Later calls for the same mdArray return the
// cached handles rather than minting duplicates. ok is false if mdArray
// does not name an MDArray type.
func (m *Members) SynthesizeMDArrayMethods(in *Interner, mdArray TypeID) (MDArrayMethods, bool) {
	if cached, ok := m.mdArrayCache[mdArray]; ok {
		return cached, true
	}
	t, ok := in.Lookup(mdArray)
	if !ok || t.Kind != KindMDArray {
		return MDArrayMethods{}, false
	}

	i32 := in.GetPrimitiveType(PrimitiveInt32)
	void := in.GetPrimitiveType(PrimitiveVoid)
	byrefElem := in.GetByReferenceType(t.Elem)
	indices := repeatTypeID(i32, t.Rank)

	methods := MDArrayMethods{
		// Static here means "newobj supplies the receiver implicitly": a
		// .ctor is an instance method by metadata convention, but this
		// frontend's newobj lowering only pops len(Params) args and never
		// an extra receiver operand.
		CtorSizes: m.NewMethod(MethodInfo{
			Params: indices, Result: void, Static: true,
			Array: mdArray, ArrayIntrinsic: ArrayOpCtorSizes,
		}),
		CtorRanges: m.NewMethod(MethodInfo{
			Params: repeatTypeID(i32, 2*t.Rank), Result: void, Static: true,
			Array: mdArray, ArrayIntrinsic: ArrayOpCtorRanges,
		}),
		Get: m.NewMethod(MethodInfo{
			Params: indices, Result: t.Elem, Static: false,
			Array: mdArray, ArrayIntrinsic: ArrayOpGet,
		}),
		Set: m.NewMethod(MethodInfo{
			Params: append(repeatTypeID(i32, t.Rank), t.Elem), Result: void, Static: false,
			Array: mdArray, ArrayIntrinsic: ArrayOpSet,
		}),
		Address: m.NewMethod(MethodInfo{
			Params: indices, Result: byrefElem, Static: false,
			Array: mdArray, ArrayIntrinsic: ArrayOpAddress,
		}),
	}

	if m.mdArrayCache == nil {
		m.mdArrayCache = make(map[TypeID]MDArrayMethods, 4)
	}
	m.mdArrayCache[mdArray] = methods
	return methods, true
}

func repeatTypeID(id TypeID, n uint32) []TypeID {
	out := make([]TypeID, n)
	for i := range out {
		out[i] = id
	}
	return out
}
