package types

import (
	"fmt"

	"fortio.org/safecast"
)

// MethodRef, FieldRef and ParamRef are opaque handles into a Members arena.
// Index zero is reserved on every arena as the "no handle" sentinel, the
// same convention TypeID and DefHandle use.
type MethodRef uint32
type FieldRef uint32
type ParamRef uint32

const (
	NoMethodRef MethodRef = 0
	NoFieldRef  FieldRef  = 0
	NoParamRef  ParamRef  = 0
)

// MethodInfo describes one method as far as the core needs to know:
// its declaring type, signature, and generic arity. Anything beyond that
// (IL body offset, custom attributes, accessibility) belongs to the
// metadata reader, not the optimizer core.
type MethodInfo struct {
	Owner      DefHandle
	Params     []TypeID
	Result     TypeID
	NumGeneric uint32
	Static     bool

	// Array and ArrayIntrinsic are populated only for one of the five
	// handles SynthesizeMDArrayMethods hands out; every ordinary method
	// leaves both at their zero value. Array names the owning MDArray
	// type, since a synthesized method has no real DefHandle to report.
	Array          TypeID
	ArrayIntrinsic ArrayOp
}

// FieldInfo describes one field: its declaring type and its own type.
type FieldInfo struct {
	Owner DefHandle
	Type  TypeID
}

// ParamInfo describes one formal parameter or return slot referenced by a
// FieldAddrInst-style member access on a FuncPtr/method signature.
type ParamInfo struct {
	Method MethodRef
	Index  uint32
	Type   TypeID
	ByRef  bool
}

// Members is an arena of method, field, and parameter descriptors, mirroring
// the interner's index-0-reserved allocation discipline. Unlike Interner it
// does not deduplicate: two distinct metadata handles never collapse to the
// same MethodRef even if their signatures happen to match structurally,
// since identity here tracks a specific declaration, not a shape.
type Members struct {
	methods []MethodInfo
	fields  []FieldInfo
	params  []ParamInfo

	mdArrayCache map[TypeID]MDArrayMethods
}

// NewMembers constructs an empty arena with the zero-index sentinels
// reserved.
func NewMembers() *Members {
	return &Members{
		methods: make([]MethodInfo, 1, 64),
		fields:  make([]FieldInfo, 1, 64),
		params:  make([]ParamInfo, 1, 64),
	}
}

// NewMethod records a method descriptor and returns its handle.
func (m *Members) NewMethod(info MethodInfo) MethodRef {
	info.Params = cloneTypeIDs(info.Params)
	m.methods = append(m.methods, info)
	idx, err := safecast.Conv[uint32](len(m.methods) - 1)
	if err != nil {
		panic(fmt.Errorf("types: method arena overflow: %w", err))
	}
	return MethodRef(idx)
}

// Method looks up a method descriptor by handle.
func (m *Members) Method(ref MethodRef) (MethodInfo, bool) {
	if ref == NoMethodRef || int(ref) >= len(m.methods) {
		return MethodInfo{}, false
	}
	return m.methods[ref], true
}

// NewField records a field descriptor and returns its handle.
func (m *Members) NewField(info FieldInfo) FieldRef {
	m.fields = append(m.fields, info)
	idx, err := safecast.Conv[uint32](len(m.fields) - 1)
	if err != nil {
		panic(fmt.Errorf("types: field arena overflow: %w", err))
	}
	return FieldRef(idx)
}

// Field looks up a field descriptor by handle.
func (m *Members) Field(ref FieldRef) (FieldInfo, bool) {
	if ref == NoFieldRef || int(ref) >= len(m.fields) {
		return FieldInfo{}, false
	}
	return m.fields[ref], true
}

// NewParam records a parameter descriptor and returns its handle.
func (m *Members) NewParam(info ParamInfo) ParamRef {
	m.params = append(m.params, info)
	idx, err := safecast.Conv[uint32](len(m.params) - 1)
	if err != nil {
		panic(fmt.Errorf("types: param arena overflow: %w", err))
	}
	return ParamRef(idx)
}

// Param looks up a parameter descriptor by handle.
func (m *Members) Param(ref ParamRef) (ParamInfo, bool) {
	if ref == NoParamRef || int(ref) >= len(m.params) {
		return ParamInfo{}, false
	}
	return m.params[ref], true
}

// Len reports the number of live methods, fields, and params, including the
// reserved sentinel slot in each count.
func (m *Members) Len() (methods, fields, params int) {
	return len(m.methods), len(m.fields), len(m.params)
}
