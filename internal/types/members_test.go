package types

import "testing"

func TestMembersArenaReservesZero(t *testing.T) {
	m := NewMembers()
	if _, ok := m.Method(NoMethodRef); ok {
		t.Fatalf("NoMethodRef must not resolve")
	}
	if _, ok := m.Field(NoFieldRef); ok {
		t.Fatalf("NoFieldRef must not resolve")
	}
	if _, ok := m.Param(NoParamRef); ok {
		t.Fatalf("NoParamRef must not resolve")
	}
}

func TestMembersRoundTrip(t *testing.T) {
	in := NewInterner()
	m := NewMembers()

	owner := DefHandle(1)
	i32 := in.Builtins().Int32

	method := m.NewMethod(MethodInfo{
		Owner:  owner,
		Params: []TypeID{i32, i32},
		Result: i32,
	})
	got, ok := m.Method(method)
	if !ok {
		t.Fatalf("method handle did not resolve")
	}
	if got.Owner != owner || len(got.Params) != 2 || got.Result != i32 {
		t.Fatalf("unexpected method info: %+v", got)
	}

	field := m.NewField(FieldInfo{Owner: owner, Type: i32})
	if fi, ok := m.Field(field); !ok || fi.Type != i32 {
		t.Fatalf("field handle round-trip failed: %+v ok=%v", fi, ok)
	}

	param := m.NewParam(ParamInfo{Method: method, Index: 0, Type: i32})
	if pi, ok := m.Param(param); !ok || pi.Method != method {
		t.Fatalf("param handle round-trip failed: %+v ok=%v", pi, ok)
	}
}

func TestMembersDoesNotDeduplicate(t *testing.T) {
	m := NewMembers()
	a := m.NewField(FieldInfo{Owner: DefHandle(1), Type: TypeID(5)})
	b := m.NewField(FieldInfo{Owner: DefHandle(1), Type: TypeID(5)})
	if a == b {
		t.Fatalf("two distinct NewField calls must not collapse to the same handle")
	}
}

func TestMembersLenIncludesSentinels(t *testing.T) {
	m := NewMembers()
	methods, fields, params := m.Len()
	if methods != 1 || fields != 1 || params != 1 {
		t.Fatalf("expected only the reserved sentinel slots, got %d %d %d", methods, fields, params)
	}
}
