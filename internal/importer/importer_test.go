package importer

import (
	"testing"

	"ilcore/internal/cil"
	"ilcore/internal/ir"
	"ilcore/internal/types"
)

// fakeProvider combines an Interner (for every type-construction callback)
// with a Members arena (for ResolveMethod/ResolveField), the same pairing a
// real metadata reader is expected to present as one cil.TypeProvider.
type fakeProvider struct {
	*types.Interner
	*types.Members
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{Interner: types.NewInterner(), Members: types.NewMembers()}
}

func (p *fakeProvider) ResolveMethod(ref types.MethodRef) (types.MethodInfo, bool) {
	return p.Members.Method(ref)
}

func (p *fakeProvider) ResolveField(ref types.FieldRef) (types.FieldInfo, bool) {
	return p.Members.Field(ref)
}

func instr(off uint32, op cil.OpCode) cil.Instr {
	return cil.Instr{OpCode: op, Offset: off}
}

func ldarg(off uint32, i uint32) cil.Instr {
	return cil.Instr{OpCode: cil.OpLdarg, Offset: off, Operand: cil.Operand{VarIndex: i}}
}

func ldloc(off uint32, i uint32) cil.Instr {
	return cil.Instr{OpCode: cil.OpLdloc, Offset: off, Operand: cil.Operand{VarIndex: i}}
}

func stloc(off uint32, i uint32) cil.Instr {
	return cil.Instr{OpCode: cil.OpStloc, Offset: off, Operand: cil.Operand{VarIndex: i}}
}

func ldcI4(off uint32, v int64) cil.Instr {
	return cil.Instr{OpCode: cil.OpLdcI4, Offset: off, Operand: cil.Operand{Int: v}}
}

func branch(off uint32, op cil.OpCode, target uint32) cil.Instr {
	return cil.Instr{OpCode: op, Offset: off, Operand: cil.Operand{Targets: []uint32{target}}}
}

func ldloca(off uint32, i uint32) cil.Instr {
	return cil.Instr{OpCode: cil.OpLdloca, Offset: off, Operand: cil.Operand{VarIndex: i}}
}

func fieldInstr(off uint32, op cil.OpCode, f types.FieldRef) cil.Instr {
	return cil.Instr{OpCode: op, Offset: off, Operand: cil.Operand{Field: f}}
}

func callInstr(off uint32, op cil.OpCode, m types.MethodRef) cil.Instr {
	return cil.Instr{OpCode: op, Offset: off, Operand: cil.Operand{Method: m}}
}

func TestImportArithmeticAndReturn(t *testing.T) {
	p := newFakeProvider()
	i32 := p.Builtins().Int32

	raw := &cil.RawMethod{
		ArgTypes:   []types.TypeID{i32, i32},
		ReturnType: i32,
		Instrs: []cil.Instr{
			ldarg(0, 0),
			ldarg(1, 1),
			instr(2, cil.OpAdd),
			instr(3, cil.OpRet),
		},
		Length: 4,
	}

	body, err := Import(raw, p, DefaultOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := body.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	insts := body.Instructions(body.Entry)
	if len(insts) != 2 {
		t.Fatalf("expected one add and one return, got %d instructions", len(insts))
	}
	add := body.Inst(insts[0])
	if add.Kind != ir.InstBinary || add.BinOp != ir.BinAdd {
		t.Fatalf("expected InstBinary/BinAdd, got %v/%v", add.Kind, add.BinOp)
	}
	ret := body.Inst(insts[1])
	if ret.Kind != ir.InstReturn {
		t.Fatalf("expected InstReturn, got %v", ret.Kind)
	}
	if body.OperandValue(ret.Operands[0]) != add.Result {
		t.Fatalf("return does not use the add's result")
	}
}

// TestImportConditionalMergeCreatesPhi builds:
//
//	0: ldarg 0
//	1: ldc.i4 0
//	2: bgt 6           (true: jump to 6, otherwise fall through to offset 3)
//	3: ldc.i4 2
//	4: stloc 0
//	5: br 8
//	6: ldc.i4 1
//	7: stloc 0
//	8: ldloc 0
//	9: ret
//
// local 0 is never address-taken or cross-region, so it stays promotable
// and the merge at offset 8 must carry it through a phi rather than a
// LoadVar/StoreVar pair.
func TestImportConditionalMergeCreatesPhi(t *testing.T) {
	p := newFakeProvider()
	i32 := p.Builtins().Int32

	raw := &cil.RawMethod{
		ArgTypes:   []types.TypeID{i32},
		LocalTypes: []types.TypeID{i32},
		ReturnType: i32,
		Instrs: []cil.Instr{
			ldarg(0, 0),
			ldcI4(1, 0),
			branch(2, cil.OpBgt, 6),
			ldcI4(3, 2),
			stloc(4, 0),
			branch(5, cil.OpBr, 8),
			ldcI4(6, 1),
			stloc(7, 0),
			ldloc(8, 0),
			instr(9, cil.OpRet),
		},
		Length: 10,
	}

	body, err := Import(raw, p, DefaultOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := body.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if body.NumBlocks()-1 != 4 {
		t.Fatalf("expected 4 blocks, got %d", body.NumBlocks()-1)
	}

	mergeBlock := fc2MergeBlock(t, body)
	insts := body.Instructions(mergeBlock)
	if len(insts) == 0 || body.Inst(insts[0]).Kind != ir.InstPhi {
		t.Fatalf("expected the merge block to open with a phi, got %v", body.Inst(insts[0]).Kind)
	}
	phi := body.Inst(insts[0])
	if len(phi.Operands) != 2 {
		t.Fatalf("expected phi with 2 incoming values, got %d", len(phi.Operands))
	}
	for _, id := range insts {
		if body.Inst(id).Kind == ir.InstLoadVar || body.Inst(id).Kind == ir.InstStoreVar {
			t.Fatalf("promotable local leaked a LoadVar/StoreVar: %v", body.Inst(id).Kind)
		}
	}
}

// fc2MergeBlock locates the block with two predecessors (the if/else merge
// point), since block allocation order is an implementation detail the test
// should not hardcode.
func fc2MergeBlock(t *testing.T, body *ir.MethodBody) ir.BlockID {
	for _, id := range body.BlockIDs() {
		if len(body.Block(id).Preds) == 2 {
			return id
		}
	}
	t.Fatalf("no two-predecessor block found")
	return ir.NoBlockID
}

// TestImportAddressTakenLocalIsExposed checks that taking a local's address
// forces it to be memory-backed (real LoadVar/StoreVar), not carried as a
// plain SSA value substituted at every use.
func TestImportAddressTakenLocalIsExposed(t *testing.T) {
	p := newFakeProvider()
	i32 := p.Builtins().Int32

	raw := &cil.RawMethod{
		LocalTypes: []types.TypeID{i32},
		ReturnType: i32,
		Instrs: []cil.Instr{
			ldloca(0, 0),
			instr(1, cil.OpPop),
			ldcI4(2, 42),
			stloc(3, 0),
			ldloc(4, 0),
			instr(5, cil.OpRet),
		},
		Length: 6,
	}

	body, err := Import(raw, p, DefaultOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := body.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	var sawAddr, sawStore, sawLoad bool
	for _, id := range body.Instructions(body.Entry) {
		switch body.Inst(id).Kind {
		case ir.InstVarAddr:
			sawAddr = true
		case ir.InstStoreVar:
			sawStore = true
		case ir.InstLoadVar:
			sawLoad = true
		}
	}
	if !sawAddr || !sawStore || !sawLoad {
		t.Fatalf("expected VarAddr+StoreVar+LoadVar for an address-taken local, got addr=%v store=%v load=%v",
			sawAddr, sawStore, sawLoad)
	}
}

// TestImportBgeSwapsBranchTargets pins down the "keep the comparator,
// swap the targets" lowering for an opcode with no direct CompareOp: bge
// has no >= comparator, so it must be expressed as Lt with the taken and
// fall-through targets exchanged.
func TestImportBgeSwapsBranchTargets(t *testing.T) {
	p := newFakeProvider()
	i32 := p.Builtins().Int32

	raw := &cil.RawMethod{
		ArgTypes:   []types.TypeID{i32, i32},
		ReturnType: i32,
		Instrs: []cil.Instr{
			ldarg(0, 0),
			ldarg(1, 1),
			branch(2, cil.OpBge, 5),
			ldcI4(3, 0),
			instr(4, cil.OpRet),
			ldcI4(5, 1),
			instr(6, cil.OpRet),
		},
		Length: 7,
	}

	body, err := Import(raw, p, DefaultOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := body.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	insts := body.Instructions(body.Entry)
	branchInst := body.Inst(insts[len(insts)-1])
	if branchInst.Kind != ir.InstBranch {
		t.Fatalf("expected the entry block to end in a branch, got %v", branchInst.Kind)
	}
	cmp := body.Inst(insts[len(insts)-2])
	if cmp.Kind != ir.InstCompare || cmp.CmpOp != ir.CmpLt {
		t.Fatalf("bge must lower via CmpLt, got %v/%v", cmp.Kind, cmp.CmpOp)
	}
	if len(branchInst.Targets) != 2 {
		t.Fatalf("expected a two-target conditional branch, got %d", len(branchInst.Targets))
	}
	taken := branchInst.Targets[0]
	fallthroughTgt := branchInst.Targets[1]
	if body.Block(taken).StartOffset != 5 {
		t.Fatalf("bge's CIL target (offset 5) must be the false/taken edge, got start offset %d",
			body.Block(taken).StartOffset)
	}
	if body.Block(fallthroughTgt).StartOffset != 3 {
		t.Fatalf("bge's fall-through must land on offset 3, got start offset %d",
			body.Block(fallthroughTgt).StartOffset)
	}
}

// TestImportStaticFieldReusesInstanceInstKinds checks that ldsfld/stsfld
// reuse ExtractField/FieldAddr with a NoValueID object operand rather than
// a dedicated static-field instruction kind.
func TestImportStaticFieldReusesInstanceInstKinds(t *testing.T) {
	p := newFakeProvider()
	i32 := p.Builtins().Int32
	field := p.NewField(types.FieldInfo{Owner: types.DefHandle(1), Type: i32})

	raw := &cil.RawMethod{
		ReturnType: i32,
		Instrs: []cil.Instr{
			fieldInstr(0, cil.OpLdsfld, field),
			instr(1, cil.OpRet),
		},
		Length: 2,
	}

	body, err := Import(raw, p, DefaultOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := body.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	insts := body.Instructions(body.Entry)
	ldsfld := body.Inst(insts[0])
	if ldsfld.Kind != ir.InstExtractField {
		t.Fatalf("expected ldsfld to lower to InstExtractField, got %v", ldsfld.Kind)
	}
	if len(ldsfld.Operands) != 1 {
		t.Fatalf("expected one (null) object operand, got %d", len(ldsfld.Operands))
	}
	if body.OperandValue(ldsfld.Operands[0]) != ir.NoValueID {
		t.Fatalf("ldsfld's object operand must be NoValueID")
	}
}

// TestImportCallArgumentOrdering checks that call argument popping, which
// happens in reverse evaluation order, is re-assembled into declaration
// order (receiver first) before NewCall is built.
func TestImportCallArgumentOrdering(t *testing.T) {
	p := newFakeProvider()
	i32 := p.Builtins().Int32
	objType := p.Builtins().Object

	method := p.NewMethod(types.MethodInfo{
		Owner:  types.DefHandle(1),
		Params: []types.TypeID{i32},
		Result: i32,
		Static: false,
	})

	raw := &cil.RawMethod{
		ArgTypes:   []types.TypeID{objType, i32},
		ReturnType: i32,
		Instrs: []cil.Instr{
			ldarg(0, 0), // receiver
			ldarg(1, 1), // first (only) argument
			callInstr(2, cil.OpCallVirt, method),
			instr(3, cil.OpRet),
		},
		Length: 4,
	}

	body, err := Import(raw, p, DefaultOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := body.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	insts := body.Instructions(body.Entry)
	call := body.Inst(insts[0])
	if call.Kind != ir.InstCall {
		t.Fatalf("expected InstCall, got %v", call.Kind)
	}
	if len(call.Operands) != 2 {
		t.Fatalf("expected receiver + 1 argument, got %d operands", len(call.Operands))
	}
	recv := body.Value(body.OperandValue(call.Operands[0]))
	arg := body.Value(body.OperandValue(call.Operands[1]))
	if recv.Type != objType {
		t.Fatalf("first call operand must be the receiver (object), got type %v", recv.Type)
	}
	if arg.Type != i32 {
		t.Fatalf("second call operand must be the int32 argument, got type %v", arg.Type)
	}
}

// TestImportCatchHandlerSeedsExceptionValue checks that a catch handler's
// entry state is seeded directly from the guard's result rather than
// running the ordinary predecessor-merge machinery.
func TestImportCatchHandlerSeedsExceptionValue(t *testing.T) {
	p := newFakeProvider()
	void := p.Builtins().Void
	excType := p.Builtins().Object

	raw := &cil.RawMethod{
		ReturnType: void,
		Instrs: []cil.Instr{
			ldcI4(0, 1), // try: push and discard
			instr(1, cil.OpPop),
			branch(2, cil.OpLeave, 10),
			instr(3, cil.OpLdexn),
			instr(4, cil.OpPop),
			ldcI4(5, 2),
			instr(6, cil.OpRet),
		},
		Regions: []cil.ExceptionRegion{
			{Kind: cil.RegionCatch, TryStart: 0, TryEnd: 3, HandlerStart: 3, HandlerEnd: 7, CatchType: excType},
		},
		Length: 10,
	}
	// leave's target offset 10 is out of instruction range on purpose: it
	// is never reached by this handler-focused test, only offset 0's guard
	// materialization and the handler block at offset 3 are under test, so
	// give offset 10 a trivial terminator to keep Validate happy.
	raw.Instrs = append(raw.Instrs, instr(10, cil.OpRet))
	raw.Length = 11

	body, err := Import(raw, p, DefaultOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := body.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	var handler ir.BlockID
	for _, id := range body.BlockIDs() {
		if body.Block(id).StartOffset == 3 {
			handler = id
		}
	}
	if handler == ir.NoBlockID {
		t.Fatalf("handler block at offset 3 not found")
	}
	insts := body.Instructions(handler)
	if len(insts) == 0 {
		t.Fatalf("handler block is empty")
	}
	// ldexn is a no-op, so the handler's first real instruction should be
	// the pop consuming the guard-seeded exception value directly, with no
	// phi present (a handler entry is seeded, never merged).
	for _, id := range insts {
		if body.Inst(id).Kind == ir.InstPhi {
			t.Fatalf("handler block must not have a merge phi")
		}
	}
}

// TestImportMDArrayGetLowersToIntrinsic checks that a call against one of
// the five synthesized MDArray methods lowers to InstIntrinsic rather than
// an ordinary InstCall, with the receiver and index arguments carried as
// its operands in declaration order.
func TestImportMDArrayGetLowersToIntrinsic(t *testing.T) {
	p := newFakeProvider()
	i32 := p.Builtins().Int32
	mdArray := p.GetArrayType(i32, 2, nil, nil)

	methods, ok := p.SynthesizeMDArrayMethods(p.Interner, mdArray)
	if !ok {
		t.Fatalf("SynthesizeMDArrayMethods: not an MDArray type")
	}

	raw := &cil.RawMethod{
		ArgTypes:   []types.TypeID{mdArray, i32, i32},
		ReturnType: i32,
		Instrs: []cil.Instr{
			ldarg(0, 0), // the array
			ldarg(1, 1), // dim0 index
			ldarg(2, 2), // dim1 index
			callInstr(3, cil.OpCallVirt, methods.Get),
			instr(4, cil.OpRet),
		},
		Length: 5,
	}

	body, err := Import(raw, p, DefaultOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := body.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	insts := body.Instructions(body.Entry)
	get := body.Inst(insts[0])
	if get.Kind != ir.InstIntrinsic {
		t.Fatalf("expected InstIntrinsic, got %v", get.Kind)
	}
	if get.IntrinsicOp != ir.IntrinsicMDArrayGet {
		t.Fatalf("expected IntrinsicMDArrayGet, got %v", get.IntrinsicOp)
	}
	if len(get.Operands) != 3 {
		t.Fatalf("expected array + 2 indices, got %d operands", len(get.Operands))
	}
	if body.Value(get.Result).Type != i32 {
		t.Fatalf("Get's result type must be the element type")
	}
}

// TestImportMDArrayCtorSizesLowersToIntrinsic checks that newobj against
// the sizes-constructor handle lowers to InstIntrinsic with the MDArray
// type itself as its result, since the synthesized constructor has no
// real TypeDef to newobj against.
func TestImportMDArrayCtorSizesLowersToIntrinsic(t *testing.T) {
	p := newFakeProvider()
	i32 := p.Builtins().Int32
	mdArray := p.GetArrayType(i32, 2, nil, nil)

	methods, ok := p.SynthesizeMDArrayMethods(p.Interner, mdArray)
	if !ok {
		t.Fatalf("SynthesizeMDArrayMethods: not an MDArray type")
	}

	raw := &cil.RawMethod{
		ArgTypes:   []types.TypeID{i32, i32},
		ReturnType: mdArray,
		Instrs: []cil.Instr{
			ldarg(0, 0), // dim0 size
			ldarg(1, 1), // dim1 size
			callInstr(2, cil.OpNewobj, methods.CtorSizes),
			instr(3, cil.OpRet),
		},
		Length: 4,
	}

	body, err := Import(raw, p, DefaultOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := body.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	insts := body.Instructions(body.Entry)
	ctor := body.Inst(insts[0])
	if ctor.Kind != ir.InstIntrinsic {
		t.Fatalf("expected InstIntrinsic, got %v", ctor.Kind)
	}
	if ctor.IntrinsicOp != ir.IntrinsicMDArrayCtorSizes {
		t.Fatalf("expected IntrinsicMDArrayCtorSizes, got %v", ctor.IntrinsicOp)
	}
	if body.Value(ctor.Result).Type != mdArray {
		t.Fatalf("ctor's result type must be the MDArray type itself")
	}
}

// TestImportCallIUnsupported checks that calli surfaces as an explicit
// UnsupportedConstruct error rather than miscompiling.
func TestImportCallIUnsupported(t *testing.T) {
	p := newFakeProvider()
	i32 := p.Builtins().Int32

	raw := &cil.RawMethod{
		ReturnType: i32,
		Instrs: []cil.Instr{
			instr(0, cil.OpCallI),
			instr(1, cil.OpRet),
		},
		Length: 2,
	}

	_, err := Import(raw, p, DefaultOptions())
	if err == nil {
		t.Fatalf("expected calli to be rejected")
	}
}

// TestImportTruncatedMethodIsInvalidInput checks that a block falling off
// the end of the method without a terminator is reported as malformed
// input, not a panic or a silently missing terminator.
func TestImportTruncatedMethodIsInvalidInput(t *testing.T) {
	p := newFakeProvider()
	i32 := p.Builtins().Int32

	raw := &cil.RawMethod{
		ReturnType: i32,
		Instrs: []cil.Instr{
			ldcI4(0, 1),
			instr(1, cil.OpPop),
		},
		Length: 2,
	}

	_, err := Import(raw, p, DefaultOptions())
	if err == nil {
		t.Fatalf("expected a truncated method to fail import")
	}
}
