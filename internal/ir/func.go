package ir

import (
	"fmt"

	"fortio.org/safecast"

	"ilcore/internal/types"
)

// MethodBody is the SSA-form representation of one method: a set of basic
// blocks reachable from Entry, threaded instruction lists, and the value
// and operand arenas every instruction's operands live in.
type MethodBody struct {
	Entry BlockID

	blocks   []BasicBlock
	instrs   []Instruction
	values   []TrackedValue
	operands []Operand

	// ArgTypes/LocalTypes mirror the signature and local-variable table the
	// (external) metadata reader supplies; the importer materializes one
	// TrackedValue per argument up front (see NewArg) and one InstLoadVar/
	// InstStoreVar pair per cross-block local.
	ArgTypes   []types.TypeID
	LocalTypes []types.TypeID
}

// NewMethodBody constructs an empty body with index-0 sentinels reserved
// on every arena, matching the interner's allocation discipline.
func NewMethodBody(argTypes, localTypes []types.TypeID) *MethodBody {
	f := &MethodBody{
		blocks:     make([]BasicBlock, 1, 8),
		instrs:     make([]Instruction, 1, 32),
		values:     make([]TrackedValue, 1, 32),
		operands:   make([]Operand, 1, 64),
		ArgTypes:   argTypes,
		LocalTypes: localTypes,
	}
	return f
}

// NewBlock allocates a fresh, empty block.
func (f *MethodBody) NewBlock(startOffset uint32) BlockID {
	id := blockID(len(f.blocks))
	f.blocks = append(f.blocks, BasicBlock{
		ID:             id,
		StartOffset:    startOffset,
		First:          NoInstID,
		FirstNonHeader: NoInstID,
		Last:           NoInstID,
	})
	return id
}

func blockID(n int) BlockID {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("ir: block arena overflow: %w", err))
	}
	return BlockID(v)
}

func instID(n int) InstID {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("ir: instruction arena overflow: %w", err))
	}
	return InstID(v)
}

// Block returns the BasicBlock for id.
func (f *MethodBody) Block(id BlockID) *BasicBlock {
	return &f.blocks[id]
}

// NumBlocks reports the number of allocated blocks, including the
// reserved sentinel.
func (f *MethodBody) NumBlocks() int {
	return len(f.blocks)
}

// BlockIDs returns every live allocated BlockID except the sentinel,
// skipping any block RemoveUnreachableBlocks has marked Removed.
func (f *MethodBody) BlockIDs() []BlockID {
	out := make([]BlockID, 0, len(f.blocks)-1)
	for i := 1; i < len(f.blocks); i++ {
		if f.blocks[i].Removed {
			continue
		}
		out = append(out, BlockID(i))
	}
	return out
}

// Inst returns the Instruction for id.
func (f *MethodBody) Inst(id InstID) *Instruction {
	return &f.instrs[id]
}

// newInst allocates an instruction shell with no operands and no result,
// not yet linked into any block.
func (f *MethodBody) newInst(kind InstKind, typ types.TypeID, offset uint32) InstID {
	id := instID(len(f.instrs))
	f.instrs = append(f.instrs, Instruction{
		ID:     id,
		Kind:   kind,
		Block:  NoBlockID,
		Type:   typ,
		Result: NoValueID,
		Offset: offset,
		Prev:   NoInstID,
		Next:   NoInstID,
	})
	return id
}

// withResult allocates a TrackedValue for inst's result and records the
// back-reference, then returns inst for chaining.
func (f *MethodBody) withResult(id InstID) InstID {
	inst := f.Inst(id)
	inst.Result = f.newValue(inst.Type, id)
	return id
}

// NewArg materializes the TrackedValue for argument slot index, called
// once per argument while the frontend seeds its initial variable state.
// Arguments have no defining instruction (Def stays NoInstID).
func (f *MethodBody) NewArg(index int) ValueID {
	return f.newValue(f.ArgTypes[index], NoInstID)
}

// NewConstInt creates an integer (or bool/char, both represented as an
// int64) constant-producing instruction not yet linked into a block.
func (f *MethodBody) NewConstInt(typ types.TypeID, value int64, offset uint32) InstID {
	id := f.withResult(f.newInst(InstConst, typ, offset))
	inst := f.Inst(id)
	inst.ConstKind = ConstInt
	inst.ConstInt = value
	return id
}

// NewConstFloat creates a floating-point constant instruction.
func (f *MethodBody) NewConstFloat(typ types.TypeID, value float64, offset uint32) InstID {
	id := f.withResult(f.newInst(InstConst, typ, offset))
	inst := f.Inst(id)
	inst.ConstKind = ConstFloat
	inst.ConstFloat = value
	return id
}

// NewConstString creates a string-literal constant instruction.
func (f *MethodBody) NewConstString(typ types.TypeID, value string, offset uint32) InstID {
	id := f.withResult(f.newInst(InstConst, typ, offset))
	inst := f.Inst(id)
	inst.ConstKind = ConstString
	inst.ConstString = value
	return id
}

// NewConstNull creates the null-reference constant of a reference or
// pointer type.
func (f *MethodBody) NewConstNull(typ types.TypeID, offset uint32) InstID {
	id := f.withResult(f.newInst(InstConst, typ, offset))
	f.Inst(id).ConstKind = ConstNull
	return id
}

// NewBinary creates a binary-op instruction with the two given operand
// values.
func (f *MethodBody) NewBinary(op BinaryOp, typ types.TypeID, lhs, rhs ValueID, offset uint32) InstID {
	id := f.withResult(f.newInst(InstBinary, typ, offset))
	f.Inst(id).BinOp = op
	f.addOperand(id, lhs)
	f.addOperand(id, rhs)
	return id
}

// NewCompare creates a comparison instruction; its result type is always
// the caller-supplied i4 TypeID (the frontend passes Builtins.Int32).
func (f *MethodBody) NewCompare(op CompareOp, i32 types.TypeID, lhs, rhs ValueID, offset uint32) InstID {
	id := f.withResult(f.newInst(InstCompare, i32, offset))
	f.Inst(id).CmpOp = op
	f.addOperand(id, lhs)
	f.addOperand(id, rhs)
	return id
}

// NewConvert creates a numeric conversion of value to typ.
func (f *MethodBody) NewConvert(typ types.TypeID, value ValueID, offset uint32) InstID {
	id := f.withResult(f.newInst(InstConvert, typ, offset))
	f.addOperand(id, value)
	return id
}

// NewBranch creates a terminator with the given condition (NoValueID for
// an unconditional branch) and target blocks. For a conditional branch,
// targets[0] is the fall-through/false edge and targets[1] is the taken/
// true edge, matching cil.OpCode's BrTrue/BrFalse convention after the
// importer has normalized both to "branch if true".
func (f *MethodBody) NewBranch(cond ValueID, targets []BlockID, offset uint32, voidType types.TypeID) InstID {
	id := f.newInst(InstBranch, voidType, offset)
	inst := f.Inst(id)
	inst.Targets = targets
	if cond != NoValueID {
		f.addOperand(id, cond)
	}
	return id
}

// NewPhi creates a phi instruction with no operands yet; AddPhiOperand
// appends (predecessor, value) pairs as the importer discovers them.
func (f *MethodBody) NewPhi(typ types.TypeID, offset uint32) InstID {
	return f.withResult(f.newInst(InstPhi, typ, offset))
}

// AddPhiOperand appends one (predecessor block, incoming value) pair to a
// phi, keeping Targets and Operands in lockstep.
func (f *MethodBody) AddPhiOperand(phi InstID, pred BlockID, value ValueID) {
	inst := f.Inst(phi)
	inst.Targets = append(inst.Targets, pred)
	f.addOperand(phi, value)
}

// NewLoad creates a dereference of a byref/pointer operand.
func (f *MethodBody) NewLoad(typ types.TypeID, addr ValueID, offset uint32) InstID {
	id := f.withResult(f.newInst(InstLoad, typ, offset))
	f.addOperand(id, addr)
	return id
}

// NewStore creates a write through a byref/pointer operand. It has no
// result.
func (f *MethodBody) NewStore(addr, value ValueID, offset uint32, voidType types.TypeID) InstID {
	id := f.newInst(InstStore, voidType, offset)
	f.addOperand(id, addr)
	f.addOperand(id, value)
	return id
}

// NewLoadVar creates a read of an argument or local slot.
func (f *MethodBody) NewLoadVar(typ types.TypeID, varIndex uint32, offset uint32) InstID {
	id := f.withResult(f.newInst(InstLoadVar, typ, offset))
	f.Inst(id).Method = types.MethodRef(varIndex) // slot index, reusing the field to avoid a rarely-populated column
	return id
}

// NewStoreVar creates a write to an argument or local slot.
func (f *MethodBody) NewStoreVar(varIndex uint32, value ValueID, offset uint32, voidType types.TypeID) InstID {
	id := f.newInst(InstStoreVar, voidType, offset)
	f.Inst(id).Method = types.MethodRef(varIndex)
	f.addOperand(id, value)
	return id
}

// NewVarAddr creates an address-of computation for an argument or local
// slot (ldarga/ldloca). The frontend only ever emits this against a slot
// variable analysis has already marked AddrTaken, which in turn forces
// that slot IsExposed; a non-exposed slot never needs its address taken.
func (f *MethodBody) NewVarAddr(typ types.TypeID, varIndex uint32, offset uint32) InstID {
	id := f.withResult(f.newInst(InstVarAddr, typ, offset))
	f.Inst(id).Method = types.MethodRef(varIndex) // slot index, same reuse NewLoadVar documents
	return id
}

// NewFieldAddr creates a &object.field address computation.
func (f *MethodBody) NewFieldAddr(typ types.TypeID, obj ValueID, field types.FieldRef, offset uint32) InstID {
	id := f.withResult(f.newInst(InstFieldAddr, typ, offset))
	f.Inst(id).Field = field
	f.addOperand(id, obj)
	return id
}

// NewExtractField creates an object.field-by-value read.
func (f *MethodBody) NewExtractField(typ types.TypeID, obj ValueID, field types.FieldRef, offset uint32) InstID {
	id := f.withResult(f.newInst(InstExtractField, typ, offset))
	f.Inst(id).Field = field
	f.addOperand(id, obj)
	return id
}

// NewArrayAddr creates a &array[index] address computation.
func (f *MethodBody) NewArrayAddr(typ types.TypeID, arr, index ValueID, offset uint32) InstID {
	id := f.withResult(f.newInst(InstArrayAddr, typ, offset))
	f.addOperand(id, arr)
	f.addOperand(id, index)
	return id
}

// NewIntrinsic creates a call to one of the recognized CIL intrinsic
// methods (ArrayLen, SizeOf, MDArray get/set/address) with the given
// operand list.
func (f *MethodBody) NewIntrinsic(op IntrinsicOp, typ types.TypeID, args []ValueID, offset uint32) InstID {
	id := f.withResult(f.newInst(InstIntrinsic, typ, offset))
	f.Inst(id).IntrinsicOp = op
	for _, a := range args {
		f.addOperand(id, a)
	}
	return id
}

// NewCall creates a call/callvirt/calli instruction.
func (f *MethodBody) NewCall(typ types.TypeID, method types.MethodRef, args []ValueID, offset uint32) InstID {
	var id InstID
	if typ == types.NoTypeID {
		id = f.newInst(InstCall, typ, offset)
	} else {
		id = f.withResult(f.newInst(InstCall, typ, offset))
	}
	f.Inst(id).Method = method
	for _, a := range args {
		f.addOperand(id, a)
	}
	return id
}

// NewNewObj creates a newobj instruction: constructs a fresh instance and
// invokes the given constructor with args.
func (f *MethodBody) NewNewObj(typ types.TypeID, ctor types.MethodRef, args []ValueID, offset uint32) InstID {
	id := f.withResult(f.newInst(InstNewObj, typ, offset))
	f.Inst(id).Method = ctor
	for _, a := range args {
		f.addOperand(id, a)
	}
	return id
}

// NewNewArr creates a newarr instruction: allocates a single-dimensional
// zero-based array of the given element type and length.
func (f *MethodBody) NewNewArr(typ types.TypeID, length ValueID, offset uint32) InstID {
	id := f.withResult(f.newInst(InstNewArr, typ, offset))
	f.addOperand(id, length)
	return id
}

// NewCastClass creates a checked reference cast to typ.
func (f *MethodBody) NewCastClass(typ types.TypeID, value ValueID, offset uint32) InstID {
	id := f.withResult(f.newInst(InstCastClass, typ, offset))
	f.addOperand(id, value)
	return id
}

// NewIsInst creates an isinst test: null if value is not an instance of
// typ, value unchanged otherwise.
func (f *MethodBody) NewIsInst(typ types.TypeID, value ValueID, offset uint32) InstID {
	id := f.withResult(f.newInst(InstIsInst, typ, offset))
	f.addOperand(id, value)
	return id
}

// NewBox creates a box instruction: wraps a value-typed operand in a
// freshly allocated object of typ.
func (f *MethodBody) NewBox(typ types.TypeID, value ValueID, offset uint32) InstID {
	id := f.withResult(f.newInst(InstBox, typ, offset))
	f.addOperand(id, value)
	return id
}

// NewUnbox creates an unbox instruction: extracts a value-typed payload of
// typ from a boxed object operand.
func (f *MethodBody) NewUnbox(typ types.TypeID, value ValueID, offset uint32) InstID {
	id := f.withResult(f.newInst(InstUnbox, typ, offset))
	f.addOperand(id, value)
	return id
}

// NewGuard creates a header instruction marking entry into a protected
// region at the given nesting depth. catchType is only meaningful for
// GuardCatch (NoTypeID means "catches anything"); filter is NoBlockID
// unless the catch has a filter block. A GuardCatch produces a result
// (the caught exception value); GuardFinally/GuardFault do not.
func (f *MethodBody) NewGuard(kind GuardKind, handler, filter BlockID, catchType types.TypeID, depth uint32, offset uint32, voidType types.TypeID) InstID {
	var id InstID
	if kind == GuardCatch {
		typ := catchType
		if typ == types.NoTypeID {
			typ = voidType
		}
		id = f.withResult(f.newInst(InstGuard, typ, offset))
	} else {
		id = f.newInst(InstGuard, voidType, offset)
	}
	inst := f.Inst(id)
	inst.GuardKind = kind
	inst.HandlerBlock = handler
	inst.FilterBlock = filter
	inst.CatchType = catchType
	inst.RegionDepth = depth
	return id
}

// NewReturn creates a return terminator, with value == NoValueID for a
// void return.
func (f *MethodBody) NewReturn(value ValueID, offset uint32, voidType types.TypeID) InstID {
	id := f.newInst(InstReturn, voidType, offset)
	if value != NoValueID {
		f.addOperand(id, value)
	}
	return id
}

// NewThrow creates a throw terminator.
func (f *MethodBody) NewThrow(value ValueID, offset uint32, voidType types.TypeID) InstID {
	id := f.newInst(InstThrow, voidType, offset)
	f.addOperand(id, value)
	return id
}

// NewRethrow creates a rethrow terminator, valid only inside a catch
// handler.
func (f *MethodBody) NewRethrow(offset uint32, voidType types.TypeID) InstID {
	return f.newInst(InstRethrow, voidType, offset)
}
