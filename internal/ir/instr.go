package ir

import (
	"ilcore/internal/cil"
	"ilcore/internal/types"
)

// InstKind is the closed sum of instruction shapes the importer emits.
// Only the fields relevant to a given Kind are populated on an
// Instruction; the rest stay zero, the same convention types.Type uses for
// its own Kind-tagged payloads.
type InstKind uint8

const (
	InstInvalid InstKind = iota
	InstConst            // integer/float/string/null constant, no operands
	InstBinary           // arithmetic/bitwise binop, two operands
	InstCompare          // ceq/cgt/clt family, two operands, i4 result
	InstConvert          // numeric conversion, one operand
	InstBranch           // unconditional or conditional edge out of the block
	InstPhi              // one operand per predecessor block, in Targets order
	InstLoad             // dereference a byref/pointer operand
	InstStore            // write through a byref/pointer operand
	InstLoadVar          // read an argument or local slot
	InstStoreVar         // write an argument or local slot
	InstVarAddr          // &argument-or-local-slot, no operands, byref result
	InstArrayAddr        // &array[index], two operands
	InstFieldAddr        // &object.field, one operand
	InstExtractField     // object.field by value, one operand
	InstIntrinsic        // ArrayLen/SizeOf and MDArray get/set/address calls
	InstCall             // call/callvirt/calli, N operands
	InstNewObj           // newobj, N operands (constructor args)
	InstNewArr           // newarr, one operand (length)
	InstCastClass        // one operand
	InstIsInst           // one operand
	InstBox              // one operand
	InstUnbox            // one operand
	InstGuard            // header instruction marking entry into a protected region
	InstReturn           // zero or one operand
	InstThrow            // one operand
	InstRethrow          // zero operands
)

// BinaryOp enumerates the arithmetic/bitwise operators InstBinary carries.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinDivUn
	BinRem
	BinRemUn
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinShrUn
)

// CompareOp enumerates the comparison operators InstCompare carries.
type CompareOp uint8

const (
	CmpEq CompareOp = iota
	CmpGt
	CmpGtUn
	CmpLt
	CmpLtUn
)

// Invert reports whether some other CompareOp computes the exact logical
// negation of c. None of the five do: the instruction set has no
// not-equal or unordered-not-greater primitive to name as the result, so
// a branch on !c is always expressed by keeping c as it is and swapping
// the branch's two targets (SimplifyCFG's compare-to-zero inversion does
// exactly that via SetBranch) rather than by rewriting the InstCompare
// itself. Invert exists so a caller can assert that assumption instead of
// silently miscompiling if the instruction set ever grows a Ne op.
func (c CompareOp) Invert() (CompareOp, bool) {
	return c, false
}

// ConstKind discriminates which field of a Const instruction's payload is
// meaningful, mirroring the Const{Int,Float,Null,String} value variant.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstNull
	ConstString
)

// GuardKind discriminates the three protected-region shapes a GuardInst can
// model.
type GuardKind uint8

const (
	GuardCatch GuardKind = iota
	GuardFinally
	GuardFault
)

func (k GuardKind) String() string {
	switch k {
	case GuardCatch:
		return "catch"
	case GuardFinally:
		return "finally"
	case GuardFault:
		return "fault"
	default:
		return "unknown"
	}
}

// IntrinsicOp enumerates the small set of CIL intrinsic methods the
// frontend recognizes without a real call. The five MDArray variants back
// the Get/Set/Address/.ctor surface types.SynthesizeMDArrayMethods hands
// out for a multi-dimensional array type; interpCall recognizes a call
// against one of those synthesized handles and emits the matching op
// instead of an ordinary InstCall/InstNewObj.
type IntrinsicOp uint8

const (
	IntrinsicArrayLen IntrinsicOp = iota
	IntrinsicSizeOf
	IntrinsicMDArrayGet
	IntrinsicMDArraySet
	IntrinsicMDArrayAddress
	IntrinsicMDArrayCtorSizes
	IntrinsicMDArrayCtorRanges
)

// Instruction is one node in a basic block's doubly-linked instruction
// list. Operands reference other values by ValueID through the operand
// arena; Result is NoValueID for instructions with no result (Store,
// Return-of-void, Rethrow).
type Instruction struct {
	ID     InstID
	Kind   InstKind
	Block  BlockID
	Type   types.TypeID
	Result ValueID
	Offset uint32 // originating bytecode offset, for diagnostics

	Operands []OperandID

	BinOp       BinaryOp
	CmpOp       CompareOp
	IntrinsicOp IntrinsicOp
	Method      types.MethodRef
	Field       types.FieldRef

	// Const: which of the four fields below holds the value. Populated
	// only when Kind == InstConst.
	ConstKind   ConstKind
	ConstInt    int64
	ConstFloat  float64
	ConstString string

	// Branch/Phi: successor or predecessor block list. For InstBranch,
	// Targets[0] is the fall-through/unconditional target and Targets[1]
	// (if present) is the taken target of a conditional. For InstPhi,
	// Targets[i] is the predecessor block Operands[i] arrives from.
	Targets []BlockID

	// Guard: which protected-region shape, its handler (and, for a
	// filtered catch, its filter) block, the statically known exception
	// type (Catch only, NoTypeID if the handler catches everything), and
	// the region's nesting depth at this program point. Populated only
	// when Kind == InstGuard. A Catch guard has a Result: the caught
	// exception value delivered on entry to HandlerBlock (and FilterBlock,
	// if present); Finally/Fault guards have no result, matching their
	// handlers entering with an empty stack.
	GuardKind    GuardKind
	HandlerBlock BlockID
	FilterBlock  BlockID
	CatchType    types.TypeID
	RegionDepth  uint32

	Prev, Next InstID // list linkage within Block
}

// IsHeader reports whether this instruction must stay at the front of its
// block: phis and guards are the only two header kinds, matching the
// region tree's requirement that a guard dominate every ordinary
// instruction in its protected region.
func (i *Instruction) IsHeader() bool {
	return i.Kind == InstPhi || i.Kind == InstGuard
}

// IsTerminator reports whether this instruction ends its block.
func (i *Instruction) IsTerminator() bool {
	switch i.Kind {
	case InstBranch, InstReturn, InstThrow, InstRethrow:
		return true
	default:
		return false
	}
}

// HasResult reports whether this instruction produces a usable SSA value.
func (i *Instruction) HasResult() bool {
	return i.Result != NoValueID
}

// HasSideEffects reports whether this instruction must be preserved even
// if its result has no uses: anything that can throw on a bad operand (a
// null object, an out-of-range index, a failed cast), any write, any
// call, every terminator, and every header except a phi. This core does not attempt null or
// range analysis to disprove a throw, so a cast or a field dereference is
// conservatively side-effecting.
func (i *Instruction) HasSideEffects() bool {
	switch i.Kind {
	case InstConst, InstBinary, InstCompare, InstConvert, InstPhi, InstLoadVar:
		return false
	default:
		return true
	}
}

// MayReadFromMemory reports whether this instruction's result can change
// if memory it does not itself write changes between two evaluations —
// the Forest hazard check's definition of "needs an alias query before
// inlining across an intervening store".
func (i *Instruction) MayReadFromMemory() bool {
	switch i.Kind {
	case InstLoad, InstLoadVar, InstExtractField:
		return true
	case InstIntrinsic:
		return i.IntrinsicOp == IntrinsicArrayLen || i.IntrinsicOp == IntrinsicMDArrayGet
	default:
		return false
	}
}

// MayWriteToMemory reports whether this instruction can change the value
// a later Load/LoadVar/ExtractField observes.
func (i *Instruction) MayWriteToMemory() bool {
	switch i.Kind {
	case InstStore, InstStoreVar:
		return true
	case InstIntrinsic:
		return i.IntrinsicOp == IntrinsicMDArraySet
	case InstCall, InstNewObj:
		return true // an opaque callee may write through any reference it can reach
	default:
		return false
	}
}

// SafeToRemove reports whether this instruction may be deleted outright
// when it has no uses — the complement of HasSideEffects, phrased the way
// DCE's mark-and-sweep consults it.
func (i *Instruction) SafeToRemove() bool {
	return !i.HasSideEffects()
}

// BinaryOpFromOpCode maps a decoded bytecode arithmetic opcode to the IR's
// BinaryOp, returning ok=false for anything else. Used by the importer
// while translating a raw instruction stream into IR.
func BinaryOpFromOpCode(op cil.OpCode) (BinaryOp, bool) {
	switch op {
	case cil.OpAdd:
		return BinAdd, true
	case cil.OpSub:
		return BinSub, true
	case cil.OpMul:
		return BinMul, true
	case cil.OpDiv:
		return BinDiv, true
	case cil.OpDivUn:
		return BinDivUn, true
	case cil.OpRem:
		return BinRem, true
	case cil.OpRemUn:
		return BinRemUn, true
	case cil.OpAnd:
		return BinAnd, true
	case cil.OpOr:
		return BinOr, true
	case cil.OpXor:
		return BinXor, true
	case cil.OpShl:
		return BinShl, true
	case cil.OpShr:
		return BinShr, true
	case cil.OpShrUn:
		return BinShrUn, true
	default:
		return 0, false
	}
}

// CompareOpFromOpCode maps a decoded bytecode comparison opcode to the
// IR's CompareOp. Used by the importer.
func CompareOpFromOpCode(op cil.OpCode) (CompareOp, bool) {
	switch op {
	case cil.OpCeq:
		return CmpEq, true
	case cil.OpCgt:
		return CmpGt, true
	case cil.OpCgtUn:
		return CmpGtUn, true
	case cil.OpClt:
		return CmpLt, true
	case cil.OpCltUn:
		return CmpLtUn, true
	default:
		return 0, false
	}
}
