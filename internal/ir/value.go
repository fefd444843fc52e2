package ir

import "ilcore/internal/types"

// TrackedValue is one SSA value: an instruction's result, an argument slot,
// or a phi. Its use-list is intrusive — FirstUse points into the same
// Operand storage every instruction's operand list lives in, per §9's
// design note that uses are not separately heap-allocated nodes.
type TrackedValue struct {
	ID       ValueID
	Type     types.TypeID
	Def      InstID // the instruction that produces this value; NoInstID for arguments
	FirstUse OperandID
	NumUses  uint32
}

// Operand is both an operand slot on some user instruction and a node in
// the doubly-linked use-list of the value it names. It lives in the
// MethodBody's flat Operands arena so its OperandID never changes once
// allocated, letting Next/Prev be plain indices rather than pointers.
type Operand struct {
	Value ValueID
	User  InstID
	Index uint32 // this operand's position in User's operand list
	Next  OperandID
	Prev  OperandID
}

// newValue allocates a fresh TrackedValue with an empty use-list.
func (f *MethodBody) newValue(typ types.TypeID, def InstID) ValueID {
	id := ValueID(len(f.values))
	f.values = append(f.values, TrackedValue{ID: id, Type: typ, Def: def, FirstUse: NoOperandID})
	return id
}

// Value returns the TrackedValue for id.
func (f *MethodBody) Value(id ValueID) *TrackedValue {
	return &f.values[id]
}

// addOperand appends a new operand slot referencing value to user's operand
// list and links it into value's use-list head.
func (f *MethodBody) addOperand(user InstID, value ValueID) OperandID {
	opID := OperandID(len(f.operands))
	inst := &f.instrs[user]
	idx := uint32(len(inst.Operands))
	f.operands = append(f.operands, Operand{
		Value: value,
		User:  user,
		Index: idx,
		Next:  NoOperandID,
		Prev:  NoOperandID,
	})
	inst.Operands = append(inst.Operands, opID)
	if value != NoValueID {
		f.linkUse(opID, value)
	}
	return opID
}

// linkUse inserts opID at the head of value's use-list.
func (f *MethodBody) linkUse(opID OperandID, value ValueID) {
	v := f.Value(value)
	op := &f.operands[opID]
	op.Value = value
	op.Next = v.FirstUse
	op.Prev = NoOperandID
	if v.FirstUse != NoOperandID {
		f.operands[v.FirstUse].Prev = opID
	}
	v.FirstUse = opID
	v.NumUses++
}

// unlinkUse removes opID from whatever use-list it currently belongs to,
// without touching the operand's User/Index bookkeeping.
func (f *MethodBody) unlinkUse(opID OperandID) {
	op := &f.operands[opID]
	if op.Value == NoValueID {
		return
	}
	v := f.Value(op.Value)
	if op.Prev != NoOperandID {
		f.operands[op.Prev].Next = op.Next
	} else {
		v.FirstUse = op.Next
	}
	if op.Next != NoOperandID {
		f.operands[op.Next].Prev = op.Prev
	}
	v.NumUses--
	op.Next = NoOperandID
	op.Prev = NoOperandID
}

// SetOperand rewrites the value opID refers to, updating both use-lists.
func (f *MethodBody) SetOperand(opID OperandID, newValue ValueID) {
	f.unlinkUse(opID)
	if newValue != NoValueID {
		f.linkUse(opID, newValue)
	} else {
		f.operands[opID].Value = NoValueID
	}
}

// ReplaceUses rewires every use of old to instead reference replacement,
// leaving old with an empty use-list. This is the primitive DCE's
// dead-instruction sweep and SimplifyCFG's jump-chain merge both build on.
func (f *MethodBody) ReplaceUses(old, replacement ValueID) {
	if old == replacement {
		return
	}
	head := f.Value(old).FirstUse
	for head != NoOperandID {
		next := f.operands[head].Next
		f.SetOperand(head, replacement)
		head = next
	}
}

// Uses iterates every operand currently referencing value, in most-recent-
// first order (the order the intrusive list happens to store them in;
// callers needing a stable order should sort by User/Index).
func (f *MethodBody) Uses(value ValueID) []OperandID {
	var out []OperandID
	for op := f.Value(value).FirstUse; op != NoOperandID; op = f.operands[op].Next {
		out = append(out, op)
	}
	return out
}

// HasUses reports whether value has at least one remaining use.
func (f *MethodBody) HasUses(value ValueID) bool {
	return f.Value(value).FirstUse != NoOperandID
}

// OperandValue returns the value an operand currently names.
func (f *MethodBody) OperandValue(opID OperandID) ValueID {
	return f.operands[opID].Value
}

// OperandUser returns the instruction an operand belongs to.
func (f *MethodBody) OperandUser(opID OperandID) InstID {
	return f.operands[opID].User
}
