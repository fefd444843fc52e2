package ir

import (
	"fmt"
	"strings"
)

// SymbolTable assigns stable, readable names to values and blocks within
// one Print call, kept separate from MethodBody itself since naming is a
// debug-printer concern, not something the optimizer passes need.
type SymbolTable struct {
	values map[ValueID]string
	blocks map[BlockID]string
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{values: make(map[ValueID]string), blocks: make(map[BlockID]string)}
}

func (s *SymbolTable) valueName(id ValueID) string {
	if id == NoValueID {
		return "<void>"
	}
	if name, ok := s.values[id]; ok {
		return name
	}
	name := fmt.Sprintf("%%%d", uint32(id))
	s.values[id] = name
	return name
}

func (s *SymbolTable) blockName(id BlockID) string {
	if name, ok := s.blocks[id]; ok {
		return name
	}
	name := fmt.Sprintf("bb%d", uint32(id))
	s.blocks[id] = name
	return name
}

// Print renders f as a small, human-readable text form intended for tests
// and debugging, not as a stable serialization format: the core carries no
// wire format or persistent representation.
func Print(f *MethodBody) string {
	var b strings.Builder
	sym := newSymbolTable()

	for _, blockID := range f.BlockIDs() {
		blk := f.Block(blockID)
		fmt.Fprintf(&b, "%s:", sym.blockName(blockID))
		if len(blk.Preds) > 0 {
			names := make([]string, len(blk.Preds))
			for i, p := range blk.Preds {
				names[i] = sym.blockName(p)
			}
			fmt.Fprintf(&b, " ; preds = %s", strings.Join(names, ", "))
		}
		b.WriteByte('\n')

		for _, instID := range f.Instructions(blockID) {
			printInst(&b, f, sym, instID)
		}
	}
	return b.String()
}

func printInst(b *strings.Builder, f *MethodBody, sym *SymbolTable, id InstID) {
	inst := f.Inst(id)
	b.WriteString("  ")
	if inst.HasResult() {
		fmt.Fprintf(b, "%s = ", sym.valueName(inst.Result))
	}
	b.WriteString(instKindName(inst.Kind))
	if inst.Kind == InstConst {
		fmt.Fprintf(b, " %s", constLiteral(inst))
	}

	operandNames := make([]string, len(inst.Operands))
	for i, op := range inst.Operands {
		operandNames[i] = sym.valueName(f.OperandValue(op))
	}
	if len(operandNames) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(operandNames, ", "))
	}
	if inst.Kind == InstPhi {
		parts := make([]string, len(inst.Targets))
		for i, pred := range inst.Targets {
			parts[i] = fmt.Sprintf("[%s: %s]", sym.blockName(pred), operandNames[i])
		}
		fmt.Fprintf(b, " %s", strings.Join(parts, " "))
	}
	if inst.Kind == InstBranch && len(inst.Targets) > 0 {
		names := make([]string, len(inst.Targets))
		for i, t := range inst.Targets {
			names[i] = sym.blockName(t)
		}
		fmt.Fprintf(b, " -> %s", strings.Join(names, ", "))
	}
	if inst.Kind == InstGuard {
		fmt.Fprintf(b, " %s handler=%s", inst.GuardKind, sym.blockName(inst.HandlerBlock))
		if inst.FilterBlock != NoBlockID {
			fmt.Fprintf(b, " filter=%s", sym.blockName(inst.FilterBlock))
		}
	}
	b.WriteByte('\n')
}

func constLiteral(inst *Instruction) string {
	switch inst.ConstKind {
	case ConstInt:
		return fmt.Sprintf("%d", inst.ConstInt)
	case ConstFloat:
		return fmt.Sprintf("%g", inst.ConstFloat)
	case ConstString:
		return fmt.Sprintf("%q", inst.ConstString)
	case ConstNull:
		return "null"
	default:
		return "?"
	}
}

func instKindName(k InstKind) string {
	switch k {
	case InstConst:
		return "const"
	case InstBinary:
		return "binop"
	case InstCompare:
		return "cmp"
	case InstConvert:
		return "conv"
	case InstBranch:
		return "br"
	case InstPhi:
		return "phi"
	case InstLoad:
		return "load"
	case InstStore:
		return "store"
	case InstLoadVar:
		return "loadvar"
	case InstStoreVar:
		return "storevar"
	case InstVarAddr:
		return "varaddr"
	case InstArrayAddr:
		return "arraddr"
	case InstFieldAddr:
		return "fieldaddr"
	case InstExtractField:
		return "extractfield"
	case InstIntrinsic:
		return "intrinsic"
	case InstCall:
		return "call"
	case InstNewObj:
		return "newobj"
	case InstNewArr:
		return "newarr"
	case InstCastClass:
		return "castclass"
	case InstIsInst:
		return "isinst"
	case InstBox:
		return "box"
	case InstUnbox:
		return "unbox"
	case InstGuard:
		return "guard"
	case InstReturn:
		return "ret"
	case InstThrow:
		return "throw"
	case InstRethrow:
		return "rethrow"
	default:
		return "invalid"
	}
}
