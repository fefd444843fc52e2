package ir

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants every pass relies on and
// returns the aggregate of every violation found, joined with
// errors.Join so a caller can either print everything at once or match a
// specific one out with errors.As.
func (f *MethodBody) Validate() error {
	var errs []error

	if f.Entry == NoBlockID || int(f.Entry) >= len(f.blocks) {
		errs = append(errs, fmt.Errorf("ir: invalid entry block %d", f.Entry))
	} else if len(f.blockAt(f.Entry).Preds) != 0 {
		errs = append(errs, fmt.Errorf("ir: entry block %d has predecessors", f.Entry))
	}

	for i := 1; i < len(f.blocks); i++ {
		blk := &f.blocks[i]
		if blk.Removed {
			continue
		}
		errs = append(errs, f.validateBlock(blk)...)
	}

	errs = append(errs, f.validateUseCounts()...)

	return errors.Join(errs...)
}

func (f *MethodBody) validateBlock(blk *BasicBlock) []error {
	var errs []error

	if blk.First == NoInstID {
		errs = append(errs, fmt.Errorf("ir: block %d is empty", blk.ID))
		return errs
	}
	if blk.Last == NoInstID {
		errs = append(errs, fmt.Errorf("ir: block %d has no terminator recorded", blk.ID))
	} else if !f.instAt(blk.Last).IsTerminator() {
		errs = append(errs, fmt.Errorf("ir: block %d's last instruction %d is not a terminator", blk.ID, blk.Last))
	}

	seenNonHeader := false
	for id := blk.First; id != NoInstID; id = f.instAt(id).Next {
		inst := f.instAt(id)
		if inst.Block != blk.ID {
			errs = append(errs, fmt.Errorf("ir: instruction %d claims block %d but is linked into %d", id, inst.Block, blk.ID))
		}
		if inst.IsHeader() {
			if seenNonHeader {
				errs = append(errs, fmt.Errorf("ir: header instruction %d appears after a non-header instruction in block %d", id, blk.ID))
			}
			if inst.Kind == InstPhi && len(inst.Targets) != len(blk.Preds) {
				errs = append(errs, fmt.Errorf("ir: phi %d has %d incoming values but block %d has %d predecessors", id, len(inst.Targets), blk.ID, len(blk.Preds)))
			}
		} else {
			seenNonHeader = true
		}
		if id == blk.Last {
			break
		}
	}

	if blk.FirstNonHeader != NoInstID {
		fnh := f.instAt(blk.FirstNonHeader)
		if fnh.IsHeader() {
			errs = append(errs, fmt.Errorf("ir: block %d's FirstNonHeader %d is itself a header", blk.ID, blk.FirstNonHeader))
		}
	}

	return errs
}

// validateUseCounts recomputes every value's use count by walking its
// linked list and compares it against the cached NumUses, catching a
// leaked or double-freed use-list node.
func (f *MethodBody) validateUseCounts() []error {
	var errs []error
	for i := 1; i < len(f.values); i++ {
		v := &f.values[i]
		count := 0
		for op := v.FirstUse; op != NoOperandID; op = f.operands[op].Next {
			if f.operands[op].Value != ValueID(i) {
				errs = append(errs, fmt.Errorf("ir: use-list of value %d contains operand %d pointing at value %d", i, op, f.operands[op].Value))
			}
			count++
			if count > len(f.operands) {
				errs = append(errs, fmt.Errorf("ir: use-list of value %d appears cyclic", i))
				break
			}
		}
		if uint32(count) != v.NumUses {
			errs = append(errs, fmt.Errorf("ir: value %d reports NumUses=%d but linked list has %d entries", i, v.NumUses, count))
		}
	}
	return errs
}
