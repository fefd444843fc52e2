package importer

import (
	"sort"

	"ilcore/internal/cil"
)

// leaderSet is the sorted set of bytecode offsets that start a block: the
// method's own entry, every branch/switch target, the offset right after
// every terminator, and every try/handler/filter start.
type leaderSet struct {
	set    map[uint32]bool
	sorted []uint32
}

func (ls *leaderSet) mark(offset uint32) {
	if !ls.set[offset] {
		ls.set[offset] = true
		ls.sorted = append(ls.sorted, offset)
	}
}

// Len reports the number of distinct leaders.
func (ls *leaderSet) Len() int {
	return len(ls.sorted)
}

// discoverLeaders implements spec.md §4.4 step 1.
func discoverLeaders(m *cil.RawMethod) *leaderSet {
	ls := &leaderSet{set: make(map[uint32]bool, len(m.Instrs)/2+2)}
	ls.mark(0)

	for i, instr := range m.Instrs {
		if !instr.OpCode.IsBranch() {
			continue
		}
		for _, t := range instr.Operand.Targets {
			ls.mark(t)
		}
		if end := m.End(i); end < m.Length {
			ls.mark(end)
		}
	}

	for _, r := range m.Regions {
		ls.mark(r.TryStart)
		ls.mark(r.HandlerStart)
		if r.Kind == cil.RegionFilter {
			ls.mark(r.FilterStart)
		}
	}

	sort.Slice(ls.sorted, func(i, j int) bool { return ls.sorted[i] < ls.sorted[j] })
	return ls
}
