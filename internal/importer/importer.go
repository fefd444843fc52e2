// Package importer is the frontend: it consumes a cil.RawMethod (decoded
// stack-based bytecode plus its exception-handling table) and produces a
// fully populated ir.MethodBody in SSA form, with guard instructions
// attached to protected regions. This is the pipeline spec.md §4.4
// describes: leader discovery, variable analysis, block creation, guard
// materialization, argument-slot materialization, then a per-block
// abstract interpretation of the evaluation stack.
package importer

import (
	"errors"
	"fmt"

	"ilcore/internal/cil"
	"ilcore/internal/diag"
	"ilcore/internal/ir"
	"ilcore/internal/region"
	"ilcore/internal/source"
	"ilcore/internal/trace"
)

// Options tunes the importer's resource limits. The zero value is not
// usable; call DefaultOptions.
type Options struct {
	// MaxBlocks bounds how many leaders the importer will turn into
	// blocks before giving up with an InvalidInput error, guarding
	// against a corrupt instruction stream whose branch targets describe
	// an unreasonably large number of distinct leaders.
	MaxBlocks int
	Tracer    trace.Tracer
}

// DefaultOptions returns generous limits and a no-op tracer.
func DefaultOptions() Options {
	return Options{MaxBlocks: 1 << 20, Tracer: trace.Nop}
}

// slot is a flat index into the combined argument+local variable space:
// slots [0, numArgs) name arguments, slots [numArgs, numArgs+numLocals)
// name locals. Unifying the two lets every var-flags and var-merge table
// in this package use one map keyed by a plain uint32 instead of carrying
// an arg/local discriminant everywhere.
type slot = uint32

// funcCtx threads every table the pipeline's stages build and consume for
// one method. It is a plain value bundle, not a long-lived object: a
// fresh funcCtx is built per Import call and discarded once the
// MethodBody is returned, matching §9's "keep it local, not global" note
// about the abstract interpreter's state.
type funcCtx struct {
	raw        *cil.RawMethod
	provider   cil.TypeProvider
	body       *ir.MethodBody
	opts       Options
	diag       *diag.Bag
	primitives *primitiveSet

	numArgs int
	argValues   []ir.ValueID
	initialVars map[slot]ir.ValueID

	leaders     *leaderSet
	offsetBlock map[uint32]ir.BlockID
	offsetIndex map[uint32]int // raw.Instrs index for a leader offset
	blockEnd    map[ir.BlockID]uint32 // raw end offset, exclusive

	regions *region.Tree

	flags      map[slot]VarFlags
	promotable map[slot]bool // non-exposed: eligible for SSA substitution

	// handlerGuard maps a handler (or filter) block to the GuardInst that
	// seeds its entry stack, so the per-block interpreter can special-case
	// its entry state instead of running the normal predecessor merge.
	handlerGuard map[ir.BlockID]ir.InstID

	entries map[ir.BlockID]blockState
	exits   map[ir.BlockID]blockState
	merges  map[ir.BlockID]*mergeInfo
}

// Import runs the full frontend pipeline over raw and returns a
// fully-built SSA MethodBody, or an error carrying the offending offset
// if the bytecode is malformed, stack-mismatched, or uses a construct
// this frontend does not model.
func Import(raw *cil.RawMethod, provider cil.TypeProvider, opts Options) (body *ir.MethodBody, err error) {
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	span := trace.Begin(opts.Tracer, trace.ScopeMethod, "importer.Import", 0)
	defer func() {
		var derr *diag.Error
		if errors.As(err, &derr) {
			span.AtOffset(derr.At.Start)
			span.End(derr.Error())
			return
		}
		span.End("")
	}()

	fc := &funcCtx{
		raw:         raw,
		provider:    provider,
		opts:        opts,
		diag:        diag.NewBag(256),
		numArgs:     len(raw.ArgTypes),
		offsetBlock: make(map[uint32]ir.BlockID),
		offsetIndex: make(map[uint32]int),
		blockEnd:    make(map[ir.BlockID]uint32),
		handlerGuard: make(map[ir.BlockID]ir.InstID),
		entries:     make(map[ir.BlockID]blockState),
		exits:       make(map[ir.BlockID]blockState),
		merges:      make(map[ir.BlockID]*mergeInfo),
	}

	fc.body = ir.NewMethodBody(raw.ArgTypes, raw.LocalTypes)
	fc.primitives = newPrimitiveSet(provider)
	fc.argValues = make([]ir.ValueID, len(raw.ArgTypes))
	for i := range raw.ArgTypes {
		fc.argValues[i] = fc.body.NewArg(i) // seeds one TrackedValue per argument, index-aligned
	}

	fc.regions = region.Build(raw.Regions)

	fc.leaders = discoverLeaders(raw)
	if fc.leaders.Len() > opts.MaxBlocks {
		return nil, invalidInput(diag.InvalidInputBadBranchTarget, 0,
			"method decodes to %d blocks, over the %d limit", fc.leaders.Len(), opts.MaxBlocks)
	}

	analyzeVariables(fc)

	if err := createBlocks(fc); err != nil {
		return nil, err
	}
	wireEdges(fc)
	materializeGuards(fc)
	seedArguments(fc)

	if err := importBlocks(fc); err != nil {
		return nil, err
	}

	return fc.body, nil
}

func invalidInput(code diag.Code, offset uint32, format string, args ...any) error {
	return diag.Newf(diag.InvalidInput, code, source.At(offset), fmt.Sprintf(format, args...))
}

func stackMismatch(code diag.Code, offset uint32, format string, args ...any) error {
	return diag.Newf(diag.StackMismatch, code, source.At(offset), fmt.Sprintf(format, args...))
}

func unsupported(code diag.Code, offset uint32, format string, args ...any) error {
	return diag.Newf(diag.UnsupportedConstruct, code, source.At(offset), fmt.Sprintf(format, args...))
}
