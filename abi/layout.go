package abi

import (
	"github.com/karmakrafts/kWire-sub000/errors"
)

// Layout is the computed binary footprint of a type: its size, alignment,
// and (for aggregates) the offset of each declared field in declaration
// order. Field offsets and the size/alignment pair are the ABI contract a
// native callee expects; any divergence is a binary-compatibility defect.
type Layout struct {
	Size         uint32
	Align        uint32
	FieldOffsets []uint32
}

// AlignTo rounds offset up to the next multiple of align. A zero align
// leaves the offset untouched.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

func isPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

// Calculator computes and caches type layouts. Results (including
// failures) are cached per descriptor identity; descriptors are treated
// as immutable. A Calculator is not safe for concurrent use.
type Calculator struct {
	cache map[*Type]cacheEntry
}

type cacheEntry struct {
	layout Layout
	err    error
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*Type]cacheEntry),
	}
}

// calcState tracks the in-progress aggregate chain so by-value cycles are
// rejected at first detection instead of recursing without bound.
type calcState struct {
	stack []*Type
	index map[*Type]int
}

// Calculate returns the layout of t.
//
// Fixed-width primitives use their natural size and alignment; native
// integer and float kinds and all pointer kinds use the platform address
// width; a Reference is a single native-width slot regardless of the
// referenced type. Aggregates walk declared fields in order, rounding the
// cursor up to each field's alignment.
//
// Unresolved types fail with an unresolved_type layout error; an
// aggregate that contains itself by value, directly or transitively
// through anything other than a pointer or reference field, fails with a
// cyclic_type layout error.
func (c *Calculator) Calculate(t *Type) (Layout, error) {
	state := &calcState{index: make(map[*Type]int)}
	return c.calculate(t, state)
}

func (c *Calculator) calculate(t *Type, state *calcState) (Layout, error) {
	if t == nil {
		return Layout{}, errors.UnresolvedType(nil, "<nil>")
	}

	if cached, ok := c.cache[t]; ok {
		return cached.layout, cached.err
	}

	layout, err := c.compute(t, state)
	c.cache[t] = cacheEntry{layout: layout, err: err}
	return layout, err
}

func (c *Calculator) compute(t *Type, state *calcState) (Layout, error) {
	if size := t.Kind.FixedSize(); size != 0 {
		return Layout{Size: size, Align: size}, nil
	}

	switch t.Kind {
	case KindAggregate:
		return c.computeAggregate(t, state)
	default:
		// Void and any kind this engine does not know how to lay out.
		return Layout{}, errors.UnresolvedType(nil, t.Name)
	}
}

func (c *Calculator) computeAggregate(t *Type, state *calcState) (Layout, error) {
	if idx, ok := state.index[t]; ok {
		cycle := make([]string, 0, len(state.stack)-idx+1)
		for _, s := range state.stack[idx:] {
			cycle = append(cycle, s.Name)
		}
		cycle = append(cycle, t.Name)
		return Layout{}, errors.CyclicType(cycle)
	}

	if t.AlignOverride != 0 && !isPowerOfTwo(t.AlignOverride) {
		return Layout{}, errors.InvalidAlignment(errors.PhaseLayout, uintptr(t.AlignOverride))
	}

	state.index[t] = len(state.stack)
	state.stack = append(state.stack, t)
	defer func() {
		state.stack = state.stack[:len(state.stack)-1]
		delete(state.index, t)
	}()

	offsets := make([]uint32, len(t.Fields))
	maxAlign := uint32(1)
	cursor := uint32(0)

	for i, field := range t.Fields {
		if field.Type == nil {
			return Layout{}, errors.UnresolvedType([]string{t.Name, field.Name}, "<nil>")
		}

		fieldLayout, err := c.calculate(field.Type, state)
		if err != nil {
			return Layout{}, err
		}

		cursor = AlignTo(cursor, fieldLayout.Align)
		offsets[i] = cursor

		if fieldLayout.Align > maxAlign {
			maxAlign = fieldLayout.Align
		}

		cursor += fieldLayout.Size
	}

	align := maxAlign
	if t.AlignOverride != 0 {
		// Honored verbatim, including overrides below the natural
		// alignment (packed layouts).
		align = t.AlignOverride
	}

	return Layout{
		Size:         AlignTo(cursor, align),
		Align:        align,
		FieldOffsets: offsets,
	}, nil
}

// SizeOf is shorthand for the size component of Calculate.
func (c *Calculator) SizeOf(t *Type) (uint32, error) {
	layout, err := c.Calculate(t)
	if err != nil {
		return 0, err
	}
	return layout.Size, nil
}
