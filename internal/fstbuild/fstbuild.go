// Package fstbuild emits small optimized-lookup transducer images from
// declarative state and arc lists. It exists for tests and benchmarks that
// need binary fixtures without shipping compiled transducer files.
package fstbuild

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	noSymbol     uint16 = math.MaxUint16
	noTableIndex uint32 = math.MaxUint32
	targetTable  uint32 = 1 << 31

	epsilonKey = "@_EPSILON_SYMBOL_@"
)

type arc struct {
	from, to int
	in, out  uint16
	weight   float32
}

// Builder accumulates states, arcs and finality, then serializes them into
// a buffer the transducer package can decode. State 0 is the start state.
type Builder struct {
	symbols  []string
	symbolID map[string]uint16
	finals   map[int]float32
	arcs     []arc
	states   int
}

// New returns a builder over the given non-epsilon symbols. The epsilon
// symbol is always id 0; flag diacritics and the special identity and
// unknown markers are declared like any other symbol.
func New(symbols ...string) *Builder {
	b := &Builder{
		symbols:  append([]string{epsilonKey}, symbols...),
		symbolID: make(map[string]uint16, len(symbols)+1),
		finals:   make(map[int]float32),
		states:   1,
	}
	b.symbolID[""] = 0
	b.symbolID[epsilonKey] = 0
	for i, s := range symbols {
		b.symbolID[s] = uint16(i + 1)
	}
	return b
}

func (b *Builder) id(symbol string) uint16 {
	id, ok := b.symbolID[symbol]
	if !ok {
		panic(fmt.Sprintf("fstbuild: undeclared symbol %q", symbol))
	}
	return id
}

func (b *Builder) touch(state int) {
	if state >= b.states {
		b.states = state + 1
	}
}

// Arc adds a transition. Empty strings stand for epsilon.
func (b *Builder) Arc(from, to int, in, out string, weight float32) *Builder {
	b.touch(from)
	b.touch(to)
	b.arcs = append(b.arcs, arc{from: from, to: to, in: b.id(in), out: b.id(out), weight: weight})
	return b
}

// Final marks a state as accepting with the given weight.
func (b *Builder) Final(state int, weight float32) *Builder {
	b.touch(state)
	b.finals[state] = weight
	return b
}

// isFlagKey mirrors the loader's classification so flag-input arcs are
// indexed under epsilon, the way optimized-lookup stores them.
func isFlagKey(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "@") && strings.HasSuffix(key, "@") && key[2] == '.'
}

// Build serializes the automaton.
func (b *Builder) Build() []byte {
	numSym := len(b.symbols)
	blockSize := 1 + numSym

	// Group arcs per state; flag-input arcs group with epsilon.
	indexSym := func(a arc) uint16 {
		if isFlagKey(b.symbols[a.in]) {
			return 0
		}
		return a.in
	}
	type group struct {
		sym  uint16
		arcs []arc
	}
	stateGroups := make([][]group, b.states)
	for s := 0; s < b.states; s++ {
		bySym := make(map[uint16][]arc)
		for _, a := range b.arcs {
			if a.from != s {
				continue
			}
			k := indexSym(a)
			bySym[k] = append(bySym[k], a)
		}
		syms := make([]int, 0, len(bySym))
		for k := range bySym {
			syms = append(syms, int(k))
		}
		sort.Ints(syms)
		for _, k := range syms {
			stateGroups[s] = append(stateGroups[s], group{sym: uint16(k), arcs: bySym[uint16(k)]})
		}
	}

	// Transition table layout: each group followed by a sentinel record so
	// linear scans terminate at group boundaries.
	type located struct {
		state int
		sym   uint16
		slot  uint32
	}
	var groupSlots []located
	slot := uint32(0)
	for s := 0; s < b.states; s++ {
		for _, g := range stateGroups[s] {
			groupSlots = append(groupSlots, located{state: s, sym: g.sym, slot: slot})
			slot += uint32(len(g.arcs)) + 1
		}
	}
	transCount := slot

	slotOf := func(state int, sym uint16) (uint32, bool) {
		for _, l := range groupSlots {
			if l.state == state && l.sym == sym {
				return l.slot, true
			}
		}
		return 0, false
	}

	stateBase := func(s int) uint32 { return uint32(s) * uint32(blockSize) }
	indexCount := uint32(b.states) * uint32(blockSize)

	// Header.
	var out []byte
	le := binary.LittleEndian
	u16 := func(v uint16) { out = le.AppendUint16(out, v) }
	u32 := func(v uint32) { out = le.AppendUint32(out, v) }
	f32 := func(v float32) { out = le.AppendUint32(out, math.Float32bits(v)) }

	u16(uint16(numSym))
	u16(uint16(numSym))
	u32(indexCount)
	u32(transCount)
	u32(uint32(b.states))
	u32(uint32(len(b.arcs)))
	props := []uint32{1, 0, 0, 1, 0, 0, 1, 0, 0}
	for _, p := range props {
		u32(p)
	}

	// Alphabet.
	for _, s := range b.symbols {
		out = append(out, s...)
		out = append(out, 0)
	}

	// Index table.
	for s := 0; s < b.states; s++ {
		if w, ok := b.finals[s]; ok {
			u16(noSymbol)
			f32(w)
		} else {
			u16(noSymbol)
			u32(noTableIndex)
		}
		for sym := 0; sym < numSym; sym++ {
			if gslot, ok := slotOf(s, uint16(sym)); ok {
				u16(uint16(sym))
				u32(targetTable + gslot)
			} else {
				u16(noSymbol)
				u32(noTableIndex)
			}
		}
	}

	// Transition table.
	for s := 0; s < b.states; s++ {
		for _, g := range stateGroups[s] {
			for _, a := range g.arcs {
				u16(a.in)
				u16(a.out)
				u32(stateBase(a.to))
				f32(a.weight)
			}
			u16(noSymbol)
			u16(noSymbol)
			u32(noTableIndex)
			f32(float32(math.Inf(1)))
		}
	}

	return out
}
