/*
Package transducer decodes and queries weighted finite-state transducers in
the HFST optimized-lookup binary format.

A transducer is loaded once from an immutable byte buffer (typically a
memory-mapped file) and is safe for concurrent reads afterwards. The decoder
is zero-copy: the index table and transition table are views into the source
buffer, and every random access is bounds checked against it.
*/
package transducer

import "math"

// SymbolNumber identifies a symbol in a transducer alphabet.
type SymbolNumber = uint16

// TableIndex addresses a state or a transition table record.
type TableIndex = uint32

// Weight is a non-negative path cost.
type Weight = float32

const (
	// NoSymbol marks an absent input or output symbol.
	NoSymbol SymbolNumber = math.MaxUint16
	// NoTableIndex marks an absent target.
	NoTableIndex TableIndex = math.MaxUint32
	// TargetTable offsets state indices that address the transition table
	// directly instead of the index table.
	TargetTable TableIndex = 1 << 31

	indexRecordSize      = 6
	transitionRecordSize = 12
)

// Epsilon is the conventional id of the epsilon symbol.
const Epsilon SymbolNumber = 0

// Transition is one decoded transition-table record.
type Transition struct {
	Input  SymbolNumber
	Output SymbolNumber
	Target TableIndex
	Weight Weight
}

// Transducer is the capability interface the search engine is generic over.
// Concrete stores implement it per on-disk encoding.
type Transducer interface {
	// Alphabet returns the symbol table shared by all queries.
	Alphabet() *Alphabet
	// Start returns the start state.
	Start() TableIndex
	// IsFinal reports whether state i accepts.
	IsFinal(i TableIndex) bool
	// FinalWeight returns the accept weight of state i, or false if i is
	// not final.
	FinalWeight(i TableIndex) (Weight, bool)
	// HasTransitions reports whether the slot at i carries a transition on
	// sym. Callers pass state+1 per the optimized-lookup addressing scheme.
	HasTransitions(i TableIndex, sym SymbolNumber) bool
	// HasEpsilonsOrFlags reports whether the slot at i carries an epsilon
	// or flag-diacritic transition.
	HasEpsilonsOrFlags(i TableIndex) bool
	// Next returns the first transition-table slot for transitions of
	// state i on sym, or false when the state has none.
	Next(i TableIndex, sym SymbolNumber) (TableIndex, bool)
	// TakeEpsilons returns the transition at slot i if its input is
	// epsilon.
	TakeEpsilons(i TableIndex) (Transition, bool)
	// TakeEpsilonsAndFlags returns the transition at slot i if its input
	// is epsilon or a flag diacritic.
	TakeEpsilonsAndFlags(i TableIndex) (Transition, bool)
	// TakeNonEpsilons returns the transition at slot i if its input equals
	// sym.
	TakeNonEpsilons(i TableIndex, sym SymbolNumber) (Transition, bool)
}
