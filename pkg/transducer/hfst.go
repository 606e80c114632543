package transducer

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/edsrzf/mmap-go"
)

// HfstTransducer is the optimized-lookup store: a decoded header and
// alphabet plus zero-copy index and transition table views over one
// immutable buffer. It is read concurrently by many searches and never
// mutated after load.
type HfstTransducer struct {
	buf         []byte
	header      *Header
	alphabet    *Alphabet
	index       indexTable
	transitions transitionTable

	mapped *mmap.MMap
}

// FromBytes decodes a transducer from an immutable byte buffer. The buffer
// must outlive the transducer; no data is copied out of it. Malformed or
// truncated buffers fail here with FormatError, never during a search.
func FromBytes(buf []byte) (*HfstTransducer, error) {
	header, err := parseHeader(buf)
	if err != nil {
		return nil, err
	}

	alphabetOffset := header.Len()
	alphabet, err := parseAlphabet(buf[alphabetOffset:], header.SymbolCount)
	if err != nil {
		return nil, err
	}

	indexOffset := alphabetOffset + alphabet.Len()
	indexEnd := indexOffset + int(header.IndexTableSize)*indexRecordSize
	if indexEnd > len(buf) {
		return nil, formatErrf("index table", indexOffset, "table of %d records exceeds buffer size %d", header.IndexTableSize, len(buf))
	}
	index, err := newIndexTable(buf[indexOffset:indexEnd], header.IndexTableSize)
	if err != nil {
		return nil, err
	}

	transEnd := indexEnd + int(header.TransitionTableSize)*transitionRecordSize
	if transEnd > len(buf) {
		return nil, formatErrf("transition table", indexEnd, "table of %d records exceeds buffer size %d", header.TransitionTableSize, len(buf))
	}
	transitions, err := newTransitionTable(buf[indexEnd:transEnd], header.TransitionTableSize)
	if err != nil {
		return nil, err
	}

	if err := validateTables(index, transitions); err != nil {
		return nil, err
	}

	log.Debugf("transducer loaded: %d symbols, %d index records, %d transition records, weighted=%v",
		header.SymbolCount, header.IndexTableSize, header.TransitionTableSize, header.Weighted)

	return &HfstTransducer{
		buf:         buf,
		header:      header,
		alphabet:    alphabet,
		index:       index,
		transitions: transitions,
	}, nil
}

// FromFile memory-maps path read-only and decodes it. Close releases the
// mapping.
func FromFile(path string) (*HfstTransducer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transducer file: %w", err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mapping transducer file %s: %w", path, err)
	}

	t, err := FromBytes(m)
	if err != nil {
		if uerr := m.Unmap(); uerr != nil {
			log.Warnf("unmapping rejected transducer %s: %v", path, uerr)
		}
		return nil, err
	}
	t.mapped = &m
	return t, nil
}

// Close releases the memory mapping, if the transducer owns one. No search
// may be in flight when Close is called.
func (t *HfstTransducer) Close() error {
	if t.mapped == nil {
		return nil
	}
	err := t.mapped.Unmap()
	t.mapped = nil
	return err
}

// Header returns the decoded header.
func (t *HfstTransducer) Header() *Header { return t.header }

// Alphabet returns the symbol table.
func (t *HfstTransducer) Alphabet() *Alphabet { return t.alphabet }

// Weighted reports whether the transducer carries weights.
func (t *HfstTransducer) Weighted() bool { return t.header.Weighted }

// Start returns the start state, which is always index-table record zero.
func (t *HfstTransducer) Start() TableIndex { return 0 }

// IsFinal reports whether state i accepts.
func (t *HfstTransducer) IsFinal(i TableIndex) bool {
	if i >= TargetTable {
		return t.transitions.isFinal(i - TargetTable)
	}
	return t.index.isFinal(i)
}

// FinalWeight returns the accept weight of state i.
func (t *HfstTransducer) FinalWeight(i TableIndex) (Weight, bool) {
	if i >= TargetTable {
		if !t.transitions.isFinal(i - TargetTable) {
			return 0, false
		}
		return t.transitions.weight(i - TargetTable)
	}
	if !t.index.isFinal(i) {
		return 0, false
	}
	return t.index.finalWeight(i)
}

// HasTransitions reports whether the slot at i carries a transition on sym.
// i is state+1 in the optimized-lookup addressing scheme.
func (t *HfstTransducer) HasTransitions(i TableIndex, sym SymbolNumber) bool {
	if sym == NoSymbol {
		return false
	}
	if i >= TargetTable {
		got, ok := t.transitions.inputSymbol(i - TargetTable)
		return ok && got == sym
	}
	got, ok := t.index.inputSymbol(i + TableIndex(sym))
	return ok && got == sym
}

// HasEpsilonsOrFlags reports whether the slot at i carries an epsilon or
// flag transition.
func (t *HfstTransducer) HasEpsilonsOrFlags(i TableIndex) bool {
	if i >= TargetTable {
		sym, ok := t.transitions.inputSymbol(i - TargetTable)
		if !ok {
			return false
		}
		return sym == Epsilon || t.alphabet.IsFlag(sym)
	}
	sym, ok := t.index.inputSymbol(i)
	return ok && sym == Epsilon
}

// Next returns the first transition-table slot holding transitions of state
// i on sym.
func (t *HfstTransducer) Next(i TableIndex, sym SymbolNumber) (TableIndex, bool) {
	if i >= TargetTable {
		return i - TargetTable + 1, true
	}
	target, ok := t.index.target(i + 1 + TableIndex(sym))
	if !ok {
		return 0, false
	}
	return target - TargetTable, true
}

// TakeEpsilons returns the transition at slot i when its input is epsilon.
func (t *HfstTransducer) TakeEpsilons(i TableIndex) (Transition, bool) {
	sym, ok := t.transitions.inputSymbol(i)
	if !ok || sym != Epsilon {
		return Transition{}, false
	}
	return t.transitions.transition(i), true
}

// TakeEpsilonsAndFlags returns the transition at slot i when its input is
// epsilon or a flag diacritic.
func (t *HfstTransducer) TakeEpsilonsAndFlags(i TableIndex) (Transition, bool) {
	sym, ok := t.transitions.inputSymbol(i)
	if !ok {
		return Transition{}, false
	}
	if sym != Epsilon && !t.alphabet.IsFlag(sym) {
		return Transition{}, false
	}
	return t.transitions.transition(i), true
}

// TakeNonEpsilons returns the transition at slot i when its input is sym.
func (t *HfstTransducer) TakeNonEpsilons(i TableIndex, sym SymbolNumber) (Transition, bool) {
	got, ok := t.transitions.inputSymbol(i)
	if !ok || got != sym {
		return Transition{}, false
	}
	return t.transitions.transition(i), true
}
