package transducer

import (
	"encoding/binary"
	"math"
)

// indexTable is a zero-copy view over the transition index records. Each
// record is six bytes: u16 input symbol, then either a u32 target or the
// final weight bits when the input slot is NoSymbol.
type indexTable struct {
	buf  []byte
	size TableIndex
}

func newIndexTable(buf []byte, size TableIndex) (indexTable, error) {
	if need := int(size) * indexRecordSize; need > len(buf) {
		return indexTable{}, formatErrf("index table", len(buf), "need %d bytes for %d records", need, size)
	}
	return indexTable{buf: buf, size: size}, nil
}

func (t indexTable) inputSymbol(i TableIndex) (SymbolNumber, bool) {
	if i >= t.size {
		return 0, false
	}
	sym := binary.LittleEndian.Uint16(t.buf[i*indexRecordSize:])
	if sym == NoSymbol {
		return 0, false
	}
	return sym, true
}

func (t indexTable) target(i TableIndex) (TableIndex, bool) {
	if i >= t.size {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(t.buf[i*indexRecordSize+2:])
	if v == NoTableIndex {
		return 0, false
	}
	return v, true
}

func (t indexTable) finalWeight(i TableIndex) (Weight, bool) {
	if i >= t.size {
		return 0, false
	}
	bits := binary.LittleEndian.Uint32(t.buf[i*indexRecordSize+2:])
	if bits == NoTableIndex {
		return 0, false
	}
	return math.Float32frombits(bits), true
}

func (t indexTable) isFinal(i TableIndex) bool {
	if _, hasInput := t.inputSymbol(i); hasInput {
		return false
	}
	_, hasTarget := t.target(i)
	return hasTarget
}

// transitionTable is a zero-copy view over the transition records. Each
// record is twelve bytes: u16 input, u16 output, u32 target, f32 weight.
type transitionTable struct {
	buf  []byte
	size TableIndex
}

func newTransitionTable(buf []byte, size TableIndex) (transitionTable, error) {
	if need := int(size) * transitionRecordSize; need > len(buf) {
		return transitionTable{}, formatErrf("transition table", len(buf), "need %d bytes for %d records", need, size)
	}
	return transitionTable{buf: buf, size: size}, nil
}

func (t transitionTable) inputSymbol(i TableIndex) (SymbolNumber, bool) {
	if i >= t.size {
		return 0, false
	}
	sym := binary.LittleEndian.Uint16(t.buf[i*transitionRecordSize:])
	if sym == NoSymbol {
		return 0, false
	}
	return sym, true
}

func (t transitionTable) outputSymbol(i TableIndex) (SymbolNumber, bool) {
	if i >= t.size {
		return 0, false
	}
	sym := binary.LittleEndian.Uint16(t.buf[i*transitionRecordSize+2:])
	if sym == NoSymbol {
		return 0, false
	}
	return sym, true
}

func (t transitionTable) target(i TableIndex) (TableIndex, bool) {
	if i >= t.size {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(t.buf[i*transitionRecordSize+4:])
	if v == NoTableIndex {
		return 0, false
	}
	return v, true
}

func (t transitionTable) weight(i TableIndex) (Weight, bool) {
	if i >= t.size {
		return 0, false
	}
	bits := binary.LittleEndian.Uint32(t.buf[i*transitionRecordSize+8:])
	return math.Float32frombits(bits), true
}

func (t transitionTable) isFinal(i TableIndex) bool {
	if _, hasInput := t.inputSymbol(i); hasInput {
		return false
	}
	if _, hasOutput := t.outputSymbol(i); hasOutput {
		return false
	}
	target, ok := t.target(i)
	return ok && target == 1 && i < t.size
}

func (t transitionTable) transition(i TableIndex) Transition {
	out, _ := t.outputSymbol(i)
	target, hasTarget := t.target(i)
	if !hasTarget {
		target = NoTableIndex
	}
	w, _ := t.weight(i)
	in, hasIn := t.inputSymbol(i)
	if !hasIn {
		in = NoSymbol
	}
	return Transition{Input: in, Output: out, Target: target, Weight: w}
}

// validateTables walks both tables once at load time so that out-of-range
// targets and malformed weights surface as FormatError before any search.
func validateTables(index indexTable, transitions transitionTable) error {
	for i := TableIndex(0); i < index.size; i++ {
		if _, hasInput := index.inputSymbol(i); !hasInput {
			// Finality slot: the field holds weight bits or NoTableIndex.
			continue
		}
		target, ok := index.target(i)
		if !ok {
			continue
		}
		if target < TargetTable || target-TargetTable >= transitions.size {
			return formatErrf("index table", int(i)*indexRecordSize, "record %d target %d outside transition table", i, target)
		}
	}

	for i := TableIndex(0); i < transitions.size; i++ {
		if _, hasInput := transitions.inputSymbol(i); !hasInput {
			continue
		}
		target, ok := transitions.target(i)
		if !ok {
			return formatErrf("transition table", int(i)*transitionRecordSize, "record %d has no target", i)
		}
		switch {
		case target >= TargetTable:
			if target-TargetTable >= transitions.size {
				return formatErrf("transition table", int(i)*transitionRecordSize, "record %d target %d outside transition table", i, target)
			}
		default:
			if target >= index.size {
				return formatErrf("transition table", int(i)*transitionRecordSize, "record %d target %d outside index table", i, target)
			}
		}
		w, _ := transitions.weight(i)
		if w < 0 || math.IsNaN(float64(w)) || math.IsInf(float64(w), 0) {
			return formatErrf("transition table", int(i)*transitionRecordSize, "record %d has invalid weight %v", i, w)
		}
	}
	return nil
}
