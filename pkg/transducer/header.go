package transducer

import (
	"bytes"
	"encoding/binary"
)

// hfst3Magic opens the optional HFST3 container header that some compiled
// transducers carry before the optimized-lookup header proper.
var hfst3Magic = []byte("HFST\x00")

const olHeaderSize = 56

// Header is the decoded optimized-lookup header.
type Header struct {
	InputSymbolCount    SymbolNumber
	SymbolCount         SymbolNumber
	IndexTableSize      uint32
	TransitionTableSize uint32
	StateCount          uint32
	TransitionCount     uint32

	Weighted                        bool
	Deterministic                   bool
	InputDeterministic              bool
	Minimized                       bool
	Cyclic                          bool
	HasEpsilonEpsilonTransitions    bool
	HasInputEpsilonTransitions      bool
	HasInputEpsilonCycles           bool
	HasUnweightedInputEpsilonCycles bool

	// length is the total header size in the buffer, container included.
	length int
}

// Len returns the byte length of the header, including the HFST3 container
// header when present. The alphabet starts at this offset.
func (h *Header) Len() int { return h.length }

func parseHeader(buf []byte) (*Header, error) {
	offset := 0
	if bytes.HasPrefix(buf, hfst3Magic) {
		// Container layout: magic, u16 property length, one pad byte,
		// then the properties themselves.
		if len(buf) < len(hfst3Magic)+3 {
			return nil, formatErrf("header", 0, "truncated container header")
		}
		propLen := int(binary.LittleEndian.Uint16(buf[len(hfst3Magic):]))
		offset = len(hfst3Magic) + 3 + propLen
		if offset > len(buf) {
			return nil, formatErrf("header", 0, "container header length %d exceeds buffer size %d", propLen, len(buf))
		}
	}

	if len(buf)-offset < olHeaderSize {
		return nil, formatErrf("header", offset, "buffer too small for header: %d bytes", len(buf)-offset)
	}
	b := buf[offset : offset+olHeaderSize]

	h := &Header{
		InputSymbolCount:    binary.LittleEndian.Uint16(b[0:]),
		SymbolCount:         binary.LittleEndian.Uint16(b[2:]),
		IndexTableSize:      binary.LittleEndian.Uint32(b[4:]),
		TransitionTableSize: binary.LittleEndian.Uint32(b[8:]),
		StateCount:          binary.LittleEndian.Uint32(b[12:]),
		TransitionCount:     binary.LittleEndian.Uint32(b[16:]),
		length:              offset + olHeaderSize,
	}

	props := []*bool{
		&h.Weighted,
		&h.Deterministic,
		&h.InputDeterministic,
		&h.Minimized,
		&h.Cyclic,
		&h.HasEpsilonEpsilonTransitions,
		&h.HasInputEpsilonTransitions,
		&h.HasInputEpsilonCycles,
		&h.HasUnweightedInputEpsilonCycles,
	}
	for i, p := range props {
		*p = binary.LittleEndian.Uint32(b[20+4*i:]) != 0
	}

	if h.SymbolCount == 0 {
		return nil, formatErrf("header", offset, "zero symbol count")
	}
	if h.InputSymbolCount > h.SymbolCount {
		return nil, formatErrf("header", offset, "input symbol count %d exceeds symbol count %d", h.InputSymbolCount, h.SymbolCount)
	}
	return h, nil
}
