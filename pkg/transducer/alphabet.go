package transducer

import (
	"strings"
)

// FlagOp is a flag-diacritic operator.
type FlagOp byte

const (
	// FlagPositiveSet binds feature = value.
	FlagPositiveSet FlagOp = 'P'
	// FlagNegativeSet binds feature != value.
	FlagNegativeSet FlagOp = 'N'
	// FlagRequire passes only when feature is bound to value, or bound at
	// all in the valueless form.
	FlagRequire FlagOp = 'R'
	// FlagDisallow passes only when feature is not bound to value, or
	// unbound in the valueless form.
	FlagDisallow FlagOp = 'D'
	// FlagClear unbinds feature.
	FlagClear FlagOp = 'C'
	// FlagUnify binds feature = value unless it is already bound to a
	// conflicting value.
	FlagUnify FlagOp = 'U'
)

// FlagOperation is a parsed @OP.FEATURE.VALUE@ symbol. Feature and Value are
// interned per alphabet; value id 0 is reserved for the valueless form.
type FlagOperation struct {
	Op      FlagOp
	Feature SymbolNumber
	Value   int16
}

// Alphabet maps symbol ids to strings and classifies flag diacritics. It is
// built once during load and read-only afterwards, except for symbols
// appended by a translator before any search starts.
type Alphabet struct {
	keyTable       []string
	stringToSymbol map[string]SymbolNumber
	operations     map[SymbolNumber]FlagOperation

	featureBucket map[string]SymbolNumber
	valueBucket   map[string]int16

	identity    SymbolNumber
	unknown     SymbolNumber
	hasIdentity bool
	hasUnknown  bool

	initialSymbolCount SymbolNumber
	flagStateSize      SymbolNumber
	length             int
}

const (
	epsilonKey  = "@_EPSILON_SYMBOL_@"
	identityKey = "@_IDENTITY_SYMBOL_@"
	unknownKey  = "@_UNKNOWN_SYMBOL_@"
)

func parseAlphabet(buf []byte, symbols SymbolNumber) (*Alphabet, error) {
	a := &Alphabet{
		keyTable:           make([]string, 0, symbols),
		stringToSymbol:     make(map[string]SymbolNumber, symbols),
		operations:         make(map[SymbolNumber]FlagOperation),
		featureBucket:      make(map[string]SymbolNumber),
		valueBucket:        map[string]int16{"": 0},
		initialSymbolCount: symbols,
	}

	offset := 0
	for i := SymbolNumber(0); i < symbols; i++ {
		end := offset
		for {
			if end >= len(buf) {
				return nil, formatErrf("alphabet", offset, "unterminated symbol %d", i)
			}
			if buf[end] == 0 {
				break
			}
			end++
		}
		key := string(buf[offset:end])
		offset = end + 1

		switch {
		case len(key) > 1 && strings.HasPrefix(key, "@") && strings.HasSuffix(key, "@"):
			if len(key) > 2 && key[2] == '.' {
				if err := a.addFlagSymbol(i, key); err != nil {
					return nil, err
				}
			} else if key == epsilonKey {
				a.keyTable = append(a.keyTable, "")
			} else if key == identityKey {
				a.identity, a.hasIdentity = i, true
				a.keyTable = append(a.keyTable, key)
			} else if key == unknownKey {
				a.unknown, a.hasUnknown = i, true
				a.keyTable = append(a.keyTable, key)
			} else {
				// Unrecognised special symbol, treat as unmatchable.
				a.keyTable = append(a.keyTable, "")
			}
		default:
			if _, dup := a.stringToSymbol[key]; dup {
				return nil, formatErrf("alphabet", offset, "duplicate symbol %q", key)
			}
			a.keyTable = append(a.keyTable, key)
			a.stringToSymbol[key] = i
		}
	}

	a.flagStateSize = SymbolNumber(len(a.featureBucket))

	// Alphabet sections are padded with trailing NULs up to the index
	// table; the padding belongs to the alphabet's byte length.
	for offset < len(buf) && buf[offset] == 0 {
		offset++
	}
	a.length = offset
	return a, nil
}

func (a *Alphabet) addFlagSymbol(i SymbolNumber, key string) error {
	parts := strings.Split(strings.Trim(key, "@"), ".")
	if len(parts) < 2 || len(parts) > 3 || len(parts[0]) != 1 {
		return formatErrf("alphabet", 0, "malformed flag diacritic %q", key)
	}
	op := FlagOp(parts[0][0])
	switch op {
	case FlagPositiveSet, FlagNegativeSet, FlagRequire, FlagDisallow, FlagClear, FlagUnify:
	default:
		return formatErrf("alphabet", 0, "unknown flag operator %q in %q", parts[0], key)
	}
	feature := parts[1]
	value := ""
	if len(parts) == 3 {
		value = parts[2]
	}

	if _, ok := a.featureBucket[feature]; !ok {
		a.featureBucket[feature] = SymbolNumber(len(a.featureBucket))
	}
	if _, ok := a.valueBucket[value]; !ok {
		a.valueBucket[value] = int16(len(a.valueBucket))
	}

	a.operations[i] = FlagOperation{
		Op:      op,
		Feature: a.featureBucket[feature],
		Value:   a.valueBucket[value],
	}
	a.keyTable = append(a.keyTable, key)
	return nil
}

// Len returns the byte length of the alphabet section, padding included.
func (a *Alphabet) Len() int { return a.length }

// SymbolCount returns the current number of symbols, appended ones included.
func (a *Alphabet) SymbolCount() int { return len(a.keyTable) }

// InitialSymbolCount returns the number of symbols in the on-disk table.
func (a *Alphabet) InitialSymbolCount() SymbolNumber { return a.initialSymbolCount }

// FlagStateSize returns the number of distinct flag features, which is the
// width of FlagState vectors for this alphabet.
func (a *Alphabet) FlagStateSize() SymbolNumber { return a.flagStateSize }

// SymbolFor returns the string form of id. Appended symbols resolve like
// on-disk ones; out-of-range ids return the empty string.
func (a *Alphabet) SymbolFor(id SymbolNumber) string {
	if int(id) >= len(a.keyTable) {
		return ""
	}
	return a.keyTable[id]
}

// IDFor returns the symbol id for a literal string, if the alphabet has one.
func (a *Alphabet) IDFor(text string) (SymbolNumber, bool) {
	id, ok := a.stringToSymbol[text]
	return id, ok
}

// IsFlag reports whether id is a flag diacritic.
func (a *Alphabet) IsFlag(id SymbolNumber) bool {
	_, ok := a.operations[id]
	return ok
}

// FlagSpec returns the parsed flag operation for id.
func (a *Alphabet) FlagSpec(id SymbolNumber) (FlagOperation, bool) {
	op, ok := a.operations[id]
	return op, ok
}

// Identity returns the identity pass-through symbol, if declared.
func (a *Alphabet) Identity() (SymbolNumber, bool) { return a.identity, a.hasIdentity }

// Unknown returns the unknown-input symbol, if declared.
func (a *Alphabet) Unknown() (SymbolNumber, bool) { return a.unknown, a.hasUnknown }

// addSymbol appends a symbol that is not part of the on-disk table.
func (a *Alphabet) addSymbol(text string) SymbolNumber {
	id := SymbolNumber(len(a.keyTable))
	a.stringToSymbol[text] = id
	a.keyTable = append(a.keyTable, text)
	return id
}

// TranslatorFrom builds a symbol-id translation from another alphabet into
// this one, appending any symbols this alphabet lacks. It runs once at
// speller construction, before the alphabet is shared across searches.
func (a *Alphabet) TranslatorFrom(from *Alphabet) []SymbolNumber {
	translator := make([]SymbolNumber, 0, len(from.keyTable))
	translator = append(translator, Epsilon)

	for _, key := range from.keyTable[1:] {
		if sym, ok := a.stringToSymbol[key]; ok {
			translator = append(translator, sym)
		} else {
			translator = append(translator, a.addSymbol(key))
		}
	}
	return translator
}
