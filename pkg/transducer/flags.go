package transducer

// FlagState holds the feature bindings accumulated along one search path,
// indexed by interned feature id. Zero means unbound, positive values bind
// to a value id and negative values record a negative binding from N or a
// failed unification candidate.
//
// A FlagState is never shared between branches: Apply returns a fresh copy
// on success so sibling branches cannot observe each other's bindings.
type FlagState []int16

// NewFlagState returns an all-unbound state sized for an alphabet with the
// given number of flag features.
func NewFlagState(size SymbolNumber) FlagState {
	return make(FlagState, size)
}

// Clone returns an independent copy.
func (fs FlagState) Clone() FlagState {
	out := make(FlagState, len(fs))
	copy(out, fs)
	return out
}

// Apply evaluates op against the current bindings. Requirement operators
// (R, D and the check half of U) read the state as-is; mutating operators
// return an updated copy. The second return is false when the operation
// rejects, which prunes the branch that attempted it.
func (fs FlagState) Apply(op FlagOperation) (FlagState, bool) {
	feature := int(op.Feature)
	if feature >= len(fs) {
		return fs, false
	}

	switch op.Op {
	case FlagPositiveSet:
		next := fs.Clone()
		next[feature] = op.Value
		return next, true

	case FlagNegativeSet:
		next := fs.Clone()
		next[feature] = -op.Value
		return next, true

	case FlagRequire:
		if op.Value == 0 {
			// Valueless form: any binding satisfies, negative ones included.
			if fs[feature] != 0 {
				return fs, true
			}
			return fs, false
		}
		if fs[feature] == op.Value {
			return fs, true
		}
		return fs, false

	case FlagDisallow:
		if op.Value == 0 {
			if fs[feature] == 0 {
				return fs, true
			}
			return fs, false
		}
		if fs[feature] != op.Value {
			return fs, true
		}
		return fs, false

	case FlagClear:
		next := fs.Clone()
		next[feature] = 0
		return next, true

	case FlagUnify:
		if fs[feature] == 0 || fs[feature] == op.Value ||
			(fs[feature] < 0 && -fs[feature] != op.Value) {
			next := fs.Clone()
			next[feature] = op.Value
			return next, true
		}
		return fs, false
	}

	return fs, false
}
