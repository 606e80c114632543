package transducer

import (
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultEpsilonLimit bounds consecutive epsilon or flag steps taken without
// consuming input on a single branch. A branch exceeding it is dropped; the
// rest of the traversal continues.
const DefaultEpsilonLimit = 512

// Path is one accepted traversal through a transducer: the concatenated
// output symbols and the summed weight, final weight included.
type Path struct {
	Output string
	Weight Weight
}

// LookupResult carries the accepted paths of a Lookup in discovery order,
// plus the number of branches dropped by the epsilon budget.
type LookupResult struct {
	Paths        []Path
	CycleBounded int
}

type lookupNode struct {
	state    TableIndex
	pos      int
	weight   Weight
	flags    FlagState
	output   []SymbolNumber
	epsSteps int
}

// Lookup walks t over the symbols of word, following epsilon and flag
// transitions, and returns every accepted path within the epsilon budget.
// Characters absent from the alphabet make the word unacceptable.
func Lookup(t Transducer, word string, epsilonLimit int) LookupResult {
	alphabet := t.Alphabet()

	input := make([]SymbolNumber, 0, len(word))
	for _, r := range word {
		sym, ok := alphabet.IDFor(string(r))
		if !ok {
			return LookupResult{}
		}
		input = append(input, sym)
	}
	if epsilonLimit <= 0 {
		epsilonLimit = DefaultEpsilonLimit
	}

	var result LookupResult
	stack := []lookupNode{{
		state: t.Start(),
		flags: NewFlagState(alphabet.FlagStateSize()),
	}}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.pos == len(input) {
			if w, ok := t.FinalWeight(n.state); ok {
				result.Paths = append(result.Paths, Path{
					Output: renderOutput(alphabet, n.output),
					Weight: n.weight + w,
				})
			}
		}

		// Epsilon and flag closure.
		if n.epsSteps >= epsilonLimit {
			result.CycleBounded++
			log.Debugf("traversal branch dropped after %d epsilon steps at state %d", n.epsSteps, n.state)
			continue
		}
		if t.HasEpsilonsOrFlags(n.state + 1) {
			if idx, ok := t.Next(n.state, Epsilon); ok {
				for {
					trans, ok := t.TakeEpsilonsAndFlags(idx)
					if !ok {
						break
					}
					idx++
					child := lookupNode{
						state:    trans.Target,
						pos:      n.pos,
						weight:   n.weight + trans.Weight,
						flags:    n.flags,
						output:   n.output,
						epsSteps: n.epsSteps + 1,
					}
					if trans.Input != Epsilon {
						op, _ := alphabet.FlagSpec(trans.Input)
						next, ok := n.flags.Apply(op)
						if !ok {
							continue
						}
						child.flags = next
					} else if trans.Output != Epsilon {
						child.output = appendSymbol(n.output, trans.Output)
					}
					stack = append(stack, child)
				}
			}
		}

		// Consume the next input symbol.
		if n.pos < len(input) {
			sym := input[n.pos]
			if t.HasTransitions(n.state+1, sym) {
				if idx, ok := t.Next(n.state, sym); ok {
					for {
						trans, ok := t.TakeNonEpsilons(idx, sym)
						if !ok {
							break
						}
						idx++
						child := lookupNode{
							state:  trans.Target,
							pos:    n.pos + 1,
							weight: n.weight + trans.Weight,
							flags:  n.flags,
							output: n.output,
						}
						if trans.Output != Epsilon {
							child.output = appendSymbol(n.output, trans.Output)
						}
						stack = append(stack, child)
					}
				}
			}
		}
	}

	return result
}

// Accepts reports whether t accepts word on some path. It is the zero-edit
// membership check behind "is this word spelled correctly".
func Accepts(t Transducer, word string, epsilonLimit int) bool {
	return len(Lookup(t, word, epsilonLimit).Paths) > 0
}

// appendSymbol copies before appending: sibling branches share the parent's
// output slice and must not see each other's writes.
func appendSymbol(output []SymbolNumber, sym SymbolNumber) []SymbolNumber {
	out := make([]SymbolNumber, len(output), len(output)+1)
	copy(out, output)
	return append(out, sym)
}

func renderOutput(alphabet *Alphabet, output []SymbolNumber) string {
	var b strings.Builder
	for _, sym := range output {
		b.WriteString(alphabet.SymbolFor(sym))
	}
	return b.String()
}
