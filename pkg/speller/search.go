package speller

import (
	"container/heap"
	"context"
	"errors"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/albbas/divvunspell/pkg/transducer"
)

// ErrCancelled reports a search stopped by its context. The suggestions
// returned alongside it are the candidates found up to that point.
var ErrCancelled = errors.New("suggestion search cancelled")

// searchNode is one position of the dual traversal: a state in the error
// model, a state in the lexicon, how much input is consumed and what has
// been produced so far. Nodes are immutable once pushed; children copy the
// output slice before extending it.
type searchNode struct {
	mutatorState transducer.TableIndex
	lexiconState transducer.TableIndex
	pos          int
	weight       transducer.Weight
	flags        transducer.FlagState
	output       []transducer.SymbolNumber
	epsSteps     int
	seq          uint64
}

// frontier is a min-heap on accumulated weight. Insertion order breaks ties
// so equal-weight nodes expand in a deterministic order.
type frontier []*searchNode

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].weight != f[j].weight {
		return f[i].weight < f[j].weight
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(*searchNode)) }
func (f *frontier) Pop() any {
	old := *f
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*f = old[:len(old)-1]
	return n
}

// seenKey identifies a revisitable search position. Flag bindings are part
// of the key: the same state pair under different bindings can accept
// different continuations.
type seenKey struct {
	mutatorState transducer.TableIndex
	lexiconState transducer.TableIndex
	pos          int
	flags        string
}

func flagKey(fs transducer.FlagState) string {
	if len(fs) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(fs) * 2)
	for _, v := range fs {
		b.WriteByte(byte(uint16(v)))
		b.WriteByte(byte(uint16(v) >> 8))
	}
	return b.String()
}

type search struct {
	speller *Speller
	cfg     Config
	input   []transducer.SymbolNumber

	frontier     frontier
	seen         map[seenKey]transducer.Weight
	ranker       *ranker
	seq          uint64
	cycleBounded int
}

// run drives the priority frontier until it drains or every remaining node
// is provably worse than the current bounds.
func (s *search) run(ctx context.Context) error {
	start := &searchNode{
		mutatorState: s.speller.mutator.Start(),
		lexiconState: s.speller.lexicon.Start(),
		flags:        transducer.NewFlagState(s.speller.lexicon.Alphabet().FlagStateSize()),
	}
	heap.Init(&s.frontier)
	s.push(start)

	for s.frontier.Len() > 0 {
		if ctx != nil && ctx.Err() != nil {
			return ErrCancelled
		}
		n := heap.Pop(&s.frontier).(*searchNode)
		if n.weight > s.limit() {
			break
		}

		if n.pos == len(s.input) {
			s.emit(n)
		}

		if n.epsSteps >= s.cfg.epsilonLimit() {
			s.cycleBounded++
			continue
		}
		s.lexiconEpsilons(n)
		s.mutatorEpsilons(n)
		s.consumeInput(n)
	}

	if s.cycleBounded > 0 {
		log.Debugf("suggestion search dropped %d branches at the epsilon budget", s.cycleBounded)
	}
	return nil
}

// emit records a candidate when both automata accept at this node.
func (s *search) emit(n *searchNode) {
	mw, ok := s.speller.mutator.FinalWeight(n.mutatorState)
	if !ok {
		return
	}
	lw, ok := s.speller.lexicon.FinalWeight(n.lexiconState)
	if !ok {
		return
	}
	total := n.weight + mw + lw
	if s.cfg.MaxWeight > 0 && total > s.cfg.MaxWeight {
		return
	}
	s.ranker.collect(s.render(n.output), total)
}

// limit is the weight above which no node can still contribute a result.
func (s *search) limit() transducer.Weight {
	limit := transducer.Weight(math.Inf(1))
	if s.cfg.MaxWeight > 0 {
		limit = s.cfg.MaxWeight
	}
	if s.cfg.Beam > 0 {
		if best, ok := s.ranker.best(); ok && best+s.cfg.Beam < limit {
			limit = best + s.cfg.Beam
		}
	}
	if s.cfg.NBest > 0 {
		if nth, ok := s.ranker.nth(s.cfg.NBest); ok && nth < limit {
			limit = nth
		}
	}
	return limit
}

func (s *search) push(n *searchNode) {
	if n.weight > s.limit() {
		return
	}
	key := seenKey{
		mutatorState: n.mutatorState,
		lexiconState: n.lexiconState,
		pos:          n.pos,
		flags:        flagKey(n.flags),
	}
	if w, ok := s.seen[key]; ok && n.weight >= w {
		return
	}
	s.seen[key] = n.weight
	n.seq = s.seq
	s.seq++
	heap.Push(&s.frontier, n)
}

// lexiconEpsilons advances the lexicon alone over its epsilon and flag
// transitions, leaving the error model in place.
func (s *search) lexiconEpsilons(n *searchNode) {
	lexicon := s.speller.lexicon
	if !lexicon.HasEpsilonsOrFlags(n.lexiconState + 1) {
		return
	}
	idx, ok := lexicon.Next(n.lexiconState, transducer.Epsilon)
	if !ok {
		return
	}
	alphabet := lexicon.Alphabet()
	for {
		trans, ok := lexicon.TakeEpsilonsAndFlags(idx)
		if !ok {
			break
		}
		idx++

		child := &searchNode{
			mutatorState: n.mutatorState,
			lexiconState: trans.Target,
			pos:          n.pos,
			weight:       n.weight + trans.Weight,
			flags:        n.flags,
			output:       n.output,
			epsSteps:     n.epsSteps + 1,
		}
		if trans.Input != transducer.Epsilon {
			op, _ := alphabet.FlagSpec(trans.Input)
			next, pass := n.flags.Apply(op)
			if !pass {
				continue
			}
			child.flags = next
		} else if trans.Output != transducer.Epsilon {
			child.output = appendOutput(n.output, trans.Output)
		}
		s.push(child)
	}
}

// mutatorEpsilons advances the error model without consuming input. An
// epsilon output moves only the error model; a produced symbol is an
// insertion the lexicon must accept.
func (s *search) mutatorEpsilons(n *searchNode) {
	mutator := s.speller.mutator
	if !mutator.HasTransitions(n.mutatorState+1, transducer.Epsilon) {
		return
	}
	idx, ok := mutator.Next(n.mutatorState, transducer.Epsilon)
	if !ok {
		return
	}
	for {
		trans, ok := mutator.TakeEpsilons(idx)
		if !ok {
			break
		}
		idx++

		if trans.Output == transducer.Epsilon {
			s.push(&searchNode{
				mutatorState: trans.Target,
				lexiconState: n.lexiconState,
				pos:          n.pos,
				weight:       n.weight + trans.Weight,
				flags:        n.flags,
				output:       n.output,
				epsSteps:     n.epsSteps + 1,
			})
			continue
		}
		s.feedLexicon(n, trans.Target, trans.Weight, trans.Output, n.pos, n.epsSteps+1)
	}
}

// consumeInput advances the error model over the next input symbol. An
// epsilon output is a deletion; a produced symbol must be matched by the
// lexicon, which covers identity and substitution alike.
func (s *search) consumeInput(n *searchNode) {
	if n.pos >= len(s.input) {
		return
	}
	mutator := s.speller.mutator
	sym := s.input[n.pos]
	if !mutator.HasTransitions(n.mutatorState+1, sym) {
		return
	}
	idx, ok := mutator.Next(n.mutatorState, sym)
	if !ok {
		return
	}
	for {
		trans, ok := mutator.TakeNonEpsilons(idx, sym)
		if !ok {
			break
		}
		idx++

		if trans.Output == transducer.Epsilon {
			s.push(&searchNode{
				mutatorState: trans.Target,
				lexiconState: n.lexiconState,
				pos:          n.pos + 1,
				weight:       n.weight + trans.Weight,
				flags:        n.flags,
				output:       n.output,
			})
			continue
		}
		s.feedLexicon(n, trans.Target, trans.Weight, trans.Output, n.pos+1, 0)
	}
}

// feedLexicon matches one symbol produced by the error model against the
// lexicon. The symbol arrives in the error model's id space and is
// translated first; symbols the on-disk lexicon never saw go through its
// identity transitions and surface as themselves in the output.
func (s *search) feedLexicon(n *searchNode, mutatorTarget transducer.TableIndex, mutatorWeight transducer.Weight, produced transducer.SymbolNumber, nextPos, nextEps int) {
	lexicon := s.speller.lexicon
	alphabet := lexicon.Alphabet()

	lexSym := produced
	if int(produced) < len(s.speller.translator) {
		lexSym = s.speller.translator[produced]
	}

	matchSym := lexSym
	if lexSym >= alphabet.InitialSymbolCount() {
		identity, ok := alphabet.Identity()
		if !ok {
			return
		}
		matchSym = identity
	}

	if !lexicon.HasTransitions(n.lexiconState+1, matchSym) {
		return
	}
	idx, ok := lexicon.Next(n.lexiconState, matchSym)
	if !ok {
		return
	}
	for {
		trans, ok := lexicon.TakeNonEpsilons(idx, matchSym)
		if !ok {
			break
		}
		idx++

		out := trans.Output
		if out == matchSym && matchSym != lexSym {
			// Identity pass-through surfaces the concrete symbol.
			out = lexSym
		}
		child := &searchNode{
			mutatorState: mutatorTarget,
			lexiconState: trans.Target,
			pos:          nextPos,
			weight:       n.weight + mutatorWeight + trans.Weight,
			flags:        n.flags,
			output:       n.output,
			epsSteps:     nextEps,
		}
		if out != transducer.Epsilon {
			child.output = appendOutput(n.output, out)
		}
		s.push(child)
	}
}

func (s *search) render(output []transducer.SymbolNumber) string {
	alphabet := s.speller.lexicon.Alphabet()
	var b strings.Builder
	for _, sym := range output {
		b.WriteString(alphabet.SymbolFor(sym))
	}
	return b.String()
}

// appendOutput copies before appending; sibling nodes share the parent's
// slice.
func appendOutput(output []transducer.SymbolNumber, sym transducer.SymbolNumber) []transducer.SymbolNumber {
	out := make([]transducer.SymbolNumber, len(output), len(output)+1)
	copy(out, output)
	return append(out, sym)
}
