package speller

import (
	"sort"

	"github.com/albbas/divvunspell/pkg/transducer"
)

// Suggestion is one correction candidate with its total path weight, lexicon
// and error-model contributions summed.
type Suggestion struct {
	Value  string
	Weight transducer.Weight
}

// ranker deduplicates candidates as the search emits them and produces the
// final ordering: ascending weight, discovery order breaking ties. Collected
// weights are mirrored in an ordered slice so the search can read its best
// and n-th best bounds without re-sorting on every frontier push.
type ranker struct {
	order   []Suggestion
	index   map[string]int
	weights []transducer.Weight
}

func newRanker() *ranker {
	return &ranker{index: make(map[string]int)}
}

// collect records a candidate, keeping the minimum weight per surface form.
func (r *ranker) collect(value string, weight transducer.Weight) {
	if i, ok := r.index[value]; ok {
		if weight < r.order[i].Weight {
			r.dropWeight(r.order[i].Weight)
			r.insertWeight(weight)
			r.order[i].Weight = weight
		}
		return
	}
	r.index[value] = len(r.order)
	r.order = append(r.order, Suggestion{Value: value, Weight: weight})
	r.insertWeight(weight)
}

func (r *ranker) insertWeight(w transducer.Weight) {
	i := sort.Search(len(r.weights), func(i int) bool { return r.weights[i] >= w })
	r.weights = append(r.weights, 0)
	copy(r.weights[i+1:], r.weights[i:])
	r.weights[i] = w
}

func (r *ranker) dropWeight(w transducer.Weight) {
	i := sort.Search(len(r.weights), func(i int) bool { return r.weights[i] >= w })
	if i < len(r.weights) && r.weights[i] == w {
		r.weights = append(r.weights[:i], r.weights[i+1:]...)
	}
}

// best returns the lowest weight collected so far.
func (r *ranker) best() (transducer.Weight, bool) {
	if len(r.weights) == 0 {
		return 0, false
	}
	return r.weights[0], true
}

// nth returns the n-th lowest candidate weight, counting distinct surface
// forms, once at least n have been collected.
func (r *ranker) nth(n int) (transducer.Weight, bool) {
	if n <= 0 || len(r.weights) < n {
		return 0, false
	}
	return r.weights[n-1], true
}

// finish applies the beam filter around the best candidate, sorts stably by
// weight and truncates to nBest. Zero bounds disable the respective step.
func (r *ranker) finish(beam transducer.Weight, nBest int) []Suggestion {
	out := r.order
	if beam > 0 {
		if best, ok := r.best(); ok {
			kept := out[:0:0]
			for _, s := range out {
				if s.Weight <= best+beam {
					kept = append(kept, s)
				}
			}
			out = kept
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight < out[j].Weight })
	if nBest > 0 && len(out) > nBest {
		out = out[:nBest]
	}
	return out
}
