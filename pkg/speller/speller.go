/*
Package speller answers "is this word correct" and "what was probably meant"
over a pair of weighted transducers: a lexicon accepting the language's
words and an error model mapping misspellings to corrections.

Suggestion search walks both transducers in lock step behind a weight-ordered
frontier, so cheap corrections surface before expensive ones and the search
can stop as soon as the configured bounds prove nothing better remains.
*/
package speller

import (
	"context"

	"github.com/albbas/divvunspell/pkg/tokenizer"
	"github.com/albbas/divvunspell/pkg/transducer"
)

// Speller is a session over one lexicon and one error model. It is safe for
// concurrent use; each call runs its own search over the shared read-only
// transducers.
type Speller struct {
	mutator    transducer.Transducer
	lexicon    transducer.Transducer
	translator []transducer.SymbolNumber
	accepted   *acceptCache
}

// New builds a speller. The lexicon's alphabet is extended with any error
// model symbols it lacks, so the two id spaces translate cleanly during
// search. Both transducers must stay open for the speller's lifetime.
func New(mutator, lexicon transducer.Transducer) *Speller {
	return &Speller{
		mutator:    mutator,
		lexicon:    lexicon,
		translator: lexicon.Alphabet().TranslatorFrom(mutator.Alphabet()),
		accepted:   newAcceptCache(defaultCacheSize),
	}
}

// Lexicon returns the lexicon transducer.
func (s *Speller) Lexicon() transducer.Transducer { return s.lexicon }

// Mutator returns the error model transducer.
func (s *Speller) Mutator() transducer.Transducer { return s.mutator }

// IsCorrect reports whether the lexicon accepts word under any of its
// casing variants. Results are cached per surface form.
func (s *Speller) IsCorrect(word string) bool {
	if correct, ok := s.accepted.lookup(word); ok {
		return correct
	}
	correct := false
	for _, variant := range tokenizer.WordVariants(word) {
		if transducer.Accepts(s.lexicon, variant, transducer.DefaultEpsilonLimit) {
			correct = true
			break
		}
	}
	s.accepted.store(word, correct)
	return correct
}

// Suggest returns corrections for word under the default bounds, best first.
func (s *Speller) Suggest(word string) []Suggestion {
	suggestions, _ := s.SuggestWithConfig(context.Background(), word, DefaultConfig())
	return suggestions
}

// SuggestWithConfig returns corrections for word, best first. Weight orders
// the result; equal weights keep discovery order, so repeated calls return
// identical slices. On cancellation the candidates found so far come back
// with ErrCancelled.
func (s *Speller) SuggestWithConfig(ctx context.Context, word string, cfg Config) ([]Suggestion, error) {
	variants := []string{word}
	if cfg.CaseHandling {
		variants = tokenizer.WordVariants(word)
	}

	merged := newRanker()
	for i, variant := range variants {
		sr := &search{
			speller: s,
			cfg:     cfg,
			ranker:  newRanker(),
			seen:    make(map[seenKey]transducer.Weight),
		}
		input, ok := s.inputSymbols(variant)
		if !ok {
			continue
		}
		sr.input = input

		err := sr.run(ctx)
		for _, sug := range sr.ranker.order {
			value := sug.Value
			if cfg.CaseHandling && i > 0 {
				value = tokenizer.MatchCase(word, value)
			}
			merged.collect(value, sug.Weight)
		}
		if err != nil {
			return merged.finish(cfg.Beam, cfg.NBest), err
		}
	}
	return merged.finish(cfg.Beam, cfg.NBest), nil
}

// inputSymbols maps word into the error model's symbol space. Runes the
// error model has no symbol for fall back to its unknown symbol; without
// one the word cannot be driven through the model at all.
func (s *Speller) inputSymbols(word string) ([]transducer.SymbolNumber, bool) {
	alphabet := s.mutator.Alphabet()
	input := make([]transducer.SymbolNumber, 0, len(word))
	for _, r := range word {
		sym, ok := alphabet.IDFor(string(r))
		if !ok {
			sym, ok = alphabet.Unknown()
			if !ok {
				return nil, false
			}
		}
		input = append(input, sym)
	}
	return input, true
}
