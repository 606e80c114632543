package speller

import (
	"context"
	"errors"
	"testing"

	"github.com/albbas/divvunspell/internal/fstbuild"
	"github.com/albbas/divvunspell/pkg/transducer"
)

func load(t testing.TB, buf []byte) *transducer.HfstTransducer {
	t.Helper()
	tr, err := transducer.FromBytes(buf)
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	return tr
}

// catLexicon accepts exactly "cat", "bat" and "rat" at weight 0.
func catLexicon(t testing.TB) *transducer.HfstTransducer {
	b := fstbuild.New("c", "a", "t", "b", "r")
	b.Arc(0, 1, "c", "c", 0)
	b.Arc(0, 2, "b", "b", 0)
	b.Arc(0, 3, "r", "r", 0)
	for i, from := range []int{1, 2, 3} {
		mid := 4 + i
		b.Arc(from, mid, "a", "a", 0)
		b.Arc(mid, 7, "t", "t", 0)
	}
	b.Final(7, 0)
	return load(t, b.Build())
}

// editModel passes every known symbol through at weight 0 and prices a few
// substitutions: o->a at 1, c->b at 1, c->r at 2.
func editModel(t testing.TB) *transducer.HfstTransducer {
	symbols := []string{"c", "a", "t", "o", "b", "r"}
	b := fstbuild.New(symbols...)
	for _, s := range symbols {
		b.Arc(0, 0, s, s, 0)
	}
	b.Arc(0, 0, "o", "a", 1.0)
	b.Arc(0, 0, "c", "b", 1.0)
	b.Arc(0, 0, "c", "r", 2.0)
	b.Final(0, 0)
	return load(t, b.Build())
}

func TestSuggestSingleSubstitution(t *testing.T) {
	sp := New(editModel(t), catLexicon(t))

	cfg := DefaultConfig()
	cfg.NBest = 5
	cfg.MaxWeight = 1.5
	suggestions, err := sp.SuggestWithConfig(context.Background(), "cot", cfg)
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}

	if len(suggestions) != 1 {
		t.Fatalf("Suggest(\"cot\") = %v, want exactly [cat]", suggestions)
	}
	if suggestions[0].Value != "cat" || suggestions[0].Weight != 1.0 {
		t.Errorf("Suggest(\"cot\") = %+v, want {cat 1}", suggestions[0])
	}
}

func TestSuggestOrderingAndNBest(t *testing.T) {
	sp := New(editModel(t), catLexicon(t))

	// "cat" is reachable as itself (0), as "bat" (1) and as "rat" (2).
	cfg := DefaultConfig()
	suggestions, err := sp.SuggestWithConfig(context.Background(), "cat", cfg)
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}
	want := []Suggestion{{"cat", 0}, {"bat", 1}, {"rat", 2}}
	if len(suggestions) != len(want) {
		t.Fatalf("Suggest(\"cat\") = %v, want %v", suggestions, want)
	}
	for i := range want {
		if suggestions[i] != want[i] {
			t.Errorf("suggestion %d = %+v, want %+v", i, suggestions[i], want[i])
		}
	}

	cfg.NBest = 2
	suggestions, err = sp.SuggestWithConfig(context.Background(), "cat", cfg)
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}
	if len(suggestions) != 2 || suggestions[0].Value != "cat" || suggestions[1].Value != "bat" {
		t.Errorf("NBest=2 gave %v, want [cat bat]", suggestions)
	}
}

func TestSuggestBeamAndMaxWeight(t *testing.T) {
	sp := New(editModel(t), catLexicon(t))

	cfg := DefaultConfig()
	cfg.Beam = 1.5
	suggestions, err := sp.SuggestWithConfig(context.Background(), "cat", cfg)
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}
	if len(suggestions) != 2 {
		t.Errorf("beam 1.5 above best 0 should keep [cat bat], got %v", suggestions)
	}

	cfg = DefaultConfig()
	cfg.MaxWeight = 0.5
	suggestions, err = sp.SuggestWithConfig(context.Background(), "cat", cfg)
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Value != "cat" {
		t.Errorf("max weight 0.5 should keep only cat, got %v", suggestions)
	}
}

func TestSuggestBeamWideningIsMonotone(t *testing.T) {
	sp := New(editModel(t), catLexicon(t))

	narrowCfg := DefaultConfig()
	narrowCfg.Beam = 1.0
	wideCfg := DefaultConfig()
	wideCfg.Beam = 2.5

	narrow, err := sp.SuggestWithConfig(context.Background(), "cat", narrowCfg)
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}
	wide, err := sp.SuggestWithConfig(context.Background(), "cat", wideCfg)
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}

	if len(wide) < len(narrow) {
		t.Fatalf("widening the beam lost candidates: %v -> %v", narrow, wide)
	}
	for i, s := range narrow {
		if wide[i] != s {
			t.Errorf("wide beam changed candidate %d: %+v vs %+v", i, wide[i], s)
		}
	}
}

func TestSuggestDedupeKeepsMinimum(t *testing.T) {
	// A redundant priced identity arc gives a second, heavier path to the
	// same surface form.
	symbols := []string{"c", "a", "t"}
	b := fstbuild.New(symbols...)
	for _, s := range symbols {
		b.Arc(0, 0, s, s, 0)
	}
	b.Arc(0, 0, "a", "a", 2.0)
	b.Final(0, 0)
	mutator := load(t, b.Build())

	sp := New(mutator, catLexicon(t))
	suggestions, err := sp.SuggestWithConfig(context.Background(), "cat", DefaultConfig())
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}
	count := 0
	for _, s := range suggestions {
		if s.Value == "cat" {
			count++
			if s.Weight != 0 {
				t.Errorf("duplicate surface form kept weight %v, want the minimum 0", s.Weight)
			}
		}
	}
	if count != 1 {
		t.Errorf("surface form \"cat\" appears %d times, want once", count)
	}
}

func TestRankerBoundsTrackCollectedWeights(t *testing.T) {
	r := newRanker()

	if _, ok := r.best(); ok {
		t.Error("empty ranker must report no best weight")
	}
	if _, ok := r.nth(1); ok {
		t.Error("empty ranker must report no n-th weight")
	}

	r.collect("rat", 2.0)
	r.collect("bat", 1.0)
	r.collect("cat", 3.0)

	if best, _ := r.best(); best != 1.0 {
		t.Errorf("best = %v, want 1.0", best)
	}
	if nth, ok := r.nth(3); !ok || nth != 3.0 {
		t.Errorf("nth(3) = (%v, %v), want (3.0, true)", nth, ok)
	}
	if _, ok := r.nth(4); ok {
		t.Error("nth(4) must report false with three candidates collected")
	}

	// A cheaper path to a known form moves its weight, not its identity.
	r.collect("cat", 0.5)
	if best, _ := r.best(); best != 0.5 {
		t.Errorf("best after keep-min update = %v, want 0.5", best)
	}
	if nth, _ := r.nth(3); nth != 2.0 {
		t.Errorf("nth(3) after keep-min update = %v, want 2.0", nth)
	}

	// A heavier duplicate changes nothing.
	r.collect("bat", 5.0)
	if nth, _ := r.nth(3); nth != 2.0 {
		t.Errorf("nth(3) after heavier duplicate = %v, want 2.0", nth)
	}

	got := r.finish(0, 0)
	want := []Suggestion{{"cat", 0.5}, {"bat", 1.0}, {"rat", 2.0}}
	if len(got) != len(want) {
		t.Fatalf("finish returned %d suggestions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("finish[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSuggestInsertionAndDeletion(t *testing.T) {
	symbols := []string{"c", "a", "t"}
	b := fstbuild.New(symbols...)
	for _, s := range symbols {
		b.Arc(0, 0, s, s, 0)
	}
	b.Arc(0, 0, "", "a", 1.0)
	b.Arc(0, 0, "a", "", 1.0)
	b.Final(0, 0)
	mutator := load(t, b.Build())
	sp := New(mutator, catLexicon(t))

	testCases := []struct {
		word        string
		weight      float32
		description string
	}{
		{"ct", 1.0, "missing letter recovered by insertion"},
		{"caat", 1.0, "doubled letter recovered by deletion"},
	}
	for _, tc := range testCases {
		suggestions, err := sp.SuggestWithConfig(context.Background(), tc.word, DefaultConfig())
		if err != nil {
			t.Fatalf("%s: %v", tc.description, err)
		}
		found := false
		for _, s := range suggestions {
			if s.Value == "cat" {
				found = true
				if s.Weight != tc.weight {
					t.Errorf("%s: weight %v, want %v", tc.description, s.Weight, tc.weight)
				}
			}
		}
		if !found {
			t.Errorf("%s: %q did not yield \"cat\": %v", tc.description, tc.word, suggestions)
		}
	}
}

func TestSuggestSumsFinalWeights(t *testing.T) {
	lb := fstbuild.New("c", "a", "t")
	lb.Arc(0, 1, "c", "c", 0)
	lb.Arc(1, 2, "a", "a", 0)
	lb.Arc(2, 3, "t", "t", 0)
	lb.Final(3, 0.5)
	lexicon := load(t, lb.Build())

	symbols := []string{"c", "a", "t", "o"}
	mb := fstbuild.New(symbols...)
	for _, s := range symbols {
		mb.Arc(0, 0, s, s, 0)
	}
	mb.Arc(0, 0, "o", "a", 1.0)
	mb.Final(0, 0.25)
	mutator := load(t, mb.Build())

	sp := New(mutator, lexicon)
	suggestions, err := sp.SuggestWithConfig(context.Background(), "cot", DefaultConfig())
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Weight != 1.75 {
		t.Errorf("Suggest(\"cot\") = %v, want [cat 1.75] with both final weights summed", suggestions)
	}
}

func TestSuggestHonorsLexiconFlags(t *testing.T) {
	lb := fstbuild.New("c", "a", "t", "@P.X.Y@", "@R.X.Y@")
	lb.Arc(0, 1, "@P.X.Y@", "", 0)
	lb.Arc(1, 2, "c", "c", 0)
	lb.Arc(2, 3, "a", "a", 0)
	lb.Arc(3, 4, "t", "t", 0)
	lb.Arc(4, 5, "@R.X.Y@", "", 0)
	lb.Final(5, 0)
	lexicon := load(t, lb.Build())

	sp := New(editModel(t), lexicon)
	suggestions, err := sp.SuggestWithConfig(context.Background(), "cot", DefaultConfig())
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Value != "cat" {
		t.Errorf("flag-gated path should pass, got %v", suggestions)
	}

	// Without the setter the requirement blocks every path.
	lb2 := fstbuild.New("c", "a", "t", "@R.X.Y@")
	lb2.Arc(0, 1, "c", "c", 0)
	lb2.Arc(1, 2, "a", "a", 0)
	lb2.Arc(2, 3, "t", "t", 0)
	lb2.Arc(3, 4, "@R.X.Y@", "", 0)
	lb2.Final(4, 0)
	blocked := New(editModel(t), load(t, lb2.Build()))

	suggestions, err = blocked.SuggestWithConfig(context.Background(), "cot", DefaultConfig())
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}
	if len(suggestions) != 0 {
		t.Errorf("unsatisfied requirement must block all candidates, got %v", suggestions)
	}
}

func TestSuggestSurvivesEpsilonCycles(t *testing.T) {
	lb := fstbuild.New("c", "a", "t")
	lb.Arc(0, 0, "", "", 0)
	lb.Arc(0, 1, "c", "c", 0)
	lb.Arc(1, 2, "a", "a", 0)
	lb.Arc(2, 3, "t", "t", 0)
	lb.Final(3, 0)
	lexicon := load(t, lb.Build())

	sp := New(editModel(t), lexicon)
	suggestions, err := sp.SuggestWithConfig(context.Background(), "cot", DefaultConfig())
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Value != "cat" {
		t.Errorf("epsilon self-loop must not block the search, got %v", suggestions)
	}
}

func TestSuggestDeterministic(t *testing.T) {
	sp := New(editModel(t), catLexicon(t))
	first, err := sp.SuggestWithConfig(context.Background(), "cat", DefaultConfig())
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := sp.SuggestWithConfig(context.Background(), "cat", DefaultConfig())
		if err != nil {
			t.Fatalf("SuggestWithConfig: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d returned %v, first run returned %v", i, again, first)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d differs at %d: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestSuggestCancellation(t *testing.T) {
	sp := New(editModel(t), catLexicon(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sp.SuggestWithConfig(ctx, "cot", DefaultConfig())
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("cancelled context returned %v, want ErrCancelled", err)
	}
}

func TestIsCorrectCaseVariants(t *testing.T) {
	sp := New(editModel(t), catLexicon(t))

	testCases := []struct {
		word        string
		correct     bool
		description string
	}{
		{"cat", true, "exact lexicon word"},
		{"Cat", true, "sentence-initial casing"},
		{"CAT", true, "all caps"},
		{"cot", false, "misspelling"},
		{"cAt", false, "mixed casing is not a recognized variant"},
	}
	for _, tc := range testCases {
		if got := sp.IsCorrect(tc.word); got != tc.correct {
			t.Errorf("%s: IsCorrect(%q) = %v, want %v", tc.description, tc.word, got, tc.correct)
		}
		// Second call hits the verdict cache.
		if got := sp.IsCorrect(tc.word); got != tc.correct {
			t.Errorf("%s: cached IsCorrect(%q) = %v, want %v", tc.description, tc.word, got, tc.correct)
		}
	}
}

func TestSuggestRecasesToMatchInput(t *testing.T) {
	sp := New(editModel(t), catLexicon(t))

	suggestions, err := sp.SuggestWithConfig(context.Background(), "Cot", DefaultConfig())
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}
	if len(suggestions) == 0 || suggestions[0].Value != "Cat" {
		t.Errorf("Suggest(\"Cot\") = %v, want Cat first", suggestions)
	}

	suggestions, err = sp.SuggestWithConfig(context.Background(), "COT", DefaultConfig())
	if err != nil {
		t.Fatalf("SuggestWithConfig: %v", err)
	}
	if len(suggestions) == 0 || suggestions[0].Value != "CAT" {
		t.Errorf("Suggest(\"COT\") = %v, want CAT first", suggestions)
	}
}

func BenchmarkSuggest(b *testing.B) {
	sp := New(editModel(b), catLexicon(b))
	cfg := DefaultConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sp.SuggestWithConfig(context.Background(), "cot", cfg); err != nil {
			b.Fatal(err)
		}
	}
}
