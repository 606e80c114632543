package tokenizer

import (
	"reflect"
	"testing"
)

func TestWordBounds(t *testing.T) {
	testCases := []struct {
		text        string
		want        []WordBound
		description string
	}{
		{
			"sámi don't ČÁLLIT",
			[]WordBound{{0, "sámi"}, {6, "don't"}, {12, "ČÁLLIT"}},
			"multibyte runes keep byte offsets",
		},
		{
			"one, two; three.",
			[]WordBound{{0, "one"}, {5, "two"}, {10, "three"}},
			"punctuation separates tokens",
		},
		{
			"e-mail",
			[]WordBound{{0, "e-mail"}},
			"hyphen joins word runes",
		},
		{
			"don'.",
			[]WordBound{{0, "don"}},
			"joiner needs a word rune on both sides",
		},
		{
			"  \t\n",
			nil,
			"whitespace only",
		},
		{
			"x",
			[]WordBound{{0, "x"}},
			"single rune word",
		},
	}

	for _, tc := range testCases {
		got := WordBounds(tc.text)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: WordBounds(%q) = %v, want %v", tc.description, tc.text, got, tc.want)
		}
	}
}

func TestWords(t *testing.T) {
	got := Words("the quick brown fox")
	want := []string{"the", "quick", "brown", "fox"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words = %v, want %v", got, want)
	}
}

func TestCaseClassification(t *testing.T) {
	testCases := []struct {
		word      string
		allCaps   bool
		firstCaps bool
	}{
		{"NASA", true, false},
		{"Oslo", false, true},
		{"oslo", false, false},
		{"hEllo", false, false},
		{"ÁBC", true, false},
		{"Áb", false, true},
		{"123", false, false},
		{"", false, false},
	}

	for _, tc := range testCases {
		if got := IsAllCaps(tc.word); got != tc.allCaps {
			t.Errorf("IsAllCaps(%q) = %v, want %v", tc.word, got, tc.allCaps)
		}
		if got := IsFirstCaps(tc.word); got != tc.firstCaps {
			t.Errorf("IsFirstCaps(%q) = %v, want %v", tc.word, got, tc.firstCaps)
		}
	}
}

func TestWordVariants(t *testing.T) {
	testCases := []struct {
		word string
		want []string
	}{
		{"cat", []string{"cat"}},
		{"Cat", []string{"Cat", "cat"}},
		{"CAT", []string{"CAT", "Cat", "cat"}},
		{"cAt", []string{"cAt"}},
	}

	for _, tc := range testCases {
		if got := WordVariants(tc.word); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("WordVariants(%q) = %v, want %v", tc.word, got, tc.want)
		}
	}
}

func TestMatchCase(t *testing.T) {
	testCases := []struct {
		original   string
		suggestion string
		want       string
	}{
		{"Kot", "cat", "Cat"},
		{"KOT", "cat", "CAT"},
		{"kot", "cat", "cat"},
		{"kOt", "cat", "cat"},
		{"Áigi", "áigi", "Áigi"},
	}

	for _, tc := range testCases {
		if got := MatchCase(tc.original, tc.suggestion); got != tc.want {
			t.Errorf("MatchCase(%q, %q) = %q, want %q", tc.original, tc.suggestion, got, tc.want)
		}
	}
}
