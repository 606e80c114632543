package speller

import "github.com/albbas/divvunspell/pkg/transducer"

// Config bounds one suggestion search. The zero value of a field means the
// bound is off, except EpsilonLimit which falls back to the package default.
type Config struct {
	// NBest caps the number of suggestions returned.
	NBest int
	// MaxWeight is an absolute cap on candidate weight.
	MaxWeight transducer.Weight
	// Beam keeps only candidates within this slack above the best one found.
	Beam transducer.Weight
	// CaseHandling enables casing variants on lookup and re-casing of
	// suggestions to match the input word.
	CaseHandling bool
	// EpsilonLimit bounds consecutive epsilon or flag steps on one branch.
	EpsilonLimit int
}

// DefaultConfig returns the bounds used by Suggest.
func DefaultConfig() Config {
	return Config{
		NBest:        10,
		MaxWeight:    0,
		Beam:         0,
		CaseHandling: true,
		EpsilonLimit: transducer.DefaultEpsilonLimit,
	}
}

func (c Config) epsilonLimit() int {
	if c.EpsilonLimit <= 0 {
		return transducer.DefaultEpsilonLimit
	}
	return c.EpsilonLimit
}
