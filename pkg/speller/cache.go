package speller

import (
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"
)

const defaultCacheSize = 8192

// acceptCache memoizes IsCorrect verdicts per surface form. Checked words
// repeat heavily in running text, and a trie keeps the shared prefixes of a
// morphology-rich vocabulary compact.
type acceptCache struct {
	mu      sync.RWMutex
	trie    *patricia.Trie
	entries int
	max     int
}

func newAcceptCache(max int) *acceptCache {
	return &acceptCache{trie: patricia.NewTrie(), max: max}
}

func (c *acceptCache) lookup(word string) (correct, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item := c.trie.Get(patricia.Prefix(word))
	if item == nil {
		return false, false
	}
	return item.(bool), true
}

func (c *acceptCache) store(word string, correct bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries >= c.max {
		// Wholesale reset when full; verdicts are cheap to recompute.
		c.trie = patricia.NewTrie()
		c.entries = 0
	}
	if c.trie.Insert(patricia.Prefix(word), correct) {
		c.entries++
	}
}
