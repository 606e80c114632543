// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/albbas/divvunspell/pkg/speller"
)

// InputHandler processes words from stdin, reporting correctness and
// suggestions. It accepts bounds that control the search such as the
// suggestion limit, beam width and maximum weight.
type InputHandler struct {
	speller    *speller.Speller
	searchCfg  speller.Config
	maxWordLen int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(sp *speller.Speller, searchCfg speller.Config, maxWordLen int) *InputHandler {
	return &InputHandler{
		speller:    sp,
		searchCfg:  searchCfg,
		maxWordLen: maxWordLen,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to the handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("divvunspell CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a word and press Enter to check it (Ctrl+C to exit):")

	for {
		log.Print("> ")
		word, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		h.handleInput(word)
	}
}

// handleInput checks a single word and prints suggestions when it is
// misspelled. Results are formatted and printed to the log.
func (h *InputHandler) handleInput(word string) {
	if h.maxWordLen > 0 && len(word) > h.maxWordLen {
		log.Errorf("Word too long: %s", word)
		return
	}

	start := time.Now()
	if h.speller.IsCorrect(word) {
		elapsed := time.Since(start)
		log.Debugf("Took [ %v ] for word '%s'", elapsed, word)
		log.Printf("'%s' is correct", word)
		return
	}

	suggestions, err := h.speller.SuggestWithConfig(context.Background(), word, h.searchCfg)
	if err != nil {
		log.Warnf("Search for '%s' stopped early: %v", word, err)
	}
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for word '%s'", elapsed, word)

	if len(suggestions) == 0 {
		log.Warnf("No suggestions found for '%s'", word)
		return
	}

	log.Printf("'%s' is misspelled, %d suggestions:", word, len(suggestions))
	for i, s := range suggestions {
		clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", s.Value)
		log.Printf("%2d. %-40s (weight: %8.2f)", i+1, clWord, s.Weight)
	}
}
