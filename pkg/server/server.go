package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/albbas/divvunspell/internal/logger"
	"github.com/albbas/divvunspell/internal/userdict"
	"github.com/albbas/divvunspell/pkg/config"
	"github.com/albbas/divvunspell/pkg/speller"
)

// Server handles the IPC for spell checking
type Server struct {
	speller  *speller.Speller
	userDict *userdict.UserDict
	cfg      *config.Config
	log      *log.Logger

	decoder *msgpack.Decoder
	encoder *msgpack.Encoder
}

// NewServer creates a spell-check server using stdin/stdout for IPC. The
// user dictionary may be nil when no backend is configured.
func NewServer(sp *speller.Speller, ud *userdict.UserDict, cfg *config.Config) *Server {
	return &Server{
		speller:  sp,
		userDict: ud,
		cfg:      cfg,
		log:      logger.Default("ipc"),
		decoder:  msgpack.NewDecoder(os.Stdin),
		encoder:  msgpack.NewEncoder(os.Stdout),
	}
}

// Start begins listening for IPC requests. It returns on EOF or when ctx
// is cancelled between requests.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting server.")

	// Signal that the server is ready
	s.send(StatusResponse{Status: "ready"})

	for {
		if ctx.Err() != nil {
			return nil
		}
		var request Request
		if err := s.decoder.Decode(&request); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			continue
		}
		s.handleRequest(ctx, request)
	}
}

// handleRequest dispatches on the op field
func (s *Server) handleRequest(ctx context.Context, request Request) {
	switch request.Op {
	case "check":
		s.handleCheck(ctx, request)
	case "suggest":
		s.handleSuggest(ctx, request)
	case "add_word":
		s.handleAddWord(ctx, request)
	case "remove_word":
		s.handleRemoveWord(ctx, request)
	case "list_words":
		s.handleListWords(ctx, request)
	case "health":
		s.send(StatusResponse{ID: request.ID, Status: "ok"})
	default:
		s.sendError(request.ID, fmt.Sprintf("Unknown op: %s", request.Op), 400)
	}
}

func (s *Server) validWord(request Request) bool {
	if request.Word == "" {
		s.sendError(request.ID, "Missing 'w' parameter", 400)
		s.log.Debug("Word is empty in request")
		return false
	}
	if max := s.cfg.Server.MaxWordLen; max > 0 && len(request.Word) > max {
		s.sendError(request.ID, fmt.Sprintf("Word exceeds maximum length of %d bytes", max), 400)
		s.log.Debug("Word is too long in request")
		return false
	}
	return true
}

// handleCheck answers correctness. Words in the user dictionary count as
// correct before the lexicon is consulted.
func (s *Server) handleCheck(ctx context.Context, request Request) {
	if !s.validWord(request) {
		return
	}

	start := time.Now()
	correct := false
	if s.userDict != nil {
		var err error
		correct, err = s.userDict.Contains(ctx, request.Word)
		if err != nil {
			s.log.Warnf("User dictionary lookup failed: %v", err)
			correct = false
		}
	}
	if !correct {
		correct = s.speller.IsCorrect(request.Word)
	}

	s.send(CheckResponse{
		ID:        request.ID,
		Correct:   correct,
		TimeTaken: time.Since(start).Milliseconds(),
	})
}

// handleSuggest runs a bounded suggestion search under the configured
// timeout. A timed-out search still answers with whatever it found.
func (s *Server) handleSuggest(ctx context.Context, request Request) {
	if !s.validWord(request) {
		return
	}

	searchCfg := speller.Config{
		NBest:        s.cfg.Speller.NBest,
		MaxWeight:    float32(s.cfg.Speller.MaxWeight),
		Beam:         float32(s.cfg.Speller.Beam),
		CaseHandling: s.cfg.Speller.CaseHandling,
		EpsilonLimit: s.cfg.Speller.EpsilonLimit,
	}
	if request.Limit > 0 {
		searchCfg.NBest = request.Limit
	}
	if max := s.cfg.Server.MaxNBest; max > 0 && searchCfg.NBest > max {
		searchCfg.NBest = max
	}
	if request.Beam > 0 {
		searchCfg.Beam = float32(request.Beam)
	}
	if request.MaxWeight > 0 {
		searchCfg.MaxWeight = float32(request.MaxWeight)
	}

	if timeout := s.cfg.Server.TimeoutMS; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Millisecond)
		defer cancel()
	}

	start := time.Now()
	suggestions, err := s.speller.SuggestWithConfig(ctx, request.Word, searchCfg)
	elapsed := time.Since(start)
	incomplete := false
	if err != nil {
		if !errors.Is(err, speller.ErrCancelled) {
			s.sendError(request.ID, "Suggestion search failed", 500)
			s.log.Errorf("Suggesting for %q: %v", request.Word, err)
			return
		}
		incomplete = true
		s.log.Debugf("Suggestion search for %q cancelled after %v", request.Word, elapsed)
	}

	entries := make([]SuggestEntry, len(suggestions))
	for i, sug := range suggestions {
		entries[i] = SuggestEntry{Word: sug.Value, Weight: float64(sug.Weight)}
	}

	s.send(SuggestResponse{
		ID:          request.ID,
		Suggestions: entries,
		Count:       len(entries),
		Incomplete:  incomplete,
		TimeTaken:   elapsed.Milliseconds(),
	})
}

func (s *Server) handleAddWord(ctx context.Context, request Request) {
	if !s.validWord(request) {
		return
	}
	if s.userDict == nil {
		s.sendError(request.ID, "No user dictionary configured", 501)
		return
	}
	if err := s.userDict.Add(ctx, request.Word); err != nil {
		s.sendError(request.ID, "Adding word failed", 500)
		s.log.Errorf("Adding %q to user dictionary: %v", request.Word, err)
		return
	}
	s.send(StatusResponse{ID: request.ID, Status: "ok"})
}

func (s *Server) handleRemoveWord(ctx context.Context, request Request) {
	if !s.validWord(request) {
		return
	}
	if s.userDict == nil {
		s.sendError(request.ID, "No user dictionary configured", 501)
		return
	}
	if err := s.userDict.Remove(ctx, request.Word); err != nil {
		s.sendError(request.ID, "Removing word failed", 500)
		s.log.Errorf("Removing %q from user dictionary: %v", request.Word, err)
		return
	}
	s.send(StatusResponse{ID: request.ID, Status: "ok"})
}

// handleListWords returns every word in the user dictionary so clients can
// sync their local state.
func (s *Server) handleListWords(ctx context.Context, request Request) {
	if s.userDict == nil {
		s.sendError(request.ID, "No user dictionary configured", 501)
		return
	}
	words, err := s.userDict.All(ctx)
	if err != nil {
		s.sendError(request.ID, "Listing words failed", 500)
		s.log.Errorf("Listing user dictionary: %v", err)
		return
	}
	s.send(WordsResponse{ID: request.ID, Words: words, Count: len(words)})
}

// send encodes one response to stdout
func (s *Server) send(response interface{}) {
	if err := s.encoder.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
