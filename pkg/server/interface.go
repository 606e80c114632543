/*
Package server implements msgpack IPC for spell-checking services.

The server provides a minimal interface for correctness checks and
suggestion queries using msgpack serialization over stdin/stdout.
Messages are processed synchronously with timing info included in
responses, so editor clients can surface slow queries.

# IPC

The server operates on a request response model where clients send
structured messages via stdin and receive responses through stdout. Each
message carries an ID the response echoes back, plus an op selector.

A check request and its response:

	{"id": "req_001", "op": "check", "w": "cot"}
	{"id": "req_001", "ok": false, "t": 0}

A suggestion request responds with candidates ranked by weight, lightest
first:

	{"id": "req_002", "op": "suggest", "w": "cot", "l": 5}
	{"id": "req_002", "s": [{"w": "cat", "wt": 1.0}], "c": 1, "t": 3}

User dictionary management accepts words at runtime when a backend is
configured, and clients can list the stored words to sync their local
state:

	{"id": "dict_001", "op": "add_word", "w": "giellatekno"}
	{"id": "dict_002", "op": "remove_word", "w": "giellatekno"}
	{"id": "dict_003", "op": "list_words"}

Error responses carry the request ID, a message and a numeric code.
*/
package server

// Request is the envelope every client message decodes into. Fields beyond
// ID, Op and Word apply to suggestion requests only.
type Request struct {
	ID        string  `msgpack:"id"`
	Op        string  `msgpack:"op"`
	Word      string  `msgpack:"w,omitempty"`
	Limit     int     `msgpack:"l,omitempty"`
	Beam      float64 `msgpack:"b,omitempty"`
	MaxWeight float64 `msgpack:"mw,omitempty"`
}

// CheckResponse answers a correctness check.
type CheckResponse struct {
	ID        string `msgpack:"id"`
	Correct   bool   `msgpack:"ok"`
	TimeTaken int64  `msgpack:"t"`
}

// SuggestEntry is one correction candidate.
type SuggestEntry struct {
	Word   string  `msgpack:"w"`
	Weight float64 `msgpack:"wt"`
}

// SuggestResponse answers a suggestion request, candidates lightest first.
type SuggestResponse struct {
	ID          string         `msgpack:"id"`
	Suggestions []SuggestEntry `msgpack:"s"`
	Count       int            `msgpack:"c"`
	Incomplete  bool           `msgpack:"inc,omitempty"`
	TimeTaken   int64          `msgpack:"t"`
}

// WordsResponse answers a user dictionary listing.
type WordsResponse struct {
	ID    string   `msgpack:"id"`
	Words []string `msgpack:"ws"`
	Count int      `msgpack:"c"`
}

// StatusResponse acknowledges management ops and health checks.
type StatusResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
}

// ErrorResponse reports a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
