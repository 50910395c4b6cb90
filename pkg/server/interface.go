/*
Package server implements msgpack IPC for species search and keypad sessions.

The server reads a stream of msgpack maps from stdin and writes msgpack maps
to stdout. Every request carries an "id" echoed in the response and an
"action" selecting the operation.

# IPC

Search runs the free-form query language over the catalog:

	{"id": "q1", "action": "search", "q": "fire flying gen1", "l": 10}
	{"id": "q1", "r": [{"i": 6, "n": "charizard", "ty": ["fire", "flying"], ...}], "c": 1, "f": {...}, "t": 42}

Type effectiveness for an explicit type list or a catalog entry:

	{"id": "t1", "action": "types", "ty": ["fire", "flying"]}
	{"id": "t2", "action": "lookup", "n": "charizard"}

Keypad sessions wrap a multi-tap engine per client session. Every key event
answers with the session display text, and timer-driven changes (auto commit,
held delete) are pushed as events without an id:

	{"id": "s1", "action": "session_open"}
	{"id": "s1", "sid": "3f0c...", "d": "", "c": ""}
	{"id": "s2", "action": "key", "sid": "3f0c...", "k": 4}
	{"ev": "change", "sid": "3f0c...", "d": "g"}

Errors use {"id", "e", "c"} with HTTP-like codes: 400 for bad requests, 404
for unknown species or sessions, 429 when the session limit is reached, and
500 for internal failures.

Config messages adjust server limits and persist them to config.toml:

	{"id": "c1", "action": "config", "max_results": 20}
*/
package server

import (
	"github.com/bastiangx/dexpad/pkg/catalog"
	"github.com/bastiangx/dexpad/pkg/query"
	"github.com/bastiangx/dexpad/pkg/typechart"
)

// Actions understood by the server.
const (
	ActionSearch       = "search"
	ActionTypes        = "types"
	ActionLookup       = "lookup"
	ActionSessionOpen  = "session_open"
	ActionKey          = "key"
	ActionDualPress    = "dual_press"
	ActionDualRelease  = "dual_release"
	ActionBackspace    = "backspace"
	ActionSetText      = "set_text"
	ActionSessionClose = "session_close"
	ActionConfig       = "config"
	ActionHealth       = "health"
)

// Request is the envelope for every client message. Only the fields used by
// Action are read.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`

	Query string   `msgpack:"q,omitempty"`
	Limit int      `msgpack:"l,omitempty"`
	Types []string `msgpack:"ty,omitempty"`
	Name  string   `msgpack:"n,omitempty"`
	DexID int      `msgpack:"i,omitempty"`

	SessionID string `msgpack:"sid,omitempty"`
	Key       int    `msgpack:"k,omitempty"`
	Text      string `msgpack:"tx,omitempty"`
	// WithResults asks session responses to include a search of the display text.
	WithResults bool `msgpack:"s,omitempty"`

	MaxResults *int `msgpack:"max_results,omitempty"`
	CacheSize  *int `msgpack:"cache_size,omitempty"`
}

// Species is a catalog entry with its types.
type Species struct {
	catalog.Entity
	Types []string `msgpack:"ty" json:"types"`
}

// SearchResponse - ranked search results in catalog order
type SearchResponse struct {
	ID        string        `msgpack:"id"`
	Results   []Species     `msgpack:"r"`
	Count     int           `msgpack:"c"`
	Total     int           `msgpack:"tt"`
	Filters   query.Filters `msgpack:"f"`
	TimeTaken int64         `msgpack:"t"`
}

// TypesResponse - effectiveness for a type list
type TypesResponse struct {
	ID            string                  `msgpack:"id"`
	Types         []string                `msgpack:"ty"`
	Effectiveness typechart.Effectiveness `msgpack:"e"`
}

// LookupResponse - a single species with its effectiveness
type LookupResponse struct {
	ID            string                  `msgpack:"id"`
	Species       Species                 `msgpack:"sp"`
	Effectiveness typechart.Effectiveness `msgpack:"e"`
}

// SessionResponse - keypad session state after an event
type SessionResponse struct {
	ID        string    `msgpack:"id"`
	SessionID string    `msgpack:"sid"`
	Display   string    `msgpack:"d"`
	Committed string    `msgpack:"c"`
	Results   []Species `msgpack:"r,omitempty"`
	Closed    bool      `msgpack:"x,omitempty"`
}

// SessionEvent - pushed on every display change of a session
type SessionEvent struct {
	Event     string `msgpack:"ev"`
	SessionID string `msgpack:"sid"`
	Display   string `msgpack:"d"`
}

// StatusResponse - readiness, health and config acknowledgements
type StatusResponse struct {
	ID         string `msgpack:"id,omitempty"`
	Status     string `msgpack:"status"`
	Species    int    `msgpack:"species,omitempty"`
	Sessions   int    `msgpack:"sessions,omitempty"`
	MaxResults int    `msgpack:"max_results,omitempty"`
	CacheSize  int    `msgpack:"cache_size,omitempty"`
}

// ErrorResponse holds basic error information for any request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
