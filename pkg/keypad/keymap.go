package keypad

import (
	"errors"
	"fmt"
	"sort"
)

// Key identifies a keypad button. Keys 1..9 are multi-tap letter keys and
// DualKey is the combined space/delete key.
type Key int

const (
	MinKey  Key = 1
	DualKey Key = 10
)

var (
	// ErrEmptyCandidates is returned by Validate when a key has nothing to type.
	ErrEmptyCandidates = errors.New("key has no candidates")
	// ErrInvalidKey is returned by Validate for keys outside 1..10.
	ErrInvalidKey = errors.New("key out of range")
)

// KeyMap lists the candidates each key cycles through, in tap order.
// Candidates may be longer than one character.
type KeyMap map[Key][]string

// DefaultKeyMap returns the standard phone layout. Key 1 carries the search
// keywords and key 10 types a space. Add "0" to key 10 through config to
// make zero reachable.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		1:  {"1", "-", "legendary", "mythical"},
		2:  {"2", "a", "b", "c"},
		3:  {"3", "d", "e", "f"},
		4:  {"4", "g", "h", "i"},
		5:  {"5", "j", "k", "l"},
		6:  {"6", "m", "n", "o"},
		7:  {"7", "p", "q", "r", "s"},
		8:  {"8", "t", "u", "v"},
		9:  {"9", "w", "x", "y", "z"},
		10: {" "},
	}
}

// Valid reports whether k is a key the engine understands.
func (k Key) Valid() bool {
	return k >= MinKey && k <= DualKey
}

// Validate checks that every key 1..10 has at least one candidate and that
// no other keys are present.
func (m KeyMap) Validate() error {
	for k := MinKey; k <= DualKey; k++ {
		if len(m[k]) == 0 {
			return fmt.Errorf("key %d: %w", k, ErrEmptyCandidates)
		}
	}
	for k := range m {
		if !k.Valid() {
			return fmt.Errorf("key %d: %w", k, ErrInvalidKey)
		}
	}
	return nil
}

// Candidates returns the candidates for k, or nil if k is unmapped.
func (m KeyMap) Candidates(k Key) []string {
	return m[k]
}

// Clone returns a deep copy so callers can't mutate a running engine's map.
func (m KeyMap) Clone() KeyMap {
	out := make(KeyMap, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Merge returns a copy of m with the keys in overrides replaced.
func (m KeyMap) Merge(overrides KeyMap) KeyMap {
	out := m.Clone()
	for k, v := range overrides {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Keys returns the mapped keys in ascending order.
func (m KeyMap) Keys() []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
