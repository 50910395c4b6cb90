/*
Package keypad implements multi-tap text entry for a 10-key pad.

Keys 1..9 cycle through their candidates on repeated taps. The pending
candidate is committed when another key is pressed or after the commit delay
passes with no input. Key 10 is a dual key: a short tap behaves like a normal
multi-tap key, while holding it deletes one character after the long-press
delay and then one more every repeat interval until released.

	e, _ := keypad.New(keypad.DefaultKeyMap(), keypad.DefaultTimings(), keypad.RealScheduler{})
	e.KeyPress(4)
	e.KeyPress(4)       // pending "g"
	e.KeyPress(2)       // commits "g", pending "2"
	e.DisplayText()     // "g2"

Engine methods may be called from any goroutine. Calls and timer callbacks
are serialized on one mutex; every timer carries a generation number so a
callback racing with its own cancellation never applies a stale effect.
*/
package keypad

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/dexpad/internal/utils"
)

// Timings holds the engine delays.
type Timings struct {
	CommitDelay    time.Duration
	LongPress      time.Duration
	RepeatInterval time.Duration
}

// DefaultTimings returns 800ms commit, 500ms long press, 150ms repeat.
func DefaultTimings() Timings {
	return Timings{
		CommitDelay:    800 * time.Millisecond,
		LongPress:      500 * time.Millisecond,
		RepeatInterval: 150 * time.Millisecond,
	}
}

// Validate requires every delay to be positive.
func (t Timings) Validate() error {
	if t.CommitDelay <= 0 || t.LongPress <= 0 || t.RepeatInterval <= 0 {
		return errors.New("keypad timings must be positive")
	}
	return nil
}

// Snapshot is a copy of the engine state.
type Snapshot struct {
	Committed  string
	Pending    string
	LastKey    Key
	CycleIndex int
	Holding    bool
}

// Display returns committed text followed by the pending candidate.
func (s Snapshot) Display() string {
	return s.Committed + s.Pending
}

// Engine is one multi-tap input session.
type Engine struct {
	mu      sync.Mutex
	keys    KeyMap
	timings Timings
	sched   Scheduler

	committed  string
	pending    string
	lastKey    Key
	cycleIndex int

	commitTimer Timer
	commitGen   uint64

	repeatTimer Timer
	repeatGen   uint64
	holding     bool
	pressedAt   time.Time
	repeatFired int

	closed   bool
	listener func(display string)
}

// New validates keys and timings and returns an idle engine. A nil
// scheduler uses RealScheduler.
func New(keys KeyMap, timings Timings, sched Scheduler) (*Engine, error) {
	if err := keys.Validate(); err != nil {
		return nil, fmt.Errorf("invalid key map: %w", err)
	}
	if err := timings.Validate(); err != nil {
		return nil, err
	}
	if sched == nil {
		sched = RealScheduler{}
	}
	return &Engine{
		keys:    keys.Clone(),
		timings: timings,
		sched:   sched,
	}, nil
}

// OnChange registers f to receive the display text after every state change,
// including changes made by timers. f runs outside the engine lock and may
// read the engine, but notifications from concurrent callers can arrive out
// of order.
func (e *Engine) OnChange(f func(display string)) {
	e.mu.Lock()
	e.listener = f
	e.mu.Unlock()
}

// KeyPress handles a tap on key 1..9. Other keys are ignored.
func (e *Engine) KeyPress(k Key) {
	if k < MinKey || k >= DualKey {
		log.Debugf("Ignoring key %d", k)
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.cancelRepeatLocked()
	e.holding = false
	e.tapLocked(k)
	e.unlockAndNotify()
}

// DualKeyPress handles the press edge of key 10 and arms the long-press
// delete timer.
func (e *Engine) DualKeyPress() {
	e.DualKeyPressAt(e.sched.Now())
}

// DualKeyPressAt is DualKeyPress for a press edge observed late, as when a
// front-end learns of a hold from the first auto-repeat. The long-press
// delay counts from at; if it already passed, the first delete is due now.
func (e *Engine) DualKeyPressAt(at time.Time) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.cancelRepeatLocked()
	e.holding = true
	e.pressedAt = at
	e.repeatFired = 0
	delay := max(e.timings.LongPress-e.sched.Now().Sub(at), 0)
	gen := e.repeatGen
	e.repeatTimer = e.sched.AfterFunc(delay, func() { e.onRepeat(gen) })
	e.mu.Unlock()
}

// DualKeyRelease handles the release edge of key 10. A release before the
// long-press delay is a tap on key 10; a later release only stops deleting.
func (e *Engine) DualKeyRelease() {
	e.mu.Lock()
	if e.closed || !e.holding {
		e.mu.Unlock()
		return
	}
	e.cancelRepeatLocked()
	e.holding = false

	elapsed := e.sched.Now().Sub(e.pressedAt)
	switch {
	case elapsed < e.timings.LongPress:
		e.tapLocked(DualKey)
	case e.repeatFired == 0:
		// The timer was due but had not run yet.
		e.deleteLocked()
	default:
		e.mu.Unlock()
		return
	}
	e.unlockAndNotify()
}

// Backspace deletes one character immediately, as a single repeat tick.
func (e *Engine) Backspace() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.deleteLocked()
	e.unlockAndNotify()
}

// SetText replaces the committed text and drops all pending state and timers.
func (e *Engine) SetText(text string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.cancelCommitLocked()
	e.cancelRepeatLocked()
	e.holding = false
	e.clearPendingLocked()
	e.committed = text
	e.unlockAndNotify()
}

// Flush commits the pending candidate now.
func (e *Engine) Flush() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.cancelCommitLocked()
	e.flushLocked()
	e.unlockAndNotify()
}

// DisplayText returns committed text plus the pending candidate.
func (e *Engine) DisplayText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.committed + e.pending
}

// CommittedText returns only the committed text.
func (e *Engine) CommittedText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.committed
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Committed:  e.committed,
		Pending:    e.pending,
		LastKey:    e.lastKey,
		CycleIndex: e.cycleIndex,
		Holding:    e.holding,
	}
}

// Close cancels all timers. Later events are ignored.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelCommitLocked()
	e.cancelRepeatLocked()
	e.closed = true
}

func (e *Engine) tapLocked(k Key) {
	e.cancelCommitLocked()

	candidates := e.keys[k]
	if k == e.lastKey {
		e.cycleIndex = (e.cycleIndex + 1) % len(candidates)
	} else {
		e.flushLocked()
		e.lastKey = k
		e.cycleIndex = 0
	}
	e.pending = candidates[e.cycleIndex]

	gen := e.commitGen
	e.commitTimer = e.sched.AfterFunc(e.timings.CommitDelay, func() { e.onCommit(gen) })
}

func (e *Engine) onCommit(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.commitGen {
		e.mu.Unlock()
		return
	}
	e.commitTimer = nil
	e.flushLocked()
	e.unlockAndNotify()
}

func (e *Engine) onRepeat(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.repeatGen {
		e.mu.Unlock()
		return
	}
	e.repeatFired++
	e.deleteLocked()
	e.repeatTimer = e.sched.AfterFunc(e.timings.RepeatInterval, func() { e.onRepeat(gen) })
	e.unlockAndNotify()
}

func (e *Engine) flushLocked() {
	e.committed += e.pending
	e.clearPendingLocked()
}

func (e *Engine) deleteLocked() {
	e.cancelCommitLocked()
	e.clearPendingLocked()
	e.committed = utils.TrimLastRune(e.committed)
}

func (e *Engine) clearPendingLocked() {
	e.pending = ""
	e.lastKey = 0
	e.cycleIndex = 0
}

// cancelCommitLocked invalidates any scheduled commit, including one whose
// callback is already waiting on the lock.
func (e *Engine) cancelCommitLocked() {
	e.commitGen++
	if e.commitTimer != nil {
		e.commitTimer.Stop()
		e.commitTimer = nil
	}
}

func (e *Engine) cancelRepeatLocked() {
	e.repeatGen++
	if e.repeatTimer != nil {
		e.repeatTimer.Stop()
		e.repeatTimer = nil
	}
}

// unlockAndNotify releases the lock and reports the new display text.
func (e *Engine) unlockAndNotify() {
	display := e.committed + e.pending
	listener := e.listener
	e.mu.Unlock()
	if listener != nil {
		listener(display)
	}
}
