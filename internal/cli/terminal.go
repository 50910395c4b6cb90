package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/bastiangx/dexpad/internal/utils"
	"github.com/bastiangx/dexpad/pkg/keypad"
	"github.com/bastiangx/dexpad/pkg/server"
	"github.com/bastiangx/dexpad/pkg/typechart"
)

const keypadHelp = "[1-9] tap  [0] space, hold to delete  [bksp] delete  [enter] commit  [tab] page  [up/down] select  [ctrl+u] clear  [esc] quit"

const (
	// DefaultRepeatDelay is how long the keypad waits after the first dual
	// key event for an auto-repeat. It sits above common OS autorepeat
	// delays (250-500ms), so a tap types its space only after this wait.
	DefaultRepeatDelay = 600 * time.Millisecond
	// DefaultReleaseGap is how long the keypad waits for another auto-repeat
	// of a held dual key before treating it as released.
	DefaultReleaseGap = 90 * time.Millisecond
)

// quitSignal is posted as interrupt data to stop Run.
type quitSignal struct{}

// KeypadOptions configures a Keypad front-end.
type KeypadOptions struct {
	// Limit caps the result list. <= 0 shows as many rows as fit.
	Limit int
	// RepeatDelay is the window after a dual key event in which a second
	// event counts as auto-repeat. Without one the event is a tap. A second
	// real tap inside the window also reads as a hold.
	RepeatDelay time.Duration
	// ReleaseGap infers the key-up of a held dual key; terminals only
	// report presses and auto-repeats.
	ReleaseGap time.Duration
	// Scheduler must be the one the engine was built with so that fake
	// clocks drive both.
	Scheduler keypad.Scheduler
}

// Keypad drives a multi-tap engine from a terminal screen and shows live
// search results for the display text.
type Keypad struct {
	screen   tcell.Screen
	engine   *keypad.Engine
	searcher *server.Searcher
	sched    keypad.Scheduler
	limit    int
	delay    time.Duration
	gap      time.Duration
	logger   *log.Logger

	// down is set from the first dual key event until its tap or release
	// is delivered; held once an auto-repeat confirmed a hold.
	mu         sync.Mutex
	down       bool
	held       bool
	pressedAt  time.Time
	releaseGen uint64
	release    keypad.Timer

	display  string
	results  []server.Species
	total    int
	selected int
	page     typechart.Page
	searched bool
}

// NewKeypad creates the front-end. The screen is initialized by Run.
func NewKeypad(screen tcell.Screen, engine *keypad.Engine, searcher *server.Searcher, logger *log.Logger, opts KeypadOptions) *Keypad {
	if opts.RepeatDelay <= 0 {
		opts.RepeatDelay = DefaultRepeatDelay
	}
	if opts.ReleaseGap <= 0 {
		opts.ReleaseGap = DefaultReleaseGap
	}
	if opts.Scheduler == nil {
		opts.Scheduler = keypad.RealScheduler{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Keypad{
		screen:   screen,
		engine:   engine,
		searcher: searcher,
		sched:    opts.Scheduler,
		limit:    opts.Limit,
		delay:    opts.RepeatDelay,
		gap:      opts.ReleaseGap,
		logger:   logger,
		page:     typechart.PageWeak,
	}
}

// Run initializes the screen and processes events until Esc, Ctrl+C or ctx
// cancellation.
func (k *Keypad) Run(ctx context.Context) error {
	if err := k.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer k.screen.Fini()

	k.engine.OnChange(func(string) {
		_ = k.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = k.screen.PostEvent(tcell.NewEventInterrupt(quitSignal{}))
		case <-done:
		}
	}()

	k.refresh()
	k.draw()
	for {
		ev := k.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if !k.HandleEvent(ev) {
			k.logger.Debug("Keypad closed", "text", k.engine.DisplayText())
			return nil
		}
		k.draw()
	}
}

// HandleEvent applies one screen event and reports whether the loop should
// continue.
func (k *Keypad) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return k.handleKey(ev)
	case *tcell.EventInterrupt:
		if _, ok := ev.Data().(quitSignal); ok {
			return false
		}
		k.refresh()
	case *tcell.EventResize:
		k.screen.Sync()
	}
	return true
}

func (k *Keypad) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() != tcell.KeyRune || ev.Rune() != '0' {
		k.settleDualKey()
	}

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		k.engine.Backspace()
	case tcell.KeyCtrlU:
		k.engine.SetText("")
	case tcell.KeyEnter:
		k.engine.Flush()
	case tcell.KeyTab:
		k.page = k.page.Next()
	case tcell.KeyUp:
		if k.selected > 0 {
			k.selected--
		}
	case tcell.KeyDown:
		if k.selected < len(k.results)-1 {
			k.selected++
		}
	case tcell.KeyRune:
		r := ev.Rune()
		switch {
		case r >= '1' && r <= '9':
			k.engine.KeyPress(keypad.Key(r - '0'))
		case r == '0':
			k.dualKey()
		}
	}
	k.refresh()
	return true
}

// dualKey tracks the dual key from press and auto-repeat events. The first
// event waits for a repeat; a repeat turns it into a hold pressed at the
// first event, and later repeats push the inferred release back.
func (k *Keypad) dualKey() {
	k.mu.Lock()
	wait := k.gap
	switch {
	case !k.down:
		k.down = true
		k.pressedAt = k.sched.Now()
		wait = k.delay
	case !k.held:
		k.held = true
		k.engine.DualKeyPressAt(k.pressedAt)
	}
	k.armReleaseLocked(wait)
	k.mu.Unlock()
}

func (k *Keypad) armReleaseLocked(d time.Duration) {
	k.stopReleaseLocked()
	gen := k.releaseGen
	k.release = k.sched.AfterFunc(d, func() { k.onRelease(gen) })
}

func (k *Keypad) stopReleaseLocked() {
	k.releaseGen++
	if k.release != nil {
		k.release.Stop()
		k.release = nil
	}
}

func (k *Keypad) onRelease(gen uint64) {
	k.mu.Lock()
	if gen != k.releaseGen {
		k.mu.Unlock()
		return
	}
	k.release = nil
	k.finishDualKeyLocked()
}

// settleDualKey delivers a dual key tap or release still waiting on its
// timer, so that it lands before the event being handled.
func (k *Keypad) settleDualKey() {
	k.mu.Lock()
	k.stopReleaseLocked()
	k.finishDualKeyLocked()
}

// finishDualKeyLocked unlocks k.mu before calling into the engine.
func (k *Keypad) finishDualKeyLocked() {
	down, held := k.down, k.held
	k.down, k.held = false, false
	k.mu.Unlock()

	switch {
	case held:
		k.engine.DualKeyRelease()
	case down:
		k.engine.DualKeyPress()
		k.engine.DualKeyRelease()
	}
}

// Holding reports whether the dual key is down, including a press still
// waiting to be told apart from a tap.
func (k *Keypad) Holding() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.down
}

// refresh re-runs the search when the display text changed.
func (k *Keypad) refresh() {
	display := k.engine.DisplayText()
	if k.searched && display == k.display {
		return
	}
	k.display = display
	k.searched = true

	res := k.searcher.Search(display, k.rows())
	k.results = res.Matches
	k.total = res.Total
	if k.selected >= len(k.results) {
		k.selected = max(len(k.results)-1, 0)
	}
	k.logger.Debug("Keypad search", "text", display, "filters", res.Filters.String(), "total", res.Total)
}

func (k *Keypad) rows() int {
	if k.limit > 0 {
		return k.limit
	}
	_, h := k.screen.Size()
	// header, input, blank, page title and entries take six lines
	return max(h-6, 1)
}

// Results returns the species currently listed.
func (k *Keypad) Results() []server.Species {
	return k.results
}

// Selected returns the highlighted species, if any.
func (k *Keypad) Selected() (server.Species, bool) {
	if k.selected < 0 || k.selected >= len(k.results) {
		return server.Species{}, false
	}
	return k.results[k.selected], true
}

// Page returns the effectiveness page shown for the selection.
func (k *Keypad) Page() typechart.Page {
	return k.page
}

func (k *Keypad) draw() {
	k.screen.Clear()
	w, h := k.screen.Size()

	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	drawText(k.screen, 0, 0, w, keypadHelp, dim)

	snap := k.engine.Snapshot()
	x := drawText(k.screen, 0, 1, w, "> ", tcell.StyleDefault.Bold(true))
	x = drawText(k.screen, x, 1, w, snap.Committed, tcell.StyleDefault)
	x = drawText(k.screen, x, 1, w, snap.Pending, tcell.StyleDefault.Reverse(true))
	if snap.Holding {
		drawText(k.screen, x+1, 1, w, "(deleting)", dim)
	}

	y := 3
	for i, sp := range k.results {
		if y >= h-2 {
			break
		}
		style := tcell.StyleDefault
		if i == k.selected {
			style = style.Reverse(true)
		}
		x := drawText(k.screen, 0, y, w, fmt.Sprintf("%s %-14s", DexNumber(sp.ID), utils.DisplayName(sp.Name)), style)
		for _, t := range sp.Types {
			x = drawText(k.screen, x+1, y, w, t, tcell.StyleDefault.Foreground(tcell.GetColor(TypeColor(t))))
		}
		if r := Rarity(sp); r != "" {
			drawText(k.screen, x+1, y, w, r, dim)
		}
		y++
	}
	if len(k.results) == 0 {
		drawText(k.screen, 0, y, w, "no species found", tcell.StyleDefault.Foreground(tcell.ColorRed))
		y++
	} else if k.total > len(k.results) {
		drawText(k.screen, 0, y, w, fmt.Sprintf("%d more", k.total-len(k.results)), dim)
		y++
	}

	if sp, ok := k.Selected(); ok && y < h-1 {
		eff := k.searcher.Effectiveness(sp)
		drawText(k.screen, 0, h-2, w, k.page.String(), tcell.StyleDefault.Bold(true))
		x := 0
		entries := k.page.Entries(eff)
		if len(entries) == 0 {
			drawText(k.screen, 0, h-1, w, "none", dim)
		}
		for _, m := range entries {
			style := tcell.StyleDefault.Foreground(tcell.GetColor(TypeColor(m.Type)))
			if m.IsDouble() {
				style = style.Bold(true).Underline(true)
			}
			x = drawText(k.screen, x, h-1, w, m.Type+" "+m.Label(), style) + 2
		}
	}

	k.screen.Show()
}

// drawText writes s at (x, y), clipped to width, and returns the column
// after the last rune.
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) int {
	for _, r := range text {
		if x >= width {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
