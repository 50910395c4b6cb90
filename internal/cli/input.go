// Package cli provides the line-mode search REPL and the terminal keypad
// front-end.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/dexpad/pkg/catalog"
	"github.com/bastiangx/dexpad/pkg/server"
	"github.com/bastiangx/dexpad/pkg/typechart"
)

const replHelp = `queries:    fire flying gen1, #006, kanto legendary, char
:types T..  effectiveness for one or two types
:dex NAME   species detail by name or dex number
:help       this text
:q          quit`

// InputHandler reads queries line by line and prints result tables.
type InputHandler struct {
	searcher     *server.Searcher
	in           io.Reader
	out          io.Writer
	limit        int
	requestCount int
}

// NewInputHandler creates a REPL over in/out. A limit <= 0 prints every match.
func NewInputHandler(searcher *server.Searcher, in io.Reader, out io.Writer, limit int) *InputHandler {
	return &InputHandler{
		searcher: searcher,
		in:       in,
		out:      out,
		limit:    limit,
	}
}

// Start runs the loop until input ends or the user quits.
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.out, headerStyle.Render("dexpad search"))
	fmt.Fprintln(h.out, dimStyle.Render("type a query and press Enter (:help for commands, Ctrl+D to exit)"))

	reader := bufio.NewReader(h.in)
	for {
		fmt.Fprint(h.out, "> ")
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			if !h.handleInput(line) {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(h.out)
				return nil
			}
			return err
		}
	}
}

// handleInput processes one line and reports whether the loop continues.
func (h *InputHandler) handleInput(line string) bool {
	h.requestCount++

	if !strings.HasPrefix(line, ":") {
		res := h.searcher.Search(line, h.limit)
		log.Debugf("Request %d took [ %v ] for %q -> %s", h.requestCount, res.Elapsed, line, res.Filters)
		RenderResults(h.out, res.Matches, res.Total)
		return true
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case "q", "quit", "exit":
		return false
	case "help", "h", "?":
		fmt.Fprintln(h.out, replHelp)
	case "types", "t":
		h.handleTypes(arg)
	case "dex", "d":
		h.handleDex(arg)
	default:
		fmt.Fprintln(h.out, warnStyle.Render(fmt.Sprintf("unknown command :%s", cmd)))
	}
	return true
}

func (h *InputHandler) handleTypes(arg string) {
	types := strings.Fields(strings.ToLower(arg))
	if len(types) == 0 || len(types) > 2 {
		fmt.Fprintln(h.out, warnStyle.Render("expected one or two types"))
		return
	}
	for _, t := range types {
		if !typechart.IsType(t) {
			fmt.Fprintln(h.out, warnStyle.Render(fmt.Sprintf("unknown type %q", t)))
			return
		}
	}
	fmt.Fprintln(h.out, TypeBadges(types))
	RenderEffectiveness(h.out, typechart.Analyze(types))
}

func (h *InputHandler) handleDex(arg string) {
	if arg == "" {
		fmt.Fprintln(h.out, warnStyle.Render("expected a name or dex number"))
		return
	}

	name, id := arg, 0
	if n, err := strconv.Atoi(strings.TrimPrefix(arg, "#")); err == nil {
		name, id = "", n
	}
	sp, err := h.searcher.Lookup(name, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			fmt.Fprintln(h.out, warnStyle.Render(fmt.Sprintf("no species %q", arg)))
			return
		}
		log.Errorf("Lookup %q: %v", arg, err)
		return
	}
	RenderSpecies(h.out, sp)
	RenderEffectiveness(h.out, h.searcher.Effectiveness(sp))
}
