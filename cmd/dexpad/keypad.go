package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/bastiangx/dexpad/internal/cli"
	"github.com/bastiangx/dexpad/internal/logger"
	"github.com/bastiangx/dexpad/pkg/keypad"
)

var replLimit int

var keypadCmd = &cobra.Command{
	Use:   "keypad",
	Short: "Search with the multi-tap keypad in the terminal",
	Long: `Keypad turns the terminal into a 10-key pad: 1-9 cycle through their
characters, 0 types a space and deletes when held, Backspace deletes once.
Results update live for the display text and Tab cycles the matchup page of
the selected species.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		searcher, err := a.searcher()
		if err != nil {
			return err
		}
		keys, err := a.cfg.KeyMap()
		if err != nil {
			return err
		}

		engine, err := keypad.New(keys, a.cfg.Timings(), nil)
		if err != nil {
			return err
		}
		defer engine.Close()

		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}

		// stderr shares the terminal with the screen
		kpLogger := logger.New("keypad")
		if !debugFlag {
			kpLogger.SetLevel(log.ErrorLevel)
		}

		kp := cli.NewKeypad(screen, engine, searcher, kpLogger, cli.KeypadOptions{
			Limit:       a.cfg.CLI.DefaultLimit,
			RepeatDelay: time.Duration(a.cfg.CLI.RepeatDelayMs) * time.Millisecond,
			ReleaseGap:  time.Duration(a.cfg.CLI.ReleaseGapMs) * time.Millisecond,
		})
		if err := kp.Run(cmd.Context()); err != nil {
			return err
		}
		if text := engine.DisplayText(); text != "" {
			fmt.Fprintln(os.Stdout, text)
		}
		return nil
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive line-mode search",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		searcher, err := a.searcher()
		if err != nil {
			return err
		}

		limit := replLimit
		if !cmd.Flags().Changed("limit") {
			limit = a.cfg.CLI.DefaultLimit
		}
		log.Debug("REPL", "catalog", a.catalogSrc, "species", a.catalog.Len(), "limit", limit)
		return cli.NewInputHandler(searcher, os.Stdin, os.Stdout, limit).Start()
	},
}

func init() {
	replCmd.Flags().IntVarP(&replLimit, "limit", "l", 20, "Maximum rows per query (0 for all; default from config)")
}
