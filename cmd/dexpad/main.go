// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the dexpad command: a species catalog browser driven
by a phone-style multi-tap keypad.

dexpad loads a species catalog (YAML or a PokeAPI SQLite dump), parses
free-form queries into filters and computes defensive type matchups. It can
run as an interactive terminal keypad, a line-mode REPL, a MessagePack IPC
server for editor and device front-ends, or an MCP tool server.

# Usage

Search once and print a table:

	dexpad search fire flying gen1
	dexpad search --limit 5 kanto legendary

Show matchups for a type pair or a species:

	dexpad types fire flying
	dexpad types --dex charizard

Drive the multi-tap keypad from the terminal:

	dexpad keypad

Keys 1-9 cycle through their characters and commit after 800ms of
inactivity or when another key is pressed. Key 0 types a space; holding it
deletes one character after 500ms and then every 150ms.

Run the IPC server or the MCP server on stdio:

	dexpad serve
	dexpad mcp

# Catalog

The catalog is looked up from --catalog, then catalog.source in the config
file, then data/catalog.yaml, data/pokedex.db and friends next to the working
directory, the executable and the config directory. export converts between
formats:

	dexpad export --to sqlite pokedex.db

# Configuration

Runtime configuration lives in config.toml under the user config directory
and is created with defaults on first run:

	[keypad]
	commit_delay_ms = 800
	long_press_ms = 500
	repeat_interval_ms = 150

	[server]
	max_results = 64
	cache_size = 256
	max_sessions = 32

Use --config to point at another file and "dexpad config rebuild" to restore
the defaults.
*/
package main

import (
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	if err := Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
