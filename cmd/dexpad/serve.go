package main

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/dexpad/internal/mcpserver"
	"github.com/bastiangx/dexpad/internal/utils"
	"github.com/bastiangx/dexpad/pkg/config"
	"github.com/bastiangx/dexpad/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MessagePack IPC server on stdin/stdout",
	Long: `Serve reads MessagePack requests from stdin and writes responses to stdout.
It answers search, types and lookup requests and hosts keypad sessions whose
timer-driven changes are pushed as events. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		searcher, err := a.searcher()
		if err != nil {
			return err
		}

		srv, err := server.NewServer(searcher, a.cfg, a.configPath, os.Stdin, os.Stdout)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}
		showStartupInfo(a)
		logRuntimeInfo()
		return srv.Start(cmd.Context())
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long:  "Start a Model Context Protocol server on stdio exposing search_catalog, type_effectiveness and lookup_species.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		searcher, err := a.searcher()
		if err != nil {
			return err
		}

		srv, err := mcpserver.NewServer(searcher)
		if err != nil {
			return err
		}
		log.Debug("MCP server starting", "catalog", a.catalogSrc, "species", a.catalog.Len())
		return srv.Serve(cmd.Context())
	},
}

// showStartupInfo prints basic info to stderr; stdout carries IPC frames.
func showStartupInfo(a *app) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	fmt.Fprintln(os.Stderr, "==========")
	fmt.Fprintln(os.Stderr, "  dexpad  ")
	fmt.Fprintln(os.Stderr, "==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("catalog: ( %s ) %d species", a.catalogSrc, a.catalog.Len())
	log.Infof("config: ( %s )", config.GetActiveConfigPath(a.configPath))
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "==========")
}

// logRuntimeInfo dumps resolved paths and environment at debug level.
func logRuntimeInfo() {
	pr, err := utils.NewPathResolver()
	if err != nil {
		log.Debugf("runtime info unavailable: %v", err)
		return
	}
	info := pr.GetRuntimeInfo()
	for _, k := range slices.Sorted(maps.Keys(info)) {
		log.Debug("runtime", k, info[k])
	}
}

