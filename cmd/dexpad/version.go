package main

import (
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Version information, set at build time
var (
	Version   = "0.1.0-beta"
	GitCommit = "unknown"
)

const gh = "https://github.com/bastiangx/dexpad"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()
		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ dexpad ] species search on a multi-tap keypad")
		logger.Print("", "version", Version)
		logger.Print("", "commit", GitCommit, "go", runtime.Version(), "os", runtime.GOOS+"/"+runtime.GOARCH)
		logger.Print("")
		logger.Print("use -h or --help to see available commands")
		logger.Print("Github Repo", "gh", gh)
	},
}
