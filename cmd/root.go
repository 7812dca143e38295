package cmd

import (
	"github.com/spf13/cobra"
)

// Version information
var (
	version string
	commit  string
	date    string
)

// SetVersionInfo sets the version information
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

var rootCmd = &cobra.Command{
	Use:   "cswitch",
	Short: "Claude Code provider switching tool",
	Long: `cswitch switches which AI model backend Claude Code talks to by
rewriting ~/.claude/settings.json, keeping API keys in the OS credential
store and a bounded backup history of prior configurations.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(`cswitch {{.Version}}
Commit: ` + commit + `
Date: ` + date + `
`)

	return rootCmd.Execute()
}
