package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cswitch/internal/utils"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active provider configuration",
	Long:  "Show the provider, model and token currently written to the Claude Code settings file",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}
		sw := svcSwitcherNoMirror(svc)

		state, err := sw.Current()
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render("Active configuration:"))
		fmt.Printf("  Provider: %s\n", state.ProviderName)
		fmt.Printf("  Model:    %s\n", state.Model)
		if state.BaseURL != "" {
			fmt.Printf("  Base URL: %s\n", state.BaseURL)
		}
		if state.Token != "" {
			fmt.Printf("  Token:    %s\n", utils.MaskSecret(state.Token))
		} else {
			fmt.Printf("  Token:    %s\n", dimStyle.Render("(none)"))
		}
		fmt.Printf("  Timeout:  %dms\n", state.TimeoutMS)

		if svc.session.Active() {
			if s := svc.session.Load(); s != nil {
				fmt.Printf("  Remote:   logged in as %s\n", s.Username)
			}
		} else {
			fmt.Printf("  Remote:   %s\n", dimStyle.Render("not logged in"))
		}
		return nil
	},
}
