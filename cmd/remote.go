package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cswitch/internal/remote"
)

var nlSessionID string

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.AddCommand(remoteProvidersCmd)
	remoteCmd.AddCommand(remoteConfigCmd)
	remoteCmd.AddCommand(remoteSwitchCmd)
	remoteCmd.AddCommand(remoteNLCmd)

	remoteNLCmd.Flags().StringVar(&nlSessionID, "session", "", "conversation session id to continue")
}

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Operate on the remote account",
	Long:  "Query and change the provider configuration mirrored on the remote account service",
}

var remoteProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List providers on the remote account",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireLogin()
		if err != nil {
			return err
		}

		infos, err := svc.client.Providers(cmd.Context())
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println(dimStyle.Render("no remote providers"))
			return nil
		}

		fmt.Println(headerStyle.Render("Remote providers:"))
		for _, p := range infos {
			marker := " "
			if p.IsActive {
				marker = "*"
			}
			key := ""
			if p.HasAPIKey {
				key = dimStyle.Render(" [key]")
			}
			fmt.Printf("%s %s (%s)%s\n", marker, p.Name, p.Code, key)
			fmt.Println(dimStyle.Render(fmt.Sprintf("    model: %s  url: %s", p.ModelName, p.BaseURL)))
		}
		return nil
	},
}

var remoteConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the remote account's current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireLogin()
		if err != nil {
			return err
		}

		info, err := svc.client.Config(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render("Remote configuration:"))
		fmt.Printf("  Provider: %s (%s)\n", info.CurrentProvider.Name, info.CurrentProvider.Code)
		fmt.Printf("  Model:    %s\n", info.CurrentProvider.ModelName)
		fmt.Printf("  Timeout:  %dms\n", info.APITimeout)
		if info.UpdatedAt != "" {
			fmt.Println(dimStyle.Render("  updated " + info.UpdatedAt))
		}
		return nil
	},
}

var remoteSwitchCmd = &cobra.Command{
	Use:   "switch <provider-code>",
	Short: "Switch the remote account's active provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireLogin()
		if err != nil {
			return err
		}

		res, err := svc.client.Switch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printSwitchResult(res)
		return nil
	},
}

var remoteNLCmd = &cobra.Command{
	Use:   "nl <prompt...>",
	Short: "Switch via a natural-language request",
	Long:  "Send a natural-language request to the remote service, which decides whether to switch providers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireLogin()
		if err != nil {
			return err
		}

		resp, err := svc.client.SwitchByNL(cmd.Context(), strings.Join(args, " "), nlSessionID)
		if err != nil {
			return err
		}

		fmt.Println(resp.AIResponse)
		if resp.SwitchTriggered && resp.SwitchResult != nil {
			printSwitchResult(resp.SwitchResult)
		}
		if resp.SessionID != "" {
			fmt.Println(dimStyle.Render("session: " + resp.SessionID))
		}
		return nil
	},
}

func printSwitchResult(res *remote.SwitchResult) {
	if !res.Success {
		fmt.Println(errorStyle.Render("✗ " + res.Message))
		return
	}
	name := ""
	if res.CurrentProvider != nil {
		name = res.CurrentProvider.Name
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Remote switched to %s", name)))
	if res.PreviousProvider != nil {
		fmt.Println(dimStyle.Render("  was " + res.PreviousProvider.Name))
	}
}

// requireLogin builds the services and rejects the command when no
// remote session is cached.
func requireLogin() (*services, error) {
	svc, err := initServices()
	if err != nil {
		return nil, err
	}
	if !svc.session.Active() {
		return nil, fmt.Errorf("not logged in, run 'cswitch login' first")
	}
	return svc, nil
}
