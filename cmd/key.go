package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyDeleteCmd)
	keyCmd.AddCommand(keyCheckCmd)
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage stored API keys",
	Long:  "Manage per-provider API keys in the OS credential store",
}

var keySetCmd = &cobra.Command{
	Use:   "set <provider> <api-key>",
	Short: "Store an API key for a provider",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}
		target, err := resolveTarget(svc, args[0])
		if err != nil {
			return err
		}

		sw := svcSwitcherNoMirror(svc)
		if err := sw.SetKey(target, args[1]); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ API key stored for %s", target.Name)))
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete <provider>",
	Short: "Delete a provider's stored API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}
		target, err := resolveTarget(svc, args[0])
		if err != nil {
			return err
		}

		sw := svcSwitcherNoMirror(svc)
		if err := sw.DeleteKey(target); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ API key deleted for %s", target.Name)))
		return nil
	},
}

var keyCheckCmd = &cobra.Command{
	Use:   "check <provider>",
	Short: "Check whether a provider has a stored API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}
		target, err := resolveTarget(svc, args[0])
		if err != nil {
			return err
		}

		sw := svcSwitcherNoMirror(svc)
		has, err := sw.HasKey(target)
		if err != nil {
			return err
		}
		if has {
			fmt.Println(successStyle.Render(fmt.Sprintf("✓ %s has a stored API key", target.Name)))
		} else {
			fmt.Println(dimStyle.Render(fmt.Sprintf("no API key stored for %s", target.Name)))
		}
		return nil
	},
}
