package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cswitch/internal/providers"
	"cswitch/internal/switcher"
	"cswitch/internal/tui"
	"cswitch/internal/utils"
)

func init() {
	rootCmd.AddCommand(switchCmd)
	switchCmd.Flags().StringP("key", "k", "", "API key to store and use for the target provider")
	switchCmd.Flags().Bool("no-input", false, "Fail instead of prompting when input would be required")
}

var switchCmd = &cobra.Command{
	Use:   "switch [provider]",
	Short: "Switch the active provider",
	Long: `Switch which provider Claude Code uses. The current configuration is
backed up first, the API key is resolved from the credential store (or
stored when --key is given), and the settings file is rewritten
atomically. With no argument an interactive picker is shown.

Examples:
  cswitch switch deepseek --key sk-...
  cswitch switch claude
  cswitch switch`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}

		key, _ := cmd.Flags().GetString("key")
		noInput, _ := cmd.Flags().GetBool("no-input")

		var target providers.Target
		if len(args) == 1 {
			target, err = svc.catalog.Resolve(args[0])
			if err != nil {
				return err
			}
		} else {
			if noInput {
				return fmt.Errorf("a provider argument is required with --no-input")
			}
			target, key, err = pickTarget(svc, key)
			if err != nil {
				return err
			}
			if target.ID == "" {
				fmt.Fprintln(os.Stderr, dimStyle.Render("switch cancelled"))
				return nil
			}
		}

		sw, mirror := svc.switcher()
		if mirror != nil {
			defer mirror.Close()
		}

		res, err := sw.SwitchTo(target, key)
		if err != nil {
			return err
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Switched to %s", res.Target.Name)))
		if res.Model != "" && !res.Target.Primary() {
			fmt.Println(dimStyle.Render("  model: " + res.Model))
		}
		if res.KeyStored {
			fmt.Println(dimStyle.Render("  API key stored: " + utils.MaskSecret(key)))
		}
		if res.Mirrored {
			fmt.Println(dimStyle.Render("  mirroring to remote account"))
		}
		return nil
	},
}

// pickTarget runs the interactive picker and returns the chosen target
// and any API key the user typed.
func pickTarget(svc *services, key string) (providers.Target, string, error) {
	sw := svcSwitcherNoMirror(svc)
	cfg, err := svc.store.Load()
	if err != nil {
		return providers.Target{}, "", err
	}
	active := svc.catalog.Infer(cfg)

	res, err := tui.RunPicker(svc.targets(), active, func(t providers.Target) bool {
		has, _ := sw.HasKey(t)
		return has
	})
	if err != nil {
		return providers.Target{}, "", err
	}
	if res.Cancelled {
		return providers.Target{}, "", nil
	}
	if res.APIKey != "" {
		key = res.APIKey
	}
	return res.Target, key, nil
}

// svcSwitcherNoMirror builds a coordinator without the remote mirror, for
// read-only queries like key presence.
func svcSwitcherNoMirror(svc *services) *switcher.Switcher {
	return switcher.New(svc.store, svc.backups, svc.creds, svc.catalog, nil)
}
