package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cswitch/internal/providers"
	"cswitch/internal/utils"
)

func init() {
	rootCmd.AddCommand(customCmd)
	customCmd.AddCommand(customListCmd)
	customCmd.AddCommand(customAddCmd)
	customCmd.AddCommand(customEditCmd)
	customCmd.AddCommand(customRemoveCmd)

	for _, c := range []*cobra.Command{customAddCmd, customEditCmd} {
		c.Flags().String("name", "", "Display name")
		c.Flags().String("url", "", "Anthropic-compatible base URL")
		c.Flags().String("model", "", "Default model name")
		c.Flags().String("fast-model", "", "Fast/small model name (optional)")
		c.Flags().String("icon", "", "Icon name (optional)")
	}
}

var customCmd = &cobra.Command{
	Use:   "custom",
	Short: "Manage user-defined providers",
}

var customListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}

		customs := svc.catalog.Customs()
		if len(customs) == 0 {
			fmt.Println("No custom providers configured")
			return nil
		}

		fmt.Println(headerStyle.Render("Custom providers:"))
		for _, p := range customs {
			fmt.Printf("  %s  %s\n", p.Name, dimStyle.Render(p.ID))
			fmt.Println("    " + dimStyle.Render("url:   "+p.BaseURL))
			fmt.Println("    " + dimStyle.Render("model: "+p.DefaultModel))
			if p.HasFastModel() {
				fmt.Println("    " + dimStyle.Render("fast:  "+p.FastModel))
			}
		}
		return nil
	},
}

var customAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a custom provider",
	Long: `Add a user-defined provider.

Example:
  cswitch custom add --name kimi --url https://api.moonshot.cn/anthropic --model kimi-k2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}

		p := providers.CustomProvider{}
		p.Name, _ = cmd.Flags().GetString("name")
		p.BaseURL, _ = cmd.Flags().GetString("url")
		p.DefaultModel, _ = cmd.Flags().GetString("model")
		p.FastModel, _ = cmd.Flags().GetString("fast-model")
		p.Icon, _ = cmd.Flags().GetString("icon")

		if p.BaseURL != "" && !utils.ValidateURL(p.BaseURL) {
			return fmt.Errorf("invalid base URL: %s", p.BaseURL)
		}
		p.BaseURL = utils.TrimBaseURL(p.BaseURL)
		if err := svc.catalog.SaveCustom(&p); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Added custom provider %s (%s)", p.Name, p.ID)))
		return nil
	},
}

var customEditCmd = &cobra.Command{
	Use:   "edit <id-or-name>",
	Short: "Edit a custom provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}

		p, ok := svc.catalog.GetCustom(args[0])
		if !ok {
			return fmt.Errorf("custom provider '%s' does not exist", args[0])
		}

		if v, _ := cmd.Flags().GetString("name"); v != "" {
			p.Name = v
		}
		if v, _ := cmd.Flags().GetString("url"); v != "" {
			if !utils.ValidateURL(v) {
				return fmt.Errorf("invalid base URL: %s", v)
			}
			p.BaseURL = utils.TrimBaseURL(v)
		}
		if v, _ := cmd.Flags().GetString("model"); v != "" {
			p.DefaultModel = v
		}
		if cmd.Flags().Changed("fast-model") {
			p.FastModel, _ = cmd.Flags().GetString("fast-model")
		}
		if v, _ := cmd.Flags().GetString("icon"); v != "" {
			p.Icon = v
		}

		if err := svc.catalog.SaveCustom(&p); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Updated custom provider %s", p.Name)))
		return nil
	},
}

var customRemoveCmd = &cobra.Command{
	Use:   "remove <id-or-name>",
	Short: "Remove a custom provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}

		p, ok := svc.catalog.GetCustom(args[0])
		if !ok {
			return fmt.Errorf("custom provider '%s' does not exist", args[0])
		}
		if err := svc.catalog.DeleteCustom(p.ID); err != nil {
			return err
		}

		// The stored key is orphaned otherwise; its namespace is per-ID.
		sw := svcSwitcherNoMirror(svc)
		sw.DeleteKey(providers.CustomTarget(p))

		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Removed custom provider %s", p.Name)))
		return nil
	},
}
