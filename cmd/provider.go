package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cswitch/internal/providers"
)

func init() {
	rootCmd.AddCommand(providerCmd)
	providerCmd.AddCommand(providerListCmd)
	providerCmd.AddCommand(providerSetModelCmd)
	providerCmd.AddCommand(providerSetFastModelCmd)
}

var providerCmd = &cobra.Command{
	Use:     "providers",
	Aliases: []string{"provider"},
	Short:   "Inspect built-in providers and override their models",
}

var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}

		cfg, err := svc.store.Load()
		if err != nil {
			return err
		}
		active := svc.catalog.Infer(cfg)

		fmt.Println(headerStyle.Render("Built-in providers:"))
		for _, p := range svc.catalog.Builtins() {
			marker := " "
			if p.ID == active {
				marker = "*"
			}
			line := fmt.Sprintf("%s %-12s %s", marker, p.ID, p.Name)
			fmt.Println(line)

			model := "  " + dimStyle.Render("model: "+p.DefaultModel)
			if svc.catalog.HasDefaultOverride(p.ID) {
				model += dimStyle.Render(" (override)")
			}
			fmt.Println("  " + model)

			if p.FastModel != "" {
				fast := "  " + dimStyle.Render("fast:  "+p.FastModel)
				if svc.catalog.HasFastOverride(p.ID) {
					fast += dimStyle.Render(" (override)")
				}
				fmt.Println("  " + fast)
			}
			if p.BaseURL != "" {
				fmt.Println("    " + dimStyle.Render("url:   "+p.BaseURL))
			}
		}
		fmt.Println(dimStyle.Render("\n* indicates the currently active provider"))
		return nil
	},
}

var providerSetModelCmd = &cobra.Command{
	Use:   "set-model <provider> <model>",
	Short: "Override a built-in provider's default model",
	Long:  "Override the default model used when switching to a built-in provider. Setting the compiled-in default clears the override.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}
		if err := svc.catalog.SetDefaultModel(args[0], args[1]); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Default model for %s set to %s", args[0], args[1])))
		return nil
	},
}

var providerSetFastModelCmd = &cobra.Command{
	Use:   "set-fast-model <provider> [model]",
	Short: "Override a built-in provider's fast model",
	Long:  "Override the fast/small model for a built-in provider. Omitting the model clears the override.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}
		model := ""
		if len(args) == 2 {
			model = args[1]
		}
		if err := svc.catalog.SetFastModel(args[0], model); err != nil {
			return err
		}
		if model == "" {
			fmt.Println(successStyle.Render(fmt.Sprintf("✓ Fast model override for %s cleared", args[0])))
		} else {
			fmt.Println(successStyle.Render(fmt.Sprintf("✓ Fast model for %s set to %s", args[0], model)))
		}
		return nil
	},
}

// resolveTarget is shared by key and custom commands.
func resolveTarget(svc *services, arg string) (providers.Target, error) {
	return svc.catalog.Resolve(arg)
}
