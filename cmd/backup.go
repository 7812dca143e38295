package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupDeleteCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage settings backups",
	Long:  "List, restore and delete timestamped backups of the Claude settings file",
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}

		records := svc.backups.List()
		if len(records) == 0 {
			fmt.Println(dimStyle.Render("no backups found"))
			return nil
		}

		fmt.Println(headerStyle.Render("Backups:"))
		for _, rec := range records {
			fmt.Printf("  %s  %s  %s\n",
				rec.ID[:8],
				rec.Timestamp.Format("2006-01-02 15:04:05"),
				rec.Provider)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a backup",
	Long:  "Restore a backup by id or id prefix. The current settings are backed up before being replaced.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}

		rec, err := svc.backups.Find(args[0])
		if err != nil {
			return err
		}

		// Label the safety backup with whatever is active right now.
		label := "unknown"
		if current, err := svc.store.Load(); err == nil {
			label = svc.catalog.DisplayName(svc.catalog.Infer(current))
		}

		if err := svc.backups.Restore(*rec, label); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Restored backup %s (%s)", rec.ID[:8], rec.Provider)))
		return nil
	},
}

var backupDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}

		rec, err := svc.backups.Find(args[0])
		if err != nil {
			return err
		}
		if err := svc.backups.Delete(*rec); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Deleted backup %s", rec.ID[:8])))
		return nil
	},
}
