package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupExportCmd, backupImportCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and import non-secret state",
}

var backupExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export servers, triggers, aliases and favorites (tokens excluded)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)

		data, err := stores.Export()
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := os.WriteFile(args[0], data, 0o600); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
		fmt.Printf("Exported to %s (auth tokens are not included)\n", args[0])
		return nil
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a backup; re-enter server tokens afterwards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read backup: %w", err)
		}
		if err := stores.Import(data); err != nil {
			return fmt.Errorf("import: %w", err)
		}
		fmt.Println("Imported. Server tokens were not restored; set them again with 'server add' or config.")
		return nil
	},
}
