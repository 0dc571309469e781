package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	backupOutput string
	backupInput  string
	backupClear  bool
	backupYes    bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up or restore accounts, progress and the audit log",
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a JSON backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Generate default filename if not provided
		outputPath := backupOutput
		if outputPath == "" {
			outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
		}

		// Ensure directory exists
		if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		log.Printf("Exporting backup to: %s", outputPath)
		if err := a.backup.Export(outputPath); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if info, err := os.Stat(outputPath); err == nil {
			log.Printf("Export complete! File size: %.2f KB", float64(info.Size())/1024)
		}
		return nil
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Restore a JSON backup",
	Long: `Restore a JSON backup. Accounts whose email or ID already exists are
skipped. Sessions are merged with the recorded ones by ID and statistics are
rebuilt; --clear discards recorded sessions first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(backupInput); err != nil {
			return fmt.Errorf("input file does not exist: %s", backupInput)
		}

		if backupClear && !backupYes {
			ok, err := confirm(cmd, "WARNING: This will replace all recorded progress. Type 'yes' to confirm: ")
			if err != nil {
				return err
			}
			if !ok {
				log.Println("Import cancelled")
				return nil
			}
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		log.Printf("Importing backup from: %s", backupInput)
		result, err := a.backup.Import(backupInput, backupClear)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Accounts imported: %d, skipped: %d\nSessions: %d\nAudit entries: %d\n",
			result.AccountsImported, result.AccountsSkipped, result.Sessions, result.AuditEntries)
		return nil
	},
}

func init() {
	backupExportCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	backupImportCmd.Flags().StringVarP(&backupInput, "input", "i", "", "input file path")
	backupImportCmd.Flags().BoolVar(&backupClear, "clear", false, "replace recorded progress instead of merging (destructive)")
	backupImportCmd.Flags().BoolVarP(&backupYes, "yes", "y", false, "skip the confirmation prompt")
	backupImportCmd.MarkFlagRequired("input")

	backupCmd.AddCommand(backupExportCmd, backupImportCmd)
	rootCmd.AddCommand(backupCmd)
}

func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	return strings.TrimSpace(line) == "yes", nil
}
