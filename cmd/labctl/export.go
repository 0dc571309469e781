package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCSVCmd = &cobra.Command{
	Use:   "export-csv",
	Short: "Export every recorded attempt as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		csv := a.progress.ExportCSV()
		if exportOutput == "" || exportOutput == "-" {
			_, err := io.WriteString(cmd.OutOrStdout(), csv+"\n")
			return err
		}

		if err := os.WriteFile(exportOutput, []byte(csv), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutput, err)
		}
		log.Printf("Exported %d sessions to %s", len(a.progress.Progress().Sessions), exportOutput)
		return nil
	},
}

func init() {
	exportCSVCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCSVCmd)
}
