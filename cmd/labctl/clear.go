package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Erase all recorded progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			ok, err := confirm(cmd, "WARNING: This will delete all recorded progress. Type 'yes' to confirm: ")
			if err != nil {
				return err
			}
			if !ok {
				log.Println("Clear cancelled")
				return nil
			}
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		cleared, err := a.progress.PurgeAllData()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d sessions\n", cleared)
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}
