package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var selfCmd = &cobra.Command{
	Use:   "self",
	Short: "Manage eggctl itself",
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update eggctl to the latest version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Checking for updates...")
		fmt.Println("eggctl is already up to date (v0.1.0)")
	},
}

func init() {
	selfCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(selfCmd)
}
