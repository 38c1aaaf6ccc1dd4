package cmd

import (
	"fmt"

	"eggctl/src/internal/security"

	"github.com/spf13/cobra"
)

var authHost string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage per-index authentication tokens",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save a token for an index host",
	Run: func(cmd *cobra.Command, args []string) {
		var token string
		fmt.Printf("Enter token for %s: ", authHost)
		fmt.Scanln(&token)

		store := security.NewTokenStore()
		if err := store.Save(authHost, token); err != nil {
			fmt.Printf("Error saving token: %v\n", err)
			return
		}
		fmt.Printf("Token saved securely for %s\n", authHost)
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke the saved token for an index host",
	Run: func(cmd *cobra.Command, args []string) {
		store := security.NewTokenStore()
		if err := store.Revoke(authHost); err != nil {
			fmt.Printf("Error revoking token: %v\n", err)
			return
		}
		fmt.Printf("Token for %s revoked\n", authHost)
	},
}

func init() {
	authCmd.PersistentFlags().StringVar(&authHost, "host", "pypi.org", "index host the token applies to")
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(authCmd)
}
