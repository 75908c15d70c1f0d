package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dollpublish/dollpublish/internal/credentials"
)

var usersKey string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage the credential registry (users.json)",
	Long: `Manage the credential registry. A running server picks up changes on the
next unknown key, or immediately when REGISTRY_WATCH is enabled.

Opening a data directory without a registry creates one with a "default"
user, exactly like the server does on first start.`,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List usernames",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		for _, name := range s.Usernames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Add a user, or replace their key, and print the key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		key := usersKey
		if key == "" {
			key = credentials.NewKey()
		}
		if err := s.Put(args[0], key); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var usersRemoveCmd = &cobra.Command{
	Use:   "remove USERNAME",
	Short: "Remove a user; their documents stay on disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		return s.Remove(args[0])
	},
}

func openStore() (*credentials.Store, error) {
	dir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}
	return credentials.Open(dir)
}

func init() {
	usersAddCmd.Flags().StringVar(&usersKey, "key", "", "use this key instead of generating one")
	usersCmd.AddCommand(usersListCmd, usersAddCmd, usersRemoveCmd)
	rootCmd.AddCommand(usersCmd)
}
