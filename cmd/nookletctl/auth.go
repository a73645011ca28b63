package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var email, password, username, name string

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var userPtr, namePtr *string
			if username != "" {
				userPtr = &username
			}
			if name != "" {
				namePtr = &name
			}
			if err := newClient().Register(cmd.Context(), email, password, userPtr, namePtr); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "registered", email)
			return nil
		},
	}
	registerCmd.Flags().StringVarP(&email, "email", "e", "", "Email address (required)")
	registerCmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	registerCmd.Flags().StringVarP(&username, "username", "u", "", "Username (derived from email if omitted)")
	registerCmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(registerCmd)

	var loginEmail, loginPassword string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and print a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := newClient().Login(cmd.Context(), loginEmail, loginPassword)
			if err != nil {
				return err
			}
			// Token goes to stdout alone so it can be captured in scripts.
			_, _ = fmt.Fprintln(os.Stdout, token)
			return nil
		},
	}
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Email address (required)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (required)")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(loginCmd)

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenFlag == "" {
				return fmt.Errorf("--token required")
			}
			return newClient().Logout(cmd.Context())
		},
	}
	rootCmd.AddCommand(logoutCmd)
}
