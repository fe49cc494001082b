package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ochoko/admin/pkg/auth"
)

func (c *cli) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as an administrator and keep the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				fmt.Fprint(c.errOut, "Email: ")
				line, err := c.readLine()
				if err != nil {
					return fmt.Errorf("read email: %w", err)
				}
				email = line
			}
			password, err := c.readSecret("Password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			api, err := c.client()
			if err != nil {
				return err
			}
			snap, err := auth.NewProvider(api, auth.WithLogger(c.log)).Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Logged in as %s\n", snap.Username())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.client()
			if err != nil {
				return err
			}
			auth.NewProvider(api, auth.WithLogger(c.log)).Logout(cmd.Context())
			fmt.Fprintln(c.out, "Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			user, err := api.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			role := "not an admin"
			switch {
			case user.IsSuperuser:
				role = "superuser"
			case user.IsStaff:
				role = "staff"
			}
			fmt.Fprintf(c.out, "%s <%s> (%s)\n", user.Label(), user.Email, role)
			return nil
		},
	}
}
