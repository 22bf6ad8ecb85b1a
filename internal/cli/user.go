package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/account"
)

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserRegisterCommand(rootOpts))
	cmd.AddCommand(newUserShowCommand(rootOpts))
	return cmd
}

func newUserRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var reg account.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a user",
		Long: `Register a user. The email is normalized and must be unique.

Examples:
  kantin user register --username andin --email andin@example.com --password secret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				u, err := a.repo.Accounts.Register(ctx, reg)
				if err != nil {
					return a.out.Fail("register", err)
				}
				return a.out.Render(u, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "✓ Registered %s <%s> as user %d\n", u.Username, u.Email, u.ID)
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&reg.Username, "username", "", "user name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password")
	cmd.Flags().StringVar(&reg.FullName, "full-name", "", "full name")
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user id", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				u, err := a.repo.Accounts.Get(ctx, id)
				if err != nil {
					return a.out.Fail("user", err)
				}
				return a.out.Render(u, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%d  %s <%s>  %s  %s\n", u.ID, u.Username, u.Email, u.FullName, u.Phone)
					return err
				})
			})
		},
	}
}
