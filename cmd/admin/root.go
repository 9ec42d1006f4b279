package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"postline/internal/database"
	"postline/internal/repository"
	"postline/internal/service"
	"postline/internal/validation"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// adminApp holds the lazily opened database shared by all subcommands.
type adminApp struct {
	connect  func() (*gorm.DB, error)
	db       *gorm.DB
	hashCost int
}

func (a *adminApp) database() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := a.connect()
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *adminApp) accounts() (*service.AccountService, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}
	svc := service.NewAccountService(repository.NewUserRepository(db))
	if a.hashCost != 0 {
		svc.SetHashCost(a.hashCost)
	}
	return svc, nil
}

func newRootCmd(a *adminApp) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Manage postline accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newUsersCmd(a), newMigrateCmd(a))
	return root
}

func newMigrateCmd(a *adminApp) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newUsersCmd(a *adminApp) *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "List, create, activate and deactivate users",
	}
	users.AddCommand(
		newUsersListCmd(a),
		newSetActiveCmd(a, "activate", true),
		newSetActiveCmd(a, "deactivate", false),
		newUsersCreateCmd(a),
	)
	return users
}

func newUsersListCmd(a *adminApp) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users ordered by username",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.accounts()
			if err != nil {
				return err
			}
			users, err := svc.ListUsers(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USERNAME\tEMAIL\tFIRST NAME\tLAST NAME\tACTIVE")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.Username, u.Email, u.FirstName, u.LastName, u.IsActive)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of users to print")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of users to skip")
	return cmd
}

func newSetActiveCmd(a *adminApp, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: fmt.Sprintf("Mark a user as %sd", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.accounts()
			if err != nil {
				return err
			}
			user, err := svc.SetActive(cmd.Context(), args[0], active)
			if errors.Is(err, service.ErrUserNotFound) {
				return fmt.Errorf("user %s not found", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %sd\n", user.Username, use)
			return nil
		},
	}
}

func newUsersCreateCmd(a *adminApp) *cobra.Command {
	var form validation.SignUpForm
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an active user, validated like sign-up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.accounts()
			if err != nil {
				return err
			}
			form.ConfirmPassword = form.Password
			return createUser(cmd.Context(), cmd, svc, form)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&form.Username, "username", "", "username, starting with @")
	flags.StringVar(&form.FirstName, "first-name", "", "first name")
	flags.StringVar(&form.LastName, "last-name", "", "last name")
	flags.StringVar(&form.Email, "email", "", "email address")
	flags.StringVar(&form.Bio, "bio", "", "optional bio")
	flags.StringVar(&form.Password, "password", "", "password")
	for _, name := range []string{"username", "first-name", "last-name", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func createUser(ctx context.Context, cmd *cobra.Command, svc *service.AccountService, form validation.SignUpForm) error {
	user, errs, err := svc.SignUp(ctx, form)
	if err != nil {
		return err
	}
	if errs.Any() {
		return fmt.Errorf("invalid user: %w", errs)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s (id %d)\n", user.Username, user.ID)
	return nil
}
