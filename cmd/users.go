package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"inmo-backoffice/internal/storage"
	"inmo-backoffice/internal/utils"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage back office users",
	Long:  `List users, create password accounts and manage the email whitelist.`,
}

var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Run: func(cmd *cobra.Command, args []string) {
		listUsers(context.Background())
	},
}

var addUserCmd = &cobra.Command{
	Use:   "add EMAIL PASSWORD",
	Short: "Create a password account and whitelist its email",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		addUser(context.Background(), args[0], args[1])
	},
}

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Manage the login email whitelist",
}

var whitelistAllowCmd = &cobra.Command{
	Use:   "allow EMAIL",
	Short: "Allow an email to log in",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setWhitelist(context.Background(), args[0], true)
	},
}

var whitelistRevokeCmd = &cobra.Command{
	Use:   "revoke EMAIL",
	Short: "Revoke an email's access",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setWhitelist(context.Background(), args[0], false)
	},
}

func listUsers(ctx context.Context) {
	users, err := provider.ListUsers(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list users: %v\n", err)
		os.Exit(1)
	}

	if len(users) == 0 {
		fmt.Println("No users found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tCALENDAR")
	fmt.Fprintln(w, "--\t-----\t----\t----\t--------")

	for _, u := range users {
		name := "-"
		if u.FullName != nil {
			name = *u.FullName
		}
		calendar := "not connected"
		if u.GoogleRefreshToken != nil && *u.GoogleRefreshToken != "" {
			calendar = "connected"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, name, u.Role, calendar)
	}

	w.Flush()
	fmt.Printf("\nTotal users: %d\n", len(users))
}

func addUser(ctx context.Context, emailAddr, password string) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	user, err := provider.CreateUser(ctx, storage.User{
		Email:        emailAddr,
		Role:         storage.RoleUser,
		PasswordHash: &hash,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
		os.Exit(1)
	}

	if err := provider.UpsertWhitelistEmail(ctx, emailAddr, true); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to whitelist email: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created user %s (%s)\n", user.Email, user.ID)
}

func setWhitelist(ctx context.Context, emailAddr string, active bool) {
	if err := provider.UpsertWhitelistEmail(ctx, emailAddr, active); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to update whitelist: %v\n", err)
		os.Exit(1)
	}
	if active {
		fmt.Printf("Allowed %s\n", emailAddr)
	} else {
		fmt.Printf("Revoked %s\n", emailAddr)
	}
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(listUsersCmd)
	usersCmd.AddCommand(addUserCmd)
	usersCmd.AddCommand(whitelistCmd)
	whitelistCmd.AddCommand(whitelistAllowCmd)
	whitelistCmd.AddCommand(whitelistRevokeCmd)
}
