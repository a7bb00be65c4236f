package users

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/iam"
)

var (
	emailFlag    string
	nameFlag     string
	passwordFlag string
	roleFlag     string
	stdinFlag    bool

	setRoleFlag string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user with any role, admin included",
	Example: `  foundationapi users create --email admin@example.org --name "Site Admin" --role admin --stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		role, err := gate.ParseRole(roleFlag)
		if err != nil {
			return fmt.Errorf("%w (valid roles: %s)", err, roleNames())
		}

		password := passwordFlag
		if stdinFlag {
			fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		return withServices(cmd.Context(), func(ctx context.Context, s services) error {
			user, err := s.accounts.CreateUser(ctx, emailFlag, nameFlag, password, role)
			if errors.Is(err, iam.ErrEmailTaken) {
				return fmt.Errorf("user with email %q already exists", emailFlag)
			}
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", role, user.Email, user.ID)
			return nil
		})
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role",
	Short: "Assign a role to an existing user",
	Long: `Assigns a role without the self-change guard the admin API applies.
Use it to recover when no admin can sign in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			return fmt.Errorf("--email flag is required")
		}
		role, err := gate.ParseRole(setRoleFlag)
		if err != nil {
			return fmt.Errorf("%w (valid roles: %s)", err, roleNames())
		}
		return withServices(cmd.Context(), func(ctx context.Context, s services) error {
			user, err := s.accounts.UserByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("failed to find user %q: %w", email, err)
			}
			if err := s.profiles.AssignRole(ctx, user.ID, role); err != nil {
				return fmt.Errorf("failed to assign role: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, role)
			return nil
		})
	},
}

func roleNames() string {
	names := make([]string, 0, len(gate.Roles))
	for _, r := range gate.Roles {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

func init() {
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the user")
	createCmd.Flags().StringVar(&nameFlag, "name", "", "Display name of the user")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for the user (use --stdin to avoid shell history)")
	createCmd.Flags().StringVar(&roleFlag, "role", string(gate.RoleApplicant), "Role to assign")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin instead of --password flag")

	setRoleCmd.Flags().String("email", "", "Email address of the user")
	setRoleCmd.Flags().StringVar(&setRoleFlag, "role", "", "Role to assign")
	_ = setRoleCmd.MarkFlagRequired("role")
}
