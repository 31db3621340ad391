package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/insignia/internal/entity"
)

// UserCreateOptions holds flags for the user create command.
type UserCreateOptions struct {
	*RootOptions
	entity.NewUser
}

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create and inspect users",
	}
	cmd.AddCommand(newUserCreateCommand(rootOpts))
	cmd.AddCommand(newUserGetCommand(rootOpts))
	cmd.AddCommand(newUserLookupCommand(rootOpts))
	cmd.AddCommand(newUserDocsCommand(rootOpts))
	return cmd
}

func newUserCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UserCreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long: `Create a user vertex with its profile, personal number and
optional email and phone.

Example:
  insignia user create --pno 191212121212 --name "Tolvan Tolvansson" \
    --given-name Tolvan --surname Tolvansson --email tolvan@example.se`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts.RootOptions, cmd, func(ctx context.Context, e *env) error {
				userID, err := e.svc.CreateUser(ctx, opts.NewUser)
				if err != nil {
					return e.fail("failed to create user", err)
				}
				return e.out.Success(userID)
			})
		},
	}

	cmd.Flags().StringVar(&opts.PersonalNumber, "pno", "", "personal number (required)")
	_ = cmd.MarkFlagRequired("pno")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.GivenName, "given-name", "", "given name")
	cmd.Flags().StringVar(&opts.Surname, "surname", "", "surname")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "phone number")

	return cmd
}

func newUserGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <user-id>",
		Short:         "Show a user",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(ctx context.Context, e *env) error {
				user, err := e.svc.GetUser(ctx, args[0])
				if err != nil {
					return e.fail("failed to get user", err)
				}
				if user == nil {
					return e.fail("failed to get user", &entity.ReferenceError{Code: entity.ErrCodeInvalidUserID, ID: args[0]})
				}
				return e.out.Success(user)
			})
		},
	}
}

func newUserLookupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "lookup <personal-number>",
		Short:         "Find users by personal number",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(ctx context.Context, e *env) error {
				users, err := e.svc.LookupUsersByPersonalNumber(ctx, args[0])
				if err != nil {
					return e.fail("failed to look up users", err)
				}
				return e.out.SuccessLines(users, stringLines(users))
			})
		},
	}
}

func newUserDocsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "docs <user-id>",
		Short:         "List the documents a user owns or may read",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(ctx context.Context, e *env) error {
				refs, err := e.svc.ListUserDocuments(ctx, args[0])
				if err != nil {
					return e.fail("failed to list documents", err)
				}
				lines := make([]string, len(refs))
				for i, ref := range refs {
					lines[i] = ref.DocID
				}
				return e.out.SuccessLines(refs, lines)
			})
		},
	}
}

// stringLines formats each element with its String method.
func stringLines[T fmt.Stringer](items []T) []string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = item.String()
	}
	return lines
}
