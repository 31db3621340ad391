package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewSessionCommand creates the session command group.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Create, authenticate and close sessions",
	}
	cmd.AddCommand(newSessionCreateCommand(rootOpts))
	cmd.AddCommand(newSessionAuthCommand(rootOpts))
	cmd.AddCommand(newSessionLogoutCommand(rootOpts))
	cmd.AddCommand(newSessionGetCommand(rootOpts))
	return cmd
}

func newSessionCreateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "create",
		Short:         "Start an anonymous session",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(ctx context.Context, e *env) error {
				sess, err := e.svc.CreateSession(ctx)
				if err != nil {
					return e.fail("failed to create session", err)
				}
				return e.out.Success(sess)
			})
		},
	}
}

func newSessionAuthCommand(rootOpts *RootOptions) *cobra.Command {
	var authData string

	cmd := &cobra.Command{
		Use:   "auth <session-id> <user-id>",
		Short: "Record a login on a session",
		Long: `Record a login of a user on a session.

Each call is a new login attempt; earlier attempts stay open until
the session is logged out.

Example:
  insignia session auth Session-0190... User-0190... --auth-data "$PROOF"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(ctx context.Context, e *env) error {
				sess, err := e.svc.AuthenticateSession(ctx, args[0], args[1], authData)
				if err != nil {
					return e.fail("failed to authenticate session", err)
				}
				return e.out.Success(sess)
			})
		},
	}

	cmd.Flags().StringVar(&authData, "auth-data", "", "opaque proof from the authentication provider")
	return cmd
}

func newSessionLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "logout <session-id>",
		Short:         "Close every open login on a session",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(ctx context.Context, e *env) error {
				if err := e.svc.LogoutSession(ctx, args[0]); err != nil {
					return e.fail("failed to logout session", err)
				}
				return e.out.Success(args[0])
			})
		},
	}
}

func newSessionGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <session-id>",
		Short:         "Show the open logins of a session",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(ctx context.Context, e *env) error {
				sessions, err := e.svc.GetSessions(ctx, args[0])
				if err != nil {
					return e.fail("failed to get sessions", err)
				}
				return e.out.SuccessLines(sessions, stringLines(sessions))
			})
		},
	}
}
