package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// DocCompleteOptions holds flags for the doc complete command.
type DocCompleteOptions struct {
	*RootOptions
	Bucket   string
	Key      string
	Checksum string
}

// NewDocCommand creates the doc command group.
func NewDocCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Register documents and manage access and signatures",
	}
	cmd.AddCommand(newDocRegisterCommand(rootOpts))
	cmd.AddCommand(newDocCompleteCommand(rootOpts))
	cmd.AddCommand(newDocGetCommand(rootOpts))
	cmd.AddCommand(newDocPairCommand(rootOpts, "grant", "Give a user read access",
		func(ctx context.Context, e *env, docID, userID string) error {
			return e.svc.GrantDocumentReader(ctx, docID, userID)
		}))
	cmd.AddCommand(newDocPairCommand(rootOpts, "request-signature", "Ask a user to sign",
		func(ctx context.Context, e *env, docID, userID string) error {
			return e.svc.RequestSignature(ctx, docID, userID)
		}))
	cmd.AddCommand(newDocSignCommand(rootOpts))
	return cmd
}

func newDocRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "register <owner-user-id>",
		Short:         "Register a new document owned by a user",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(ctx context.Context, e *env) error {
				docID, err := e.svc.RegisterDocumentOwnership(ctx, args[0])
				if err != nil {
					return e.fail("failed to register document", err)
				}
				return e.out.Success(docID)
			})
		},
	}
}

func newDocCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocCompleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "complete <doc-id>",
		Short: "Record a finished upload",
		Long: `Link a document to the S3 object holding its bytes and to its
SHA-256 checksum.

Example:
  insignia doc complete Document-0190... --bucket uploads --key 2021/03/a.pdf --checksum 9f86d0...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts.RootOptions, cmd, func(ctx context.Context, e *env) error {
				if err := e.svc.CompleteDocumentUpload(ctx, args[0], opts.Bucket, opts.Key, opts.Checksum); err != nil {
					return e.fail("failed to complete upload", err)
				}
				return e.out.Success(args[0])
			})
		},
	}

	cmd.Flags().StringVar(&opts.Bucket, "bucket", "", "S3 bucket (required)")
	_ = cmd.MarkFlagRequired("bucket")
	cmd.Flags().StringVar(&opts.Key, "key", "", "S3 object key (required)")
	_ = cmd.MarkFlagRequired("key")
	cmd.Flags().StringVar(&opts.Checksum, "checksum", "", "hex SHA-256 of the content (required)")
	_ = cmd.MarkFlagRequired("checksum")

	return cmd
}

func newDocGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <doc-id>",
		Short:         "Show a document with its access list and signatures",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(ctx context.Context, e *env) error {
				doc, err := e.svc.GetDocument(ctx, args[0])
				if err != nil {
					return e.fail("failed to get document", err)
				}
				return e.out.Success(doc)
			})
		},
	}
}

func newDocPairCommand(rootOpts *RootOptions, name, short string, run func(ctx context.Context, e *env, docID, userID string) error) *cobra.Command {
	return &cobra.Command{
		Use:           name + " <doc-id> <user-id>",
		Short:         short,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(ctx context.Context, e *env) error {
				if err := run(ctx, e, args[0], args[1]); err != nil {
					return e.fail("failed to "+name, err)
				}
				return e.out.Success(args[0])
			})
		},
	}
}

func newDocSignCommand(rootOpts *RootOptions) *cobra.Command {
	var signature string

	cmd := &cobra.Command{
		Use:           "sign <doc-id> <user-id>",
		Short:         "Record a user's signature over a document",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(ctx context.Context, e *env) error {
				if err := e.svc.RecordSignature(ctx, args[0], args[1], signature); err != nil {
					return e.fail("failed to record signature", err)
				}
				return e.out.Success(args[0])
			})
		},
	}

	cmd.Flags().StringVar(&signature, "signature", "", "signature data (required)")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}
