package main

import (
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/key"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var maxLength int

	cmd := &cobra.Command{
		Use:   "validate <key>",
		Short: "Check that a key is well formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := key.Wrap(args[0], maxLength)
			if err != nil {
				return err
			}
			if !k.Validate() {
				return fail(cmd.ErrOrStderr(), "❗ Invalid key format.")
			}
			a.logger.Debug("Key validated", "fingerprint", k.Fingerprint())
			success(cmd.OutOrStdout(), "✅ Valid key (%s)", k.Fingerprint())
			return nil
		},
	}

	cmd.Flags().IntVar(&maxLength, "max-length", key.DefaultMaxLength, "Minimum payload length to accept (minimum 64)")
	return cmd
}
