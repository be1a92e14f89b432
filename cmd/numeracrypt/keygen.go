package main

import (
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/key"
	"github.com/spf13/cobra"
)

func newKeygenCmd(a *app) *cobra.Command {
	var (
		salt      string
		rounds    int
		maxLength int
		save      bool
		dir       string
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			k, err := key.Generate(salt, rounds, maxLength)
			if err != nil {
				return err
			}
			info(out, "🔑 Generated key: %s", k.Value())
			a.logger.Info("Key generated", "fingerprint", k.Fingerprint(), "rounds", k.Rounds())

			if save || dir != "" {
				path, err := k.Persist(a.keyStore(), dir)
				if err != nil {
					return err
				}
				info(out, "📄 Key saved to %s", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&salt, "salt", "", "Salt mixed into the random seed")
	cmd.Flags().IntVar(&rounds, "rounds", generatedKeyRounds, "Number of cipher rounds (minimum 5)")
	cmd.Flags().IntVar(&maxLength, "max-length", generatedKeyMaxLength, "Digits in the random seed (minimum 64)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the key to the key storage directory")
	cmd.Flags().StringVar(&dir, "dir", "", "Save the key into this directory instead (implies --save)")
	return cmd
}
