package main

import (
	"fmt"
	"os"

	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/cipher"
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/key"
	"github.com/spf13/cobra"
)

// Keys generated by encrypt when none is supplied.
const (
	generatedKeyRounds    = 8
	generatedKeyMaxLength = key.DefaultMaxLength
)

const contentFilePerms os.FileMode = 0o644

type cryptOptions struct {
	content string
	file    string
	dir     string

	key               string
	expectFingerprint string

	saveKey     bool
	saveContent bool
	contentOut  string
}

func (o *cryptOptions) bind(cmd *cobra.Command, verb, defaultOut string) {
	flags := cmd.Flags()
	flags.StringVar(&o.content, "content", "", "Content to "+verb)
	flags.StringVar(&o.file, "file", "", "Path to the file to "+verb+" in place")
	flags.StringVar(&o.dir, "dir", "", "Path to the directory whose files to "+verb+" in place")
	flags.StringVar(&o.key, "key", "", "Key to use (defaults to NUMERACRYPT_KEY)")
	flags.BoolVar(&o.saveKey, "save-key", false, "Save the key to the key storage directory")
	flags.BoolVar(&o.saveContent, "save-content", false, "Save the "+verb+"ed content to a file (--content only)")
	flags.StringVar(&o.contentOut, "content-out", defaultOut, "File written by --save-content")
	cmd.MarkFlagsMutuallyExclusive("content", "file", "dir")
	cmd.MarkFlagsOneRequired("content", "file", "dir")
}

func newEncryptCmd(a *app) *cobra.Command {
	opts := &cryptOptions{}
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt files, directories, or strings",
		Long:  `Encrypt files, directories, or strings. A new key is generated and printed when none is given.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEncrypt(cmd, opts)
		},
	}
	opts.bind(cmd, "encrypt", "encrypted_content.txt")
	return cmd
}

func newDecryptCmd(a *app) *cobra.Command {
	opts := &cryptOptions{}
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt files, directories, or strings",
		Long:  `Decrypt files, directories, or strings. Without --key or NUMERACRYPT_KEY the key is read from the terminal.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDecrypt(cmd, opts)
		},
	}
	opts.bind(cmd, "decrypt", "decrypted_content.txt")
	cmd.Flags().StringVar(&opts.expectFingerprint, "expect-fingerprint", "", "Refuse keys whose fingerprint differs (blake2b:<hex>)")
	return cmd
}

func (a *app) runEncrypt(cmd *cobra.Command, opts *cryptOptions) error {
	out := cmd.OutOrStdout()
	if err := a.checkSource(cmd, opts); err != nil {
		return err
	}

	keyValue := opts.key
	if keyValue == "" {
		keyValue = a.cfg.Key
	}
	if keyValue == "" {
		k, err := key.Generate("", generatedKeyRounds, generatedKeyMaxLength)
		if err != nil {
			return err
		}
		keyValue = k.Value()
		info(out, "🔑 Generated key: %s", keyValue)
	}

	c, err := a.crypter(cmd, keyValue)
	if err != nil {
		return err
	}

	var result string
	switch {
	case opts.file != "":
		if err := c.EncryptFile(opts.file); err != nil {
			return err
		}
		success(out, "🔒 Encrypted file: %s", opts.file)
	case opts.dir != "":
		res, err := c.EncryptDir(opts.dir)
		if err != nil {
			return err
		}
		success(out, "🔒 Encrypted directory: %s (%d files, %d skipped)", opts.dir, len(res.Processed), len(res.Skipped))
	default:
		if result, err = c.EncryptText(opts.content); err != nil {
			return err
		}
		success(out, "🔒 Encrypted content: %s", result)
	}

	return a.saveOutputs(cmd, opts, keyValue, result)
}

func (a *app) runDecrypt(cmd *cobra.Command, opts *cryptOptions) error {
	out := cmd.OutOrStdout()
	if err := a.checkSource(cmd, opts); err != nil {
		return err
	}

	keyValue := opts.key
	if keyValue == "" {
		keyValue = a.cfg.Key
	}
	if keyValue == "" {
		var err error
		if keyValue, err = a.readKey("🔑 Key: ", cmd.ErrOrStderr()); err != nil {
			return err
		}
	}

	if opts.expectFingerprint != "" {
		ok, err := key.MatchFingerprint(keyValue, opts.expectFingerprint)
		if err != nil {
			return err
		}
		if !ok {
			return fail(cmd.ErrOrStderr(), "❗ Key fingerprint %s does not match %s",
				key.Fingerprint(keyValue), opts.expectFingerprint)
		}
	}

	c, err := a.crypter(cmd, keyValue)
	if err != nil {
		return err
	}

	var result string
	switch {
	case opts.file != "":
		if err := c.DecryptFile(opts.file); err != nil {
			return err
		}
		success(out, "🔓 Decrypted file: %s", opts.file)
	case opts.dir != "":
		res, err := c.DecryptDir(opts.dir)
		if err != nil {
			return err
		}
		success(out, "🔓 Decrypted directory: %s (%d files, %d skipped)", opts.dir, len(res.Processed), len(res.Skipped))
	default:
		if result, err = c.DecryptText(opts.content); err != nil {
			return err
		}
		success(out, "🔓 Decrypted content: %s", result)
	}

	return a.saveOutputs(cmd, opts, keyValue, result)
}

// checkSource rejects a --file or --dir that is missing or of the wrong kind
// before a key is generated or prompted for.
func (a *app) checkSource(cmd *cobra.Command, opts *cryptOptions) error {
	files := a.fileStore()
	switch {
	case opts.file != "" && !files.Exists(opts.file):
		return fail(cmd.ErrOrStderr(), "❗ File does not exist: %s", opts.file)
	case opts.file != "" && files.IsDirectory(opts.file):
		return fail(cmd.ErrOrStderr(), "❗ %s is a directory, use --dir", opts.file)
	case opts.dir != "" && !files.IsDirectory(opts.dir):
		return fail(cmd.ErrOrStderr(), "❗ Directory does not exist: %s", opts.dir)
	}
	return nil
}

// crypter validates keyValue and builds a Crypter backed by the filesystem.
func (a *app) crypter(cmd *cobra.Command, keyValue string) (*cipher.Crypter, error) {
	if !key.Validate(keyValue) {
		return nil, fail(cmd.ErrOrStderr(), "❗ Invalid key format. Please use a valid key.")
	}
	return cipher.New(keyValue, a.fileStore(), a.logger.Named("cipher"))
}

func (a *app) saveOutputs(cmd *cobra.Command, opts *cryptOptions, keyValue, result string) error {
	out := cmd.OutOrStdout()

	if opts.saveKey {
		path, err := key.FromValue(keyValue).Persist(a.keyStore(), "")
		if err != nil {
			return err
		}
		info(out, "📄 Key saved to %s", path)
	}

	if opts.saveContent {
		if opts.content == "" {
			a.logger.Warn("⚠️ --save-content only applies to --content, nothing saved")
			return nil
		}
		if err := a.fileStore().SaveText(opts.contentOut, result, contentFilePerms); err != nil {
			return fmt.Errorf("failed to save content: %w", err)
		}
		info(out, "📄 Content saved to %s", opts.contentOut)
	}
	return nil
}
