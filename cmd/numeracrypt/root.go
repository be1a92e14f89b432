package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/numeracrypt/go/numeracrypt/internal/config"
	"github.com/provide-io/numeracrypt/go/numeracrypt/internal/store"
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/logging"
	"github.com/spf13/cobra"
)

// errReported marks failures whose message was already printed.
var errReported = errors.New("reported")

// app is the state shared by every subcommand of one invocation.
type app struct {
	envFile  string
	logLevel string

	cfg      *config.Config
	logger   hclog.Logger
	closeLog func() error

	// readKey prompts for a key when none was supplied.
	readKey func(prompt string, stderr io.Writer) (string, error)
}

func newApp() *app {
	return &app{
		logger:   hclog.NewNullLogger(),
		closeLog: func() error { return nil },
		readKey:  promptKey,
	}
}

func newRootCmd() *cobra.Command {
	return newAppCmd(newApp())
}

func newAppCmd(a *app) *cobra.Command {
	var versionFlag bool

	rootCmd := &cobra.Command{
		Use:           "numeracrypt",
		Short:         "NumeraCrypt: a custom encryption tool",
		Long:          `Encrypt and decrypt strings, files and directories with NumeraCrypt keys.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closeLog()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if versionFlag {
				fmt.Fprint(cmd.OutOrStdout(), versionString())
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error), optionally json:<level>")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Path to a .env file (defaults to ./.env when present)")
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")

	rootCmd.AddCommand(
		newEncryptCmd(a),
		newDecryptCmd(a),
		newKeygenCmd(a),
		newValidateCmd(a),
	)
	return rootCmd
}

// setup loads configuration and builds the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, source := logging.ResolveLevel(a.logLevel)
	if cfg.JSONLog && !strings.HasPrefix(level, "json") {
		level = "json:" + level
	}
	output, closeFn := logging.OpenOutput(cfg.LogPath)
	a.closeLog = closeFn
	a.logger = logging.NewLogger("numeracrypt", level, output)
	a.logger.Debug("Logger configured", "level", level, "source", source)

	for _, warning := range cfg.Warnings {
		a.logger.Warn("⚠️ " + warning)
	}
	return nil
}

func (a *app) keyStore() *store.KeyStore {
	return store.NewKeyStore(a.cfg.KeyStoreConfig(), a.logger.Named("keystore"))
}

func (a *app) fileStore() *store.FileStore {
	return store.NewFileStore(a.logger.Named("files"))
}

// Status line helpers. color disables itself when stdout is not a terminal.
var (
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgCyan)
	failColor    = color.New(color.FgRed)
)

func success(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, format+"\n", args...)
}

func info(w io.Writer, format string, args ...any) {
	infoColor.Fprintf(w, format+"\n", args...)
}

// fail prints a message and returns errReported so main exits 1 quietly.
func fail(w io.Writer, format string, args ...any) error {
	failColor.Fprintf(w, format+"\n", args...)
	return errReported
}
