package main

import (
	"fmt"
	"io"
	"os"

	"github.com/howeyc/gopass"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vuoto/vuoto/internal/config"
)

// version
const (
	major = "0"
	minor = "1"
	patch = "0"
)

type cli struct {
	cfg *config.Config
	log *logrus.Logger
	out io.Writer

	// readPassphrase is used when the passphrase is not in the environment.
	readPassphrase func() ([]byte, error)
}

func newCLI() *cli {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	return &cli{
		cfg: config.New(),
		log: log,
		out: os.Stdout,
		readPassphrase: func() ([]byte, error) {
			return gopass.GetPasswdPrompt("Passphrase: ", false, os.Stdin, os.Stderr)
		},
	}
}

func newRootCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vuoto [OPTIONS] COMMAND [ARG...]",
		Short:         "Vuoto keeps a local registry of password vaults",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := c.cfg.Level()
			if err != nil {
				return err
			}
			c.log.SetLevel(lvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.SetOut(c.out)
	c.cfg.InstallFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newVaultCommand(c),
		newEntryCommand(c),
		newVersionCommand(c),
	)
	return cmd
}

func newVersionCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.out, "vuoto v%s.%s.%s\n", major, minor, patch)
		},
	}
}

func main() {
	c := newCLI()
	if err := newRootCommand(c).Execute(); err != nil {
		c.log.WithError(err).Fatal("operation failed")
	}
}
