package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vuoto/vuoto/vaultindex"
)

func newVaultCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Manage the registered vaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List the registered vaults",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withIndex(func(idx *vaultindex.Index) error {
					for _, name := range idx.Vaults() {
						fmt.Fprintln(c.out, name)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "add NAME",
			Short: "Register a vault",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withIndex(func(idx *vaultindex.Index) error {
					if err := idx.Add(args[0]); err != nil {
						return err
					}
					c.log.WithField("vault", args[0]).Info("vault added")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "rm NAME",
			Aliases: []string{"remove"},
			Short:   "Remove a vault",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withIndex(func(idx *vaultindex.Index) error {
					removed, err := idx.Remove(args[0])
					if err != nil {
						return err
					}
					if !removed {
						return errors.Errorf("vault %q not found", args[0])
					}
					c.log.WithField("vault", args[0]).Info("vault removed")
					return nil
				})
			},
		},
	)
	return cmd
}

// withIndex opens the vault index in the home directory for the duration of
// fn.
func (c *cli) withIndex(fn func(idx *vaultindex.Index) error) error {
	dir, err := c.cfg.EnsureHome()
	if err != nil {
		return err
	}
	idx, err := vaultindex.Open(dir, vaultindex.WithLogger(c.log))
	if err != nil {
		return err
	}
	if err := fn(idx); err != nil {
		_ = idx.Close()
		return err
	}
	return idx.Close()
}
