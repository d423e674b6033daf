package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vuoto/vuoto/internal/config"
	"github.com/vuoto/vuoto/kvcache"
	"github.com/vuoto/vuoto/vaultindex"
)

// Vault names cannot contain NUL, so it splits the vault from the entry key
// without ambiguity.
const entrySep = "\x00"

func entryKey(vault, key string) string {
	return vault + entrySep + key
}

func newEntryCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Manage the encrypted entries of a vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set VAULT KEY VALUE",
			Short: "Store a value in a vault",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				if args[1] == "" {
					return errors.New("key is empty")
				}
				return c.withCache(args[0], func(cache kvcache.Cache) error {
					if err := cache.Set(entryKey(args[0], args[1]), []byte(args[2])); err != nil {
						return err
					}
					c.log.WithField("vault", args[0]).WithField("key", args[1]).Info("entry stored")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "get VAULT KEY",
			Short: "Print a value stored in a vault",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withCache(args[0], func(cache kvcache.Cache) error {
					v, ok, err := cache.Get(entryKey(args[0], args[1]))
					if err != nil {
						return err
					}
					if !ok {
						return errors.Errorf("entry %q not found in vault %q", args[1], args[0])
					}
					fmt.Fprintln(c.out, string(v))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "list VAULT",
			Aliases: []string{"ls"},
			Short:   "List the keys stored in a vault",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				prefix := entryKey(args[0], "")
				return c.withCache(args[0], func(cache kvcache.Cache) error {
					for e, err := range cache.All() {
						if err != nil {
							return err
						}
						if key, ok := strings.CutPrefix(e.Key, prefix); ok {
							fmt.Fprintln(c.out, key)
						}
					}
					return nil
				})
			},
		},
	)
	return cmd
}

// withCache checks that vault is registered, then opens the sealed entry cache
// for the duration of fn.
func (c *cli) withCache(vault string, fn func(cache kvcache.Cache) error) error {
	err := c.withIndex(func(idx *vaultindex.Index) error {
		if !idx.Contains(vault) {
			return errors.Errorf("vault %q not found", vault)
		}
		return nil
	})
	if err != nil {
		return err
	}

	dir, err := c.cfg.EnsureHome()
	if err != nil {
		return err
	}
	raw, err := kvcache.Open(config.CachePath(dir), c.cfg.CacheCapacity)
	if err != nil {
		return err
	}
	defer raw.Close()

	passphrase, err := c.passphrase()
	if err != nil {
		return err
	}
	sealed, err := kvcache.NewSealed(raw, passphrase)
	if err != nil {
		return err
	}
	return fn(sealed)
}

func (c *cli) passphrase() ([]byte, error) {
	if v := os.Getenv(config.EnvPassphrase); v != "" {
		return []byte(v), nil
	}
	p, err := c.readPassphrase()
	if err != nil {
		return nil, errors.Wrap(err, "cannot read passphrase")
	}
	return p, nil
}
