package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/chirp/internal/config"
	"github.com/harrylevesque/chirp/internal/crypto"
)

func main() {
	var (
		out   string
		force bool
	)
	cmd := &cobra.Command{
		Use:           "chirp-genkey",
		Short:         "Write a new master key for sealing the chirp session file",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				home, err := config.Home()
				if err != nil {
					return err
				}
				out = filepath.Join(home, "master.key")
			}
			key, err := crypto.GenerateKey()
			if err != nil {
				return fmt.Errorf("generating random key: %w", err)
			}
			if err := crypto.WriteKeyFile(out, key, force); err != nil {
				if errors.Is(err, crypto.ErrKeyExists) {
					return fmt.Errorf("%w; refusing to overwrite without --force (the saved session will no longer open)", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Master key written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "key file (default $CHIRP_HOME/master.key)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing key file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
