//go:build devfaucet

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"forgechain/core"
)

// faucetCmd is only compiled into forgecli when built with -tags devfaucet,
// matching core.Faucet's own build constraint. It must never ship in a
// production binary (spec §7).
func faucetCmd() *cobra.Command {
	var toHex string
	cmd := &cobra.Command{
		Use:   "faucet",
		Short: "mint the dev faucet amount to an address (devfaucet builds only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := decodeAddress(toHex)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			s, closeFn, err := openState(backend, dbPath, logger)
			if err != nil {
				return err
			}
			defer closeFn()
			if err := core.Faucet(s, to); err != nil {
				return err
			}
			fmt.Printf("faucet minted %d to %s\n", core.DevFaucetAmount, to)
			return nil
		},
	}
	cmd.Flags().StringVar(&toHex, "to", "", "hex-encoded 32-byte recipient address")
	return cmd
}
