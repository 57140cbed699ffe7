//go:build !devfaucet

package main

import "github.com/spf13/cobra"

func faucetCmd() *cobra.Command { return nil }
