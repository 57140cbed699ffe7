package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	pkgconfig "forgechain/pkg/config"

	"forgechain/core"
)

var (
	logger    = logrus.New()
	backend   string
	dbPath    string
	configEnv string
)

func main() {
	_ = godotenv.Load() // optional .env; absence is not an error

	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(envOrDefault("FORGE_LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(lvl)
	}

	rootCmd := &cobra.Command{
		Use:   "forgecli",
		Short: "operator CLI for the forgechain state-transition core",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.WithField("run_id", uuid.NewString()).Debug("forgecli invoked")

			// Flags win when set explicitly; otherwise fall back to the
			// pkg/config file for the given environment, then to the
			// hardcoded defaults below.
			if !cmd.Flags().Changed("backend") || !cmd.Flags().Changed("db-path") {
				if cfg, err := pkgconfig.Load(configEnv); err == nil {
					if !cmd.Flags().Changed("backend") && cfg.Storage.Backend != "" {
						backend = cfg.Storage.Backend
					}
					if !cmd.Flags().Changed("db-path") && cfg.Storage.DBPath != "" {
						dbPath = cfg.Storage.DBPath
					}
				} else {
					logger.WithError(err).Debug("no pkg/config file found, using flag/env defaults")
				}
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configEnv, "env", envOrDefault("FORGE_ENV", ""), "pkg/config environment overlay to merge (e.g. bootstrap)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", envOrDefault("FORGE_STORAGE_BACKEND", "mem"), "storage backend: mem or leveldb")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", envOrDefault("FORGE_DB_PATH", "data/forgechain"), "leveldb data directory (ignored for mem backend)")

	rootCmd.AddCommand(genesisCmd())
	rootCmd.AddCommand(txCmd())
	rootCmd.AddCommand(blockCmd())
	rootCmd.AddCommand(queryCmd())
	if fc := faucetCmd(); fc != nil {
		rootCmd.AddCommand(fc)
	}

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func genesisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "run the genesis initializer against the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := openState(backend, dbPath, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := core.RunGenesis(s); err != nil {
				return err
			}
			bal, err := core.GetBalance(s, core.GenesisIdentity)
			if err != nil {
				return err
			}
			fmt.Printf("genesis identity %s funded with %d\n", core.GenesisIdentity, bal)
			return nil
		},
	}
	return cmd
}

func txCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "tx", Short: "transaction submission"}

	var moduleID, callID, fromHex, payloadHex, sigHex string
	var nonce, fee uint64

	send := &cobra.Command{
		Use:   "send",
		Short: "dispatch a single transaction directly against the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := decodeAddress(fromHex)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			payload, err := hex.DecodeString(payloadHex)
			if err != nil {
				return fmt.Errorf("--payload-hex: %w", err)
			}
			var sig []byte
			if sigHex != "" {
				if sig, err = hex.DecodeString(sigHex); err != nil {
					return fmt.Errorf("--signature-hex: %w", err)
				}
			}

			s, closeFn, err := openState(backend, dbPath, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			tx := &core.Transaction{
				From:      from,
				Nonce:     nonce,
				ModuleID:  moduleID,
				CallID:    callID,
				Payload:   payload,
				Fee:       fee,
				Signature: sig,
			}
			rt := core.NewDefaultRuntime()
			if err := rt.DispatchTx(tx, s); err != nil {
				return err
			}
			fmt.Printf("dispatched %s.%s from %s\n", moduleID, callID, from)
			return nil
		},
	}
	send.Flags().StringVar(&moduleID, "module", "", "module_id, e.g. bank_cgt")
	send.Flags().StringVar(&callID, "call", "", "call_id, e.g. transfer")
	send.Flags().StringVar(&fromHex, "from", "", "hex-encoded 32-byte sender address")
	send.Flags().Uint64Var(&nonce, "nonce", 0, "sender nonce")
	send.Flags().Uint64Var(&fee, "fee", 0, "fee, carried but not routed (spec non-goal)")
	send.Flags().StringVar(&payloadHex, "payload-hex", "", "hex-encoded call payload")
	send.Flags().StringVar(&sigHex, "signature-hex", "", "hex-encoded signature bytes (carried, never verified)")
	cmd.AddCommand(send)
	return cmd
}

func blockCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "block", Short: "block application"}

	var height, timestamp, nonce uint64
	var prevHashHex, difficultyHex string
	var txHexes []string
	var viaMempool bool

	apply := &cobra.Command{
		Use:   "apply",
		Short: "verify proof-of-work and apply a block's transactions in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			prevHash, err := decodeHash(prevHashHex)
			if err != nil {
				return fmt.Errorf("--prev-hash: %w", err)
			}
			target, err := decodeUint128(difficultyHex)
			if err != nil {
				return fmt.Errorf("--difficulty-hex: %w", err)
			}

			txs := make([]*core.Transaction, 0, len(txHexes))
			for i, h := range txHexes {
				raw, err := hex.DecodeString(h)
				if err != nil {
					return fmt.Errorf("--tx[%d]: %w", i, err)
				}
				tx, err := core.DecodeTransaction(raw)
				if err != nil {
					return fmt.Errorf("--tx[%d]: %w", i, err)
				}
				txs = append(txs, tx)
			}

			// --from-mempool routes the decoded transactions through a
			// Mempool's Submit/Drain pair instead of building the block
			// body directly, exercising the same unbounded-append path a
			// long-running host would use between blocks.
			if viaMempool {
				mp := core.NewMempool()
				for _, tx := range txs {
					mp.Submit(tx)
				}
				txs = mp.Drain()
			}

			body := make([]core.Transaction, 0, len(txs))
			for _, tx := range txs {
				body = append(body, *tx)
			}

			s, closeFn, err := openState(backend, dbPath, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			block := &core.Block{
				Header: core.BlockHeader{
					Height:           height,
					PrevHash:         prevHash,
					Timestamp:        timestamp,
					DifficultyTarget: target,
					Nonce:            nonce,
				},
				Body: body,
			}
			if err := s.ExecuteBlock(block); err != nil {
				return err
			}
			root, err := s.StateRoot()
			if err != nil {
				return err
			}
			fmt.Printf("applied block %d, %d tx(s), state root %s\n", height, len(body), root)
			return nil
		},
	}
	apply.Flags().Uint64Var(&height, "height", 0, "block height")
	apply.Flags().StringVar(&prevHashHex, "prev-hash", "", "hex-encoded 32-byte previous block hash")
	apply.Flags().Uint64Var(&timestamp, "timestamp", 0, "block timestamp")
	apply.Flags().StringVar(&difficultyHex, "difficulty-hex", "", "hex-encoded 16-byte big-endian difficulty target")
	apply.Flags().Uint64Var(&nonce, "nonce", 0, "proof-of-work nonce found by an external miner")
	apply.Flags().StringArrayVar(&txHexes, "tx", nil, "hex-encoded canonical transaction, repeatable, in execution order")
	apply.Flags().BoolVar(&viaMempool, "from-mempool", false, "route the given --tx values through a Mempool Submit/Drain pair before building the block body")
	cmd.AddCommand(apply)
	return cmd
}

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "query", Short: "read-only state queries"}

	var addrHex string
	balance := &cobra.Command{
		Use:   "balance",
		Short: "print an address's bank_cgt balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := decodeAddress(addrHex)
			if err != nil {
				return err
			}
			s, closeFn, err := openState(backend, dbPath, logger)
			if err != nil {
				return err
			}
			defer closeFn()
			bal, err := core.GetBalance(s, addr)
			if err != nil {
				return err
			}
			fmt.Println(bal)
			return nil
		},
	}
	balance.Flags().StringVar(&addrHex, "address", "", "hex-encoded 32-byte address")
	cmd.AddCommand(balance)

	archon := &cobra.Command{
		Use:   "archon",
		Short: "print whether an address holds the Archon flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := decodeAddress(addrHex)
			if err != nil {
				return err
			}
			s, closeFn, err := openState(backend, dbPath, logger)
			if err != nil {
				return err
			}
			defer closeFn()
			is, err := core.IsArchon(s, addr)
			if err != nil {
				return err
			}
			fmt.Println(is)
			return nil
		},
	}
	archon.Flags().StringVar(&addrHex, "address", "", "hex-encoded 32-byte address")
	cmd.AddCommand(archon)

	profile := &cobra.Command{
		Use:   "profile",
		Short: "print an address's Aeon profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := decodeAddress(addrHex)
			if err != nil {
				return err
			}
			s, closeFn, err := openState(backend, dbPath, logger)
			if err != nil {
				return err
			}
			defer closeFn()
			p, err := core.GetAeonProfile(s, addr)
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", p)
			return nil
		},
	}
	profile.Flags().StringVar(&addrHex, "address", "", "hex-encoded 32-byte address")
	cmd.AddCommand(profile)

	var nftID uint64
	nft := &cobra.Command{
		Use:   "nft",
		Short: "print a DGen NFT's metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := openState(backend, dbPath, logger)
			if err != nil {
				return err
			}
			defer closeFn()
			m, err := core.GetDGenMetadata(s, nftID)
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", m)
			return nil
		},
	}
	nft.Flags().Uint64Var(&nftID, "id", 0, "nft id")
	cmd.AddCommand(nft)

	var listingID uint64
	listing := &cobra.Command{
		Use:   "listing",
		Short: "print an abyss_registry listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := openState(backend, dbPath, logger)
			if err != nil {
				return err
			}
			defer closeFn()
			l, err := core.GetListing(s, listingID)
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", l)
			return nil
		},
	}
	listing.Flags().Uint64Var(&listingID, "id", 0, "listing id")
	cmd.AddCommand(listing)

	return cmd
}

func decodeAddress(s string) (core.Address, error) {
	var a core.Address
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(a) {
		return a, fmt.Errorf("expected %d hex-encoded bytes", len(a))
	}
	copy(a[:], b)
	return a, nil
}

func decodeHash(s string) (core.Hash, error) {
	var h core.Hash
	if s == "" {
		return h, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(h) {
		return h, fmt.Errorf("expected %d hex-encoded bytes", len(h))
	}
	copy(h[:], b)
	return h, nil
}

func decodeUint128(s string) (core.Uint128, error) {
	var u core.Uint128
	if s == "" {
		return u, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(u) {
		return u, fmt.Errorf("expected %d hex-encoded bytes", len(u))
	}
	copy(u[:], b)
	return u, nil
}
