// Package cmd implements pairsim, a command line simulator for pairs described in a pool file.
//
// A pool file lists pools under the pools key:
//
//	pools:
//	  - name: luna-usd
//	    type: xyk
//	    assets: [{denom: uluna, precision: 6}, {denom: uusd, precision: 6}]
//	    reserves: [30000000000, 20000000000]
//	    fee_bps: 30
//	    maker_fee_bps: 0
//
// Every flag can also be set through the environment with the PAIRSIM_ prefix.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix = "PAIRSIM"

	flagConfig   = "config"
	flagLogLevel = "log-level"
	flagPool     = "pool"
	flagOffer    = "offer"
	flagAsk      = "ask"
)

// NewRootCmd creates the pairsim root command.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:          "pairsim",
		Short:        "Simulate AMM pairs on an in-memory chain",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlags(cmd.Flags())
		},
	}
	rootCmd.PersistentFlags().String(flagConfig, "pools.yaml", "Pool file (yaml, json or toml)")
	rootCmd.PersistentFlags().String(flagLogLevel, zerolog.InfoLevel.String(), "Log level (trace|debug|info|warn|error)")

	rootCmd.AddCommand(
		SimulateCmd(v),
		ReverseSimulateCmd(v),
		ServeCmd(v),
	)
	return rootCmd
}

func newLogger(level string) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return log.NewLogger(os.Stderr, log.LevelOption(lvl), log.ColorOption(false)), nil
}

// loadWorld seeds a sandbox with the pool file named by the config flag.
func loadWorld(v *viper.Viper) (*World, log.Logger, error) {
	logger, err := newLogger(v.GetString(flagLogLevel))
	if err != nil {
		return nil, nil, err
	}
	file := viper.New()
	file.SetConfigFile(v.GetString(flagConfig))
	if err := file.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read pool file: %w", err)
	}
	pools, err := LoadPools(file)
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With("module", "pairsim")
	w, err := NewWorld(pools, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("pools seeded", "count", len(pools), "config", file.ConfigFileUsed())
	return w, logger, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}
