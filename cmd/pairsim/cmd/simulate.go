package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

// SimulateCmd prices a swap.
func SimulateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "simulate",
		Short:   "Simulate a swap of --offer against --pool",
		Example: "pairsim simulate --pool luna-usd --offer 1000000uluna",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, _, err := loadWorld(v)
			if err != nil {
				return err
			}
			pair, err := w.Pair(v.GetString(flagPool))
			if err != nil {
				return err
			}
			offer, err := w.ParseAsset(v.GetString(flagOffer))
			if err != nil {
				return err
			}
			q := types.SimulationQuery{OfferAsset: offer}
			if ask := v.GetString(flagAsk); ask != "" {
				info := w.AssetInfo(ask)
				q.AskAssetInfo = &info
			}
			res, err := w.Host.Keeper.Simulation(w.QueryCtx(cmd.Context(), time.Time{}), pair, q)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addPoolFlag(cmd.Flags())
	cmd.Flags().String(flagOffer, "", "Offered amount and denom, like 1000000uluna")
	cmd.Flags().String(flagAsk, "", "Asked denom, defaults to the other asset of the pool")
	return cmd
}

// ReverseSimulateCmd prices the offer needed for an ask.
func ReverseSimulateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reverse-simulate",
		Short:   "Compute the offer needed to receive --ask from --pool",
		Example: "pairsim reverse-simulate --pool luna-usd --ask 1000000uusd",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, _, err := loadWorld(v)
			if err != nil {
				return err
			}
			pair, err := w.Pair(v.GetString(flagPool))
			if err != nil {
				return err
			}
			ask, err := w.ParseAsset(v.GetString(flagAsk))
			if err != nil {
				return err
			}
			q := types.ReverseSimulationQuery{AskAsset: ask}
			if offer := v.GetString(flagOffer); offer != "" {
				info := w.AssetInfo(offer)
				q.OfferAssetInfo = &info
			}
			res, err := w.Host.Keeper.ReverseSimulation(w.QueryCtx(cmd.Context(), time.Time{}), pair, q)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addPoolFlag(cmd.Flags())
	cmd.Flags().String(flagAsk, "", "Asked amount and denom, like 1000000uusd")
	cmd.Flags().String(flagOffer, "", "Offered denom, defaults to the other asset of the pool")
	return cmd
}

func addPoolFlag(fs *pflag.FlagSet) {
	fs.String(flagPool, "", "Pool name, as listed in the pool file")
}
