package main

import (
	"fmt"

	"github.com/qapish/qapish/internal/cli"
	"github.com/qapish/qapish/internal/common"
	"github.com/qapish/qapish/internal/model"
	"github.com/qapish/qapish/internal/pricing"
	"github.com/spf13/cobra"
)

type quoteOptions struct {
	curve     string
	finalPct  float64
	price     uint32
	hours     uint32
	fullHours uint32
}

func quoteCmd() *cobra.Command {
	opts := &quoteOptions{}
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price used hardware with a depreciation rule",
		Long: `Compute the depreciated price of hardware with a given usage, using the
same rules the catalog applies to used provenance options.

Example:
  qapish quote --price 2500 --hours 13140 --curve linear --final-pct 30 --full-hours 26280`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := runQuote(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().Uint32Var(&opts.price, "price", 0, "original price in USDC")
	cmd.Flags().Uint32Var(&opts.hours, "hours", 0, "hours of prior use")
	cmd.Flags().StringVar(&opts.curve, "curve", model.CurveLinear.String(), "depreciation curve (linear, stepped, exponential)")
	cmd.Flags().Float64Var(&opts.finalPct, "final-pct", 30, "percentage of the original price kept once fully depreciated")
	cmd.Flags().Uint32Var(&opts.fullHours, "full-hours", 26280, "hours of use at which the price reaches its floor")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func runQuote(opts *quoteOptions) (string, error) {
	curve := model.DepreciationCurve(opts.curve)
	rule, err := pricing.NewRule(opts.finalPct, opts.fullHours, curve)
	if err != nil {
		return "", common.NewUserError("cannot quote with this rule", err)
	}

	price, err := pricing.Depreciate(opts.price, opts.hours, rule)
	if err != nil {
		return "", err
	}

	body := fmt.Sprintf("Original: %s\nUsage: %dh of %dh\nCurve: %s, floor %.4g%%\nPrice: %s",
		cli.FormatUSDC(opts.price), opts.hours, opts.fullHours, curve, opts.finalPct, cli.FormatUSDC(price))
	return cli.RenderBox("Quote", body), nil
}
