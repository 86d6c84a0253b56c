package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/goapi-io/goapi-idx/internal/idx"
)

// companiesCmd represents the companies command
var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "상장 기업 목록 조회",
	Long: `List every company listed on the IDX.

Example:
  go run ./cmd/idx companies
  go run ./cmd/idx companies --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, (*idx.Client).ListCompanies, PrintCompanies)
	},
}

// pricesCmd represents the prices command
var pricesCmd = &cobra.Command{
	Use:   "prices SYMBOL...",
	Short: "종목 시세 조회",
	Long: `Fetch current quotes for one or more symbols.

Example:
  go run ./cmd/idx prices BBCA
  go run ./cmd/idx prices BBCA TLKM ASII`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fetch := func(c *idx.Client, ctx context.Context) ([]idx.StockPrice, error) {
			return c.GetStockPrices(ctx, args)
		}
		return runList(cmd, fetch, PrintStockPrices)
	},
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "인기 종목 조회",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, (*idx.Client).GetTrendingStocks, PrintPriceChanges)
	},
}

var gainersCmd = &cobra.Command{
	Use:   "gainers",
	Short: "상승률 상위 종목 조회",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, (*idx.Client).GetTopGainers, PrintPriceChanges)
	},
}

var losersCmd = &cobra.Command{
	Use:   "losers",
	Short: "하락률 상위 종목 조회",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, (*idx.Client).GetTopLosers, PrintPriceChanges)
	},
}

var indicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "지수 조회",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, (*idx.Client).GetIndices, PrintPriceChanges)
	},
}

func init() {
	rootCmd.AddCommand(companiesCmd, pricesCmd, trendingCmd, gainersCmd, losersCmd, indicesCmd)
}

// runList fetches a typed list and prints it as a table or JSON
func runList[T any](cmd *cobra.Command, fetch func(*idx.Client, context.Context) ([]T, error), table func(w io.Writer, rows []T)) error {
	_, log, client, err := setup()
	if err != nil {
		return err
	}

	rows, err := fetch(client, cmd.Context())
	if err != nil {
		log.WithError(err).WithField("command", cmd.Name()).Error("Request failed")
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return PrintJSON(out, rows)
	}
	table(out, rows)
	return nil
}
