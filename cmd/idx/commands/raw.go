package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goapi-io/goapi-idx/internal/idx"
)

// historicalCmd represents the historical command
var historicalCmd = &cobra.Command{
	Use:   "historical SYMBOL",
	Short: "과거 시세 조회",
	Long: `Fetch the historical series of a symbol as returned by the API.

Example:
  go run ./cmd/idx historical BBCA
  go run ./cmd/idx historical BBCA --from 2024-01-01 --to 2024-01-31`,
	Args: cobra.ExactArgs(1),
	RunE: runHistorical,
}

var eipoCmd = &cobra.Command{
	Use:   "eipo",
	Short: "e-IPO 목록 조회",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRaw(cmd, func(c *idx.Client, ctx context.Context) (idx.Raw, error) {
			return c.GetEIPOList(ctx)
		})
	},
}

// brokerSummaryCmd represents the broker-summary command
var brokerSummaryCmd = &cobra.Command{
	Use:   "broker-summary SYMBOL",
	Short: "브로커 요약 조회",
	Long: `Fetch the broker summary of a symbol on one trading day.

Example:
  go run ./cmd/idx broker-summary BBRI --date 2024-05-17`,
	Args: cobra.ExactArgs(1),
	RunE: runBrokerSummary,
}

var indicatorsCmd = &cobra.Command{
	Use:   "indicators",
	Short: "지표 조회",
	Long: `Fetch one page of stock indicators.

Example:
  go run ./cmd/idx indicators
  go run ./cmd/idx indicators --page 2 --date 2024-02-09`,
	Args: cobra.NoArgs,
	RunE: runIndicators,
}

var (
	// Raw command flags
	histFrom       string
	histTo         string
	brokerDate     string
	indicatorsPage int
	indicatorsDate string
)

func init() {
	rootCmd.AddCommand(historicalCmd, eipoCmd, brokerSummaryCmd, indicatorsCmd)

	// Flags
	historicalCmd.Flags().StringVar(&histFrom, "from", "", "시작일 (YYYY-MM-DD)")
	historicalCmd.Flags().StringVar(&histTo, "to", "", "종료일 (YYYY-MM-DD)")

	brokerSummaryCmd.Flags().StringVar(&brokerDate, "date", "", "거래일 (YYYY-MM-DD)")
	brokerSummaryCmd.MarkFlagRequired("date")

	indicatorsCmd.Flags().IntVar(&indicatorsPage, "page", 0, "페이지 번호")
	indicatorsCmd.Flags().StringVar(&indicatorsDate, "date", "", "기준일 (YYYY-MM-DD)")
}

func runHistorical(cmd *cobra.Command, args []string) error {
	from, err := parseDateFlag("from", histFrom)
	if err != nil {
		return err
	}
	to, err := parseDateFlag("to", histTo)
	if err != nil {
		return err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return errors.New("--to is before --from")
	}

	return runRaw(cmd, func(c *idx.Client, ctx context.Context) (idx.Raw, error) {
		return c.GetHistoricalData(ctx, args[0], idx.HistoricalOptions{From: from, To: to})
	})
}

func runBrokerSummary(cmd *cobra.Command, args []string) error {
	date, err := parseDateFlag("date", brokerDate)
	if err != nil {
		return err
	}

	return runRaw(cmd, func(c *idx.Client, ctx context.Context) (idx.Raw, error) {
		return c.GetBrokerSummary(ctx, args[0], date)
	})
}

func runIndicators(cmd *cobra.Command, args []string) error {
	date, err := parseDateFlag("date", indicatorsDate)
	if err != nil {
		return err
	}

	return runRaw(cmd, func(c *idx.Client, ctx context.Context) (idx.Raw, error) {
		return c.GetStockIndicators(ctx, idx.IndicatorOptions{Page: indicatorsPage, Date: date})
	})
}

// runRaw prints a passthrough payload. --json prints it compact as received.
func runRaw(cmd *cobra.Command, fetch func(*idx.Client, context.Context) (idx.Raw, error)) error {
	_, log, client, err := setup()
	if err != nil {
		return err
	}

	raw, err := fetch(client, cmd.Context())
	if err != nil {
		log.WithError(err).WithField("command", cmd.Name()).Error("Request failed")
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		_, err := fmt.Fprintln(out, string(raw))
		return err
	}
	return PrintRaw(out, raw)
}
