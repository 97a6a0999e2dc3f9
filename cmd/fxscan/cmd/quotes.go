package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxscan/broker/oanda"
)

var quotesCmd = &cobra.Command{
	Use:   "quotes [instrument ...]",
	Short: "Fetch and print current pricing",
	Long: `Fetch current bid/ask for the given instruments (default EUR_USD)
and print them as a table.

Example:
  fxscan quotes EUR_USD XAU_USD`,
	RunE: runQuotes,
}

func init() {
	rootCmd.AddCommand(quotesCmd)
}

func runQuotes(cmd *cobra.Command, args []string) error {
	client, err := oanda.NewClientFromEnv()
	if err != nil {
		return err
	}

	instruments := args
	if len(instruments) == 0 {
		instruments = []string{"EUR_USD"}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	quotes, err := client.GetQuotes(ctx, instruments)
	if err != nil {
		return fmt.Errorf("fetch quotes: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Instrument", "Bid", "Ask", "Mid", "Spread", "Time"})
	for _, q := range quotes {
		t.AppendRow(table.Row{
			q.Instrument,
			fmt.Sprintf("%.5f", q.Bid),
			fmt.Sprintf("%.5f", q.Ask),
			fmt.Sprintf("%.5f", q.Mid()),
			fmt.Sprintf("%.5f", q.Spread()),
			q.Time.UTC().Format(time.RFC3339),
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}
