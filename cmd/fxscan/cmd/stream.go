package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxscan/broker/oanda"
	"github.com/rustyeddy/fxscan/market"
)

var streamCmd = &cobra.Command{
	Use:   "stream [instrument ...]",
	Short: "Tail the OANDA pricing stream",
	Long: `Connect to the OANDA pricing stream and print each tick until
interrupted or --max ticks have arrived.

Example:
  fxscan stream --max 100 EUR_USD USD_JPY`,
	RunE: runStream,
}

var streamMaxTicks int

func init() {
	rootCmd.AddCommand(streamCmd)

	streamCmd.Flags().IntVar(&streamMaxTicks, "max", 0, "stop after this many ticks (0 = run until interrupted)")
}

func runStream(cmd *cobra.Command, args []string) error {
	client, err := oanda.NewClientFromEnv()
	if err != nil {
		return err
	}

	instruments := args
	if len(instruments) == 0 {
		instruments = []string{"EUR_USD"}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := market.NewQuoteStore()

	fmt.Println("time,instrument,bid,ask")
	n, err := client.StreamQuotes(ctx, instruments, streamMaxTicks, func(q market.Quote) {
		store.Set(q)
		fmt.Printf("%s,%s,%.5f,%.5f\n", q.Time.UTC().Format(time.RFC3339Nano), q.Instrument, q.Bid, q.Ask)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stream ended after %d ticks: %w", n, err)
	}

	fmt.Printf("\n%d tick(s); last quotes:\n", n)
	for _, in := range instruments {
		q, err := store.Get(in)
		if err != nil {
			fmt.Printf("  %s: no ticks\n", in)
			continue
		}
		fmt.Printf("  %s: bid %.5f ask %.5f at %s\n", in, q.Bid, q.Ask, q.Time.UTC().Format(time.RFC3339))
	}
	return nil
}
