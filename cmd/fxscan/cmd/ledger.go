package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxscan/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect today's dedup ledger marks",
	Long: `Check the persistent daily trade ledger: whether a given
(account, instrument) pair already traded today and how many instruments
the account has traded.

Example:
  fxscan ledger --path ./ledger.db --account 101-001-123 --instrument EUR_USD`,
	RunE: runLedger,
}

var (
	ledgerPath       string
	ledgerAccount    string
	ledgerInstrument string
)

func init() {
	rootCmd.AddCommand(ledgerCmd)

	ledgerCmd.Flags().StringVar(&ledgerPath, "path", "./ledger.db", "badger ledger directory")
	ledgerCmd.Flags().StringVar(&ledgerAccount, "account", "", "account id (required)")
	ledgerCmd.Flags().StringVar(&ledgerInstrument, "instrument", "", "instrument to check")
	ledgerCmd.MarkFlagRequired("account")
}

func runLedger(cmd *cobra.Command, args []string) error {
	led, err := ledger.NewBadger(ledgerPath)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()

	now := time.Now()

	n, err := led.CountTraded(ledgerAccount, now)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	fmt.Printf("%s traded %d instrument(s) on %s\n", ledgerAccount, n, ledger.DayKey(now))

	if ledgerInstrument != "" {
		traded, err := led.Traded(ledgerAccount, ledgerInstrument, now)
		if err != nil {
			return fmt.Errorf("lookup: %w", err)
		}
		if traded {
			fmt.Printf("%s %s: already traded today\n", ledgerAccount, ledgerInstrument)
		} else {
			fmt.Printf("%s %s: not traded today\n", ledgerAccount, ledgerInstrument)
		}
	}
	return nil
}
