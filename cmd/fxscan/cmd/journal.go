package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxscan/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List recent trades from the journal database",
	Long: `Read the SQLite trade journal and print the most recent orders.

Example:
  fxscan journal --db trades.db --limit 20`,
	RunE: runJournal,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVar(&journalDBPath, "db", "trades.db", "path to the journal database")
	journalCmd.Flags().IntVar(&journalLimit, "limit", 20, "number of trades to list")
}

func runJournal(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(journalDBPath); err != nil {
		return fmt.Errorf("journal database: %w", err)
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	records, err := j.ListRecent(journalLimit)
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("no trades recorded")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Time", "Account", "Strategy", "Instrument", "Units", "Entry", "Stop", "Target", "Conf", "Status"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.EntryTime.UTC().Format("01-02 15:04:05"),
			r.AccountID,
			r.StrategyName,
			r.Instrument,
			r.Units,
			fmt.Sprintf("%.5f", r.EntryPrice),
			fmt.Sprintf("%.5f", r.StopLoss),
			fmt.Sprintf("%.5f", r.TakeProfit),
			fmt.Sprintf("%.2f", r.Confidence),
			r.Status,
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}
