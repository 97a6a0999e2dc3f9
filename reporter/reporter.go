// Package reporter renders console summaries for scanner sessions.
package reporter

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// AccountSummary accumulates one account's outcomes across a session.
type AccountSummary struct {
	Account    string
	Strategy   string
	Iterations int
	Signals    int
	Submitted  int
	Rejected   int
	Skipped    int
	Errors     int
}

// PrintSession renders the per-account totals for a finished session.
func PrintSession(w io.Writer, started time.Time, rows []AccountSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("scan session: started %s, ran %s",
		started.UTC().Format("2006-01-02 15:04:05"),
		time.Since(started).Round(time.Second))
	t.AppendHeader(table.Row{"Account", "Strategy", "Iterations", "Signals", "Submitted", "Rejected", "Skipped", "Errors"})

	var total AccountSummary
	for _, r := range rows {
		t.AppendRow(table.Row{r.Account, r.Strategy, r.Iterations, r.Signals, r.Submitted, r.Rejected, r.Skipped, r.Errors})
		total.Iterations += r.Iterations
		total.Signals += r.Signals
		total.Submitted += r.Submitted
		total.Rejected += r.Rejected
		total.Skipped += r.Skipped
		total.Errors += r.Errors
	}
	t.AppendFooter(table.Row{"", "total", total.Iterations, total.Signals, total.Submitted, total.Rejected, total.Skipped, total.Errors})
	t.SetStyle(table.StyleLight)
	t.Render()
}
