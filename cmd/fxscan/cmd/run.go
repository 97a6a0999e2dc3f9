package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxscan/broker/oanda"
	"github.com/rustyeddy/fxscan/config"
	"github.com/rustyeddy/fxscan/journal"
	"github.com/rustyeddy/fxscan/ledger"
	"github.com/rustyeddy/fxscan/logger"
	"github.com/rustyeddy/fxscan/metrics"
	"github.com/rustyeddy/fxscan/reporter"
	"github.com/rustyeddy/fxscan/risk"
	"github.com/rustyeddy/fxscan/scanner"
	"github.com/rustyeddy/fxscan/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scan loop for all configured accounts",
	Long: `Run the scan/decide/size/submit loop until interrupted.

Each account is scanned on its own interval: current prices and a fresh
account summary are fetched, the account's strategy decides on signals,
each signal is sized from the risk fraction and gated through the dedup
and risk policies, and surviving orders are submitted.

Example:
  fxscan run -f accounts.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "accounts.yaml", "path to accounts.yaml")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Log)
	defer logger.Sync()
	log := logger.S()

	base, err := oanda.NewClientFromEnv()
	if err != nil {
		return fmt.Errorf("broker credentials: %w", err)
	}

	led, err := openLedger(cfg.Ledger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()

	jrnl, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrnl.Close()

	accounts, err := buildAccounts(cfg, base)
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(cfg.Metrics.Listen); err != nil {
				log.Errorw("metrics listener failed", "err", err)
			}
		}()
		log.Infow("metrics listening", "addr", cfg.Metrics.Listen)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := scanner.New(accounts, led, jrnl, log)
	err = sc.Run(ctx)

	reporter.PrintSession(os.Stdout, sc.Started(), sc.Totals())

	// An interrupt is a graceful stop, not a failure.
	if errors.Is(err, context.Canceled) {
		log.Infow("scanner stopped")
		return nil
	}
	return err
}

func buildAccounts(cfg *config.Config, base *oanda.Client) ([]*scanner.Account, error) {
	accounts := make([]*scanner.Account, 0, len(cfg.Accounts))
	for accountID, ac := range cfg.Accounts {
		decider, err := strategies.ByName(ac.Strategy, strategies.Params{
			Level:       ac.Params.Level,
			Direction:   ac.Params.Direction,
			Window:      ac.Params.Window,
			BreakoutPct: ac.Params.BreakoutPct,
			MinMovePct:  ac.Params.MinMovePct,
			StopPips:    ac.Params.StopPips,
			RR:          ac.Params.RR,
		})
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", accountID, err)
		}

		a := scanner.NewAccount(accountID)
		a.StrategyName = ac.Strategy
		a.Decider = decider
		// One token serves all sub-accounts; each gets its own client bound
		// to its account id.
		a.Broker = oanda.NewClient(base.BaseURL, base.StreamURL, base.Token, accountID)
		a.Instruments = ac.Instruments
		a.Sizer = risk.NewSizer(ac.Risk.Fraction, ac.Risk.FallbackUnits)
		a.Limits = risk.Limits{
			MaxPositionPct: ac.Risk.MaxPositionPct,
			MaxOpenTrades:  ac.Risk.MaxOpenTrades,
		}
		a.MinConfidence = ac.Risk.MinConfidence
		a.Interval = ac.Schedule.Interval.Std()
		a.ErrorBackoff = ac.Schedule.ErrorBackoff.Std()
		a.MaxTradesPerDay = ac.Schedule.MaxTradesPerDay
		a.DedupByDay = ac.Schedule.DedupByDay
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func openLedger(lc config.LedgerConfig) (ledger.Ledger, error) {
	if lc.Type == "badger" {
		return ledger.NewBadger(lc.Path)
	}
	return ledger.NewMemory(), nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	if jc.Path == "" {
		return journal.Nop{}, nil
	}
	return journal.NewSQLite(jc.Path)
}
