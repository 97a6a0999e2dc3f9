package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fxscan",
	Short: "A risk-gated market scanner for the OANDA REST API",
	Long: `fxscan polls OANDA pricing for a set of configured accounts, runs a
pluggable decision rule per instrument, sizes positions from a risk fraction
of the freshly fetched balance, and submits market orders with stop-loss and
take-profit attached.

Credentials come from the environment (or a .env file):
  OANDA_API_KEY      API token
  OANDA_ACCOUNT_ID   default account id
  OANDA_ENVIRONMENT  practice|live

Accounts, strategies and risk limits come from accounts.yaml.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine; the variables may be set directly.
		_ = godotenv.Load()
	},
}

// Execute runs the root command tree.
func Execute() error {
	return rootCmd.Execute()
}
