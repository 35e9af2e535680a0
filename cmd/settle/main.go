// Command settle runs the balance and receipt engine over JSON snapshot
// files, without a server or database.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmynk/splitledger/pkg/logging"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:   "settle",
		Short: "Compute balances and receipt shares from snapshot files",
		Long: `settle reads a JSON snapshot and prints the engine's output as JSON.

  settle balances --file group.json   net balances and suggested transfers
  settle receipt --file receipt.json  per-member receipt totals`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			v.SetEnvPrefix("SETTLE")
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()
			return logging.Configure(v.GetString("log-level"), logging.Console)
		},
	}

	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = v.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(balancesCmd(), receiptCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
