package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/card-statement-parser/internal/config"
)

const version = "1.0.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "card-statement-parser",
		Short: "Credit card statement PDF field extractor",
		Long: `Credit card statement PDF field extractor
by Insight Delivered (QEA AutoLens)

Identifies the issuing bank of an Indian credit card statement
(Axis Bank, Kotak, HDFC, ICICI, SBI, Bank of Baroda) and extracts the
card's last four digits, variant, billing cycle, statement period,
payment due date, total balance and transaction count.`,
		Example: `  # Parse a statement and print the fields
  card-statement-parser parse statement.pdf

  # Encrypted statement, JSON output
  card-statement-parser parse --password=ABCD1234 -f json statement.pdf

  # Classify text already extracted by another tool
  pdftotext statement.pdf - | card-statement-parser text -

  # Only report the issuer
  card-statement-parser detect statement.pdf

  # HTTP API on all interfaces
  STMT_HOST=0.0.0.0 card-statement-parser serve`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	config.DefineFlags(root.PersistentFlags())

	root.AddCommand(newParseCmd(), newTextCmd(), newDetectCmd(), newServeCmd(), newMCPCmd())
	return root
}

// setup loads the configuration and builds a logger at its level.
func setup(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "stmt",
		Level:           level,
	})
	return cfg, logger, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
