// Package cmd provides the commands of the trustedapp-estimate CLI.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trustedapp/site/internal/config"
	"github.com/trustedapp/site/internal/logging"
	"github.com/trustedapp/site/internal/pricing"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	ratesFile string
	jsonOut   bool
	verbose   bool

	logger *zap.Logger
	tables *pricing.Tables
}

// Execute runs the CLI
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree. Output goes to the command's out
// writer so callers can capture it.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "trustedapp-estimate",
		Short: "Estimate expert earnings for paid feedback sessions",
		Long: `trustedapp-estimate prices feedback sessions with the same engine as the
website calculator and prints the fee breakdown and projected earnings.

Examples:
  trustedapp-estimate advanced --role manager --rarity rare --rush
  trustedapp-estimate advanced --allow-share --avg-deal-size 5000 --json
  trustedapp-estimate quick --role director --rarity-level 4`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.ratesFile, "rates", "", "rate table YAML file (default is the built-in tables)")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print the estimate as JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newAdvancedCommand(opts))
	root.AddCommand(newQuickCommand(opts))
	return root
}

func (o *options) init() error {
	cfg := config.Load()
	level := cfg.LogLevel
	if o.verbose {
		level = "debug"
	}
	o.logger = logging.New(logging.Config{Level: level, Format: "console", Development: cfg.IsDev()})

	if o.ratesFile == "" {
		o.tables = pricing.DefaultTables()
		return nil
	}

	f, err := os.Open(o.ratesFile)
	if err != nil {
		return fmt.Errorf("open rate tables: %w", err)
	}
	defer f.Close()

	tables, err := pricing.LoadTables(f)
	if err != nil {
		return fmt.Errorf("load rate tables %s: %w", o.ratesFile, err)
	}
	o.logger.Debug("loaded rate tables", zap.String("path", o.ratesFile))
	o.tables = tables
	return nil
}

type estimateOutput struct {
	Input     any                     `json:"input"`
	Result    pricing.Result          `json:"result"`
	Waterfall []pricing.WaterfallStep `json:"waterfall"`
}

func (o *options) print(w io.Writer, in any, result pricing.Result, recurring bool) error {
	if o.jsonOut {
		return writeJSON(w, estimateOutput{
			Input:     in,
			Result:    result,
			Waterfall: pricing.Waterfall(result.Breakdown),
		})
	}
	return writeTable(w, result, recurring)
}
