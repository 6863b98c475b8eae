package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dealcoach/pkg/config"
	"dealcoach/pkg/money"
	"dealcoach/pkg/offer"
	"dealcoach/pkg/taxes"
)

var (
	quotePrice int64
	quoteState string
)

// quoteCmd is the one-shot entry point: estimate an out-the-door price from a
// vehicle price, or parse a dealer's quote out of pasted text.
var quoteCmd = &cobra.Command{
	Use:   "quote [dealer text]",
	Short: "One-shot OTD estimate or dealer-quote parse",
	Long: `With --price, projects a rough out-the-door figure for that vehicle price
using the state's sales tax rate and a typical doc fee. With pasted dealer
text as the argument, extracts the quoted OTD amount and reports how
confident the extraction is.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if quotePrice > 0 {
			return runEstimate(money.Amount(quotePrice), quoteState)
		}
		if len(args) == 0 {
			return errors.New("pass --price for an estimate or dealer text to parse")
		}
		return runParse(strings.Join(args, " "))
	},
}

func init() {
	quoteCmd.Flags().Int64Var(&quotePrice, "price", 0, "vehicle price in whole dollars")
	quoteCmd.Flags().StringVar(&quoteState, "state", "", "two-letter state code for tax rate")
}

func runEstimate(price money.Amount, stateCode string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	table, err := loadTaxTable(cfg)
	if err != nil {
		return err
	}
	if stateCode == "" {
		stateCode = cfg.DefaultState
	}
	est := table.EstimateOTD(price, stateCode)
	fmt.Printf("Estimated OTD for %s in %s: %s\n", money.Format(price), displayState(stateCode), money.Format(est))
	fmt.Printf("  sales tax %.2f%% + doc fee %s (rough estimate; ask for the itemized worksheet)\n",
		table.Rate(stateCode)*100, money.Format(table.DocFee(stateCode)))
	return nil
}

func runParse(text string) error {
	po, ok := offer.ParseDealerOffer(text)
	if !ok {
		return errors.New("no plausible dollar amount found in that text")
	}
	fmt.Printf("Parsed OTD: %s (confidence: %s, matched %q)\n", money.Format(po.Amount), po.Confidence, po.MatchedText)
	return nil
}

func loadTaxTable(cfg *config.Config) (*taxes.Table, error) {
	if cfg.TaxTablePath != "" {
		return taxes.Load(cfg.TaxTablePath)
	}
	return taxes.Default(), nil
}

func displayState(code string) string {
	if code == "" {
		return "default jurisdiction"
	}
	return strings.ToUpper(code)
}
