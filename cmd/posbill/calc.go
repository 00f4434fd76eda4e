package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lounge-pos-billing/internal/accrual"
	"lounge-pos-billing/internal/discount"
	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/money"
	"lounge-pos-billing/internal/settlement"
)

var (
	rateFlag string
	usdFlag  string
	lbpFlag  string

	startFlag string
	endFlag   string

	percentFlag string

	tenderFlag         string
	tenderCurrencyFlag string

	amountFlag   string
	currencyFlag string
)

var costCmd = &cobra.Command{
	Use:     "cost",
	Short:   "Price a session from its start time and hourly rate",
	Example: `  posbill cost --start 2026-10-15T18:00:00Z --end 2026-10-15T19:30:00Z --usd 2 --lbp 179000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.Parse(time.RFC3339, startFlag)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		end := time.Now()
		if endFlag != "" {
			if end, err = time.Parse(time.RFC3339, endFlag); err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
		}
		rate, err := pairFromFlags()
		if err != nil {
			return err
		}
		return printJSON(cmd, accrual.Compute(start, &rate, end))
	},
}

var discountCmd = &cobra.Command{
	Use:   "discount",
	Short: "Apply a percentage discount to a dual-currency amount",
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := pairFromFlags()
		if err != nil {
			return err
		}
		pct, err := parseDecimal("percent", percentFlag)
		if err != nil {
			return err
		}
		app, err := discount.NewApplication(domain.Discount{ID: "cli", Name: "manual", Value: pct}, base)
		if err != nil {
			return err
		}
		return printJSON(cmd, app)
	},
}

var changeCmd = &cobra.Command{
	Use:     "change",
	Short:   "Compute change for a tender against an amount due",
	Example: `  posbill change --usd 8.50 --lbp 760750 --tender 1000000 --tender-currency LBP --rate 89500`,
	RunE: func(cmd *cobra.Command, args []string) error {
		due, err := pairFromFlags()
		if err != nil {
			return err
		}
		currency, err := money.ParseCurrency(tenderCurrencyFlag)
		if err != nil {
			return err
		}
		tender, err := parseDecimal("tender", tenderFlag)
		if err != nil {
			return err
		}
		rate, err := parseDecimal("rate", rateFlag)
		if err != nil {
			return err
		}
		st, err := settlement.Compute(settlement.Request{AmountDue: due, TenderCurrency: currency, TenderAmount: tender}, rate)
		if err != nil {
			return err
		}
		return printJSON(cmd, st)
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an amount between USD and LBP",
	RunE: func(cmd *cobra.Command, args []string) error {
		currency, err := money.ParseCurrency(currencyFlag)
		if err != nil {
			return err
		}
		amount, err := parseDecimal("amount", amountFlag)
		if err != nil {
			return err
		}
		rate, err := parseDecimal("rate", rateFlag)
		if err != nil {
			return err
		}
		var m money.Money
		if currency == money.USD {
			m, err = money.FromUSD(amount, rate)
		} else {
			m, err = money.FromLBP(amount, rate)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), m.String())
		return nil
	},
}

// pairFromFlags reads --usd/--lbp. When only one side is given and --rate
// is set, the other side is derived.
func pairFromFlags() (money.Money, error) {
	switch {
	case usdFlag != "" && lbpFlag != "":
		usd, err := parseDecimal("usd", usdFlag)
		if err != nil {
			return money.Zero, err
		}
		lbp, err := parseDecimal("lbp", lbpFlag)
		if err != nil {
			return money.Zero, err
		}
		m := money.New(usd, lbp)
		return m, m.Validate()
	case rateFlag == "":
		return money.Zero, fmt.Errorf("give both --usd and --lbp, or one of them with --rate")
	}

	rate, err := parseDecimal("rate", rateFlag)
	if err != nil {
		return money.Zero, err
	}
	if usdFlag != "" {
		usd, err := parseDecimal("usd", usdFlag)
		if err != nil {
			return money.Zero, err
		}
		return money.FromUSD(usd, rate)
	}
	lbp, err := parseDecimal("lbp", lbpFlag)
	if err != nil {
		return money.Zero, err
	}
	return money.FromLBP(lbp, rate)
}

func init() {
	for _, c := range []*cobra.Command{costCmd, discountCmd, changeCmd} {
		c.Flags().StringVar(&usdFlag, "usd", "", "USD amount")
		c.Flags().StringVar(&lbpFlag, "lbp", "", "LBP amount")
		c.Flags().StringVar(&rateFlag, "rate", "", "LBP per 1 USD")
		rootCmd.AddCommand(c)
	}

	costCmd.Flags().StringVar(&startFlag, "start", "", "Session start (RFC3339)")
	costCmd.Flags().StringVar(&endFlag, "end", "", "Session end (RFC3339, default now)")
	costCmd.MarkFlagRequired("start")

	discountCmd.Flags().StringVar(&percentFlag, "percent", "", "Discount percentage, in (0, 100]")
	discountCmd.MarkFlagRequired("percent")

	changeCmd.Flags().StringVar(&tenderFlag, "tender", "", "Amount handed over")
	changeCmd.Flags().StringVar(&tenderCurrencyFlag, "tender-currency", "USD", "Currency of the tender")
	changeCmd.MarkFlagRequired("tender")
	changeCmd.MarkFlagRequired("rate")

	convertCmd.Flags().StringVar(&amountFlag, "amount", "", "Amount to convert")
	convertCmd.Flags().StringVar(&currencyFlag, "from", "USD", "Currency of --amount")
	convertCmd.Flags().StringVar(&rateFlag, "rate", "", "LBP per 1 USD")
	convertCmd.MarkFlagRequired("amount")
	convertCmd.MarkFlagRequired("rate")
	rootCmd.AddCommand(convertCmd)
}
