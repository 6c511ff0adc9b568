package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/paycalc/generic"
	"github.com/warp/paycalc/payroll"
)

var (
	calcTaxable    string
	calcNonTaxable string
	calcMode       string
	calcDuesRate   string
	calcRound      int32
	calcJSON       bool
	calcCompare    bool
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate one week's deductions",
	Long: `Calculates CPP, CPP2, EI, federal and provincial tax, union dues and net
pay for one week. Amounts are decimal strings; negative amounts are rejected.

Example:
  paycalc calc --taxable 1500 --non-taxable 100 --mode annualized`,
	RunE: runCalc,
}

func init() {
	calcCmd.Flags().StringVar(&calcTaxable, "taxable", "", "Taxable weekly earnings (required)")
	calcCmd.Flags().StringVar(&calcNonTaxable, "non-taxable", "0", "Non-taxable weekly earnings")
	calcCmd.Flags().StringVar(&calcMode, "mode", string(payroll.DefaultMode), "early-year or annualized")
	calcCmd.Flags().StringVar(&calcDuesRate, "dues-rate", "", "Union dues rate override, e.g. 0.02 (default: the set's rate)")
	calcCmd.Flags().Int32Var(&calcRound, "round", 2, "Decimal places to display")
	calcCmd.Flags().BoolVar(&calcJSON, "json", false, "Print full-precision JSON instead of a table")
	calcCmd.Flags().BoolVar(&calcCompare, "compare", false, "Show both modes side by side")
	calcCmd.MarkFlagRequired("taxable")
}

func runCalc(cmd *cobra.Command, args []string) error {
	taxable, err := generic.ParseAmount("taxable", calcTaxable)
	if err != nil {
		return err
	}
	nonTaxable, err := generic.ParseAmount("non-taxable", calcNonTaxable)
	if err != nil {
		return err
	}

	mode, ok := payroll.ParseMode(calcMode)
	if !ok {
		return &generic.InputError{Field: "mode", Value: calcMode, Reason: "must be early-year or annualized"}
	}

	in := payroll.WeeklyInput{TaxableWeekly: taxable, NonTaxableWeekly: nonTaxable, Mode: mode}
	if err := in.Validate(); err != nil {
		return err
	}

	var duesRate *decimal.Decimal
	if calcDuesRate != "" {
		d, err := generic.ParseAmount("dues-rate", calcDuesRate)
		if err != nil {
			return err
		}
		if err := payroll.ValidateDuesRate(d); err != nil {
			return err
		}
		duesRate = &d
	}

	if calcRound < 0 || calcRound > 10 {
		return &generic.InputError{Field: "round", Value: fmt.Sprint(calcRound), Reason: "must be between 0 and 10"}
	}

	cs, err := resolveConstantSet(cmd.Context(), cfg.DefaultSet)
	if err != nil {
		return err
	}
	calc := payroll.NewCalculator(cs)
	out := cmd.OutOrStdout()

	if calcCompare {
		results := calc.CompareModes(taxable, nonTaxable, duesRate)
		if calcJSON {
			return json.NewEncoder(out).Encode(results)
		}
		return printBreakdowns(out, cs, []string{string(payroll.ModeEarlyYear), string(payroll.ModeAnnualized)},
			[]payroll.DeductionBreakdown{results[payroll.ModeEarlyYear], results[payroll.ModeAnnualized]})
	}

	b := calc.Calculate(in, duesRate)
	if calcJSON {
		return json.NewEncoder(out).Encode(b)
	}
	return printBreakdowns(out, cs, []string{string(mode)}, []payroll.DeductionBreakdown{b})
}

func printBreakdowns(out io.Writer, cs payroll.ConstantSet, headers []string, bs []payroll.DeductionBreakdown) error {
	fmt.Fprintf(out, "%s (%s)\n", cs.Name, cs.ID)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\t")
	for _, h := range headers {
		fmt.Fprintf(tw, "%s\t", h)
	}
	fmt.Fprintln(tw)

	rows := []struct {
		label string
		get   func(payroll.DeductionBreakdown) decimal.Decimal
	}{
		{"CPP", func(b payroll.DeductionBreakdown) decimal.Decimal { return b.CPP }},
		{"CPP2", func(b payroll.DeductionBreakdown) decimal.Decimal { return b.CPP2 }},
		{"EI", func(b payroll.DeductionBreakdown) decimal.Decimal { return b.EI }},
		{"Federal tax", func(b payroll.DeductionBreakdown) decimal.Decimal { return b.FederalTax }},
		{"Provincial tax", func(b payroll.DeductionBreakdown) decimal.Decimal { return b.AlbertaTax }},
		{"Union dues", func(b payroll.DeductionBreakdown) decimal.Decimal { return b.UnionDues }},
		{"Total deductions", func(b payroll.DeductionBreakdown) decimal.Decimal { return b.TotalDeductions }},
		{"Net (taxable only)", func(b payroll.DeductionBreakdown) decimal.Decimal { return b.NetTaxableOnly }},
		{"Net pay", func(b payroll.DeductionBreakdown) decimal.Decimal { return b.NetPayTotal }},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t", row.label)
		for _, b := range bs {
			fmt.Fprintf(tw, "%s\t", generic.FormatMoney(row.get(b), calcRound))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
