package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warp/revenue-engine/generic"
)

type prorateOptions struct {
	amount string
	start  string
	end    string
	json   bool
}

func newProrateCmd() *cobra.Command {
	var opts prorateOptions

	cmd := &cobra.Command{
		Use:   "prorate",
		Short: "Split an amount over the calendar months of a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProrate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.amount, "amount", "", "Contract amount")
	cmd.Flags().StringVar(&opts.start, "start", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.end, "end", "", "Last day, YYYY-MM-DD")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func runProrate(cmd *cobra.Command, opts prorateOptions) error {
	amount, err := generic.ParseAmount(opts.amount)
	if err != nil {
		return err
	}
	start, err := generic.ParseDate(opts.start)
	if err != nil {
		return err
	}
	end, err := generic.ParseDate(opts.end)
	if err != nil {
		return err
	}

	result, err := generic.Prorate(amount, start, end)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return writeJSON(out, result)
	}

	fmt.Fprintf(out, "%s over %d days, %s per day\n\n", amount.StringFixed(2), result.TotalDays, result.DailyRate.StringFixed(2))
	fmt.Fprintf(out, "  %-7s  %4s  %4s  %14s\n", "Month", "Days", "Of", "Amount")
	for _, m := range result.MonthlyBreakdown {
		fmt.Fprintf(out, "  %-7s  %4d  %4d  %14s\n", m.YearMonth(), m.ApplicableDays, m.TotalDaysInMonth, m.Amount.StringFixed(2))
	}
	fmt.Fprintf(out, "  %-7s  %4d  %4s  %14s\n", "TOTAL", result.TotalDays, "", result.Total().StringFixed(2))
	if drift := result.Drift(amount); !drift.IsZero() {
		fmt.Fprintf(out, "\n  rounding drift %s\n", drift.StringFixed(2))
	}
	return nil
}
