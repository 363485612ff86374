package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warp/revenue-engine/generic"
)

func newFiscalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fiscal DATE...",
		Short: "Print the fiscal year and quarter of each date",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, arg := range args {
				d, err := generic.ParseDate(arg)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s  %s\n", d, generic.FiscalPeriodOf(d))
			}
			return nil
		},
	}
}

func newFiscalRangeCmd() *cobra.Command {
	var year, quarter int

	cmd := &cobra.Command{
		Use:   "fiscal-range",
		Short: "Print the calendar dates of a fiscal year or quarter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var q *int
			if cmd.Flags().Changed("quarter") {
				q = &quarter
			}
			period, err := generic.FiscalRange(year, q)
			if err != nil {
				return err
			}

			label := fmt.Sprintf("FY%d", year)
			if q != nil {
				label = fmt.Sprintf("FY%d Q%d", year, quarter)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s .. %s  (%d days)\n", label, period.Start, period.End, period.Days())
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Fiscal year")
	cmd.Flags().IntVar(&quarter, "quarter", 0, "Fiscal quarter, 1-4 (whole year when omitted)")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}
