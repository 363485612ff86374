package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "revctl",
		Short:         "Revenue proration and fiscal calendar tools",
		Long:          "Spread contract amounts over calendar months and map dates to the December-start fiscal calendar.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.SetErr(out)

	root.AddCommand(
		newProrateCmd(),
		newFiscalCmd(),
		newFiscalRangeCmd(),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
