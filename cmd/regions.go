package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hexatlas/hexatlas/internal/model"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List supported regions",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ABBR\tCODE\tNAME")
		for _, r := range model.Regions() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Abbr, r.Code, r.Name)
		}
		return w.Flush()
	},
}

var indicatorsCmd = &cobra.Command{
	Use:   "indicators",
	Short: "List available indicator keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tLABEL")
		for _, k := range model.IndicatorKeys() {
			fmt.Fprintf(w, "%s\t%s\n", k, model.IndicatorLabel(k))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(indicatorsCmd)
}
