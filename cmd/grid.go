package main

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/hexatlas/hexatlas/internal/hexgrid"
	"github.com/hexatlas/hexatlas/internal/model"
)

var (
	gridRegion     string
	gridResolution int
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Print the hex grid covering a region",
	RunE: func(cmd *cobra.Command, args []string) error {
		region, err := model.RegionByAbbr(gridRegion)
		if err != nil {
			return err
		}

		env, err := initEnvironment()
		if err != nil {
			return err
		}
		defer env.Close()

		geom, err := env.Boundary.Resolve(cmd.Context(), region)
		if err != nil {
			return err
		}
		cells, err := hexgrid.FromGeometry(geom, gridResolution)
		if err != nil {
			return err
		}

		cw := csv.NewWriter(os.Stdout)
		if err := cw.Write([]string{"seq", "cell", "lat", "lon"}); err != nil {
			return eris.Wrap(err, "write csv header")
		}
		for i, c := range cells {
			lat, lon, err := hexgrid.Center(c)
			if err != nil {
				return err
			}
			if err := cw.Write([]string{
				strconv.Itoa(i + 1),
				string(c),
				strconv.FormatFloat(lat, 'f', 6, 64),
				strconv.FormatFloat(lon, 'f', 6, 64),
			}); err != nil {
				return eris.Wrap(err, "write csv row")
			}
		}
		cw.Flush()
		return eris.Wrap(cw.Error(), "flush csv")
	},
}

func init() {
	gridCmd.Flags().StringVar(&gridRegion, "region", "", "region abbreviation (e.g. NL)")
	gridCmd.Flags().IntVar(&gridResolution, "resolution", 6, "H3 resolution (0-10)")
	_ = gridCmd.MarkFlagRequired("region")
	rootCmd.AddCommand(gridCmd)
}
