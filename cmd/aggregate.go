package main

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hexatlas/hexatlas/internal/aggregate"
	"github.com/hexatlas/hexatlas/internal/model"
)

var (
	aggRegion     string
	aggIndicators []string
	aggResolution int
	aggDate       string
	aggOffset     int
	aggOut        string
	aggFormat     string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate indicators onto a region's hex grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		region, err := model.RegionByAbbr(aggRegion)
		if err != nil {
			return err
		}

		indicators := aggIndicators
		if len(indicators) == 0 {
			indicators = model.IndicatorKeys()
		}

		var date time.Time
		if aggDate != "" {
			date, err = time.Parse("2006-01-02", aggDate)
			if err != nil {
				return eris.Wrapf(err, "parse date %q", aggDate)
			}
		}

		env, err := initEnvironment()
		if err != nil {
			return err
		}
		defer env.Close()

		start := time.Now()
		table, err := env.Engine.Aggregate(cmd.Context(), aggregate.Request{
			Indicators:     indicators,
			Region:         region,
			Resolution:     aggResolution,
			HistoricalDate: date,
			ForecastOffset: aggOffset,
		})
		if err != nil {
			return err
		}
		zap.L().Info("aggregation complete",
			zap.String("region", region.Abbr),
			zap.Int("cells", len(table.Records)),
			zap.Duration("took", time.Since(start)),
		)

		format := aggFormat
		if format == "" {
			switch {
			case strings.HasSuffix(aggOut, ".json"):
				format = "json"
			case strings.HasSuffix(aggOut, ".xlsx"):
				format = "xlsx"
			default:
				format = "csv"
			}
		}

		switch format {
		case "csv":
			if aggOut == "" {
				return writeCSV(os.Stdout, table)
			}
			f, err := os.Create(aggOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close() //nolint:errcheck
			return writeCSV(f, table)
		case "json":
			if aggOut == "" {
				return writeJSON(os.Stdout, table)
			}
			f, err := os.Create(aggOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close() //nolint:errcheck
			return writeJSON(f, table)
		case "xlsx":
			if aggOut == "" {
				return eris.New("xlsx output requires --out")
			}
			return writeXLSX(aggOut, table)
		default:
			return eris.Errorf("unknown output format %q", format)
		}
	},
}

func init() {
	aggregateCmd.Flags().StringVar(&aggRegion, "region", "", "region abbreviation (e.g. NL)")
	aggregateCmd.Flags().StringSliceVar(&aggIndicators, "indicators", nil, "indicator keys (default all)")
	aggregateCmd.Flags().IntVar(&aggResolution, "resolution", 6, "H3 resolution (0-10)")
	aggregateCmd.Flags().StringVar(&aggDate, "date", "", "historical observation date (YYYY-MM-DD, default yesterday)")
	aggregateCmd.Flags().IntVar(&aggOffset, "offset", 0, "forecast offset in days from today (0-30)")
	aggregateCmd.Flags().StringVar(&aggOut, "out", "", "output path (default stdout)")
	aggregateCmd.Flags().StringVar(&aggFormat, "format", "", "output format: csv, json or xlsx (default from extension)")
	aggregateCmd.Flags().StringVar(&shapefileDir, "shapefile-dir", "", "read boundaries from local shapefiles in this directory")
	_ = aggregateCmd.MarkFlagRequired("region")
	rootCmd.AddCommand(aggregateCmd)
}
