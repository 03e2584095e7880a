package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hexatlas/hexatlas/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "hexatlas",
	Short: "Hexagonal indicator grids for Mexican states",
	Long:  "Tessellates state boundaries into H3 cells and aggregates weather, risk, population and infrastructure indicators onto them from public data sources.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
