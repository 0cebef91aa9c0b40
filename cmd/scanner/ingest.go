package main

import (
	"github.com/spf13/cobra"

	"pattern_scanner/internal/app/di"
	symbollistadapters "pattern_scanner/internal/feature/symbollist/adapters"
	symbollistusecase "pattern_scanner/internal/feature/symbollist/usecase"
)

func newIngestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Fetch 1-minute bars, build candles and store them for a trading date",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			date, err := opts.tradingDate(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			d, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			codes, err := symbollistusecase.NewSymbolUsecase(symbollistadapters.NewSymbolRepository(d.db)).
				ResolveCodes(ctx, opts.symbols)
			if err != nil {
				return err
			}

			uc := di.NewIngestUsecase(cfg, di.NewMarket(cfg), di.NewCandleRepository(cfg, d.db, d.rdb))
			if err := uc.IngestAll(ctx, codes, date); err != nil {
				return err
			}
			cmd.Printf("ingest ok: %d symbols, date %s, interval %dm\n", len(codes), date, cfg.ScanIntervalMinutes)
			return nil
		},
	}
}
