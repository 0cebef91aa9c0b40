package main

import (
	"github.com/spf13/cobra"

	"pattern_scanner/internal/app/di"
	candleusecase "pattern_scanner/internal/feature/candles/usecase"
	symbollistadapters "pattern_scanner/internal/feature/symbollist/adapters"
	symbollistusecase "pattern_scanner/internal/feature/symbollist/usecase"
)

func newScanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Detect patterns, score signals, then persist and publish the accepted ones",
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

			nc := di.ConnectNATS(cfg, "pattern-scanner-cli")
			if nc != nil {
				defer func() {
					// 送信バッファを確実に流してから閉じる
					_ = nc.Drain()
				}()
			}

			candles := candleusecase.NewCandlesUsecase(di.NewCandleRepository(cfg, d.db, d.rdb), cfg.Location)
			uc := di.NewScanUsecase(cfg, candles, d.db, di.NewConflictTracker(cfg, d.rdb), nc, nil)

			uc.ResetConflicts(ctx)
			n, err := uc.Run(ctx, codes, date, cfg.ScanIntervalMinutes)
			if err != nil {
				return err
			}
			cmd.Printf("scan ok: %d symbols, %d signals, date %s\n", len(codes), n, date)
			return nil
		},
	}
}
