package main

import (
	"strings"

	"github.com/spf13/cobra"

	"pattern_scanner/internal/feature/symbollist/adapters"
	"pattern_scanner/internal/feature/symbollist/domain/entity"
	"pattern_scanner/internal/feature/symbollist/usecase"
)

func newSymbolsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "Manage the active symbol universe",
	}

	var exchange string
	add := &cobra.Command{
		Use:   "add CODE[=NAME]...",
		Short: "Register or re-activate symbols in the given order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			uc := usecase.NewSymbolUsecase(adapters.NewSymbolRepository(d.db))
			if err := uc.Register(ctx, parseSymbolArgs(args, exchange)); err != nil {
				return err
			}
			cmd.Printf("registered %d symbols\n", len(args))
			return nil
		},
	}
	add.Flags().StringVar(&exchange, "exchange", "", "exchange recorded for every added symbol")

	list := &cobra.Command{
		Use:   "list",
		Short: "Print active symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			symbols, err := usecase.NewSymbolUsecase(adapters.NewSymbolRepository(d.db)).ListActiveSymbols(ctx)
			if err != nil {
				return err
			}
			for _, s := range symbols {
				cmd.Printf("%s\t%s\t%s\n", s.Code, s.Name, s.Exchange)
			}
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

// parseSymbolArgs turns "AAPL=Apple Inc." style arguments into symbols.
func parseSymbolArgs(args []string, exchange string) []entity.Symbol {
	out := make([]entity.Symbol, 0, len(args))
	for _, a := range args {
		code, name, _ := strings.Cut(a, "=")
		out = append(out, entity.Symbol{Code: code, Name: strings.TrimSpace(name), Exchange: exchange})
	}
	return out
}
