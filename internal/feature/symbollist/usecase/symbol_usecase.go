// Package usecase implements the business logic for symbol-related operations.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pattern_scanner/internal/feature/symbollist/domain/entity"
)

var (
	ErrEmptyCode     = errors.New("symbol code is empty")
	ErrUnknownSymbol = errors.New("symbol is not active")
)

// SymbolRepository abstracts the persistence layer for symbol (stock ticker) data.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, symbols []entity.Symbol) error
}

// SymbolUsecase provides business logic for symbol operations.
type SymbolUsecase struct {
	repo SymbolRepository
}

// NewSymbolUsecase creates a new SymbolUsecase with the given repository.
func NewSymbolUsecase(r SymbolRepository) *SymbolUsecase {
	return &SymbolUsecase{repo: r}
}

// ListActiveSymbols returns all active symbols from the repository.
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx)
}

// ResolveCodes returns the codes a batch run should cover.
// With no request it is the whole active universe; otherwise the requested
// codes, normalised and de-duplicated, each of which must be active.
func (u *SymbolUsecase) ResolveCodes(ctx context.Context, requested []string) ([]string, error) {
	active, err := u.repo.ListActiveCodes(ctx)
	if err != nil {
		return nil, err
	}
	if len(requested) == 0 {
		return active, nil
	}

	known := make(map[string]struct{}, len(active))
	for _, c := range active {
		known[c] = struct{}{}
	}
	seen := make(map[string]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, raw := range requested {
		code := Normalize(raw)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		if _, ok := known[code]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, code)
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}

// Register activates (or re-activates) the given symbols, keeping input order as sort order.
func (u *SymbolUsecase) Register(ctx context.Context, symbols []entity.Symbol) error {
	rows := make([]entity.Symbol, 0, len(symbols))
	for i, s := range symbols {
		s.Code = Normalize(s.Code)
		if s.Code == "" {
			return ErrEmptyCode
		}
		if s.Name == "" {
			s.Name = s.Code
		}
		s.Active = true
		s.SortKey = i + 1
		rows = append(rows, s)
	}
	return u.repo.Upsert(ctx, rows)
}

// Normalize trims and upper-cases a ticker code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
